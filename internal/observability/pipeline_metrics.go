package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Question outcomes.
const (
	OutcomeSelect               = "select"
	OutcomeStatus               = "status"
	OutcomeConfirmationRequired = "confirmation_required"
	OutcomeExecutionError       = "execution_error"
	OutcomeGenerationError      = "generation_error"
	OutcomeNotConnected         = "not_connected"
	OutcomeSchemaError          = "schema_error"
)

var (
	questionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querygenie_questions_total",
			Help: "Questions processed, by outcome.",
		},
		[]string{"outcome"},
	)
	generationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "querygenie_generation_duration_seconds",
			Help:    "Latency of SQL generation calls to the language model.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
	executionDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "querygenie_execution_duration_seconds",
			Help:    "Latency of statement execution against the target database.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	confirmationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querygenie_confirmations_total",
			Help: "Confirmation decisions for dangerous statements.",
		},
		[]string{"decision"},
	)
	suspiciousQuestionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "querygenie_suspicious_questions_total",
			Help: "Questions whose text matched a SQL injection fingerprint.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		questionsTotal,
		generationDurationSeconds,
		executionDurationSeconds,
		confirmationsTotal,
		suspiciousQuestionsTotal,
	)
}

func ObserveQuestion(outcome string) {
	questionsTotal.WithLabelValues(outcome).Inc()
}

func ObserveGeneration(elapsed time.Duration) {
	generationDurationSeconds.Observe(elapsed.Seconds())
}

func ObserveExecution(kind string, elapsed time.Duration) {
	executionDurationSeconds.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func ObserveConfirmation(confirmed bool) {
	decision := "cancelled"
	if confirmed {
		decision = "confirmed"
	}
	confirmationsTotal.WithLabelValues(decision).Inc()
}

func IncrementSuspiciousQuestion() {
	suspiciousQuestionsTotal.Inc()
}

// RegisterActiveSessions exposes the number of open sessions as a gauge read
// at scrape time. It must be called once per registerer.
func RegisterActiveSessions(registerer prometheus.Registerer, count func() int) error {
	return registerer.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "querygenie_active_sessions",
			Help: "Sessions with an open database connection.",
		},
		func() float64 { return float64(count()) },
	))
}

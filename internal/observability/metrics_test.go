package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveQuestion(t *testing.T) {
	before := testutil.ToFloat64(questionsTotal.WithLabelValues(OutcomeConfirmationRequired))
	ObserveQuestion(OutcomeConfirmationRequired)
	assert.Equal(t, before+1, testutil.ToFloat64(questionsTotal.WithLabelValues(OutcomeConfirmationRequired)))
}

func TestObserveConfirmation(t *testing.T) {
	confirmed := testutil.ToFloat64(confirmationsTotal.WithLabelValues("confirmed"))
	cancelled := testutil.ToFloat64(confirmationsTotal.WithLabelValues("cancelled"))

	ObserveConfirmation(true)
	ObserveConfirmation(false)
	ObserveConfirmation(false)

	assert.Equal(t, confirmed+1, testutil.ToFloat64(confirmationsTotal.WithLabelValues("confirmed")))
	assert.Equal(t, cancelled+2, testutil.ToFloat64(confirmationsTotal.WithLabelValues("cancelled")))
}

func TestRegisterActiveSessions(t *testing.T) {
	registry := prometheus.NewRegistry()
	sessions := 2
	require.NoError(t, RegisterActiveSessions(registry, func() int { return sessions }))

	sessions = 5
	count, err := testutil.GatherAndCount(registry, "querygenie_active_sessions")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, 5.0, families[0].GetMetric()[0].GetGauge().GetValue())

	assert.Error(t, RegisterActiveSessions(registry, func() int { return 0 }))
}

func TestObserveHTTPRequest(t *testing.T) {
	ObserveHTTPRequest("POST", "/api/chat", 200, 15*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/api/chat", "200")), 1.0)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("loud", "json")
	assert.Error(t, err)
}

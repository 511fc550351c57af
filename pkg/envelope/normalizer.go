package envelope

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"query-genie/pkg/sqlguard"
)

const (
	defaultStatusMessage = "Statement executed successfully."
	groupByErrorCode     = 1140

	// Equivalent aggregate/GROUP BY mismatch codes of the other dialects.
	postgresGroupingError   = "42803"
	clickhouseNotAggregated = 215
)

var affectedRowsPattern = regexp.MustCompile(`(\d+) rows? affected`)

// Outcome is what executing one statement produced. Select runs fill Columns
// and Rows, NonSelect runs fill StatusText. Err is set on any failure.
type Outcome struct {
	Columns    []string
	Rows       [][]any
	StatusText string
	Err        error
}

// Normalize converts an execution outcome into an envelope, choosing the
// select or status path from kind.
func Normalize(kind sqlguard.Kind, outcome Outcome) Envelope {
	if kind == sqlguard.KindSelect {
		return NormalizeSelect(outcome.Columns, outcome.Rows, outcome.Err)
	}
	return NormalizeStatement(outcome.StatusText, outcome.Err)
}

// NormalizeSelect stringifies every cell. NULL becomes the empty string.
func NormalizeSelect(columns []string, rows [][]any, err error) Envelope {
	if err != nil {
		return NewError(selectErrorMessage(err))
	}

	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = Stringify(cell)
		}
		data = append(data, cells)
	}
	return NewSelect(append([]string{}, columns...), data)
}

// NormalizeStatement parses a driver status line such as
// "Query OK, 4 rows affected". Text without that phrasing reports zero rows.
func NormalizeStatement(statusText string, err error) Envelope {
	if err != nil {
		return NewError(err.Error())
	}

	clean := strings.TrimSpace(statusText)
	if strings.Contains(clean, "Query OK") || strings.Contains(clean, "rows affected") || strings.Contains(clean, "row affected") {
		affected := 0
		if m := affectedRowsPattern.FindStringSubmatch(clean); m != nil {
			if n, convErr := strconv.Atoi(m[1]); convErr == nil {
				affected = n
			}
		}
		return NewStatus(AffectedRowsMessage(affected), affected)
	}

	if clean == "" {
		clean = defaultStatusMessage
	}
	return NewStatus(clean, 0)
}

// AffectedRowsMessage words the success message with singular/plural rows.
func AffectedRowsMessage(n int) string {
	noun := "rows"
	if n == 1 {
		noun = "row"
	}
	return fmt.Sprintf("Statement executed successfully. %d %s affected.", n, noun)
}

// IsGroupByError reports whether err is the aggregate/GROUP BY mismatch
// raised under only_full_group_by.
func IsGroupByError(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == groupByErrorCode {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == postgresGroupingError {
		return true
	}
	var chErr *clickhouse.Exception
	if errors.As(err, &chErr) && chErr.Code == clickhouseNotAggregated {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "only_full_group_by") || strings.Contains(msg, strconv.Itoa(groupByErrorCode))
}

func selectErrorMessage(err error) string {
	if !IsGroupByError(err) {
		return err.Error()
	}
	return "⚠️ GROUP BY Error: When using aggregate functions like AVG(), SUM(), COUNT(), " +
		"all non-aggregated columns in SELECT must be included in the GROUP BY clause. " +
		"\n\nOriginal error: " + err.Error() + "\n\n" +
		"Please rephrase your question or ask me to fix the query."
}

// Stringify renders one driver value the way it should appear in a result grid.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		if val.Nanosecond() == 0 {
			return val.Format(time.DateTime)
		}
		return val.Format("2006-01-02 15:04:05.999999")
	case *string:
		if val == nil {
			return ""
		}
		return *val
	case bool:
		return strconv.FormatBool(val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

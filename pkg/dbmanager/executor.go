package dbmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"query-genie/pkg/envelope"
)

// Leading keywords of statements that produce a result set.
var rowReturningKeywords = []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "VALUES", "TABLE", "PRAGMA"}

// UsageTracker is notified every time a session's database is used.
type UsageTracker interface {
	UpdateLastUsed(sessionID string) error
}

// SQLExecutor implements Executor on top of a pooled *sql.DB.
type SQLExecutor struct {
	db        *sql.DB
	dbType    string
	sessionID string
	tracker   UsageTracker
	schemas   *SchemaStorageService
	logger    *zap.Logger
}

// NewSQLExecutor builds an executor. tracker and schemas may be nil.
func NewSQLExecutor(db *sql.DB, dbType, sessionID string, tracker UsageTracker, schemas *SchemaStorageService, logger *zap.Logger) *SQLExecutor {
	return &SQLExecutor{
		db:        db,
		dbType:    dbType,
		sessionID: sessionID,
		tracker:   tracker,
		schemas:   schemas,
		logger:    logger.Named("executor"),
	}
}

func (e *SQLExecutor) DBType() string {
	return e.dbType
}

// IntrospectSchema returns the schema text for the prompt, served from the
// schema cache when present.
func (e *SQLExecutor) IntrospectSchema(ctx context.Context) (string, error) {
	e.touch()

	if e.schemas != nil {
		text, err := e.schemas.Retrieve(ctx, e.sessionID)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrSchemaNotCached) {
			e.logger.Warn("SQLExecutor -> IntrospectSchema -> cache read failed", zap.String("session_id", e.sessionID), zap.Error(err))
		}
	}

	info, err := FetchSchema(ctx, e.db, e.dbType)
	if err != nil {
		return "", err
	}
	text := FormatSchemaForLLM(info)

	if e.schemas != nil {
		if err := e.schemas.Store(ctx, e.sessionID, text); err != nil {
			e.logger.Warn("SQLExecutor -> IntrospectSchema -> cache write failed", zap.String("session_id", e.sessionID), zap.Error(err))
		}
	}
	return text, nil
}

// ExecuteQuery runs a row-returning statement on a connection acquired for
// this call only. The connection and the result set are released on every
// return path, including a failure while reading rows.
func (e *SQLExecutor) ExecuteQuery(ctx context.Context, query string) (*QueryResult, error) {
	e.touch()
	return e.query(ctx, query)
}

func (e *SQLExecutor) query(ctx context.Context, query string) (*QueryResult, error) {
	start := time.Now()

	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			e.logger.Warn("SQLExecutor -> query -> error closing connection", zap.Error(closeErr))
		}
	}()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	data := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug("SQLExecutor -> query -> rows fetched",
		zap.String("session_id", e.sessionID),
		zap.Int("rows", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	return &QueryResult{Columns: columns, Rows: data}, nil
}

// ExecuteStatement runs any statement and reports the outcome as text.
// Statements that produce a result set (SHOW, DESCRIBE, EXPLAIN, WITH ...)
// come back as the rendered rows. Everything else is reported as a
// client-style status line, e.g. "Query OK, 4 rows affected".
func (e *SQLExecutor) ExecuteStatement(ctx context.Context, statement string) (string, error) {
	e.touch()

	if ReturnsRows(statement) {
		result, err := e.query(ctx, statement)
		if err != nil {
			return "", err
		}
		if len(result.Columns) == 0 {
			return "Query OK", nil
		}
		return FormatRows(result), nil
	}

	res, err := e.db.ExecContext(ctx, statement)
	if err != nil {
		return "", err
	}

	// Schema may have changed.
	if e.schemas != nil {
		if err := e.schemas.Invalidate(ctx, e.sessionID); err != nil {
			e.logger.Warn("SQLExecutor -> ExecuteStatement -> cache invalidation failed", zap.Error(err))
		}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return "Query OK", nil
	}
	return StatusLine(affected), nil
}

// ReturnsRows reports whether the statement's leading keyword is one that
// produces a result set.
func ReturnsRows(statement string) bool {
	clean := strings.TrimLeft(strings.TrimSpace(statement), "( \t\r\n")
	fields := strings.Fields(clean)
	if len(fields) == 0 {
		return false
	}
	first := strings.ToUpper(strings.TrimRight(fields[0], "(;"))
	for _, keyword := range rowReturningKeywords {
		if first == keyword {
			return true
		}
	}
	return false
}

// FormatRows renders a result set as an aligned text grid with a header line.
// An empty result set renders as the empty string.
func FormatRows(result *QueryResult) string {
	if result == nil || len(result.Rows) == 0 {
		return ""
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = envelope.Stringify(cell)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// StatusLine formats an affected row count the way the MySQL client does.
func StatusLine(affected int64) string {
	if affected == 1 {
		return "Query OK, 1 row affected"
	}
	return fmt.Sprintf("Query OK, %d rows affected", affected)
}

func (e *SQLExecutor) touch() {
	if e.tracker == nil {
		return
	}
	if err := e.tracker.UpdateLastUsed(e.sessionID); err != nil {
		e.logger.Debug("SQLExecutor -> failed to update last used time", zap.Error(err))
	}
}

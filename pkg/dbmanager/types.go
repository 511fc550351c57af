package dbmanager

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrConnectionNotFound is returned when a session has no active database.
var ErrConnectionNotFound = errors.New("no database connection for session")

// ConnectionStatus represents the current state of a database connection
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "db-connected"
	StatusDisconnected ConnectionStatus = "db-disconnected"
	StatusError        ConnectionStatus = "db-error"
)

// ConnectionListener is told when a session's connection changes state.
type ConnectionListener func(sessionID string, status ConnectionStatus, reason string)

// Connection represents an active database connection
type Connection struct {
	DB        *gorm.DB
	LastUsed  time.Time
	Status    ConnectionStatus
	Config    ConnectionConfig
	SessionID string
}

// ConnectionConfig holds the configuration for a database connection
type ConnectionConfig struct {
	Type     string  `json:"type"`
	Host     string  `json:"host"`
	Port     string  `json:"port"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Database string  `json:"database"`
}

// QueryResult is the outcome of a row-returning statement. Columns come from
// the executed result set, so computed and aliased columns are included.
type QueryResult struct {
	Columns []string
	Rows    [][]any
}

// Executor is the database capability the query pipeline consumes.
type Executor interface {
	IntrospectSchema(ctx context.Context) (string, error)
	ExecuteQuery(ctx context.Context, sql string) (*QueryResult, error)
	ExecuteStatement(ctx context.Context, sql string) (string, error)
	DBType() string
}

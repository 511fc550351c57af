package models

import (
	"time"

	"query-genie/pkg/sqlguard"
)

// PendingConfirmation is a dangerous statement held until the user confirms
// or cancels it.
type PendingConfirmation struct {
	SQL            string                  `json:"sql"`
	DangerKeywords []sqlguard.DangerKeyword `json:"danger_keywords"`
	Preview        sqlguard.TablePreview   `json:"preview"`
	CreatedAt      time.Time               `json:"created_at"`
}

func NewPendingConfirmation(stmt sqlguard.Statement) *PendingConfirmation {
	return &PendingConfirmation{
		SQL:            stmt.Text,
		DangerKeywords: stmt.DangerKeywords,
		Preview:        sqlguard.BuildPreview(stmt.Text),
		CreatedAt:      time.Now(),
	}
}

// Session is the per-caller state of the query pipeline.
type Session struct {
	ID         string               `json:"id"`
	Connection *Connection          `json:"connection,omitempty"`
	Pending    *PendingConfirmation `json:"pending,omitempty"`
	Base
}

func NewSession(id string) *Session {
	return &Session{
		ID:   id,
		Base: NewBase(),
	}
}

package dtos

import "query-genie/pkg/envelope"

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AskRequest struct {
	Question    string        `json:"question" binding:"required"`
	ChatHistory []ChatMessage `json:"chat_history"`
}

// StatementInfo describes the generated statement alongside the framed response.
type StatementInfo struct {
	SQL            string   `json:"sql"`
	Kind           string   `json:"kind"`
	DangerKeywords []string `json:"danger_keywords"`
	Warning        []string `json:"warning,omitempty"`
	StatementType  string   `json:"statement_type,omitempty"`
	Tables         []string `json:"tables,omitempty"`
}

type AskResponse struct {
	Success   bool           `json:"success"`
	Response  string         `json:"response"`
	Statement *StatementInfo `json:"statement,omitempty"`
	// Envelope is the structured form of the output embedded in Response.
	Envelope envelope.Envelope `json:"-"`
}

type ConfirmRequest struct {
	Confirm *bool  `json:"confirm" binding:"required"`
	SQL     string `json:"sql"`
}

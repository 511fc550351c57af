package models

// Connection describes the database target of a session.
type Connection struct {
	Type     string  `json:"type"`
	Host     string  `json:"host"`
	Port     string  `json:"port"`
	Username *string `json:"username"`
	Password *string `json:"-"` // Hide in JSON
	Database string  `json:"database"`
}

package services

import "errors"

var (
	ErrNotConnected       = errors.New("database not connected")
	ErrNoPendingStatement = errors.New("no statement is awaiting confirmation")
	ErrSessionNotFound    = errors.New("session not found")
)

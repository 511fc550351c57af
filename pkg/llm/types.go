package llm

import (
	"context"
	"strings"
	"time"
)

// Client is a prompt-in, text-out completion capability.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GetModelInfo() ModelInfo
}

// ModelInfo contains information about the LLM model
type ModelInfo struct {
	Name      string
	Provider  string
	MaxTokens int
}

// Config holds configuration for LLM clients
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the client-supplied conversation context.
type ChatMessage struct {
	Role    Role
	Content string
}

// ParseRole maps client role names onto the two roles the prompt knows.
// Unknown roles report false and should be dropped.
func ParseRole(role string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "human", "user":
		return RoleHuman, true
	case "ai", "assistant":
		return RoleAssistant, true
	default:
		return "", false
	}
}

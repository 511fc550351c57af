// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"query-genie/pkg/llm"
)

var _ llm.Client = (*MockClient)(nil)

// MockClient is a configurable llm.Client. Set CompleteFunc to control
// the answer; Prompts records every prompt received.
type MockClient struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
	Model        string
	Provider     string

	mu      sync.Mutex
	Prompts []string
}

// NewMockClient answers every prompt with response.
func NewMockClient(response string) *MockClient {
	return &MockClient{
		CompleteFunc: func(context.Context, string) (string, error) { return response, nil },
		Model:        "mock-model",
		Provider:     "mock",
	}
}

func (m *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "", nil
}

// Calls returns how many completions were requested.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

func (m *MockClient) GetModelInfo() llm.ModelInfo {
	return llm.ModelInfo{Name: m.Model, Provider: m.Provider}
}

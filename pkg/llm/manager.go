package llm

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"query-genie/internal/constants"
)

type Manager struct {
	clients map[string]Client
	mu      sync.RWMutex
	logger  *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		clients: make(map[string]Client),
		logger:  logger.Named("llm"),
	}
}

func (m *Manager) RegisterClient(name string, config Config) error {
	var client Client
	var err error

	switch config.Provider {
	case constants.Groq, constants.OpenAI:
		client, err = NewOpenAIClient(config, m.logger)
	case constants.Gemini:
		client, err = NewGeminiClient(config, m.logger)
	case constants.Anthropic:
		client, err = NewAnthropicClient(config, m.logger)
	default:
		return fmt.Errorf("unsupported LLM provider: %s", config.Provider)
	}

	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	m.SetClient(name, client)
	return nil
}

// SetClient registers an already built client under name.
func (m *Manager) SetClient(name string, client Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[name] = client
}

func (m *Manager) GetClient(name string) (Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	client, exists := m.clients[name]
	if !exists {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}

	return client, nil
}

func (m *Manager) RemoveClient(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, name)
}

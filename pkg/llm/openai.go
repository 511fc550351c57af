package llm

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"query-genie/internal/constants"
)

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint.
// Groq is served by this client with its own base URL.
type OpenAIClient struct {
	client      *openai.Client
	provider    string
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

func NewOpenAIClient(config Config, logger *zap.Logger) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", config.Provider)
	}

	provider := config.Provider
	if provider == "" {
		provider = constants.OpenAI
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	baseURL := config.BaseURL
	if baseURL == "" && provider == constants.Groq {
		baseURL = constants.GroqBaseURL
	}
	if baseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	model := config.Model
	if model == "" {
		model = constants.GetDefaultModel(provider)
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		provider:    provider,
		model:       model,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		timeout:     config.Timeout,
		logger:      logger.Named(provider),
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// go-openai drops a zero temperature from the payload, which makes the
	// server fall back to its own default.
	temperature := c.temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		c.logger.Error("OpenAIClient -> Complete -> completion failed",
			zap.String("model", c.model),
			zap.Error(err))
		return "", fmt.Errorf("%s API error: %w", c.provider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s: %w", c.provider, ErrEmptyCompletion)
	}

	c.logger.Debug("OpenAIClient -> Complete -> completion received",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:      c.model,
		Provider:  c.provider,
		MaxTokens: c.maxTokens,
	}
}

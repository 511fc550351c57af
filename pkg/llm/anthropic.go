package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"query-genie/internal/constants"
)

type AnthropicClient struct {
	client      *anthropic.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

func NewAnthropicClient(config Config, logger *zap.Logger) (*AnthropicClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	var opts []anthropic.ClientOption
	if config.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(config.BaseURL))
	}

	model := config.Model
	if model == "" {
		model = constants.ClaudeModel
	}
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = constants.LLMMaxTokens
	}

	return &AnthropicClient{
		client:      anthropic.NewClient(config.APIKey, opts...),
		model:       model,
		maxTokens:   maxTokens,
		temperature: config.Temperature,
		timeout:     config.Timeout,
		logger:      logger.Named(constants.Anthropic),
	}, nil
}

func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	temperature := c.temperature
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		c.logger.Error("AnthropicClient -> Complete -> completion failed",
			zap.String("model", c.model),
			zap.Error(err))
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			text.WriteString(*block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("no response from anthropic: %w", ErrEmptyCompletion)
	}
	return text.String(), nil
}

func (c *AnthropicClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:      c.model,
		Provider:  constants.Anthropic,
		MaxTokens: c.maxTokens,
	}
}

package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"query-genie/internal/constants"
)

var (
	leadingFencePattern  = regexp.MustCompile("^```\\w*\\n?")
	trailingFencePattern = regexp.MustCompile("\\n?```$")
)

// GenerationRequest is everything the generator needs to write one statement.
type GenerationRequest struct {
	Question   string
	SchemaText string
	History    []ChatMessage
	DBType     string
}

// SQLGenerator turns a question into a single SQL statement.
type SQLGenerator struct {
	client Client
	logger *zap.Logger
}

func NewSQLGenerator(client Client, logger *zap.Logger) *SQLGenerator {
	return &SQLGenerator{
		client: client,
		logger: logger.Named("sql-generator"),
	}
}

// Generate calls the completion capability once. Every failure is returned as
// a *GenerationError. The statement is not validated here.
func (g *SQLGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	info := g.client.GetModelInfo()
	prompt := BuildPrompt(req.DBType, req.SchemaText, req.History, req.Question)

	start := time.Now()
	raw, err := g.client.Complete(ctx, prompt)
	if err != nil {
		return "", &GenerationError{Provider: info.Provider, Model: info.Name, Cause: err}
	}

	sql := StripCodeFences(raw)
	if sql == "" {
		return "", &GenerationError{Provider: info.Provider, Model: info.Name, Cause: ErrEmptyCompletion}
	}

	g.logger.Info("SQLGenerator -> Generate -> statement generated",
		zap.String("provider", info.Provider),
		zap.String("model", info.Name),
		zap.Int("history", len(req.History)),
		zap.Duration("elapsed", time.Since(start)))

	return sql, nil
}

// BuildPrompt fills the generation template for the given dialect.
func BuildPrompt(dbType, schemaText string, history []ChatMessage, question string) string {
	dialect := constants.GetDialectName(dbType)
	rules := constants.GenericGroupByRules
	if dbType == "" || dbType == constants.DatabaseTypeMySQL {
		rules = constants.MySQLGroupByRules
	}
	return fmt.Sprintf(constants.SQLGenerationPrompt, dialect, dialect, rules, schemaText, FormatHistory(history), question)
}

// FormatHistory keeps the most recent messages and renders them as
// "Human: ..." / "AI: ..." lines.
func FormatHistory(history []ChatMessage) string {
	if len(history) > constants.ChatHistoryLimit {
		history = history[len(history)-constants.ChatHistoryLimit:]
	}

	lines := make([]string, 0, len(history))
	for _, msg := range history {
		label := constants.AIRoleLabel
		if msg.Role == RoleHuman {
			label = constants.HumanRoleLabel
		}
		lines = append(lines, label+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// StripCodeFences removes a surrounding markdown code fence, with or without
// a language tag.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = leadingFencePattern.ReplaceAllString(trimmed, "")
	trimmed = trailingFencePattern.ReplaceAllString(trimmed, "")
	return strings.TrimSpace(trimmed)
}

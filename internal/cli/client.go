package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"query-genie/internal/apis/dtos"
	"query-genie/pkg/envelope"
)

// responsePattern splits the framed chat response into SQL and envelope JSON.
var responsePattern = regexp.MustCompile("(?s)^SQL: `(.*)`\nOutput: (.*)$")

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsNotConnected reports whether the server rejected the call because the
// session has no database.
func IsNotConnected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest && apiErr.Message == "Database not connected"
}

// AskResult is a decoded chat reply.
type AskResult struct {
	SQL       string
	Envelope  envelope.Envelope
	Statement *dtos.StatementInfo
}

// Client talks to the query-genie HTTP API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Connect(ctx context.Context, req dtos.ConnectRequest) (*dtos.ConnectResponse, error) {
	var out struct {
		Data dtos.ConnectResponse `json:"data"`
	}
	if err := c.post(ctx, "/api/connect", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) Disconnect(ctx context.Context) error {
	return c.post(ctx, "/api/disconnect", nil, nil)
}

func (c *Client) Ask(ctx context.Context, question string, history []dtos.ChatMessage) (*AskResult, error) {
	var out dtos.AskResponse
	if err := c.post(ctx, "/api/chat", dtos.AskRequest{Question: question, ChatHistory: history}, &out); err != nil {
		return nil, err
	}

	sql, env, err := ParseResponse(out.Response)
	if err != nil {
		return nil, err
	}
	return &AskResult{SQL: sql, Envelope: env, Statement: out.Statement}, nil
}

func (c *Client) Confirm(ctx context.Context, sql string, confirm bool) (envelope.Envelope, error) {
	var env envelope.Envelope
	err := c.post(ctx, "/api/confirm-sql", dtos.ConfirmRequest{Confirm: &confirm, SQL: sql}, &env)
	return env, err
}

// ParseResponse decodes the text form of a chat reply. Confirmation requests
// arrive as bare envelope JSON; everything else is framed with the SQL.
func ParseResponse(text string) (string, envelope.Envelope, error) {
	var env envelope.Envelope

	if m := responsePattern.FindStringSubmatch(text); m != nil {
		if err := json.Unmarshal([]byte(m[2]), &env); err != nil {
			return "", env, fmt.Errorf("failed to decode response output: %w", err)
		}
		sql := m[1]
		if sql == "N/A" {
			sql = ""
		}
		return sql, env, nil
	}

	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return "", env, fmt.Errorf("unrecognized response: %w", err)
	}
	if env.Confirmation != nil {
		return env.Confirmation.SQL, env, nil
	}
	return "", env, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure dtos.Response
		if jsonErr := json.Unmarshal(data, &failure); jsonErr == nil && failure.Error != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: *failure.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

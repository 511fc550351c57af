package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-genie/internal/apis/dtos"
	"query-genie/pkg/envelope"
)

func TestParseResponse(t *testing.T) {
	sql, env, err := ParseResponse("SQL: `SELECT name FROM users`\nOutput: {\"type\":\"select\",\"data\":[[\"ann\"]],\"columns\":[\"name\"],\"row_count\":1}")
	require.NoError(t, err)
	assert.Equal(t, "SELECT name FROM users", sql)
	require.NotNil(t, env.Select)
	assert.Equal(t, [][]string{{"ann"}}, env.Select.Rows)

	sql, env, err = ParseResponse("SQL: `N/A`\nOutput: {\"type\":\"error\",\"message\":\"rate limited\"}")
	require.NoError(t, err)
	assert.Empty(t, sql)
	assert.Equal(t, "rate limited", env.Error.Message)

	sql, env, err = ParseResponse(`{"type":"confirmation_required","sql":"DROP TABLE logs","table":{"columns":["Action","Table","Condition","Impact"],"data":[["UNKNOWN","-","-","Removes record(s) permanently"]]}}`)
	require.NoError(t, err)
	assert.Equal(t, "DROP TABLE logs", sql)
	assert.Equal(t, envelope.TypeConfirmationRequired, env.Type())

	_, _, err = ParseResponse("hello")
	assert.Error(t, err)
}

func TestClientRoundTrip(t *testing.T) {
	var gotAuth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/api/connect":
			var req dtos.ConnectRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "shop", req.Database)
			_ = json.NewEncoder(w).Encode(dtos.Response{Success: true, Data: dtos.ConnectResponse{Database: "shop", Type: "mysql", SessionToken: "tok"}})
		case "/api/chat":
			var req dtos.AskRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "count users", req.Question)
			assert.Len(t, req.ChatHistory, 1)
			_ = json.NewEncoder(w).Encode(dtos.AskResponse{
				Success:   true,
				Response:  "SQL: `SELECT COUNT(*) FROM users`\nOutput: {\"type\":\"select\",\"data\":[[\"3\"]],\"columns\":[\"COUNT(*)\"],\"row_count\":1}",
				Statement: &dtos.StatementInfo{SQL: "SELECT COUNT(*) FROM users", Kind: "select"},
			})
		case "/api/confirm-sql":
			var req dtos.ConfirmRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if assert.NotNil(t, req.Confirm) {
				assert.False(t, *req.Confirm)
			}
			_, _ = w.Write([]byte(`{"type":"status","message":"SQL execution cancelled by user","affected_rows":0}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	resp, err := NewClient(server.URL+"/", "", time.Second).Connect(ctx, dtos.ConnectRequest{Host: "h", Database: "shop"})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.SessionToken)

	client := NewClient(server.URL, resp.SessionToken, time.Second)
	result, err := client.Ask(ctx, "count users", []dtos.ChatMessage{{Role: "human", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM users", result.SQL)
	assert.Equal(t, 1, result.Envelope.Select.RowCount)
	assert.Equal(t, "select", result.Statement.Kind)

	env, err := client.Confirm(ctx, "DROP TABLE logs", false)
	require.NoError(t, err)
	assert.Equal(t, "SQL execution cancelled by user", env.Status.Message)

	assert.Equal(t, []string{"", "Bearer tok", "Bearer tok"}, gotAuth)
}

func TestClientNotConnected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		msg := "Database not connected"
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(dtos.Response{Success: false, Error: &msg})
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", time.Second).Ask(context.Background(), "q", nil)
	require.Error(t, err)
	assert.True(t, IsNotConnected(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

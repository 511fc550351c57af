// Package cli implements the querygenie command-line client for the HTTP API.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8000"

var (
	serverURL      string
	requestTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "querygenie",
	Short:         "Ask questions of your database in plain language",
	Long:          `querygenie sends natural-language questions to a query-genie server, which writes and runs the SQL against the connected database. Destructive statements always ask for confirmation first.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	server := os.Getenv("QUERYGENIE_SERVER")
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", server, "query-genie server URL (env QUERYGENIE_SERVER)")
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "timeout", 2*time.Minute, "request timeout")

	rootCmd.AddCommand(connectCmd, disconnectCmd, askCmd, confirmCmd)
}

// session bundles what every command needs to talk to the server.
type session struct {
	tokens  *TokenStore
	history *History
	client  *Client
}

func openSession() (*session, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	stateDir, err := StateDir()
	if err != nil {
		return nil, err
	}

	tokens, err := OpenTokenStore(configDir, os.Getenv("QUERYGENIE_KEYRING_PASSWORD"))
	if err != nil {
		return nil, fmt.Errorf("secure storage unavailable: %w", err)
	}

	token, err := tokens.Load()
	if err != nil && !errors.Is(err, ErrNoSession) {
		return nil, err
	}

	return &session{
		tokens:  tokens,
		history: NewHistory(stateDir),
		client:  NewClient(serverURL, token, requestTimeout),
	}, nil
}

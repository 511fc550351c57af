package cli

import (
	"errors"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"query-genie/internal/apis/dtos"
	"query-genie/pkg/envelope"
)

var (
	connectType     string
	connectHost     string
	connectPort     string
	connectUser     string
	connectPassword string
	connectDatabase string

	askYes bool

	confirmSQL    string
	confirmCancel bool
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect the session to a database",
	Long: `Connect points the session at a database. The server issues a session token,
which is stored in the OS keychain and sent with every later command.
Connecting again keeps the same session and replaces its database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}

		req := dtos.ConnectRequest{
			Type:     connectType,
			Host:     connectHost,
			Port:     connectPort,
			Database: connectDatabase,
		}
		if connectUser != "" {
			req.User = &connectUser
		}
		password := connectPassword
		if password == "" && connectUser != "" {
			password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
			if err != nil {
				return err
			}
		}
		if password != "" {
			req.Password = &password
		}

		spinner, _ := pterm.DefaultSpinner.Start("Connecting to " + connectDatabase)
		resp, err := s.client.Connect(cmd.Context(), req)
		if err != nil {
			if spinner != nil {
				spinner.Fail(err.Error())
			}
			return err
		}
		if spinner != nil {
			spinner.Success("Connected to " + resp.Database + " (" + resp.Type + ")")
		}

		if err := s.tokens.Save(resp.SessionToken); err != nil {
			return err
		}
		return s.history.Clear()
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect the session from its database",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		if err := s.client.Disconnect(cmd.Context()); err != nil {
			return err
		}
		if err := s.tokens.Clear(); err != nil {
			return err
		}
		if err := s.history.Clear(); err != nil {
			return err
		}
		pterm.Success.Println("Database disconnected successfully")
		return nil
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the connected database",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		question := strings.Join(args, " ")

		history, err := s.history.Load()
		if err != nil {
			return err
		}

		spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Thinking")
		result, err := s.client.Ask(cmd.Context(), question, history)
		if spinner != nil {
			_ = spinner.Stop()
		}
		if err != nil {
			if IsNotConnected(err) {
				pterm.Warning.Println("No database connected. Run: querygenie connect")
				return nil
			}
			return err
		}

		out, err := FormatAskResult(result)
		if err != nil {
			return err
		}
		pterm.Print(out)

		reply, _ := FormatEnvelope(result.Envelope)
		if err := s.history.Append(
			dtos.ChatMessage{Role: "human", Content: question},
			dtos.ChatMessage{Role: "ai", Content: historyReply(result, reply)},
		); err != nil {
			pterm.Warning.Println("Could not save chat history: " + err.Error())
		}

		if result.Envelope.Type() != envelope.TypeConfirmationRequired {
			return nil
		}

		confirmed := askYes
		if !confirmed {
			confirmed, err = pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show("Run this statement?")
			if err != nil {
				return err
			}
		}
		env, err := s.client.Confirm(cmd.Context(), result.Envelope.Confirmation.SQL, confirmed)
		if err != nil {
			return err
		}
		out, err = FormatEnvelope(env)
		if err != nil {
			return err
		}
		pterm.Print(out)
		return nil
	},
}

var confirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Run or cancel the statement awaiting confirmation",
	Long: `Confirm resolves the session's pending statement. Without --sql the server
runs the statement it is holding; --cancel discards it without touching the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		env, err := s.client.Confirm(cmd.Context(), confirmSQL, !confirmCancel)
		if err != nil {
			if IsNotConnected(err) {
				pterm.Warning.Println("No database connected. Run: querygenie connect")
				return nil
			}
			return err
		}
		out, err := FormatEnvelope(env)
		if err != nil {
			return err
		}
		pterm.Print(out)
		if env.Type() == envelope.TypeError {
			return errors.New("statement failed")
		}
		return nil
	},
}

// historyReply is what the AI side of the exchange looks like to the model on
// the next turn: the statement it wrote and a plain-text outcome.
func historyReply(result *AskResult, rendered string) string {
	if result.SQL == "" {
		return pterm.RemoveColorFromString(rendered)
	}
	return result.SQL
}

func init() {
	connectCmd.Flags().StringVar(&connectType, "type", "", "database type: mysql, postgresql, yugabytedb, clickhouse (server default when empty)")
	connectCmd.Flags().StringVar(&connectHost, "host", "localhost", "database host")
	connectCmd.Flags().StringVar(&connectPort, "port", "", "database port (type default when empty)")
	connectCmd.Flags().StringVarP(&connectUser, "user", "u", "", "database user")
	connectCmd.Flags().StringVarP(&connectPassword, "password", "p", "", "database password (prompted when a user is set and this is empty)")
	connectCmd.Flags().StringVarP(&connectDatabase, "database", "d", "", "database name")
	_ = connectCmd.MarkFlagRequired("database")

	askCmd.Flags().BoolVarP(&askYes, "yes", "y", false, "run destructive statements without prompting")

	confirmCmd.Flags().StringVar(&confirmSQL, "sql", "", "statement to run (defaults to the pending one)")
	confirmCmd.Flags().BoolVar(&confirmCancel, "cancel", false, "discard the pending statement")
}

package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/petstore-client/internal/auth"
	"github.com/fivetwenty-io/petstore-client/internal/constants"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		username string
		password string
		noSave   bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the pet store",
		Long: `Log a user in and store the returned session in the configuration file.

The session is sent as the JSESSIONID cookie on later requests.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error

			reader := bufio.NewReader(cmd.InOrStdin())

			if username == "" {
				username, err = promptLine(cmd, reader, "Username: ")
				if err != nil {
					return err
				}
			}

			if username == "" {
				return petstore.ErrUsernameRequired
			}

			if password == "" {
				password, err = promptPassword(cmd, reader)
				if err != nil {
					return err
				}
			}

			if password == "" {
				return constants.ErrPasswordRequired
			}

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				login, err := session.Client.Users().Login(ctx, username, password)
				if err != nil {
					return fmt.Errorf("failed to log in: %w", err)
				}

				printf(cmd, "Logged in as %s\n", username)

				if login.ExpiresAfter != nil {
					printf(cmd, "Session expires %s\n", login.ExpiresAfter.Local().Format(timeLayout))
				}

				if noSave {
					return nil
				}

				sessionID, err := auth.SessionFromLogin(login.Message)
				if err != nil {
					return err
				}

				store := auth.NewPersistingStore(auth.Credentials{}, NewConfigPersister(), session.BaseURL)

				err = store.SetSessionID(sessionID)
				if err != nil {
					return fmt.Errorf("failed to save session: %w", err)
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the session")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the pet store",
		Long:  "End the current session and remove it from the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, session *Session) error {
				_, err := session.Client.Users().Logout(ctx)
				if err != nil {
					return fmt.Errorf("failed to log out: %w", err)
				}

				err = NewConfigPersister().UpdateSession("", "")
				if err != nil {
					return fmt.Errorf("failed to clear session: %w", err)
				}

				printf(cmd, "Logged out\n")

				return nil
			})
		},
	}
}

func promptLine(cmd *cobra.Command, reader *bufio.Reader, prompt string) (string, error) {
	_, _ = fmt.Fprint(cmd.OutOrStdout(), prompt)

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo when stdin is a terminal.
func promptPassword(cmd *cobra.Command, reader *bufio.Reader) (string, error) {
	if cmd.InOrStdin() != os.Stdin || !term.IsTerminal(int(syscall.Stdin)) {
		return promptLine(cmd, reader, "Password: ")
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), "Password: ")

	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	return string(bytePassword), nil
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

const settingsRoute = "/admin/settings"

func (c *cli) loginCmd() *cobra.Command {
	var creds model.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session for later commands",
		Long: `Log in with an email and password. The issued token is stored in the local
state database and attached to every following request until logout.

When --password is omitted it is prompted for without echo, or read as one
line when standard input is not a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if creds.Email == "" {
				return errors.New("--email is required")
			}
			if creds.Password == "" {
				password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				creds.Password = password
			}

			if err := c.app.Session.Login(cmd.Context(), creds); err != nil {
				return err
			}
			return c.emit(cmd, map[string]any{"authenticated": true, "email": creds.Email}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Logged in as %s.\n", creds.Email)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&creds.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Account password (read from stdin when omitted)")
	return cmd
}

// readPassword prompts on prompt and reads a password from in. A terminal is
// switched to no-echo mode; any other reader is read up to the first newline.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Password: ")

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			return c.emit(cmd, map[string]any{"authenticated": false}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "Logged out.")
				return err
			})
		},
	}
}

func (c *cli) passwdCmd() *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of the logged-in account",
		Long: `Change the password of the logged-in account.

The new password needs at least 6 characters with a lowercase letter, an
uppercase letter and a digit. It is checked before anything is sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.guard(settingsRoute); err != nil {
				return err
			}
			if current == "" || next == "" {
				return errors.New("--current and --new are required")
			}
			if err := c.app.Session.ChangePassword(cmd.Context(), current, next); err != nil {
				return err
			}
			return c.emit(cmd, map[string]any{"changed": true}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "Password changed.")
				return err
			})
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Current password")
	cmd.Flags().StringVar(&next, "new", "", "New password")
	return cmd
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show whether a session is active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := c.app.Session.State()
			return c.emit(cmd, map[string]any{"state": state.String(), "authenticated": c.app.Session.IsAuthenticated()}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, state.String())
				return err
			})
		},
	}
}

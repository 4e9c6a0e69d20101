package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func promptPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	defer fmt.Fprintln(cmd.OutOrStdout())

	if term.IsTerminal(int(os.Stdin.Fd())) {
		pw, err := readPassword()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}

	// Piped input (tests, scripts) falls back to a plain line read.
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCommand(opts *rootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session locally",
		RunE: withApp(opts, func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			password, err := promptPassword(cmd, "Password: ")
			if err != nil {
				return err
			}

			user, err := app.Auth.Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Name)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCommand(opts *rootOptions) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: withApp(opts, func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			password, err := promptPassword(cmd, "Password: ")
			if err != nil {
				return err
			}

			if err := app.Auth.Register(ctx, name, email, password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created. Run 'storypin login' to sign in.")
			return nil
		}),
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Destroy the stored session",
		RunE: withApp(opts, func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			if err := app.Auth.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		}),
	}
}

func newWhoamiCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: withApp(opts, func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			user, err := app.Auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Name, user.Email)
			if app.Auth.SessionExpired(ctx) {
				fmt.Fprintln(cmd.OutOrStdout(), "Session has expired; log in again.")
			}
			return nil
		}),
	}
}

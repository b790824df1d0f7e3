// Package auth holds the account and session commands.
package auth

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskbrief/adapter/cli"
)

var (
	email        string
	password     string
	confirmation string
	resetToken   string
)

// Cmd is the auth command group
var Cmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign up, sign in and manage your session",
}

func requireApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.AuthService == nil || app.Session == nil {
		return nil, cli.ErrNotInitialized
	}
	return app, nil
}

var signUpCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	Example: `  taskbrief auth signup --email ada@example.com --password s3cret --confirm s3cret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		session, err := app.AuthService.SignUp(cmd.Context(), email, password, confirmation)
		if err != nil {
			return err
		}
		if err := app.Session.Save(session.Token); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed up and signed in as %s\n", session.Email)
		return nil
	},
}

var signInCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		session, err := app.AuthService.SignIn(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		if err := app.Session.Save(session.Token); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", session.Email)
		fmt.Fprintf(cmd.OutOrStdout(), "  expires: %s\n", session.ExpiresAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

var signOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		token, err := app.Session.Load()
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		if err := app.AuthService.SignOut(cmd.Context(), token); err != nil {
			return err
		}
		if err := app.Session.Clear(); err != nil {
			return fmt.Errorf("failed to remove session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoAmICmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account id",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		owner, err := app.CurrentOwner(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), owner.String())
		return nil
	},
}

var resetRequestCmd = &cobra.Command{
	Use:   "reset-request",
	Short: "Send a password reset token to an email address",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		if err := app.AuthService.RequestPasswordReset(cmd.Context(), email); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "If the address is registered, a reset token is on its way.")
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Set a new password with a reset token",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		if resetToken == "" {
			return errors.New("missing --token")
		}
		if err := app.AuthService.ResetPassword(cmd.Context(), resetToken, password, confirmation); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Password updated. Sign in with the new password.")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{signUpCmd, signInCmd, resetRequestCmd} {
		c.Flags().StringVar(&email, "email", "", "account email")
		_ = c.MarkFlagRequired("email")
	}
	for _, c := range []*cobra.Command{signUpCmd, signInCmd, resetCmd} {
		c.Flags().StringVar(&password, "password", "", "password")
		_ = c.MarkFlagRequired("password")
	}
	for _, c := range []*cobra.Command{signUpCmd, resetCmd} {
		c.Flags().StringVar(&confirmation, "confirm", "", "repeat the password")
		_ = c.MarkFlagRequired("confirm")
	}
	resetCmd.Flags().StringVar(&resetToken, "token", "", "reset token from the email")

	Cmd.AddCommand(signUpCmd)
	Cmd.AddCommand(signInCmd)
	Cmd.AddCommand(signOutCmd)
	Cmd.AddCommand(whoAmICmd)
	Cmd.AddCommand(resetRequestCmd)
	Cmd.AddCommand(resetCmd)
}

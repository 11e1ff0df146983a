package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/boxoffice-dev/boxoffice/internal/session"
)

// NewLoginCmd creates the login command
func NewLoginCmd(g *GlobalOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Box Office",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := LoadEnv(g, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer env.Close()

			return runLogin(cmd.Context(), env, terminalPrompter{}, username, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username or email (or set BOXOFFICE_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set BOXOFFICE_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, env *Env, prompter Prompter, username, password string) error {
	// Environment variables are useful for CI
	if username == "" {
		username = os.Getenv("BOXOFFICE_USERNAME")
	}
	if password == "" {
		password = os.Getenv("BOXOFFICE_PASSWORD")
	}

	var err error
	if username == "" {
		if username, err = prompter.Username(); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = prompter.Password(); err != nil {
			return err
		}
	}

	fmt.Fprintf(env.Out, "Logging in to the %s...\n", env.Variant.Name)

	result := env.Manager.Login(ctx, username, password)
	if !result.Success {
		return errors.New(result.Message)
	}

	fmt.Fprintln(env.Out, "✓ Login successful!")
	if result.Profile.Email != "" {
		fmt.Fprintf(env.Out, "  User: %s (%s)\n", result.Profile.Name(), result.Profile.Email)
	} else {
		fmt.Fprintf(env.Out, "  User: %s\n", result.Profile.Name())
	}
	if result.Profile.HasRole(session.AdminRole) {
		fmt.Fprintln(env.Out, "  Role: Admin")
	}

	return nil
}

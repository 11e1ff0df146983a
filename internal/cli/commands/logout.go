package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(g *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := LoadEnv(g, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer env.Close()

			return runLogout(cmd.Context(), env)
		},
	}
}

func runLogout(ctx context.Context, env *Env) error {
	if _, ok := env.Manager.GetSession(); !ok {
		fmt.Fprintln(env.Out, "Not logged in.")
		return nil
	}

	env.Manager.Logout(ctx)
	fmt.Fprintln(env.Out, "✓ Logged out")
	return nil
}

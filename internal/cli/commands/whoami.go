package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(g *GlobalOptions) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := LoadEnv(g, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer env.Close()

			return runWhoami(cmd.Context(), env, offline)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Only read the saved session, do not ask the server")

	return cmd
}

// runWhoami prints the saved profile. Unless offline, the server is asked
// first so a revoked credential is noticed and cleared.
func runWhoami(ctx context.Context, env *Env, offline bool) error {
	sess, err := env.requireSession()
	if err != nil {
		return err
	}

	profile := sess.Profile
	if !offline {
		remote, err := env.API.Me(ctx)
		if err != nil {
			return err
		}
		profile = *remote
	}

	fmt.Fprintf(env.Out, "Username: %s\n", profile.Username)
	if profile.DisplayName != "" {
		fmt.Fprintf(env.Out, "Name:     %s\n", profile.DisplayName)
	}
	if profile.Email != "" {
		fmt.Fprintf(env.Out, "Email:    %s\n", profile.Email)
	}
	fmt.Fprintf(env.Out, "Roles:    %s\n", strings.Join(profile.Roles, ", "))
	return nil
}

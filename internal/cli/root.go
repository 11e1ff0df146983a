package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/boxoffice-dev/boxoffice/internal/cli/commands"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	g := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "boxoffice",
		Short: "Box Office - sign in to the storefront and admin console",
		Long: `Box Office CLI - manage your Box Office session from the terminal.

The CLI shares its saved session with the storefront and console servers, so
signing in here also signs in the browser when both use the same session store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&g.Console, "console", false, "Use the admin console session instead of the storefront")
	rootCmd.PersistentFlags().StringVar(&g.APIURL, "api-url", "", "Ticketing API URL (overrides BOXOFFICE_API_URL)")
	rootCmd.PersistentFlags().StringVar(&g.Store, "store", "", "Session store: file, keyring, sqlite or memory (overrides SESSION_STORE)")
	rootCmd.PersistentFlags().BoolVarP(&g.Verbose, "verbose", "v", false, "Log at the configured level instead of warnings only")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "boxoffice version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewLoginCmd(g))
	rootCmd.AddCommand(commands.NewLogoutCmd(g))
	rootCmd.AddCommand(commands.NewWhoamiCmd(g))
	rootCmd.AddCommand(commands.NewOrdersCmd(g))
	rootCmd.AddCommand(commands.NewOpenCmd(g))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

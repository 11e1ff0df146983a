package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/boxoffice-dev/boxoffice/internal/session"
)

// NewOpenCmd creates the open command
func NewOpenCmd(g *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open [path]",
		Short: "Open the storefront or console in a browser",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := LoadEnv(g, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer env.Close()

			path := env.Variant.HomePath
			if len(args) == 1 {
				path = args[0]
			}
			return runOpen(env, path, openBrowser)
		},
	}
}

func runOpen(env *Env, path string, open func(string) error) error {
	target := env.FrontendURL
	if _, err := env.requireSession(); err != nil {
		target += env.Variant.LoginPath
	} else {
		target += session.SafeRedirect(path, env.Variant.HomePath)
	}

	fmt.Fprintf(env.Out, "Opening %s\n", target)

	if err := open(target); err != nil {
		return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, target)
	}
	return nil
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

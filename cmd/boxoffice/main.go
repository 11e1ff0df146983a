package main

import (
	"os"

	"github.com/boxoffice-dev/boxoffice/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

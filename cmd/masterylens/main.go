// Package main provides the entry point for the masterylens CLI.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/masterylens/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", cli.ErrorCode(err), err)
		os.Exit(cli.GetExitCode(err))
	}
}

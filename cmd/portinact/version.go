package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set by ldflags during build
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func versionString() string {
	return fmt.Sprintf("portinact %s (built %s, commit %s, %s)", version, buildTime, gitCommit, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}

package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "taskdesk",
		Short:         "Task tracking backend management commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newSweepCmd())
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"mruput.io/infrastructure"
	"mruput.io/infrastructure/env"
	"mruput.io/infrastructure/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "attendancectl",
		Short:         "Operate the attendance verification engine",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env.LoadEnv()
			logger.InitializeLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	root.AddCommand(
		newServeCommand(),
		newReplayCommand(),
		newJournalCommand(),
		newPolicyCommand(),
	)
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the task queue worker",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			infrastructure.StartServer()
		},
	}
}

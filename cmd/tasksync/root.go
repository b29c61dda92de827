package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tasksync/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "tasksync",
		Short: "Tasksync is an offline-first task manager that reconciles with a remote backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newProjectCmd(cfg, &jsonOutput),
		newContextCmd(cfg, &jsonOutput),
		newTaskCmd(cfg, &jsonOutput),
		newLinkCmd(cfg, &jsonOutput),
		newUnlinkCmd(cfg, &jsonOutput),
		newTxCmd(cfg, &jsonOutput),
		newSyncCmd(cfg, &jsonOutput),
		newWatchCmd(cfg),
		newImportCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
	)

	return cmd
}

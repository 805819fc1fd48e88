package main

import (
	"github.com/spf13/cobra"

	"github.com/open-elt/open-elt/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "open-elt",
	Short:         "Open-ELT is the OAuth and telemetry control plane of the data-integration platform.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		recordExecutionContext(cmd)
		if !commandUsesStructuredLogging(cmd) {
			return nil
		}
		_, err := logging.BootstrapFromEnv(logging.BootstrapOptions{Command: cmd.CommandPath()})
		return err
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, consentURLCmd)
}

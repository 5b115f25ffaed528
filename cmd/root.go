package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "clinic-calendar-api",
	Short: "Calendar availability and booking service for clinic phone assistants",
	Long: `clinic-calendar-api connects a clinic's Google Calendar, offers open slots
and books appointments for the dashboard and for the voice assistant.`,
	SilenceUsage: true,
}

// Execute runs the CLI. With no subcommand it starts the HTTP server.
func Execute() {
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (yaml, json or toml); environment variables override it")
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newTokenCmd())
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command; subcommands attach themselves in init.
var rootCmd = &cobra.Command{
	Use:   "tareas",
	Short: "Personal task tracker web application",
}

// Execute runs the CLI. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

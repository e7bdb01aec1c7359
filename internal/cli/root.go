// Package cli defines the command-line entry points: the HTTP server and the
// superuser bootstrap.
package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fintrack-backend",
	Short: "Personal-finance tracker auth backend",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real deployments set env vars directly.
		_ = godotenv.Load()
	},
}

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(superuserCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

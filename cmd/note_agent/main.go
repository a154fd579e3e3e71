// Package main provides the note_agent CLI: it crawls keyword searches from
// an authenticated session, curates the results and works with the curated
// corpus.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	rootConfigPath string
	rootVerbose    bool
	rootLogJSON    bool
	rootNoWait     bool
)

var rootCmd = &cobra.Command{
	Use:   "note_agent",
	Short: "Note crawler and curator",
	Long: `note_agent logs into the note platform with exported browser cookies, collects
the notes found for a list of search keywords, and curates the collected corpus
by dropping small images and notes with too little text.

Configuration can be loaded from a JSON file using --config. Command-line flags
override config file values.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Log at debug level")
	rootCmd.PersistentFlags().BoolVar(&rootLogJSON, "log-json", false, "Write logs as JSON lines")
	rootCmd.PersistentFlags().BoolVar(&rootNoWait, "no-wait", false, "Exit immediately on fatal errors instead of waiting for Enter")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		reportFatal(os.Stderr, err)
		if !rootNoWait {
			waitForEnter(os.Stdin, os.Stderr)
		}
		os.Exit(1)
	}
}

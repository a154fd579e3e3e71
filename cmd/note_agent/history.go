package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/note-harvester/internal/config"
	"github.com/jonathan/note-harvester/internal/observability"
)

var historyCmd = &cobra.Command{
	Use:   "history <run-id>",
	Short: "Show a recorded crawl run and its notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var historyDBURL string

func init() {
	historyCmd.Flags().StringVar(&historyDBURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	runID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", args[0], err)
	}

	a, err := newApp(func(cfg *config.Config) {
		if changed(cmd, "db-url") {
			cfg.DatabaseURL = historyDBURL
		}
	})
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	store, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	if store == nil {
		return errors.New("DATABASE_URL environment variable or --db-url flag is required")
	}
	defer store.Close()

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	items, err := store.GetRunItems(ctx, runID)
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintRun(run, items)
	return nil
}

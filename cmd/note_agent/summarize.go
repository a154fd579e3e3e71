package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/note-harvester/internal/config"
	"github.com/jonathan/note-harvester/internal/observability"
	"github.com/jonathan/note-harvester/internal/summarize"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize the curated notes with Gemini",
	Long: `Sends the text of every curated note to Gemini and writes the summary to
--out. With --draft a post title and body based on the summary are printed too.`,
	RunE: runSummarize,
}

var (
	summarizeDir    string
	summarizeOut    string
	summarizeAPIKey string
	summarizeModel  string
	summarizeDraft  bool
)

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeDir, "dir", "d", "", "Curated corpus directory (default: processed_data)")
	summarizeCmd.Flags().StringVarP(&summarizeOut, "out", "o", "", "Summary output file (default: summary.md)")
	summarizeCmd.Flags().StringVar(&summarizeAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	summarizeCmd.Flags().StringVar(&summarizeModel, "model", "", "Gemini model to use for every request")
	summarizeCmd.Flags().BoolVar(&summarizeDraft, "draft", false, "Also draft a post from the summary")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, _ []string) error {
	a, err := newApp(func(cfg *config.Config) {
		if changed(cmd, "dir") {
			cfg.CuratedDir = summarizeDir
		}
		if changed(cmd, "out") {
			cfg.SummaryPath = summarizeOut
		}
		if changed(cmd, "api-key") {
			cfg.APIKey = summarizeAPIKey
		}
		if changed(cmd, "model") {
			cfg.Model = summarizeModel
		}
	})
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	client, err := a.newLLM(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	s := summarize.New(client, a.log, 0)
	res, err := s.Summarize(ctx, a.cfg.CuratedDir, a.cfg.SummaryPath)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintSummary(res.Notes, res.Model, res.OutputPath, res.Summary)

	if !summarizeDraft {
		return nil
	}
	draft, err := s.DraftPost(ctx, res.Summary)
	if err != nil {
		return fmt.Errorf("failed to draft post: %w", err)
	}
	printer.PrintBox("DRAFT: "+draft.Title, draft.Body)
	return nil
}

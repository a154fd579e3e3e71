package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/note-harvester/internal/config"
	"github.com/jonathan/note-harvester/internal/observability"
	"github.com/jonathan/note-harvester/internal/types"
)

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Copy the raw corpus and prune weak notes from the copy",
	Long: `Replaces --target with a copy of --source, deletes images smaller than
--min-width x --min-height or that cannot be decoded, then deletes every note
folder left without images or with less than --min-text characters of text.
The source corpus is never modified.`,
	RunE: runCurate,
}

// curateFlagSet holds the flags shared by curate and run.
type curateFlagSet struct {
	source    string
	target    string
	minWidth  int
	minHeight int
	minText   int
}

var curateFlags curateFlagSet

func (f *curateFlagSet) register(cmd *cobra.Command, withSource bool) {
	if withSource {
		cmd.Flags().StringVarP(&f.source, "source", "s", "", "Raw corpus directory (default: data)")
	}
	cmd.Flags().StringVarP(&f.target, "target", "t", "", "Curated corpus directory, replaced on every run (default: processed_data)")
	cmd.Flags().IntVar(&f.minWidth, "min-width", 0, "Minimum image width in pixels (default: 500)")
	cmd.Flags().IntVar(&f.minHeight, "min-height", 0, "Minimum image height in pixels (default: 500)")
	cmd.Flags().IntVar(&f.minText, "min-text", 0, "Minimum note text length in characters (default: 10)")
}

func (f *curateFlagSet) apply(cmd *cobra.Command, cfg *config.Config) {
	if changed(cmd, "source") {
		cfg.OutputDir = f.source
	}
	if changed(cmd, "target") {
		cfg.CuratedDir = f.target
	}
	if changed(cmd, "min-width") {
		cfg.MinImageWidth = f.minWidth
	}
	if changed(cmd, "min-height") {
		cfg.MinImageHeight = f.minHeight
	}
	if changed(cmd, "min-text") {
		cfg.MinTextLength = f.minText
	}
}

func init() {
	curateFlags.register(curateCmd, true)
	rootCmd.AddCommand(curateCmd)
}

func runCurate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(func(cfg *config.Config) { curateFlags.apply(cmd, cfg) })
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.curate()
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintCurationReport(report)
	return nil
}

func (a *app) curate() (*types.CurationReport, error) {
	return a.newCurator().Curate(a.cfg.OutputDir, a.cfg.CuratedDir)
}

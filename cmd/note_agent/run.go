package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/note-harvester/internal/config"
	"github.com/jonathan/note-harvester/internal/observability"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Crawl, then curate the result",
	Long: `Runs crawl and then curate on its output directory. Curation only starts
after the crawl finished and its manifest was written.`,
	RunE: runPipelineCmd,
}

func init() {
	crawlFlags.register(runCommand)
	curateFlags.register(runCommand, false)
	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(func(cfg *config.Config) {
		crawlFlags.apply(cmd, cfg)
		curateFlags.apply(cmd, cfg)
	})
	if err != nil {
		return err
	}
	defer a.close()

	printer := observability.NewPrinter(cmd.OutOrStdout())

	manifest, err := a.crawl(cmd.Context())
	printer.PrintManifest(manifest)
	if err != nil {
		return err
	}

	report, err := a.curate()
	if err != nil {
		return err
	}
	printer.PrintCurationReport(report)
	return nil
}

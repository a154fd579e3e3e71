package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jonathan/note-harvester/internal/config"
	"github.com/jonathan/note-harvester/internal/crawling"
	"github.com/jonathan/note-harvester/internal/db"
	"github.com/jonathan/note-harvester/internal/logging"
	"github.com/jonathan/note-harvester/internal/observability"
	"github.com/jonathan/note-harvester/internal/types"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Collect notes for a list of search keywords",
	Long: `Logs in with exported cookies, searches every keyword, opens up to
--max-items notes per keyword and saves their images and text into one folder
per note under --out. A manifest (notes_data.json) lists every saved note.`,
	RunE: runCrawl,
}

// crawlFlagSet holds the flags shared by crawl and run.
type crawlFlagSet struct {
	keywords     []string
	outputDir    string
	cookies      string
	maxItems     int
	scrollCycles int
	workers      int
	headless     bool
	dbURL        string
}

var crawlFlags crawlFlagSet

func (f *crawlFlagSet) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.keywords, "keyword", "k", nil, "Search keyword (repeatable or comma-separated)")
	cmd.Flags().StringVarP(&f.outputDir, "out", "o", "", "Raw corpus directory (default: data)")
	cmd.Flags().StringVar(&f.cookies, "cookies", "", "Exported cookie JSON file (default: cookies.json)")
	cmd.Flags().IntVar(&f.maxItems, "max-items", 0, "Maximum notes opened per keyword (default: 40)")
	cmd.Flags().IntVar(&f.scrollCycles, "scroll-cycles", 0, "Scroll cycles on each search page (default: 3)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Concurrent image downloads per note (default: 1)")
	cmd.Flags().BoolVar(&f.headless, "headless", true, "Run Chrome without a window")
	cmd.Flags().StringVar(&f.dbURL, "db-url", "", "PostgreSQL URL for run history (optional, defaults to DATABASE_URL env var)")
}

func (f *crawlFlagSet) apply(cmd *cobra.Command, cfg *config.Config) {
	if changed(cmd, "keyword") {
		cfg.Keywords = f.keywords
	}
	if changed(cmd, "out") {
		cfg.OutputDir = f.outputDir
	}
	if changed(cmd, "cookies") {
		cfg.CookiesPath = f.cookies
	}
	if changed(cmd, "max-items") {
		cfg.MaxItemsPerKeyword = f.maxItems
	}
	if changed(cmd, "scroll-cycles") {
		cfg.ScrollCycles = f.scrollCycles
	}
	if changed(cmd, "workers") {
		cfg.DownloadWorkers = f.workers
	}
	if changed(cmd, "headless") {
		headless := f.headless
		cfg.Headless = &headless
	}
	if changed(cmd, "db-url") {
		cfg.DatabaseURL = f.dbURL
	}
}

func init() {
	crawlFlags.register(crawlCmd)
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	a, err := newApp(func(cfg *config.Config) { crawlFlags.apply(cmd, cfg) })
	if err != nil {
		return err
	}
	defer a.close()

	manifest, err := a.crawl(cmd.Context())
	observability.NewPrinter(cmd.OutOrStdout()).PrintManifest(manifest)
	return err
}

// crawl runs one acquisition, recording it in the run store when configured.
func (a *app) crawl(ctx context.Context) (*types.Manifest, error) {
	if len(a.cfg.Keywords) == 0 {
		return nil, errors.New("at least one --keyword must be provided (via flag or config)")
	}

	var recorder *db.RunRecorder
	store, err := a.openStore(ctx)
	if err != nil {
		a.log.Warn("run store unavailable, continuing without history", logging.Err(err))
	}
	if store != nil {
		defer store.Close()
		runID, err := store.CreateRun(ctx, a.cfg.Keywords, a.cfg.OutputDir)
		if err != nil {
			a.log.Warn("failed to create run record", logging.Err(err))
		} else {
			recorder = db.NewRunRecorder(store, runID)
			a.log.Info("recording run", logging.String("run_id", runID.String()))
		}
	}

	chrome, err := a.startSession(ctx)
	if err != nil {
		a.finishRun(store, recorder, db.RunStatusFailed, 0)
		return nil, err
	}
	defer chrome.Close()

	// A nil *RunRecorder must not reach the crawler as a non-nil Recorder.
	var crawler *crawling.Crawler
	if recorder != nil {
		crawler = a.newCrawler(chrome, recorder)
	} else {
		crawler = a.newCrawler(chrome, nil)
	}

	a.log.Info("starting acquisition",
		logging.Strings("keywords", a.cfg.Keywords),
		logging.String("output_dir", a.cfg.OutputDir))
	manifest, err := crawler.Acquire(ctx, a.cfg.Keywords, a.cfg.OutputDir)

	status := db.RunStatusCompleted
	switch {
	case err != nil && crawling.IsInterrupted(err):
		status = db.RunStatusInterrupted
	case err != nil:
		status = db.RunStatusFailed
	}
	a.finishRun(store, recorder, status, manifest.Len())
	return manifest, err
}

// finishRun marks the recorded run complete. It uses a fresh context so an
// interrupted run is still closed out.
func (a *app) finishRun(store *db.DB, recorder *db.RunRecorder, status string, items int) {
	if store == nil || recorder == nil {
		return
	}
	if err := store.CompleteRun(context.Background(), recorder.RunID(), status, items); err != nil {
		a.log.Warn("failed to complete run record", logging.Err(err))
	}
}

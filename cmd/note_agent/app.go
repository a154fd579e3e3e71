package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/note-harvester/internal/assets"
	"github.com/jonathan/note-harvester/internal/browser"
	"github.com/jonathan/note-harvester/internal/config"
	"github.com/jonathan/note-harvester/internal/crawling"
	"github.com/jonathan/note-harvester/internal/curation"
	"github.com/jonathan/note-harvester/internal/db"
	"github.com/jonathan/note-harvester/internal/fetch"
	"github.com/jonathan/note-harvester/internal/llm"
	"github.com/jonathan/note-harvester/internal/logging"
	"github.com/jonathan/note-harvester/internal/session"
)

// app carries the resolved configuration and logger of one command.
type app struct {
	cfg config.Config
	log logging.Logger
}

// newApp loads the config file, applies flag overrides, fills defaults and
// the environment, validates and builds the logger.
func newApp(override func(cfg *config.Config)) (*app, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if rootConfigPath != "" {
		loadedCfg, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	if override != nil {
		override(&cfg)
	}
	if rootVerbose {
		cfg.LogLevel = "debug"
	}

	// Step 3: Apply defaults and environment for unset values
	cfg = cfg.MergeWithDefaults(config.Defaults())
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Config{Level: cfg.LogLevel, JSON: rootLogJSON})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if rootConfigPath != "" {
		log.Debug("loaded config", logging.String("path", rootConfigPath))
	}
	return &app{cfg: cfg, log: log}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

// startSession launches Chrome and logs in with the configured cookies.
// The returned browser must be closed by the caller.
func (a *app) startSession(ctx context.Context) (*browser.Chrome, error) {
	opts := browser.DefaultChromeOptions()
	opts.Headless = a.cfg.IsHeadless()
	opts.UserAgent = fetch.DefaultUserAgent

	chrome, err := browser.NewChrome(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	mgr := session.NewManager(session.Options{
		BaseURL:   a.cfg.BaseURL,
		VerifyURL: a.cfg.VerifyURL,
		Settle:    session.DefaultOptions().Settle,
	}, a.log)
	if err := mgr.Establish(ctx, chrome, a.cfg.CookiesPath); err != nil {
		chrome.Close()
		return nil, err
	}
	return chrome, nil
}

// openStore connects to the run store when a database URL is configured.
// It returns nil without error when none is set.
func (a *app) openStore(ctx context.Context) (*db.DB, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, nil
	}
	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func (a *app) crawlerOptions() crawling.Options {
	opts := crawling.DefaultOptions()
	opts.SearchURLTemplate = a.cfg.SearchURL
	opts.ScrollCycles = a.cfg.ScrollCycles
	opts.ScrollWait = a.cfg.ScrollWait()
	opts.MaxItemsPerKeyword = a.cfg.MaxItemsPerKeyword
	opts.ElementTimeout = a.cfg.ElementTimeout()
	opts.DownloadWorkers = a.cfg.DownloadWorkers
	return opts
}

func (a *app) newCrawler(d browser.Driver, recorder crawling.Recorder) *crawling.Crawler {
	return crawling.New(d, fetch.NewDownloader(nil), assets.New(), a.log, a.crawlerOptions(), recorder)
}

func (a *app) newCurator() *curation.Curator {
	return curation.New(curation.Options{
		MinWidth:      a.cfg.MinImageWidth,
		MinHeight:     a.cfg.MinImageHeight,
		MinTextLength: a.cfg.MinTextLength,
	}, a.log)
}

func (a *app) newLLM(ctx context.Context) (*llm.GeminiClient, error) {
	if a.cfg.APIKey == "" {
		return nil, fmt.Errorf("%s environment variable or --api-key flag is required", config.EnvAPIKey)
	}
	llmCfg := llm.DefaultConfig()
	if a.cfg.Model != "" {
		llmCfg = llmCfg.WithModel(a.cfg.Model)
	}
	return llm.NewGeminiClient(ctx, llmCfg, a.cfg.APIKey, a.log)
}

// changed reports whether a flag was set explicitly on cmd.
func changed(cmd *cobra.Command, name string) bool {
	return cmd.Flags().Changed(name)
}

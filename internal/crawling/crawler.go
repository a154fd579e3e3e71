package crawling

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/note-harvester/internal/assets"
	"github.com/jonathan/note-harvester/internal/browser"
	"github.com/jonathan/note-harvester/internal/logging"
	"github.com/jonathan/note-harvester/internal/types"
)

// DefaultSearchURLTemplate takes the URL-escaped keyword.
const DefaultSearchURLTemplate = "https://www.xiaohongshu.com/search_result?keyword=%s"

// Default traversal limits.
const (
	DefaultScrollCycles       = 3
	DefaultScrollWait         = 3 * time.Second
	DefaultMaxItemsPerKeyword = 40
	DefaultElementTimeout     = 10 * time.Second
	DefaultPageSettle         = 5 * time.Second
	DefaultDownloadWorkers    = 1
	DefaultDownloadDelay      = 500 * time.Millisecond
)

// staleScrollLimit is how many scrolls without height growth end a search.
const staleScrollLimit = 2

// Selectors locate the parts of the search and note pages.
type Selectors struct {
	NoteLink string
	Title    string
	Text     string
	Image    string
}

// DefaultSelectors returns the selectors for the current site markup.
func DefaultSelectors() Selectors {
	return Selectors{
		NoteLink: "section.note-item a[href]",
		Title:    "div#detail-title",
		Text:     "span.note-text",
		Image:    "div.swiper-slide img",
	}
}

// Options configures a Crawler.
type Options struct {
	SearchURLTemplate  string
	ScrollCycles       int
	ScrollWait         time.Duration
	MaxItemsPerKeyword int
	ElementTimeout     time.Duration
	// PageSettle is waited after each search or note navigation.
	PageSettle time.Duration
	// DownloadWorkers bounds concurrent image downloads for one note.
	DownloadWorkers int
	// DownloadDelay is waited after every image download.
	DownloadDelay time.Duration
	Selectors     Selectors
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		SearchURLTemplate:  DefaultSearchURLTemplate,
		ScrollCycles:       DefaultScrollCycles,
		ScrollWait:         DefaultScrollWait,
		MaxItemsPerKeyword: DefaultMaxItemsPerKeyword,
		ElementTimeout:     DefaultElementTimeout,
		PageSettle:         DefaultPageSettle,
		DownloadWorkers:    DefaultDownloadWorkers,
		DownloadDelay:      DefaultDownloadDelay,
		Selectors:          DefaultSelectors(),
	}
}

// Fetcher streams a remote asset into w.
type Fetcher interface {
	Download(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

// Recorder receives every record appended to the manifest.
type Recorder interface {
	RecordItem(ctx context.Context, keyword string, rec types.ItemRecord) error
}

// Crawler walks keyword searches and persists each note it opens.
type Crawler struct {
	driver   browser.Driver
	fetcher  Fetcher
	store    *assets.Store
	log      logging.Logger
	opts     Options
	recorder Recorder

	dedup  *Deduper
	nextID int
}

// New creates a Crawler. Zero-valued options fall back to their defaults.
// recorder may be nil.
func New(driver browser.Driver, fetcher Fetcher, store *assets.Store, log logging.Logger, opts Options, recorder Recorder) *Crawler {
	if log == nil {
		log = logging.NewNop()
	}
	if store == nil {
		store = assets.New()
	}
	return &Crawler{
		driver:   driver,
		fetcher:  fetcher,
		store:    store,
		log:      log,
		opts:     withDefaults(opts),
		recorder: recorder,
		dedup:    NewDeduper(),
	}
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.SearchURLTemplate == "" {
		opts.SearchURLTemplate = def.SearchURLTemplate
	}
	if opts.ScrollCycles <= 0 {
		opts.ScrollCycles = def.ScrollCycles
	}
	if opts.MaxItemsPerKeyword <= 0 {
		opts.MaxItemsPerKeyword = def.MaxItemsPerKeyword
	}
	if opts.ElementTimeout <= 0 {
		opts.ElementTimeout = def.ElementTimeout
	}
	if opts.DownloadWorkers <= 0 {
		opts.DownloadWorkers = def.DownloadWorkers
	}
	if opts.Selectors.NoteLink == "" {
		opts.Selectors.NoteLink = def.Selectors.NoteLink
	}
	if opts.Selectors.Title == "" {
		opts.Selectors.Title = def.Selectors.Title
	}
	if opts.Selectors.Text == "" {
		opts.Selectors.Text = def.Selectors.Text
	}
	if opts.Selectors.Image == "" {
		opts.Selectors.Image = def.Selectors.Image
	}
	return opts
}

// SearchURL returns the search page URL for keyword.
func (c *Crawler) SearchURL(keyword string) string {
	return fmt.Sprintf(c.opts.SearchURLTemplate, url.QueryEscape(keyword))
}

// Acquire crawls every keyword in order and writes the manifest to
// outputDir. Per-item and per-keyword failures are logged and skipped; only
// manifest persistence failures and cancellation are returned. On
// cancellation the records gathered so far are still written.
func (c *Crawler) Acquire(ctx context.Context, keywords []string, outputDir string) (*types.Manifest, error) {
	manifest := &types.Manifest{Items: []types.ItemRecord{}}

	if err := c.store.EnsureDir(outputDir); err != nil {
		return manifest, &CrawlError{Message: "failed to create output directory", Cause: err}
	}

	var (
		runErr  error
		pending string
	)
	for _, keyword := range keywords {
		if err := ctx.Err(); err != nil {
			runErr, pending = err, keyword
			break
		}
		records := c.crawlKeyword(ctx, keyword, outputDir)
		manifest.Items = append(manifest.Items, records...)
	}
	if runErr == nil {
		runErr = ctx.Err()
	}

	manifestPath := filepath.Join(outputDir, ManifestFileName)
	if err := WriteManifest(manifest, manifestPath); err != nil {
		return manifest, err
	}
	c.log.Info("manifest written",
		logging.String("path", manifestPath),
		logging.Int("items", manifest.Len()))

	if runErr != nil {
		return manifest, &CrawlError{Keyword: pending, Message: "acquisition interrupted", Cause: runErr}
	}
	return manifest, nil
}

func (c *Crawler) crawlKeyword(ctx context.Context, keyword, outputDir string) []types.ItemRecord {
	log := c.log.With(logging.String("keyword", keyword))
	searchURL := c.SearchURL(keyword)

	links, err := c.harvestLinks(ctx, searchURL)
	if err != nil {
		log.Warn("search failed, skipping keyword", logging.String("url", searchURL), logging.Err(err))
		return nil
	}
	if len(links) > c.opts.MaxItemsPerKeyword {
		links = links[:c.opts.MaxItemsPerKeyword]
	}
	log.Info("harvested note links", logging.Int("count", len(links)))

	records := make([]types.ItemRecord, 0, len(links))
	for i, link := range links {
		if ctx.Err() != nil {
			break
		}
		log.Debug("processing note",
			logging.Int("index", i+1),
			logging.Int("total", len(links)),
			logging.String("url", link))

		rec, err := c.processItem(ctx, keyword, link, outputDir)
		if err != nil {
			log.Warn("note extraction failed", logging.String("url", link), logging.Err(err))
		}
		if rec == nil || !rec.HasContent() {
			continue
		}

		records = append(records, *rec)
		if c.recorder != nil {
			if err := c.recorder.RecordItem(ctx, keyword, *rec); err != nil {
				log.Warn("failed to record item", logging.Int("id", rec.ID), logging.Err(err))
			}
		}
	}
	return records
}

// harvestLinks loads the search page, scrolls it and returns the note links
// found in the rendered HTML.
func (c *Crawler) harvestLinks(ctx context.Context, searchURL string) ([]string, error) {
	if err := c.driver.Navigate(ctx, searchURL); err != nil {
		return nil, err
	}
	if err := sleep(ctx, c.opts.PageSettle); err != nil {
		return nil, err
	}

	var last int64 = -1
	stale := 0
	for cycle := 0; cycle < c.opts.ScrollCycles; cycle++ {
		height, err := c.driver.ScrollToBottom(ctx)
		if err != nil {
			c.log.Debug("scroll failed", logging.Int("cycle", cycle+1), logging.Err(err))
		}
		if err := sleep(ctx, c.opts.ScrollWait); err != nil {
			return nil, err
		}
		if err == nil && height == last {
			stale++
			if stale >= staleScrollLimit {
				break
			}
		} else {
			stale = 0
		}
		last = height
	}

	html, err := c.driver.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return ExtractNoteLinks(html, searchURL, c.opts.Selectors.NoteLink)
}

// processItem opens one note and saves its assets. The returned record holds
// whatever was saved before an error occurred.
func (c *Crawler) processItem(ctx context.Context, keyword, link, outputDir string) (*types.ItemRecord, error) {
	if err := c.driver.Navigate(ctx, link); err != nil {
		return nil, err
	}
	if err := sleep(ctx, c.opts.PageSettle); err != nil {
		return nil, err
	}

	title := PlaceholderTitle
	if el, ok := browser.Find(ctx, c.driver, c.opts.Selectors.Title, c.opts.ElementTimeout); ok && el.Text != "" {
		title = el.Text
	}

	folder := c.dedup.Next(SanitizeTitle(title))
	itemDir := filepath.Join(outputDir, folder)
	c.nextID++
	rec := &types.ItemRecord{
		ID:     c.nextID,
		Title:  title,
		URL:    link,
		Images: []types.ImageRef{},
	}
	if err := c.store.EnsureDir(itemDir); err != nil {
		return rec, err
	}

	html, err := c.driver.HTML(ctx)
	if err != nil {
		return rec, err
	}
	sources, err := ExtractImageSources(html, link, c.opts.Selectors.Image)
	if err != nil {
		return rec, err
	}
	rec.Images = c.downloadImages(ctx, keyword, sources, itemDir)

	if el, ok := browser.Find(ctx, c.driver, c.opts.Selectors.Text, c.opts.ElementTimeout); ok {
		textPath := filepath.Join(itemDir, assets.TextFileName)
		if err := c.store.SaveText(el.Text, textPath); err != nil {
			return rec, err
		}
		rec.TextFile = textPath
	}

	return rec, nil
}

// downloadImages fetches sources through a bounded pool and returns the
// successful downloads in source order.
func (c *Crawler) downloadImages(ctx context.Context, keyword string, sources []string, itemDir string) []types.ImageRef {
	results := make([]*types.ImageRef, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.DownloadWorkers)
	for i, src := range sources {
		dest := filepath.Join(itemDir, ImageFileName(keyword, src, i))
		g.Go(func() error {
			if err := c.saveImage(gctx, src, dest); err != nil {
				c.log.Warn("image download failed", logging.String("url", src), logging.Err(err))
			} else {
				results[i] = &types.ImageRef{Path: dest, URL: src}
			}
			// Download failures never cancel sibling downloads.
			_ = sleep(gctx, c.opts.DownloadDelay)
			return nil
		})
	}
	_ = g.Wait()

	images := make([]types.ImageRef, 0, len(sources))
	for _, r := range results {
		if r != nil {
			images = append(images, *r)
		}
	}
	return images
}

// saveImage pipes the download straight into the asset store.
func (c *Crawler) saveImage(ctx context.Context, src, dest string) error {
	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		_, err := c.fetcher.Download(ctx, src, pw)
		_ = pw.CloseWithError(err)
		done <- err
	}()

	_, saveErr := c.store.SaveImage(pr, dest)
	_ = pr.Close()
	fetchErr := <-done

	if fetchErr != nil {
		return fetchErr
	}
	return saveErr
}

// ImageFileName names the i-th image of a note:
// <keyword>_<basename of the URL path>_<i>.jpg.
func ImageFileName(keyword, src string, i int) string {
	base := src
	if u, err := url.Parse(src); err == nil {
		base = path.Base(u.Path)
	}
	if base == "." || base == "/" {
		base = "image"
	}
	return fmt.Sprintf("%s_%s_%d.jpg", SanitizeTitle(keyword), SanitizeTitle(base), i)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsInterrupted reports whether err came from cancellation of Acquire.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

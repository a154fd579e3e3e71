package curation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/note-harvester/internal/logging"
	"github.com/jonathan/note-harvester/internal/types"
)

// Default thresholds.
const (
	DefaultMinWidth      = 500
	DefaultMinHeight     = 500
	DefaultMinTextLength = 10
)

// Options holds the curation thresholds. Text length is counted in runes.
type Options struct {
	MinWidth      int
	MinHeight     int
	MinTextLength int
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		MinWidth:      DefaultMinWidth,
		MinHeight:     DefaultMinHeight,
		MinTextLength: DefaultMinTextLength,
	}
}

// Curator copies a raw corpus and prunes the copy.
type Curator struct {
	opts      Options
	log       logging.Logger
	removeAll func(path string) error
}

// New creates a Curator. Non-positive thresholds fall back to the defaults.
func New(opts Options, log logging.Logger) *Curator {
	def := DefaultOptions()
	if opts.MinWidth <= 0 {
		opts.MinWidth = def.MinWidth
	}
	if opts.MinHeight <= 0 {
		opts.MinHeight = def.MinHeight
	}
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = def.MinTextLength
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Curator{opts: opts, log: log, removeAll: os.RemoveAll}
}

// Curate replaces targetDir with a copy of sourceDir, then evaluates every
// item folder of the copy in name order. Images below the size thresholds or
// that cannot be decoded are deleted. A folder is deleted when no image
// survives or its trimmed text is shorter than MinTextLength. Top-level files
// such as the manifest are copied but not rewritten.
func (c *Curator) Curate(sourceDir, targetDir string) (*types.CurationReport, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, &SourceMissingError{Path: sourceDir, Cause: err}
	}
	if !info.IsDir() {
		return nil, &SourceMissingError{Path: sourceDir, Cause: fmt.Errorf("not a directory")}
	}
	if err := checkDisjoint(sourceDir, targetDir); err != nil {
		return nil, err
	}

	if err := os.RemoveAll(targetDir); err != nil {
		return nil, &Error{Message: "failed to clear target directory", Cause: err}
	}
	if err := copyDir(sourceDir, targetDir); err != nil {
		return nil, &Error{Message: "failed to copy source directory", Cause: err}
	}
	c.log.Info("corpus copied",
		logging.String("source", sourceDir),
		logging.String("target", targetDir))

	entries, err := os.ReadDir(targetDir)
	if err != nil {
		return nil, &Error{Message: "failed to list target directory", Cause: err}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	report := &types.CurationReport{
		SourceDir: sourceDir,
		TargetDir: targetDir,
		Items:     make([]types.ItemOutcome, 0, len(entries)),
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		outcome := c.curateItem(filepath.Join(targetDir, entry.Name()))
		report.Items = append(report.Items, outcome)
		report.ImagesRemoved += len(outcome.RemovedImages)
		switch {
		case outcome.Deleted:
			report.Deleted++
		case outcome.DeleteFailed:
			report.Failed++
		default:
			report.Kept++
		}
	}

	c.log.Info("curation complete",
		logging.Int("kept", report.Kept),
		logging.Int("deleted", report.Deleted),
		logging.Int("failed", report.Failed),
		logging.Int("images_removed", report.ImagesRemoved))
	return report, nil
}

func (c *Curator) curateItem(itemDir string) types.ItemOutcome {
	verdict, removed := c.Evaluate(itemDir)
	outcome := types.ItemOutcome{
		Name:          filepath.Base(itemDir),
		KeptImages:    verdict.KeepImages,
		RemovedImages: removed,
		TextLength:    utf8.RuneCountInString(verdict.TextContent),
	}
	if !verdict.DeleteWholeFolder {
		return outcome
	}

	outcome.Reason = c.deleteReason(verdict)
	if err := c.removeAll(itemDir); err != nil {
		c.log.Warn("failed to delete item folder", logging.String("item", outcome.Name), logging.Err(err))
		outcome.DeleteFailed = true
		outcome.Reason = fmt.Sprintf("%s; remove failed: %v", outcome.Reason, err)
		return outcome
	}
	outcome.Deleted = true
	c.log.Debug("item folder deleted", logging.String("item", outcome.Name), logging.String("reason", outcome.Reason))
	return outcome
}

func (c *Curator) deleteReason(v types.Verdict) string {
	var reasons []string
	if len(v.KeepImages) == 0 {
		reasons = append(reasons, "no qualifying images")
	}
	if n := utf8.RuneCountInString(v.TextContent); n < c.opts.MinTextLength {
		reasons = append(reasons, fmt.Sprintf("text too short (%d < %d)", n, c.opts.MinTextLength))
	}
	return strings.Join(reasons, "; ")
}

// checkDisjoint refuses a target that would destroy the source when cleared.
func checkDisjoint(sourceDir, targetDir string) error {
	src, err := filepath.Abs(sourceDir)
	if err != nil {
		return &Error{Message: "failed to resolve source directory", Cause: err}
	}
	dst, err := filepath.Abs(targetDir)
	if err != nil {
		return &Error{Message: "failed to resolve target directory", Cause: err}
	}
	if src == dst || strings.HasPrefix(src+string(filepath.Separator), dst+string(filepath.Separator)) {
		return &Error{Message: fmt.Sprintf("target %s contains the source directory", targetDir)}
	}
	if strings.HasPrefix(dst, src+string(filepath.Separator)) {
		return &Error{Message: fmt.Sprintf("target %s is inside the source directory", targetDir)}
	}
	return nil
}

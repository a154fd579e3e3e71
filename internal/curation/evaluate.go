package curation

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	// Registered decoders for image.DecodeConfig and image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/jonathan/note-harvester/internal/assets"
	"github.com/jonathan/note-harvester/internal/logging"
	"github.com/jonathan/note-harvester/internal/types"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// IsImageFile reports whether name has one of the curated image extensions.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// ImageSize returns the pixel dimensions read from the image header at path.
// A valid header does not mean the pixel data is intact; see DecodeImage.
func ImageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Evaluate applies the image and text thresholds to one item folder. Images
// that fail are deleted from disk; the folder itself is left for the caller.
// The returned list holds the removed image names.
func (c *Curator) Evaluate(itemDir string) (types.Verdict, []string) {
	log := c.log.With(logging.String("item", filepath.Base(itemDir)))

	entries, err := os.ReadDir(itemDir)
	if err != nil {
		log.Warn("failed to list item folder", logging.Err(err))
		return types.Verdict{DeleteWholeFolder: true}, nil
	}

	var kept, removed []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		p := filepath.Join(itemDir, entry.Name())

		ok, reason := c.checkImage(p)
		if ok {
			kept = append(kept, entry.Name())
			continue
		}
		if err := os.Remove(p); err != nil {
			log.Warn("failed to delete image", logging.String("image", entry.Name()), logging.Err(err))
			continue
		}
		log.Debug("image removed", logging.String("image", entry.Name()), logging.String("reason", reason))
		removed = append(removed, entry.Name())
	}
	sort.Strings(kept)
	sort.Strings(removed)

	text := readText(filepath.Join(itemDir, assets.TextFileName), log)

	return types.Verdict{
		KeepImages:        kept,
		TextContent:       text,
		DeleteWholeFolder: len(kept) == 0 || utf8.RuneCountInString(text) < c.opts.MinTextLength,
	}, removed
}

// DecodeImage fully decodes the image at path. Truncated or corrupt pixel
// data fails here even when the header parses.
func DecodeImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, _, err = image.Decode(f)
	return err
}

// checkImage reads the header first so undersized images are rejected
// without a full decode.
func (c *Curator) checkImage(path string) (bool, string) {
	w, h, err := ImageSize(path)
	if err != nil {
		return false, fmt.Sprintf("cannot decode: %v", err)
	}
	if w < c.opts.MinWidth || h < c.opts.MinHeight {
		return false, fmt.Sprintf("%dx%d below %dx%d", w, h, c.opts.MinWidth, c.opts.MinHeight)
	}
	if err := DecodeImage(path); err != nil {
		return false, fmt.Sprintf("cannot decode: %v", err)
	}
	return true, ""
}

// readText returns the trimmed text file content, or "" when it is absent or
// unreadable.
func readText(path string, log logging.Logger) string {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("failed to read text file", logging.Err(err))
		}
		return ""
	}
	return strings.TrimSpace(string(data))
}

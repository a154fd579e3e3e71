package crawling

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"
)

// PlaceholderTitle is used when a note exposes no title element.
const PlaceholderTitle = "无标题笔记"

// MaxTitleRunes is the rune limit for a sanitized title.
const MaxTitleRunes = 200

// maxNameBytes keeps folder names under the common 255-byte filesystem limit
// once a collision suffix is appended.
const maxNameBytes = 240

var titleReplacer = strings.NewReplacer(
	"<", "", ">", "", ":", "", `"`, "", "/", "", `\`, "",
	"|", "", "?", "", "*", "", "\n", "", "\r", "",
	" ", "_",
)

// SanitizeTitle turns a raw note title into a folder-safe name. It removes
// characters that are illegal in paths, replaces spaces with underscores and
// truncates to MaxTitleRunes. Applying it twice gives the same result.
// Titles that sanitize to nothing, "." or ".." become PlaceholderTitle.
func SanitizeTitle(title string) string {
	s := titleReplacer.Replace(title)

	if utf8.RuneCountInString(s) > MaxTitleRunes {
		s = string([]rune(s)[:MaxTitleRunes])
	}
	for len(s) > maxNameBytes {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}

	if s == "" || s == "." || s == ".." {
		return PlaceholderTitle
	}
	return s
}

// Deduper hands out unique folder names for the whole run. The first use of
// a base returns it unchanged; the k-th collision returns base_k.
//
// Names are never issued twice. When base_k was already handed out for a
// literal title, the collision takes the next free suffix instead: after
// Next("a_1") and Next("a"), a second Next("a") returns "a_2".
type Deduper struct {
	mu     sync.Mutex
	counts map[string]int
	issued map[string]bool
}

// NewDeduper returns an empty Deduper.
func NewDeduper() *Deduper {
	return &Deduper{
		counts: make(map[string]int),
		issued: make(map[string]bool),
	}
}

// Next returns a name for base that has not been returned before.
func (d *Deduper) Next(base string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, seen := d.counts[base]
	if !seen && !d.issued[base] {
		d.counts[base] = 0
		d.issued[base] = true
		return base
	}

	// A suffixed name may already exist as a literal title ("a_1"), skip it.
	for {
		n++
		name := fmt.Sprintf("%s_%d", base, n)
		if !d.issued[name] {
			d.counts[base] = n
			d.issued[name] = true
			return name
		}
	}
}

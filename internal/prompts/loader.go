// Package prompts holds the LLM prompt templates, embedded from JSON files.
//
// Every *.json file in this directory is an object of template name to
// template text. Names share one namespace across files. Templates use
// {{.Field}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// Template names.
const (
	SummarizeCorpus = "summarize-corpus"
	DraftPost       = "draft-post"
)

var placeholderRe = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9_]*)\}\}`)

// MissingValueError reports placeholders that Render had no value for.
type MissingValueError struct {
	Template string
	Fields   []string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("prompt %q has no value for %s", e.Template, strings.Join(e.Fields, ", "))
}

var loadAll = sync.OnceValues(func() (map[string]string, error) {
	return load(promptFiles)
})

// load merges every embedded JSON file into one name-to-template map.
func load(fsys embed.FS) (map[string]string, error) {
	entries, err := fsys.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt files: %w", err)
	}

	all := make(map[string]string)
	owner := make(map[string]string)
	for _, entry := range entries {
		data, err := fsys.ReadFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
		}
		var templates map[string]string
		if err := json.Unmarshal(data, &templates); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", entry.Name(), err)
		}
		for name, text := range templates {
			if prev, dup := owner[name]; dup {
				return nil, fmt.Errorf("prompt %q defined in both %s and %s", name, prev, entry.Name())
			}
			owner[name] = entry.Name()
			all[name] = text
		}
	}
	return all, nil
}

// Get returns the raw text of the named template.
func Get(name string) (string, error) {
	all, err := loadAll()
	if err != nil {
		return "", err
	}
	text, ok := all[name]
	if !ok {
		return "", fmt.Errorf("prompt %q not found", name)
	}
	return text, nil
}

// Render fills the named template with data. Every placeholder must have a
// value, otherwise a *MissingValueError lists the unfilled ones.
func Render(name string, data map[string]string) (string, error) {
	text, err := Get(name)
	if err != nil {
		return "", err
	}
	return fill(name, text, data)
}

func fill(name, text string, data map[string]string) (string, error) {
	var missing []string
	seen := make(map[string]bool)
	out := placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		field := placeholderRe.FindStringSubmatch(m)[1]
		if v, ok := data[field]; ok {
			return v
		}
		if !seen[field] {
			seen[field] = true
			missing = append(missing, field)
		}
		return m
	})
	if len(missing) > 0 {
		return "", &MissingValueError{Template: name, Fields: missing}
	}
	return out, nil
}

// Fields lists the distinct placeholders of the named template, sorted.
func Fields(name string) ([]string, error) {
	text, err := Get(name)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		set[m[1]] = true
	}
	fields := make([]string, 0, len(set))
	for f := range set {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields, nil
}

// Names lists every embedded template name, sorted.
func Names() ([]string, error) {
	all, err := loadAll()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

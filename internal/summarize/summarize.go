// Package summarize turns a curated corpus into an LLM-written summary and
// a post draft.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/note-harvester/internal/assets"
	"github.com/jonathan/note-harvester/internal/llm"
	"github.com/jonathan/note-harvester/internal/logging"
	"github.com/jonathan/note-harvester/internal/prompts"
)

// DefaultMaxCorpusRunes bounds the note text sent in one prompt.
const DefaultMaxCorpusRunes = 60000

// TitleLimit is the platform's title length in runes.
const TitleLimit = 20

// EmptyCorpusError means the curated directory holds no note text.
type EmptyCorpusError struct {
	Dir string
}

func (e *EmptyCorpusError) Error() string {
	return fmt.Sprintf("no note text found in %s", e.Dir)
}

// Error represents a summarization failure.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("summarize error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("summarize error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Note is the text of one curated item.
type Note struct {
	Name string
	Text string
}

// Result describes a written summary.
type Result struct {
	Notes      int
	Truncated  bool
	Model      string
	Summary    string
	OutputPath string
}

// Draft is a post proposed from a summary.
type Draft struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Summarizer sends curated note text to an LLM.
type Summarizer struct {
	client   llm.Client
	log      logging.Logger
	maxRunes int
}

// New creates a Summarizer. maxRunes <= 0 uses DefaultMaxCorpusRunes.
func New(client llm.Client, log logging.Logger, maxRunes int) *Summarizer {
	if log == nil {
		log = logging.NewNop()
	}
	if maxRunes <= 0 {
		maxRunes = DefaultMaxCorpusRunes
	}
	return &Summarizer{client: client, log: log, maxRunes: maxRunes}
}

// CollectNotes reads the trimmed text.txt of every item folder in dir,
// sorted by folder name. Folders without text are skipped.
func CollectNotes(dir string) ([]Note, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &Error{Message: "failed to list curated directory", Cause: err}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var notes []Note
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name(), assets.TextFileName))
		if err != nil {
			continue
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			continue
		}
		notes = append(notes, Note{Name: entry.Name(), Text: text})
	}
	return notes, nil
}

// BuildCorpus formats notes for the prompt, stopping before maxRunes would
// be exceeded. It returns the text and how many notes it holds.
func BuildCorpus(notes []Note, maxRunes int) (string, int) {
	var sb strings.Builder
	used, count := 0, 0
	for _, n := range notes {
		block := "## " + n.Name + "\n" + n.Text + "\n\n"
		size := utf8.RuneCountInString(block)
		if count > 0 && used+size > maxRunes {
			break
		}
		sb.WriteString(block)
		used += size
		count++
	}
	return strings.TrimSpace(sb.String()), count
}

// Summarize summarizes the notes in curatedDir and writes the summary to
// outputPath.
func (s *Summarizer) Summarize(ctx context.Context, curatedDir, outputPath string) (*Result, error) {
	notes, err := CollectNotes(curatedDir)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, &EmptyCorpusError{Dir: curatedDir}
	}

	corpus, included := BuildCorpus(notes, s.maxRunes)
	if included < len(notes) {
		s.log.Warn("corpus truncated for prompt",
			logging.Int("included", included),
			logging.Int("total", len(notes)))
	}

	prompt, err := prompts.Render(prompts.SummarizeCorpus, map[string]string{
		"Count": strconv.Itoa(included),
		"Notes": corpus,
	})
	if err != nil {
		return nil, &Error{Message: "failed to build prompt", Cause: err}
	}

	s.log.Info("requesting summary",
		logging.Int("notes", included),
		logging.String("model", s.client.GetModel(llm.TierLite)))
	summary, err := s.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &Error{Message: "LLM request failed", Cause: err}
	}
	summary = strings.TrimSpace(summary)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, &Error{Message: "failed to create output directory", Cause: err}
	}
	if err := os.WriteFile(outputPath, []byte(summary+"\n"), 0644); err != nil {
		return nil, &Error{Message: "failed to write summary", Cause: err}
	}

	return &Result{
		Notes:      included,
		Truncated:  included < len(notes),
		Model:      s.client.GetModel(llm.TierLite),
		Summary:    summary,
		OutputPath: outputPath,
	}, nil
}

// DraftPost asks the LLM for a post based on summary. The title is cut to
// TitleLimit runes.
func (s *Summarizer) DraftPost(ctx context.Context, summary string) (*Draft, error) {
	if strings.TrimSpace(summary) == "" {
		return nil, &Error{Message: "summary is empty"}
	}

	prompt, err := prompts.Render(prompts.DraftPost, map[string]string{
		"Summary":    summary,
		"TitleLimit": strconv.Itoa(TitleLimit),
	})
	if err != nil {
		return nil, &Error{Message: "failed to build prompt", Cause: err}
	}

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &Error{Message: "LLM request failed", Cause: err}
	}

	var draft Draft
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &draft); err != nil {
		return nil, &Error{Message: "failed to parse draft JSON", Cause: err}
	}
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Body = strings.TrimSpace(draft.Body)
	if draft.Title == "" || draft.Body == "" {
		return nil, &Error{Message: "draft is missing a title or body"}
	}
	draft.Title = TruncateRunes(draft.Title, TitleLimit)
	return &draft, nil
}

// TruncateRunes returns at most n runes of s.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

package summarize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/note-harvester/internal/assets"
	"github.com/jonathan/note-harvester/internal/llm"
)

type fakeClient struct {
	content string
	json    string
	err     error
	prompts []string
	tiers   []llm.ModelTier
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	return f.content, f.err
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	return f.json, f.err
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }

func (f *fakeClient) Close() error { return nil }

func writeNote(t *testing.T, dir, name, text string) {
	t.Helper()
	p := filepath.Join(dir, name, assets.TextFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(text), 0644))
}

func TestCollectNotes(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "b_note", "  second  \n")
	writeNote(t, dir, "a_note", "first")
	writeNote(t, dir, "blank", "   ")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images_only"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes_data.json"), []byte("[]"), 0644))

	notes, err := CollectNotes(dir)
	require.NoError(t, err)
	assert.Equal(t, []Note{{Name: "a_note", Text: "first"}, {Name: "b_note", Text: "second"}}, notes)
}

func TestBuildCorpus_StopsAtLimit(t *testing.T) {
	notes := []Note{
		{Name: "a", Text: strings.Repeat("x", 10)},
		{Name: "b", Text: strings.Repeat("y", 10)},
		{Name: "c", Text: strings.Repeat("z", 10)},
	}

	corpus, n := BuildCorpus(notes, 40)
	assert.Equal(t, 2, n)
	assert.Contains(t, corpus, "## a\n")
	assert.Contains(t, corpus, "## b\n")
	assert.NotContains(t, corpus, "## c")

	// The first note is always included.
	_, n = BuildCorpus(notes, 1)
	assert.Equal(t, 1, n)
}

func TestSummarize_WritesSummary(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "one", "note one text")
	writeNote(t, dir, "two", "note two text")
	out := filepath.Join(t.TempDir(), "reports", "summary.md")

	client := &fakeClient{content: "  the summary  "}
	res, err := New(client, nil, 0).Summarize(context.Background(), dir, out)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Notes)
	assert.False(t, res.Truncated)
	assert.Equal(t, "the summary", res.Summary)
	assert.Equal(t, "fake-model", res.Model)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "the summary\n", string(data))

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "## one\nnote one text")
	assert.Contains(t, client.prompts[0], "The 2 notes")
	assert.NotContains(t, client.prompts[0], "{{.")
	assert.Equal(t, llm.TierLite, client.tiers[0])
}

func TestSummarize_EmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "no_text"), 0755))

	_, err := New(&fakeClient{}, nil, 0).Summarize(context.Background(), dir, filepath.Join(dir, "s.md"))
	var empty *EmptyCorpusError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, dir, empty.Dir)
}

func TestSummarize_MissingDir(t *testing.T) {
	_, err := New(&fakeClient{}, nil, 0).Summarize(context.Background(), filepath.Join(t.TempDir(), "nope"), "s.md")
	var sumErr *Error
	assert.ErrorAs(t, err, &sumErr)
}

func TestSummarize_LLMError(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "one", "note one text")
	out := filepath.Join(t.TempDir(), "summary.md")

	_, err := New(&fakeClient{err: errors.New("quota exceeded")}, nil, 0).Summarize(context.Background(), dir, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.NoFileExists(t, out)
}

func TestDraftPost(t *testing.T) {
	client := &fakeClient{json: "```json\n{\"title\": \"一二三四五六七八九十一二三四五六七八九十超出\", \"body\": \" body text \"}\n```"}

	draft, err := New(client, nil, 0).DraftPost(context.Background(), "summary")
	require.NoError(t, err)
	assert.Equal(t, "一二三四五六七八九十一二三四五六七八九十", draft.Title)
	assert.Equal(t, "body text", draft.Body)
	assert.Equal(t, llm.TierStandard, client.tiers[0])
	assert.Contains(t, client.prompts[0], "at most 20 characters")
}

func TestDraftPost_Invalid(t *testing.T) {
	s := New(&fakeClient{json: `{"title": ""}`}, nil, 0)

	_, err := s.DraftPost(context.Background(), "summary")
	assert.Error(t, err)

	_, err = s.DraftPost(context.Background(), "   ")
	assert.Error(t, err)

	_, err = New(&fakeClient{json: "not json"}, nil, 0).DraftPost(context.Background(), "summary")
	assert.Error(t, err)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abc", 5))
	assert.Equal(t, "春日", TruncateRunes("春日穿搭", 2))
}

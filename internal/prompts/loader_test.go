package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	assert.Equal(t, []string{DraftPost, SummarizeCorpus}, names)
}

func TestGet_UnknownName(t *testing.T) {
	_, err := Get("nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFields(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{SummarizeCorpus, []string{"Count", "Notes"}},
		{DraftPost, []string{"Summary", "TitleLimit"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := Fields(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fields)
		})
	}
}

func TestRender(t *testing.T) {
	out, err := Render(SummarizeCorpus, map[string]string{
		"Count": "3",
		"Notes": "## a\nbody",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "The 3 notes below")
	assert.Contains(t, out, "## a\nbody")
	assert.NotContains(t, out, "{{.")
}

func TestRender_MissingValue(t *testing.T) {
	_, err := Render(DraftPost, map[string]string{"Summary": "s"})

	var missing *MissingValueError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"TitleLimit"}, missing.Fields)
	assert.Equal(t, DraftPost, missing.Template)
}

func TestFill_ValuesAreNotExpanded(t *testing.T) {
	out, err := fill("t", "A {{.X}} B {{.X}}", map[string]string{"X": "{{.Y}}"})
	require.NoError(t, err)
	assert.Equal(t, "A {{.Y}} B {{.Y}}", out)
}

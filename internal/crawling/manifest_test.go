package crawling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/note-harvester/internal/types"
)

func TestWriteManifest_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", ManifestFileName)
	m := &types.Manifest{Items: []types.ItemRecord{
		{
			ID:     1,
			Title:  "春日 <穿搭>",
			URL:    "https://www.xiaohongshu.com/explore/1",
			Images: []types.ImageRef{{Path: "data/a/x.jpg", URL: "https://cdn/x.jpg"}},
		},
		{
			ID:       3,
			Title:    "text only",
			URL:      "https://www.xiaohongshu.com/explore/3",
			Images:   []types.ImageRef{},
			TextFile: "data/text_only/text.txt",
		},
	}}

	require.NoError(t, WriteManifest(m, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "春日 <穿搭>", "non-ASCII and HTML characters are written unescaped")
	assert.Contains(t, string(data), "\n    {", "manifest is indented")

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m.Items, got.Items)
}

func TestWriteManifest_EmptyIsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFileName)

	require.NoError(t, WriteManifest(&types.Manifest{}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteManifest_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFileName)
	require.NoError(t, os.WriteFile(path, []byte(`[{"stale": true}]`), 0644))

	require.NoError(t, WriteManifest(nil, path))

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestWriteManifest_RejectsEmptyRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFileName)
	m := &types.Manifest{Items: []types.ItemRecord{
		{ID: 1, Title: "nothing", URL: "https://x/explore/1", Images: []types.ImageRef{}},
	}}

	err := WriteManifest(m, path)
	require.Error(t, err)

	var manifestErr *ManifestError
	assert.ErrorAs(t, err, &manifestErr)
	assert.NoFileExists(t, path)
}

func TestReadManifest_Missing(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "nope.json"))
	var manifestErr *ManifestError
	assert.ErrorAs(t, err, &manifestErr)
}

package assets

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveImage_CreatesFolderOnDemand(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "data", "Weekend_trip", "kw_abc_0.jpg")

	n, err := New().SaveImage(strings.NewReader("jpegbytes"), dest)
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "jpegbytes", string(data))
}

func TestSaveImage_RemovesPartialFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "item", "broken.jpg")
	r := io.MultiReader(strings.NewReader("abc"), iotest.ErrReader(errors.New("connection reset")))

	_, err := New().SaveImage(r, dest)
	require.Error(t, err)

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	_, statErr := os.Stat(dest)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestSaveText_WritesVerbatim(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "item", TextFileName)
	content := "  line one\nline two  \n"

	require.NoError(t, New().SaveText(content, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestSaveText_UnwritableDirectory(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	// The parent "directory" is a regular file, so it cannot be created.
	err := (&Store{}).SaveText("hello", filepath.Join(blocker, "item", TextFileName))

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Contains(t, err.Error(), "failed to create directory")
}

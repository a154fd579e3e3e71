package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/note-harvester/internal/publish"
)

func TestPostFromItem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Spring_Outfits_1")
	writePNG(t, filepath.Join(dir, "k_b_1.jpg"), 10, 10)
	writePNG(t, filepath.Join(dir, "k_a_0.jpg"), 10, 10)
	writeFile(t, filepath.Join(dir, "notes.md"), "ignored")
	writeFile(t, filepath.Join(dir, "text.txt"), "  body text \n")

	post, err := postFromItem(dir)
	require.NoError(t, err)

	assert.Equal(t, "Spring Outfits 1", post.Title)
	assert.Equal(t, "body text", post.Body)
	assert.Equal(t, []string{
		filepath.Join(dir, "k_a_0.jpg"),
		filepath.Join(dir, "k_b_1.jpg"),
	}, post.ImagePaths)
}

func TestPostFromItem_Missing(t *testing.T) {
	_, err := postFromItem(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestApplyPostFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "publish"}
	cmd.Flags().StringVar(&publishTitle, "title", "", "")
	cmd.Flags().StringVar(&publishBody, "body", "", "")
	cmd.Flags().StringVar(&publishBodyFile, "body-file", "", "")
	cmd.Flags().StringSliceVarP(&publishImages, "image", "i", nil, "")
	cmd.Flags().StringSliceVar(&publishTags, "tag", nil, "")

	bodyFile := filepath.Join(t.TempDir(), "body.txt")
	writeFile(t, bodyFile, "from file")
	require.NoError(t, cmd.ParseFlags([]string{"--title", "New", "--body-file", bodyFile, "--tag", "a,b"}))

	post := publish.Post{Title: "Old", Body: "old body", ImagePaths: []string{"x.jpg"}}
	require.NoError(t, applyPostFlags(cmd, &post))

	assert.Equal(t, "New", post.Title)
	assert.Equal(t, "from file", post.Body)
	assert.Equal(t, []string{"x.jpg"}, post.ImagePaths)
	assert.Equal(t, []string{"a", "b"}, post.Hashtags)
}

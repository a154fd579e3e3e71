package crawling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPage = "https://www.xiaohongshu.com/search_result?keyword=cats"

func TestExtractNoteLinks_FiltersAndResolves(t *testing.T) {
	html := `
		<html>
			<body>
				<section class="note-item"><a href="/explore/abc123">A</a></section>
				<section class="note-item"><a href="/search_result/def456?xsec=1">B</a></section>
				<section class="note-item"><a href="/user/profile/999">Profile</a></section>
				<section class="note-item"><a href="">Empty</a></section>
				<div><a href="/explore/outside">Not in a card</a></div>
			</body>
		</html>
	`

	links, err := ExtractNoteLinks(html, searchPage, DefaultSelectors().NoteLink)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.xiaohongshu.com/explore/abc123",
		"https://www.xiaohongshu.com/search_result/def456?xsec=1",
	}, links)
}

func TestExtractNoteLinks_DeduplicatesInDiscoveryOrder(t *testing.T) {
	html := `
		<section class="note-item"><a href="/explore/2">x</a></section>
		<section class="note-item"><a href="/explore/1">x</a></section>
		<section class="note-item"><a href="/explore/2#comments">x</a></section>
		<section class="note-item"><a href="https://www.xiaohongshu.com/explore/1">x</a></section>
	`

	links, err := ExtractNoteLinks(html, searchPage, DefaultSelectors().NoteLink)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.xiaohongshu.com/explore/2",
		"https://www.xiaohongshu.com/explore/1",
	}, links)
}

func TestExtractNoteLinks_InvalidBaseURL(t *testing.T) {
	_, err := ExtractNoteLinks("<html></html>", "not-a-url", "a")
	require.Error(t, err)

	var linkErr *LinkExtractionError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, "not-a-url", linkErr.PageURL)
}

func TestExtractNoteLinks_NoMatches(t *testing.T) {
	links, err := ExtractNoteLinks("<html><body><p>nothing</p></body></html>", searchPage, "a")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestExtractImageSources(t *testing.T) {
	html := `
		<div class="swiper-slide"><img src="https://cdn.example.com/a.jpg"></div>
		<div class="swiper-slide"><img src="//cdn.example.com/b.webp?imageView2"></div>
		<div class="swiper-slide"><img src="data:image/gif;base64,R0lGOD"></div>
		<div class="swiper-slide"><img></div>
		<div class="swiper-slide"><img src="https://cdn.example.com/a.jpg"></div>
		<img src="https://cdn.example.com/avatar.jpg">
	`

	sources, err := ExtractImageSources(html, "https://www.xiaohongshu.com/explore/1", DefaultSelectors().Image)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cdn.example.com/a.jpg",
		"https://cdn.example.com/b.webp?imageView2",
		"https://cdn.example.com/a.jpg",
	}, sources)
}

package crawling

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// notePathMarkers are the path fragments of links that open a note.
var notePathMarkers = []string{"/search_result/", "/explore/"}

// ExtractNoteLinks returns the absolute note URLs matched by selector in the
// rendered search page, deduplicated in discovery order.
func ExtractNoteLinks(htmlContent, pageURL, selector string) ([]string, error) {
	base, doc, err := parse(htmlContent, pageURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	links := make([]string, 0)

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			return
		}

		linkURL, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		absoluteURL := base.ResolveReference(linkURL)
		absoluteURL.Fragment = ""

		if !isNotePath(absoluteURL.Path) {
			return
		}

		urlString := absoluteURL.String()
		if !seen[urlString] {
			seen[urlString] = true
			links = append(links, urlString)
		}
	})

	return links, nil
}

// ExtractImageSources returns the absolute src of every image matched by
// selector, in document order. Duplicates are kept so indices line up with
// the carousel slides.
func ExtractImageSources(htmlContent, pageURL, selector string) ([]string, error) {
	base, doc, err := parse(htmlContent, pageURL)
	if err != nil {
		return nil, err
	}

	sources := make([]string, 0)
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		src, exists := s.Attr("src")
		src = strings.TrimSpace(src)
		if !exists || src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		srcURL, err := url.Parse(src)
		if err != nil {
			return
		}
		sources = append(sources, base.ResolveReference(srcURL).String())
	})

	return sources, nil
}

func parse(htmlContent, pageURL string) (*url.URL, *goquery.Document, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, &LinkExtractionError{PageURL: pageURL, Message: "failed to parse base URL", Cause: err}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, nil, &LinkExtractionError{
			PageURL: pageURL,
			Message: "base URL must have scheme and host",
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, nil, &LinkExtractionError{PageURL: pageURL, Message: "failed to parse HTML", Cause: err}
	}
	return base, doc, nil
}

func isNotePath(p string) bool {
	for _, marker := range notePathMarkers {
		if strings.Contains(p, marker) {
			return true
		}
	}
	return false
}

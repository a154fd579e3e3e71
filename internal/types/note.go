package types

// ImageRef points at one downloaded image of an item.
type ImageRef struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// ItemRecord describes one acquired note. IDs are 1-based and monotonic
// across the whole run.
type ItemRecord struct {
	ID       int        `json:"id"`
	Title    string     `json:"title"`
	URL      string     `json:"url"`
	Images   []ImageRef `json:"images"`
	TextFile string     `json:"text_file"`
}

// HasContent reports whether the record passes the acquisition gate:
// at least one image or a written text file.
func (r ItemRecord) HasContent() bool {
	return len(r.Images) > 0 || r.TextFile != ""
}

// Manifest is the ordered set of item records produced by one acquisition run.
type Manifest struct {
	Items []ItemRecord
}

// Len returns the number of records in the manifest.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Items)
}

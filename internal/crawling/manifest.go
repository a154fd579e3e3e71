package crawling

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jonathan/note-harvester/internal/schemas"
	"github.com/jonathan/note-harvester/internal/types"
)

// ManifestFileName is the manifest written into the output directory.
const ManifestFileName = "notes_data.json"

// WriteManifest validates the manifest and writes it as indented JSON to
// path, replacing any previous file.
func WriteManifest(m *types.Manifest, path string) error {
	items := []types.ItemRecord{}
	if m != nil && m.Items != nil {
		items = m.Items
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(items); err != nil {
		return &ManifestError{Path: path, Message: "failed to encode manifest", Cause: err}
	}

	if err := schemas.Validate(schemas.Manifest, buf.Bytes()); err != nil {
		return &ManifestError{Path: path, Message: "manifest failed schema validation", Cause: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &ManifestError{Path: path, Message: "failed to create output directory", Cause: err}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return &ManifestError{Path: path, Message: "failed to write manifest", Cause: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &ManifestError{Path: path, Message: "failed to replace manifest", Cause: err}
	}
	return nil
}

// ReadManifest loads and validates a manifest written by WriteManifest.
func ReadManifest(path string) (*types.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ManifestError{Path: path, Message: "failed to read manifest", Cause: err}
	}
	if err := schemas.Validate(schemas.Manifest, data); err != nil {
		return nil, &ManifestError{Path: path, Message: "manifest failed schema validation", Cause: err}
	}

	var items []types.ItemRecord
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &ManifestError{Path: path, Message: "failed to decode manifest", Cause: err}
	}
	return &types.Manifest{Items: items}, nil
}

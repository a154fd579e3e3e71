package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/note-harvester/internal/types"
)

func TestSchemaEmbedded(t *testing.T) {
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS crawl_runs")
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS crawl_items")
}

func TestImagesRoundTrip(t *testing.T) {
	images := []types.ImageRef{{Path: "data/a/k_x_0.jpg", URL: "https://cdn/x"}}

	data, err := marshalImages(images)
	require.NoError(t, err)

	got, err := unmarshalImages(data)
	require.NoError(t, err)
	assert.Equal(t, images, got)
}

func TestImagesNilBecomesEmptyArray(t *testing.T) {
	data, err := marshalImages(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	got, err := unmarshalImages(nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = unmarshalImages([]byte("{bad"))
	assert.Error(t, err)
}

type fakeSaver struct {
	runID   uuid.UUID
	keyword string
	rec     types.ItemRecord
	err     error
}

func (f *fakeSaver) SaveItem(_ context.Context, runID uuid.UUID, keyword string, rec types.ItemRecord) error {
	f.runID, f.keyword, f.rec = runID, keyword, rec
	return f.err
}

func TestRunRecorder(t *testing.T) {
	saver := &fakeSaver{}
	runID := uuid.New()
	r := NewRunRecorder(saver, runID)

	rec := types.ItemRecord{ID: 7, Title: "t", URL: "https://x/explore/7", TextFile: "data/t/text.txt"}
	require.NoError(t, r.RecordItem(context.Background(), "cats", rec))

	assert.Equal(t, runID, r.RunID())
	assert.Equal(t, runID, saver.runID)
	assert.Equal(t, "cats", saver.keyword)
	assert.Equal(t, rec, saver.rec)

	saver.err = errors.New("connection refused")
	assert.Error(t, r.RecordItem(context.Background(), "cats", rec))
}

package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/note-harvester/internal/types"
)

// ItemSaver stores manifest records for a run
type ItemSaver interface {
	SaveItem(ctx context.Context, runID uuid.UUID, keyword string, rec types.ItemRecord) error
}

// RunRecorder binds an ItemSaver to one run so the crawler can report each
// record as it is appended.
type RunRecorder struct {
	saver ItemSaver
	runID uuid.UUID
}

// NewRunRecorder returns a recorder writing to runID.
func NewRunRecorder(saver ItemSaver, runID uuid.UUID) *RunRecorder {
	return &RunRecorder{saver: saver, runID: runID}
}

// RunID returns the run being recorded.
func (r *RunRecorder) RunID() uuid.UUID {
	return r.runID
}

// RecordItem saves rec under the bound run.
func (r *RunRecorder) RecordItem(ctx context.Context, keyword string, rec types.ItemRecord) error {
	return r.saver.SaveItem(ctx, r.runID, keyword, rec)
}

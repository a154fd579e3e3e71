package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/note-harvester/internal/types"
)

// Run statuses
const (
	RunStatusRunning     = "running"
	RunStatusCompleted   = "completed"
	RunStatusFailed      = "failed"
	RunStatusInterrupted = "interrupted"
)

// Run is one acquisition run
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Keywords    []string   `json:"keywords"`
	OutputDir   string     `json:"output_dir"`
	Status      string     `json:"status"`
	ItemCount   int        `json:"item_count"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunItem is a manifest record stored for a run
type RunItem struct {
	RunID   uuid.UUID        `json:"run_id"`
	Keyword string           `json:"keyword"`
	Record  types.ItemRecord `json:"record"`
}

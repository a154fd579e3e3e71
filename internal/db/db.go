// Package db records acquisition runs and their items in PostgreSQL.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/note-harvester/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// ErrRunNotFound is returned when a run ID has no row
var ErrRunNotFound = errors.New("run not found")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the run tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CreateRun creates a new run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, keywords []string, outputDir string) (uuid.UUID, error) {
	id := uuid.New()
	if keywords == nil {
		keywords = []string{}
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO crawl_runs (id, keywords, output_dir, status)
		 VALUES ($1, $2, $3, $4)`,
		id, keywords, outputDir, RunStatusRunning,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun sets the final status and item count of a run
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, itemCount int) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE crawl_runs SET status = $1, item_count = $2, completed_at = NOW() WHERE id = $3`,
		status, itemCount, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to complete run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// GetRun retrieves a run by ID
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, keywords, output_dir, status, item_count, created_at, completed_at
		 FROM crawl_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Keywords, &run.OutputDir, &run.Status, &run.ItemCount, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// SaveItem stores one manifest record for a run. Saving the same item ID
// twice replaces the earlier row.
func (db *DB) SaveItem(ctx context.Context, runID uuid.UUID, keyword string, rec types.ItemRecord) error {
	images, err := marshalImages(rec.Images)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO crawl_items (run_id, item_id, keyword, title, url, images, text_file)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (run_id, item_id) DO UPDATE
		 SET keyword = $3, title = $4, url = $5, images = $6, text_file = $7, created_at = NOW()`,
		runID, rec.ID, keyword, rec.Title, rec.URL, images, rec.TextFile,
	)
	if err != nil {
		return fmt.Errorf("failed to save item %d: %w", rec.ID, err)
	}
	return nil
}

// GetRunItems returns the items of a run ordered by item ID
func (db *DB) GetRunItems(ctx context.Context, runID uuid.UUID) ([]RunItem, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT item_id, keyword, title, url, images, text_file
		 FROM crawl_items WHERE run_id = $1 ORDER BY item_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query run items: %w", err)
	}
	defer rows.Close()

	var items []RunItem
	for rows.Next() {
		item := RunItem{RunID: runID}
		var images []byte
		if err := rows.Scan(&item.Record.ID, &item.Keyword, &item.Record.Title, &item.Record.URL, &images, &item.Record.TextFile); err != nil {
			return nil, fmt.Errorf("failed to scan run item: %w", err)
		}
		if item.Record.Images, err = unmarshalImages(images); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run items: %w", err)
	}
	return items, nil
}

func marshalImages(images []types.ImageRef) ([]byte, error) {
	if images == nil {
		images = []types.ImageRef{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}
	return data, nil
}

func unmarshalImages(data []byte) ([]types.ImageRef, error) {
	images := []types.ImageRef{}
	if len(data) == 0 {
		return images, nil
	}
	if err := json.Unmarshal(data, &images); err != nil {
		return nil, fmt.Errorf("failed to unmarshal images: %w", err)
	}
	return images, nil
}

// Package dedupe tracks repeat submissions of the same source object so
// callers can tell a first-time optimization from a re-trigger.
package dedupe

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// Tracker records optimize submissions per bucket/key
type Tracker struct {
	db *sql.DB
}

// NewTracker creates a dedupe tracker and ensures its table exists
func NewTracker(db *sql.DB) (*Tracker, error) {
	tracker := &Tracker{db: db}

	if err := tracker.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure dedupe table: %w", err)
	}

	return tracker, nil
}

// ensureTable creates the optimize_dedupe table if it doesn't exist
func (t *Tracker) ensureTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS optimize_dedupe (
			bucket TEXT NOT NULL,
			object_key TEXT NOT NULL,
			first_seen_at TIMESTAMPTZ DEFAULT NOW(),
			last_seen_at TIMESTAMPTZ DEFAULT NOW(),
			seen_count INTEGER DEFAULT 1,
			PRIMARY KEY (bucket, object_key)
		)
	`

	if _, err := t.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create optimize_dedupe table: %w", err)
	}

	log.Printf("optimize_dedupe table ready")
	return nil
}

// Record records a submission and returns how many times this object has
// been seen, including this one
func (t *Tracker) Record(ctx context.Context, bucket, key string) (int, error) {
	query := `
		INSERT INTO optimize_dedupe (bucket, object_key, first_seen_at, last_seen_at, seen_count)
		VALUES ($1, $2, NOW(), NOW(), 1)
		ON CONFLICT (bucket, object_key) DO UPDATE
		SET last_seen_at = NOW(),
		    seen_count = optimize_dedupe.seen_count + 1
		RETURNING seen_count
	`

	var seenCount int
	if err := t.db.QueryRowContext(ctx, query, bucket, key).Scan(&seenCount); err != nil {
		return 0, fmt.Errorf("failed to record dedupe: %w", err)
	}

	return seenCount, nil
}

// SeenCount retrieves the submission count for an object, 0 if never seen
func (t *Tracker) SeenCount(ctx context.Context, bucket, key string) (int, error) {
	query := `SELECT seen_count FROM optimize_dedupe WHERE bucket = $1 AND object_key = $2`

	var seenCount int
	err := t.db.QueryRowContext(ctx, query, bucket, key).Scan(&seenCount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get seen count: %w", err)
	}

	return seenCount, nil
}

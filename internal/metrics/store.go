// Package metrics records import and aggregation diagnostics, most
// importantly coercion-failure counts, so free-text quantities never
// disappear silently.
package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ImportEvent records one bulk import or clip run.
type ImportEvent struct {
	Source           string // "csv", "clip", "shopping-csv"
	RowsImported     int
	CoercionFailures int
	LatencyMS        int64
	Timestamp        time.Time
}

// Store persists import events to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves one event.
func (s *Store) Record(ctx context.Context, e ImportEvent) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_events (source, rows_imported, coercion_failures, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.Source, e.RowsImported, e.CoercionFailures, e.LatencyMS, ts)
	if err != nil {
		return fmt.Errorf("failed to record import event: %w", err)
	}
	return nil
}

// Recent returns the most recent events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]ImportEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, rows_imported, coercion_failures, latency_ms, created_at
		FROM import_events
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import events: %w", err)
	}
	defer rows.Close()

	var events []ImportEvent
	for rows.Next() {
		var e ImportEvent
		if err := rows.Scan(&e.Source, &e.RowsImported, &e.CoercionFailures, &e.LatencyMS, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan import event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating import events: %w", err)
	}
	return events, nil
}

// Cleanup removes events older than the given number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) error {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM import_events WHERE created_at < ?`, threshold); err != nil {
		return fmt.Errorf("failed to clean up import events: %w", err)
	}
	return nil
}

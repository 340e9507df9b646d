/*
Package sqlite persists the vehicle profile and the maintenance history.

PURPOSE:
  Implements the storage boundary the scheduler depends on: a singleton
  vehicle profile (purchase date) and an append/delete log of service events.
  The evaluator itself never touches this package; it receives a snapshot.

KEY TABLES:
  car_info:          Singleton row holding the purchase date. Inserting when a
                     row already exists is a no-op, never an update.
  maintenance_logs:  One row per recorded service action.

ATOMICITY:
  AppendEvents and Reset run inside a single SQL transaction: a submit that
  logs several items either fully applies or not at all.

CONCURRENCY:
  sync.RWMutex around access, same as a single-writer deployment needs.

WAL MODE:
  Opened with WAL so readers don't block the writer.

USAGE:
  store, err := sqlite.New("./data/garage.db")   // ":memory:" for tests
  if err != nil { ... }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/maintenance-engine/schedule"
)

// Store implements the vehicle profile and service history stores.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Vehicle profile (singleton: the CHECK pins the only possible row)
	CREATE TABLE IF NOT EXISTS car_info (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		purchase_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Service history
	CREATE TABLE IF NOT EXISTS maintenance_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		maintenance_date TEXT NOT NULL,
		mileage INTEGER NOT NULL,
		item_name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_logs_item
		ON maintenance_logs(item_name);

	-- Read path: history is listed newest-first
	CREATE INDEX IF NOT EXISTS idx_logs_date_mileage
		ON maintenance_logs(maintenance_date DESC, mileage DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// VEHICLE PROFILE
// =============================================================================

// GetPurchaseDate returns the stored purchase date and whether one exists.
func (s *Store) GetPurchaseDate(ctx context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var date string
	err := s.db.QueryRowContext(ctx, "SELECT purchase_date FROM car_info WHERE id = 1").Scan(&date)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get purchase date: %w", err)
	}
	return date, true, nil
}

// SetPurchaseDateIfAbsent records the purchase date once. Returns true iff
// the date was newly set; a second call is a no-op, not an update.
func (s *Store) SetPurchaseDateIfAbsent(ctx context.Context, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO car_info (id, purchase_date, created_at) VALUES (1, ?, ?)",
		date, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("failed to set purchase date: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// =============================================================================
// SERVICE HISTORY
// =============================================================================

// AppendEvents inserts a batch of service events atomically.
func (s *Store) AppendEvents(ctx context.Context, events []schedule.ServiceEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, ev := range events {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO maintenance_logs (maintenance_date, mileage, item_name, created_at) VALUES (?, ?, ?, ?)",
			ev.Date, ev.Mileage, ev.ItemName, now,
		)
		if err != nil {
			return fmt.Errorf("failed to append event %q: %w", ev.ItemName, err)
		}
	}

	return tx.Commit()
}

// ListEvents returns the full history, newest first (date, then mileage).
// The evaluator re-derives its own maxima and does not rely on this order;
// the ordering exists for display.
func (s *Store) ListEvents(ctx context.Context) ([]schedule.ServiceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, maintenance_date, mileage, item_name, created_at
		FROM maintenance_logs
		ORDER BY maintenance_date DESC, mileage DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []schedule.ServiceEvent{}
	for rows.Next() {
		var (
			ev        schedule.ServiceEvent
			createdAt string
		)
		if err := rows.Scan(&ev.ID, &ev.Date, &ev.Mileage, &ev.ItemName, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		events = append(events, ev)
	}

	return events, rows.Err()
}

// DeleteEvent removes one history row. Returns true iff a row was removed.
func (s *Store) DeleteEvent(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM maintenance_logs WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Reset deletes the vehicle profile and the entire history in one
// transaction.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM car_info"); err != nil {
		return fmt.Errorf("failed to clear car_info: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM maintenance_logs"); err != nil {
		return fmt.Errorf("failed to clear maintenance_logs: %w", err)
	}

	return tx.Commit()
}

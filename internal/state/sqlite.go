package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"rainalert/internal/types"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS alert_state (
	location_key TEXT PRIMARY KEY,
	state        TEXT NOT NULL,
	updated_at   TEXT NOT NULL
)`

// SQLiteStore keeps AlertState as one row per location in a SQLite file,
// using the pure-Go modernc driver.
type SQLiteStore struct {
	db  *sql.DB
	key string
}

var _ types.StateStore = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (creating if needed) the database at path and
// ensures the schema exists. key identifies the monitored location.
func OpenSQLiteStore(ctx context.Context, path, key string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating alert_state table: %w", err)
	}
	return &SQLiteStore{db: db, key: key}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the row for the store's location. No row yields the empty state.
func (s *SQLiteStore) Load(ctx context.Context) (types.AlertState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM alert_state WHERE location_key = ?`, s.key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return types.NewAlertState(), nil
	}
	if err != nil {
		return types.NewAlertState(), types.NewAppError(types.ErrCodeStateReadFailed, "querying sqlite state", err)
	}
	return Decode([]byte(raw))
}

// Save upserts the row for the store's location.
func (s *SQLiteStore) Save(ctx context.Context, st types.AlertState) error {
	data, err := Encode(st)
	if err != nil {
		return err
	}
	updated := st.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO alert_state (location_key, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(location_key) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		s.key, string(data), updated.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeStateWriteFailed, "upserting sqlite state", err)
	}
	return nil
}

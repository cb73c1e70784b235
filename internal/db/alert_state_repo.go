package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"rainalert/internal/state"
	"rainalert/internal/types"
)

// alertStateSchema is applied by EnsureSchema. The job owns a single table,
// so there is no separate migration tool.
const alertStateSchema = `CREATE TABLE IF NOT EXISTS alert_state (
	location_key TEXT PRIMARY KEY,
	state        JSONB NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// AlertStateRepository stores AlertState as one JSONB row per location.
// It implements types.StateStore.
type AlertStateRepository struct {
	db  DBTX
	key string
}

var _ types.StateStore = (*AlertStateRepository)(nil)

// NewAlertStateRepository creates a repository for the location identified
// by key (see config.Config.StateKey).
func NewAlertStateRepository(db DBTX, key string) *AlertStateRepository {
	return &AlertStateRepository{db: db, key: key}
}

// EnsureSchema creates the alert_state table if it does not exist.
func (r *AlertStateRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, alertStateSchema); err != nil {
		return types.NewAppError(types.ErrCodeStateWriteFailed, "creating alert_state table", err)
	}
	return nil
}

// Load reads the row for the repository's location. No row yields the empty
// state without error.
func (r *AlertStateRepository) Load(ctx context.Context) (types.AlertState, error) {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT state FROM alert_state WHERE location_key = $1`,
		r.key,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.NewAlertState(), nil
	}
	if err != nil {
		return types.NewAlertState(), types.NewAppError(types.ErrCodeStateReadFailed, "failed to load alert state", err)
	}
	return state.Decode(raw)
}

// Save upserts the row for the repository's location.
func (r *AlertStateRepository) Save(ctx context.Context, st types.AlertState) error {
	data, err := state.Encode(st)
	if err != nil {
		return err
	}
	updated := st.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO alert_state (location_key, state, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (location_key) DO UPDATE
		 SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`,
		r.key, data, updated,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeStateWriteFailed, "failed to save alert state", err)
	}
	return nil
}

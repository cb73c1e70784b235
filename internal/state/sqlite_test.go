package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainalert/internal/types"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "alert_state.db")

	store, err := OpenSQLiteStore(ctx, path, "McKinney@33.1547,-96.7180")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	st, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.ColdCrossed)

	first := types.AlertState{
		ColdCrossed:   map[int]bool{15: true},
		RainWindowKey: strPtr("2026-10-18T15:04:00-05:00"),
		UpdatedAt:     time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, first))

	second := first.Clone()
	second.ColdCrossed[10] = true
	second.RainWindowKey = nil
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{15: true, 10: true}, got.ColdCrossed)
	assert.Nil(t, got.RainWindowKey)
}

func TestSQLiteStore_KeysAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "alert_state.db")

	a, err := OpenSQLiteStore(ctx, path, "A")
	require.NoError(t, err)
	require.NoError(t, a.Save(ctx, types.AlertState{ColdCrossed: map[int]bool{5: true}}))
	require.NoError(t, a.Close())

	b, err := OpenSQLiteStore(ctx, path, "B")
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	st, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.ColdCrossed)
}

func TestSQLiteStore_CorruptRow(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLiteStore(ctx, ":memory:", "k")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.db.ExecContext(ctx, `INSERT INTO alert_state (location_key, state, updated_at) VALUES ('k', 'not json', '')`)
	require.NoError(t, err)

	st, err := store.Load(ctx)
	assert.Equal(t, types.ErrCodeStateReadFailed, types.CodeOf(err))
	assert.Empty(t, st.ColdCrossed)
}

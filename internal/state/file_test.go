package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainalert/internal/types"
)

func strPtr(s string) *string { return &s }

func TestFileStore_MissingFileIsEmptyState(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), ".state", "alert_state.json"))

	st, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st.ColdCrossed)
	assert.NotNil(t, st.ColdCrossed)
	assert.Nil(t, st.RainWindowKey)
}

func TestFileStore_RoundTripCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".state", "alert_state.json")
	store := NewFileStore(path)

	want := types.AlertState{
		ColdCrossed:   map[int]bool{15: true, 10: true, 5: false, 0: false},
		RainWindowKey: strPtr("2026-10-18T15:04:00-05:00"),
		UpdatedAt:     time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(context.Background(), want))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want.ColdCrossed, got.ColdCrossed)
	assert.Equal(t, want.RainKey(), got.RainKey())
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, types.AlertState{ColdCrossed: map[int]bool{15: true}, RainWindowKey: strPtr("k")}))
	require.NoError(t, store.Save(ctx, types.NewAlertState()))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, got.ColdCrossed[15])
	assert.Nil(t, got.RainWindowKey)
}

func TestFileStore_CorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cold_crossed": {"15": tru`), 0o600))

	st, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeStateReadFailed, types.CodeOf(err))
	assert.True(t, types.IsStateError(err))
	assert.Empty(t, st.ColdCrossed)
	assert.Nil(t, st.RainWindowKey)
}

func TestFileStore_LegacyFileMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rain_alerted": true, "cold": {"15": true, "10": false}}`), 0o600))

	st, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, st.ColdCrossed[15])
	assert.False(t, st.ColdCrossed[10])
	assert.Nil(t, st.RainWindowKey)
}

func TestFileStore_SaveFailsWhenDirectoryIsAFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := NewFileStore(filepath.Join(blocker, "state.json")).Save(context.Background(), types.NewAlertState())
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeStateWriteFailed, types.CodeOf(err))
}

package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"rainalert/internal/types"
)

// FileStore keeps AlertState in a single JSON file. Writes go to a temporary
// file in the same directory which is then renamed over the target, so a
// crash mid-write never leaves a truncated record.
type FileStore struct {
	path string
}

var _ types.StateStore = (*FileStore)(nil)

// NewFileStore creates a FileStore for path. Parent directories are created
// on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file location.
func (s *FileStore) Path() string { return s.path }

// Load reads the state file. A missing file is the normal first-run case and
// returns the empty state without error.
func (s *FileStore) Load(_ context.Context) (types.AlertState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return types.NewAlertState(), nil
	}
	if err != nil {
		return types.NewAlertState(), types.NewAppError(
			types.ErrCodeStateReadFailed,
			fmt.Sprintf("reading state file %s", s.path),
			err,
		)
	}
	st, err := Decode(data)
	if err != nil {
		return st, withPath(err, s.path)
	}
	return st, nil
}

// Save replaces the state file atomically.
func (s *FileStore) Save(_ context.Context, st types.AlertState) error {
	data, err := Encode(st)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return writeErr(s.path, "creating state directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".alert_state-*.tmp")
	if err != nil {
		return writeErr(s.path, "creating temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return writeErr(s.path, "writing temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return writeErr(s.path, "syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return writeErr(s.path, "closing temp file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return writeErr(s.path, "renaming temp file", err)
	}
	return nil
}

func writeErr(path, step string, err error) error {
	return types.NewAppErrorWithDetails(
		types.ErrCodeStateWriteFailed,
		step,
		err,
		map[string]any{"path": path},
	)
}

func withPath(err error, path string) error {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr.WithDetails(map[string]any{"path": path})
	}
	return err
}

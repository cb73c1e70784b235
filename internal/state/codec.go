// Package state persists AlertState between runs. The file store is the
// default for cron use; the SQLite store suits a single host that prefers a
// database file; the Postgres store lives in internal/db.
package state

import (
	"bytes"
	"encoding/json"

	"rainalert/internal/types"
)

// Decode parses a stored AlertState record. Both the current layout and the
// legacy {"rain_alerted","cold"} layout are accepted. An empty or corrupt
// record yields the empty state and a state_read_failed error.
func Decode(data []byte) (types.AlertState, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return types.NewAlertState(), types.NewAppError(types.ErrCodeStateReadFailed, "state record is empty", nil)
	}
	var st types.AlertState
	if err := json.Unmarshal(data, &st); err != nil {
		return types.NewAlertState(), types.NewAppError(types.ErrCodeStateReadFailed, "state record is corrupt", err)
	}
	if st.ColdCrossed == nil {
		st.ColdCrossed = make(map[int]bool)
	}
	return st, nil
}

// Encode serializes st for storage.
func Encode(st types.AlertState) ([]byte, error) {
	if st.ColdCrossed == nil {
		st.ColdCrossed = make(map[int]bool)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeStateWriteFailed, "encoding state", err)
	}
	return data, nil
}

package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// AlertState is the only persisted entity. It records which cold tiers are
// currently crossed-and-alerted and which rain onset was last alerted.
type AlertState struct {
	ColdCrossed   map[int]bool `json:"cold_crossed"`
	RainWindowKey *string      `json:"rain_window_key"`
	UpdatedAt     time.Time    `json:"updated_at,omitempty"`
}

// NewAlertState returns the empty default state.
func NewAlertState() AlertState {
	return AlertState{ColdCrossed: make(map[int]bool)}
}

// Clone returns a deep copy so evaluators never alias the caller's map.
func (s AlertState) Clone() AlertState {
	out := AlertState{
		ColdCrossed: make(map[int]bool, len(s.ColdCrossed)),
		UpdatedAt:   s.UpdatedAt,
	}
	for k, v := range s.ColdCrossed {
		out.ColdCrossed[k] = v
	}
	if s.RainWindowKey != nil {
		key := *s.RainWindowKey
		out.RainWindowKey = &key
	}
	return out
}

// RainKey returns the stored onset key or "" when none is pending.
func (s AlertState) RainKey() string {
	if s.RainWindowKey == nil {
		return ""
	}
	return *s.RainWindowKey
}

// legacyAlertState is the record written by the earlier cron script:
// {"rain_alerted": bool, "cold": {"15": true}}.
type legacyAlertState struct {
	RainAlerted *bool           `json:"rain_alerted"`
	Cold        map[string]bool `json:"cold"`
}

// UnmarshalJSON accepts both the current record and the legacy one. The
// legacy cold map is migrated; the boolean rain flag is dropped because rain
// dedup is keyed by onset time.
func (s *AlertState) UnmarshalJSON(data []byte) error {
	type current AlertState
	var cur current
	if err := json.Unmarshal(data, &cur); err != nil {
		return err
	}

	var legacy legacyAlertState
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}

	*s = AlertState(cur)
	if s.ColdCrossed == nil {
		s.ColdCrossed = make(map[int]bool, len(legacy.Cold))
	}
	if len(cur.ColdCrossed) == 0 {
		for k, v := range legacy.Cold {
			threshold, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			s.ColdCrossed[threshold] = v
		}
	}
	return nil
}

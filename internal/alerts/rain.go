package alerts

import "rainalert/internal/types"

// RainOutcome is the result of EvaluateRain.
type RainOutcome string

const (
	// RainNone: no rain in the sample and nothing was pending.
	RainNone RainOutcome = "none"
	// RainCleared: no rain in the sample; the stored onset is forgotten.
	RainCleared RainOutcome = "cleared"
	// RainDuplicate: the onset was already alerted.
	RainDuplicate RainOutcome = "duplicate_window"
	// RainNotify: a new onset, send an alert.
	RainNotify RainOutcome = "notify"
)

// RainResult is the outcome of one rain evaluation.
type RainResult struct {
	Outcome RainOutcome
	// Key is the next RainWindowKey state.
	Key   *string
	Onset *types.RainOnset
}

// EvaluateRain deduplicates rain alerts by onset time. An onset whose key
// differs from priorKey (including no prior key) is a candidate; the same key
// is a duplicate; no onset clears the key so the next rain event alerts again.
func EvaluateRain(onset *types.RainOnset, priorKey *string) RainResult {
	if onset == nil {
		if priorKey != nil {
			return RainResult{Outcome: RainCleared}
		}
		return RainResult{Outcome: RainNone}
	}

	key := onset.Key()
	if priorKey != nil && *priorKey == key {
		return RainResult{Outcome: RainDuplicate, Key: &key, Onset: onset}
	}
	return RainResult{Outcome: RainNotify, Key: &key, Onset: onset}
}

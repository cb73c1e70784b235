package alerts

import "rainalert/internal/types"

// ColdOutcome is what happened to one tier in a run.
type ColdOutcome string

const (
	// ColdNotify: newly crossed, send an alert.
	ColdNotify ColdOutcome = "notify"
	// ColdSuppressedQuiet: newly crossed during quiet hours; marked without
	// an alert.
	ColdSuppressedQuiet ColdOutcome = "suppressed_quiet_hours"
	// ColdAlreadyCrossed: still crossed since an earlier run.
	ColdAlreadyCrossed ColdOutcome = "already_crossed"
	// ColdCleared: was crossed, now above the threshold again.
	ColdCleared ColdOutcome = "cleared"
	// ColdAbove: above the threshold and was not crossed.
	ColdAbove ColdOutcome = "above"
)

// ColdDecision is the per-tier result of EvaluateCold.
type ColdDecision struct {
	Tier    types.ColdTier
	Outcome ColdOutcome
}

// ColdResult is the outcome of one cold evaluation.
type ColdResult struct {
	// Crossed is the next ColdCrossed state. It only holds the evaluated
	// tiers; entries for thresholds no longer configured are dropped.
	Crossed   map[int]bool
	Decisions []ColdDecision
}

// Candidates returns the tiers to notify, in evaluation order.
func (r ColdResult) Candidates() []types.ColdTier {
	var out []types.ColdTier
	for _, d := range r.Decisions {
		if d.Outcome == ColdNotify {
			out = append(out, d.Tier)
		}
	}
	return out
}

// EvaluateCold applies threshold hysteresis to every tier independently.
//
// A tier is crossed when feelsLike <= threshold. A newly crossed tier becomes
// a candidate and is marked; a tier that is no longer crossed is unmarked; a
// tier that stays crossed produces nothing. When quiet is true, candidates
// that are not severe are suppressed but still marked, so they do not fire
// once quiet hours end.
//
// prior is not modified.
func EvaluateCold(feelsLike float64, tiers []types.ColdTier, prior map[int]bool, quiet bool) ColdResult {
	result := ColdResult{
		Crossed:   make(map[int]bool, len(tiers)),
		Decisions: make([]ColdDecision, 0, len(tiers)),
	}

	for _, tier := range tiers {
		crossed := feelsLike <= float64(tier.Threshold)
		prev := prior[tier.Threshold]

		var outcome ColdOutcome
		switch {
		case crossed && prev:
			outcome = ColdAlreadyCrossed
		case crossed && quiet && !tier.Severe():
			outcome = ColdSuppressedQuiet
		case crossed:
			outcome = ColdNotify
		case prev:
			outcome = ColdCleared
		default:
			outcome = ColdAbove
		}

		result.Crossed[tier.Threshold] = crossed
		result.Decisions = append(result.Decisions, ColdDecision{Tier: tier, Outcome: outcome})
	}
	return result
}

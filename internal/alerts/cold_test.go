package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainalert/internal/types"
)

var stockTiers = []types.ColdTier{
	{Threshold: 15, Title: "🧥 Cool Weather Alert", Advice: "A light jacket may be useful."},
	{Threshold: 10, Title: "❄️ Cold Weather Alert", Advice: "Dress warmly if heading out."},
	{Threshold: 5, Title: "🧊 Very Cold Alert", Advice: "Cold conditions expected. Bundle up."},
	{Threshold: 0, Title: "🥶 Freezing Alert", Advice: "Risk of frost or icy surfaces."},
}

func thresholds(tiers []types.ColdTier) []int {
	out := make([]int, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, t.Threshold)
	}
	return out
}

func TestEvaluateCold_AllTiersCrossIndependently(t *testing.T) {
	res := EvaluateCold(-2, stockTiers, map[int]bool{}, false)

	assert.Equal(t, []int{15, 10, 5, 0}, thresholds(res.Candidates()))
	assert.Equal(t, map[int]bool{15: true, 10: true, 5: true, 0: true}, res.Crossed)
}

func TestEvaluateCold_IdempotentSecondRun(t *testing.T) {
	first := EvaluateCold(8, stockTiers, map[int]bool{}, false)
	second := EvaluateCold(8, stockTiers, first.Crossed, false)

	assert.Len(t, first.Candidates(), 2)
	assert.Empty(t, second.Candidates())
	assert.Equal(t, first.Crossed, second.Crossed)
	assert.Equal(t, ColdAlreadyCrossed, second.Decisions[0].Outcome)
}

func TestEvaluateCold_HysteresisReset(t *testing.T) {
	down := EvaluateCold(9, stockTiers, map[int]bool{}, false)
	up := EvaluateCold(11, stockTiers, down.Crossed, false)
	downAgain := EvaluateCold(9, stockTiers, up.Crossed, false)

	assert.Equal(t, []int{15, 10}, thresholds(down.Candidates()))
	assert.Empty(t, up.Candidates())
	assert.False(t, up.Crossed[10])
	assert.True(t, up.Crossed[15])
	assert.Equal(t, ColdCleared, up.Decisions[1].Outcome)
	assert.Equal(t, []int{10}, thresholds(downAgain.Candidates()))
}

func TestEvaluateCold_BoundaryIsInclusive(t *testing.T) {
	res := EvaluateCold(10, stockTiers, map[int]bool{}, false)
	assert.Equal(t, []int{15, 10}, thresholds(res.Candidates()))

	res = EvaluateCold(10.01, stockTiers, map[int]bool{}, false)
	assert.Equal(t, []int{15}, thresholds(res.Candidates()))
}

func TestEvaluateCold_QuietHoursSuppressButMark(t *testing.T) {
	res := EvaluateCold(8, stockTiers, map[int]bool{}, true)

	assert.Empty(t, res.Candidates())
	assert.True(t, res.Crossed[15])
	assert.True(t, res.Crossed[10])
	assert.False(t, res.Crossed[5])
	assert.Equal(t, ColdSuppressedQuiet, res.Decisions[0].Outcome)
	assert.Equal(t, ColdSuppressedQuiet, res.Decisions[1].Outcome)

	// After quiet hours the same conditions stay silent.
	morning := EvaluateCold(8, stockTiers, res.Crossed, false)
	assert.Empty(t, morning.Candidates())
}

func TestEvaluateCold_SevereTierBypassesQuietHours(t *testing.T) {
	res := EvaluateCold(-2, stockTiers, map[int]bool{}, true)

	require.Equal(t, []int{0}, thresholds(res.Candidates()))
	assert.Equal(t, types.PriorityEmergency, res.Candidates()[0].EffectivePriority())
	for _, th := range []int{15, 10, 5, 0} {
		assert.True(t, res.Crossed[th], "threshold %d", th)
	}
}

func TestEvaluateCold_WarmClearsEverything(t *testing.T) {
	prior := map[int]bool{15: true, 10: true, 5: true, 0: true}
	res := EvaluateCold(16, stockTiers, prior, false)

	assert.Empty(t, res.Candidates())
	for _, th := range []int{15, 10, 5, 0} {
		assert.False(t, res.Crossed[th])
	}
	assert.True(t, prior[0], "prior map must not be modified")
}

func TestEvaluateCold_DropsUnconfiguredThresholds(t *testing.T) {
	res := EvaluateCold(20, stockTiers, map[int]bool{-10: true}, false)
	_, ok := res.Crossed[-10]
	assert.False(t, ok)
}

func TestEvaluateCold_NilPrior(t *testing.T) {
	res := EvaluateCold(4, stockTiers, nil, false)
	assert.Equal(t, []int{15, 10, 5}, thresholds(res.Candidates()))
}

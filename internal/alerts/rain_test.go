package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainalert/internal/types"
)

func TestEvaluateRain_DedupByOnset(t *testing.T) {
	t1 := &types.RainOnset{Time: time.Date(2026, 10, 18, 15, 4, 0, 0, time.UTC), Intensity: 0.4}
	t2 := &types.RainOnset{Time: t1.Time.Add(40 * time.Minute), Intensity: 1.1}

	first := EvaluateRain(t1, nil)
	require.Equal(t, RainNotify, first.Outcome)
	require.NotNil(t, first.Key)
	assert.Equal(t, "2026-10-18T15:04:00Z", *first.Key)

	second := EvaluateRain(t1, first.Key)
	assert.Equal(t, RainDuplicate, second.Outcome)
	assert.Equal(t, *first.Key, *second.Key)

	third := EvaluateRain(t2, second.Key)
	assert.Equal(t, RainNotify, third.Outcome)
	assert.Equal(t, "2026-10-18T15:44:00Z", *third.Key)
}

func TestEvaluateRain_NoOnsetClearsKey(t *testing.T) {
	key := "2026-10-18T15:04:00Z"

	cleared := EvaluateRain(nil, &key)
	assert.Equal(t, RainCleared, cleared.Outcome)
	assert.Nil(t, cleared.Key)

	none := EvaluateRain(nil, nil)
	assert.Equal(t, RainNone, none.Outcome)
	assert.Nil(t, none.Key)
}

func TestEvaluateRain_SameOnsetAfterClearAlertsAgain(t *testing.T) {
	onset := &types.RainOnset{Time: time.Date(2026, 10, 18, 15, 4, 0, 0, time.UTC)}

	first := EvaluateRain(onset, nil)
	gap := EvaluateRain(nil, first.Key)
	again := EvaluateRain(onset, gap.Key)

	assert.Equal(t, RainNotify, again.Outcome)
}

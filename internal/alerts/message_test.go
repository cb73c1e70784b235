package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainalert/internal/types"
)

func TestMinutesUntil(t *testing.T) {
	now := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, 12, MinutesUntil(now.Add(12*time.Minute+59*time.Second), now))
	assert.Equal(t, 0, MinutesUntil(now.Add(30*time.Second), now))
	assert.Equal(t, 0, MinutesUntil(now.Add(-5*time.Minute), now))
}

func TestRainAlert(t *testing.T) {
	zone, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	now := time.Date(2026, 10, 18, 19, 52, 0, 0, time.UTC) // 14:52 CDT
	onset := types.RainOnset{Time: time.Date(2026, 10, 18, 20, 4, 0, 0, time.UTC), Intensity: 1.2}
	loc := types.Location{City: "McKinney", Zone: zone}

	alert := RainAlert(onset, now, loc)

	assert.Equal(t, types.AlertKindRain, alert.Kind)
	assert.Equal(t, "Rain Alert", alert.Title)
	assert.Equal(t, types.PriorityNormal, alert.Priority)
	assert.Equal(t, "Moderate rain in about 12 min (3:04 PM) in McKinney.\nTake an umbrella ☔", alert.Message)
	assert.Nil(t, alert.Threshold)
}

func TestRainAlert_OnsetPassed(t *testing.T) {
	now := time.Date(2026, 10, 18, 15, 10, 0, 0, time.UTC)
	onset := types.RainOnset{Time: now.Add(-3 * time.Minute)}

	alert := RainAlert(onset, now, types.Location{City: "McKinney"})
	assert.Equal(t, "Possible rain starting now (3:07 PM) in McKinney.\nTake an umbrella ☔", alert.Message)
}

func TestColdAlert(t *testing.T) {
	now := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)
	loc := types.Location{City: "McKinney", Units: types.UnitsMetric}

	alert := ColdAlert(stockTiers[3], -1.6, now, loc)

	assert.Equal(t, types.AlertKindCold, alert.Kind)
	assert.Equal(t, "🥶 Freezing Alert", alert.Title)
	assert.Equal(t, "Feels like -2°C in McKinney.\nRisk of frost or icy surfaces.", alert.Message)
	assert.Equal(t, types.PriorityEmergency, alert.Priority)
	require.NotNil(t, alert.Threshold)
	assert.Equal(t, 0, *alert.Threshold)
}

func TestColdAlert_ImperialNoAdvice(t *testing.T) {
	tier := types.ColdTier{Threshold: 40, Title: "Chilly"}
	loc := types.Location{City: "Duluth", Units: types.UnitsImperial}

	alert := ColdAlert(tier, 38.6, time.Now(), loc)
	assert.Equal(t, "Feels like 39°F in Duluth.", alert.Message)
	assert.Equal(t, types.PriorityNormal, alert.Priority)
}

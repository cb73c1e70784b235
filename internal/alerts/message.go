// Package alerts holds the pure decision logic of the alert engine: cold
// threshold hysteresis, quiet hours, rain onset deduplication, and the text
// of the resulting notifications. Nothing here performs I/O.
package alerts

import (
	"fmt"
	"math"
	"strings"
	"time"

	"rainalert/internal/types"
)

// RainTitle is the title of every rain notification.
const RainTitle = "Rain Alert"

// MinutesUntil returns whole minutes from now to onset, floored and never
// negative.
func MinutesUntil(onset, now time.Time) int {
	m := int(math.Floor(onset.Sub(now).Minutes()))
	return max(m, 0)
}

// RainAlert builds the notification for a rain onset.
func RainAlert(onset types.RainOnset, now time.Time, loc types.Location) types.Alert {
	at := onset.Time
	if loc.Zone != nil {
		at = at.In(loc.Zone)
	}
	label := types.IntensityLabel(onset.Intensity)
	label = strings.ToUpper(label[:1]) + label[1:]

	minutes := MinutesUntil(onset.Time, now)
	var when string
	if minutes == 0 {
		when = "starting now"
	} else {
		when = fmt.Sprintf("in about %d min", minutes)
	}

	return types.Alert{
		Kind:      types.AlertKindRain,
		Title:     RainTitle,
		Message:   fmt.Sprintf("%s rain %s (%s) in %s.\nTake an umbrella ☔", label, when, at.Format("3:04 PM"), loc.City),
		Priority:  types.PriorityNormal,
		CreatedAt: now,
	}
}

// ColdAlert builds the notification for a newly crossed tier. feelsLike is
// normally already whole (forecasts.RoundTemp); it is rounded the same way
// here so the text never shows a fraction.
func ColdAlert(tier types.ColdTier, feelsLike float64, now time.Time, loc types.Location) types.Alert {
	msg := fmt.Sprintf("Feels like %d%s in %s.", int(math.RoundToEven(feelsLike)), loc.Units.TemperatureSymbol(), loc.City)
	if tier.Advice != "" {
		msg += "\n" + tier.Advice
	}
	threshold := tier.Threshold
	return types.Alert{
		Kind:      types.AlertKindCold,
		Title:     tier.Title,
		Message:   msg,
		Priority:  tier.EffectivePriority(),
		Threshold: &threshold,
		CreatedAt: now,
	}
}

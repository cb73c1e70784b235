package alerts

import (
	"fmt"
	"strings"
	"time"

	"rainalert/internal/types"
)

// DigestTitle is the title of the daily forecast digest.
const DigestTitle = "Daily Weather"

// DigestAlert builds the daily digest: a line of slot hours, a line of
// rounded temperatures under them, and the rainy hours when there are any.
func DigestAlert(slots []types.ForecastSlot, now time.Time, loc types.Location) types.Alert {
	times := make([]string, 0, len(slots))
	temps := make([]string, 0, len(slots))
	var rainy []string
	for _, s := range slots {
		at := s.Time
		if loc.Zone != nil {
			at = at.In(loc.Zone)
		}
		label := at.Format("3PM")
		times = append(times, fmt.Sprintf("%4s", label))
		temps = append(temps, fmt.Sprintf("%4s", fmt.Sprintf("%d°", int(s.Temp))))
		if s.IsRain {
			rainy = append(rainy, label)
		}
	}

	msg := fmt.Sprintf("🌤️ Today – %s\n\n%s\n%s", loc.City, strings.Join(times, " "), strings.Join(temps, " "))
	if len(rainy) > 0 {
		msg += "\n\n⚠️ Rain expected: " + strings.Join(rainy, ", ")
	}

	return types.Alert{
		Kind:      types.AlertKindDigest,
		Title:     DigestTitle,
		Message:   msg,
		Priority:  types.PriorityRoutine,
		CreatedAt: now,
	}
}

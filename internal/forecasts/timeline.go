package forecasts

import (
	"context"
	"strings"
	"time"

	"rainalert/internal/external"
	"rainalert/internal/types"
)

// digestSlots is how many hourly entries the daily digest covers.
const digestSlots = 8

var _ types.TimelineSource = (*Service)(nil)

// BuildTimeline converts the first n hourly entries of payload into digest
// slots expressed in zone (UTC when nil). Temperatures are rounded with
// RoundTemp. A slot is rainy when the entry carries a rain volume or any
// "Rain" condition, with no probability threshold.
func BuildTimeline(payload *external.OneCallResponse, zone *time.Location, n int) []types.ForecastSlot {
	if zone == nil {
		zone = time.UTC
	}
	entries := payload.Hourly[:min(n, len(payload.Hourly))]

	slots := make([]types.ForecastSlot, 0, len(entries))
	for _, h := range entries {
		slots = append(slots, types.ForecastSlot{
			Time:   time.Unix(h.Dt, 0).In(zone),
			Temp:   RoundTemp(h.Temp),
			IsRain: h.Rain != nil || hasRainCondition(h.Weather),
		})
	}
	return slots
}

func hasRainCondition(conditions []external.OneCallWeather) bool {
	for _, w := range conditions {
		if strings.EqualFold(w.Main, "rain") {
			return true
		}
	}
	return false
}

// Timeline fetches the forecast for loc and returns the digest slots. A
// payload without hourly data is reported as malformed.
func (s *Service) Timeline(ctx context.Context, loc types.Location) ([]types.ForecastSlot, error) {
	payload, err := s.fetcher.OneCall(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(payload.Hourly) == 0 {
		return nil, types.NewAppError(types.ErrCodeProviderMalformedPayload, "forecast has no hourly data", nil)
	}

	slots := BuildTimeline(payload, loc.Zone, digestSlots)
	if s.logger != nil {
		s.logger.Info("forecast timeline built", "slots", len(slots))
	}
	return slots, nil
}

package forecasts

import (
	"math"
	"slices"
	"time"

	"rainalert/internal/external"
	"rainalert/internal/types"
)

const (
	// hourlyLookahead is how many hourly entries stand in for the minutely
	// series when it is missing.
	hourlyLookahead = 2

	// rainPopThreshold is the minimum probability of precipitation for an
	// hourly "Rain" category without a volume to count as rain.
	rainPopThreshold = 0.4
)

// RoundTemp rounds a provider temperature to the whole degree that is both
// compared against cold thresholds and shown in messages. Halves round to
// even, so 15.5 becomes 16 and 14.5 becomes 14.
func RoundTemp(v float64) float64 {
	return math.RoundToEven(v)
}

// BuildSample normalizes a One Call payload into a ConditionSample. Event
// times are expressed in zone (UTC when nil). FeelsLike is rounded with
// RoundTemp.
//
// The minutely series is preferred; when it is absent or empty the first two
// hourly entries are used instead. A payload with neither yields a sample
// with no near-term events.
func BuildSample(payload *external.OneCallResponse, zone *time.Location) *types.ConditionSample {
	if zone == nil {
		zone = time.UTC
	}

	sample := &types.ConditionSample{Source: types.SourceNone}
	if payload.Current != nil {
		if payload.Current.FeelsLike != nil {
			sample.FeelsLike = RoundTemp(*payload.Current.FeelsLike)
		}
		if payload.Current.Dt != 0 {
			sample.ObservedAt = time.Unix(payload.Current.Dt, 0).In(zone)
		}
	}

	switch {
	case len(payload.Minutely) > 0:
		sample.Source = types.SourceMinutely
		sample.NearTermEvents = minutelyEvents(payload.Minutely, zone)
	case len(payload.Hourly) > 0:
		sample.Source = types.SourceHourly
		sample.NearTermEvents = hourlyEvents(payload.Hourly[:min(hourlyLookahead, len(payload.Hourly))], zone)
	}

	slices.SortStableFunc(sample.NearTermEvents, func(a, b types.NearTermEvent) int {
		return a.Time.Compare(b.Time)
	})
	return sample
}

func minutelyEvents(entries []external.OneCallMinutely, zone *time.Location) []types.NearTermEvent {
	events := make([]types.NearTermEvent, 0, len(entries))
	for _, m := range entries {
		events = append(events, types.NearTermEvent{
			Time:      time.Unix(m.Dt, 0).In(zone),
			Intensity: m.Precipitation,
			IsRain:    m.Precipitation > 0,
		})
	}
	return events
}

func hourlyEvents(entries []external.OneCallHourly, zone *time.Location) []types.NearTermEvent {
	events := make([]types.NearTermEvent, 0, len(entries))
	for _, h := range entries {
		ev := types.NearTermEvent{
			Time:   time.Unix(h.Dt, 0).In(zone),
			IsRain: hourlyIsRain(h),
		}
		if h.Rain != nil && h.Rain.OneHour != nil {
			ev.Intensity = *h.Rain.OneHour
		}
		events = append(events, ev)
	}
	return events
}

// hourlyIsRain: an explicit rain volume, or a "Rain" condition that is
// likely enough.
func hourlyIsRain(h external.OneCallHourly) bool {
	if h.Rain != nil {
		return true
	}
	return h.Pop >= rainPopThreshold && hasRainCondition(h.Weather)
}

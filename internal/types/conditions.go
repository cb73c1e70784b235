package types

import (
	"fmt"
	"time"
)

// Units is the unit system requested from the forecast provider.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
	UnitsStandard Units = "standard"
)

// TemperatureSymbol returns the display suffix for temperatures in u.
func (u Units) TemperatureSymbol() string {
	switch u {
	case UnitsImperial:
		return "°F"
	case UnitsStandard:
		return "K"
	default:
		return "°C"
	}
}

// Location is the single monitored place.
type Location struct {
	Lat  float64
	Lon  float64
	City string
	// Zone is the local time zone used for quiet hours, onset keys and
	// message text.
	Zone *time.Location
	// Units selects the provider unit system; thresholds are expressed in it.
	Units Units
}

// SampleSource records which provider series a sample was built from.
type SampleSource string

const (
	SourceMinutely SampleSource = "minutely"
	SourceHourly   SampleSource = "hourly"
	SourceNone     SampleSource = "none"
)

// NearTermEvent is one forecast point in the next one to two hours.
type NearTermEvent struct {
	Time time.Time
	// Intensity is precipitation in mm/h; 0 for hourly points that only
	// carry a rain category.
	Intensity float64
	IsRain    bool
}

// ConditionSample is the immutable snapshot evaluated in one run.
type ConditionSample struct {
	ObservedAt     time.Time
	FeelsLike      float64
	NearTermEvents []NearTermEvent
	Source         SampleSource
}

// RainOnset is the first near-term event with rain.
type RainOnset struct {
	Time      time.Time
	Intensity float64
}

// Key is the dedup identifier of the onset: RFC 3339 in the onset's zone.
func (o RainOnset) Key() string {
	return o.Time.Format(time.RFC3339)
}

// Onset returns the first rain event of the sample in chronological order,
// or nil when none of the near-term events is rain.
func (s *ConditionSample) Onset() *RainOnset {
	if s == nil {
		return nil
	}
	for _, ev := range s.NearTermEvents {
		if ev.IsRain {
			return &RainOnset{Time: ev.Time, Intensity: ev.Intensity}
		}
	}
	return nil
}

// IntensityLabel maps a precipitation intensity (mm/h) to a wording band.
// Lower bounds are inclusive.
func IntensityLabel(mmPerHour float64) string {
	switch {
	case mmPerHour >= 2.5:
		return "heavy"
	case mmPerHour >= 1.0:
		return "moderate"
	case mmPerHour > 0:
		return "light"
	default:
		return "possible"
	}
}

// Priority is the push priority of an alert.
type Priority int

const (
	// PriorityRoutine is a plain push without the high-priority flag. Only
	// the daily digest uses it.
	PriorityRoutine Priority = 0
	PriorityNormal  Priority = 1
	// PriorityEmergency is reserved for the severe (<= 0) cold tier.
	PriorityEmergency Priority = 2
)

// AlertKind identifies which evaluator produced an alert.
type AlertKind string

const (
	AlertKindRain   AlertKind = "rain"
	AlertKindCold   AlertKind = "cold"
	AlertKindDigest AlertKind = "digest"
)

// Alert is a notification ready to hand to a Notifier.
type Alert struct {
	Kind     AlertKind `json:"kind"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Priority Priority  `json:"priority"`
	// Threshold is set for cold alerts only.
	Threshold *int      `json:"threshold,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ColdTier is one configured cold threshold with its notification text.
type ColdTier struct {
	Threshold int      `yaml:"threshold" validate:"gte=-100,lte=150"`
	Title     string   `yaml:"title" validate:"required"`
	Advice    string   `yaml:"advice"`
	Priority  Priority `yaml:"priority" validate:"oneof=0 1 2"`
}

// Severe reports whether the tier is exempt from quiet hours. The boundary
// is the literal threshold value, not a relative rank.
func (t ColdTier) Severe() bool {
	return t.Threshold <= 0
}

// EffectivePriority returns the configured priority, or the default derived
// from severity when none was configured.
func (t ColdTier) EffectivePriority() Priority {
	if t.Priority != 0 {
		return t.Priority
	}
	if t.Severe() {
		return PriorityEmergency
	}
	return PriorityNormal
}

func (t ColdTier) String() string {
	return fmt.Sprintf("%d (%s)", t.Threshold, t.Title)
}

// ForecastSlot is one hourly forecast point of the daily digest.
type ForecastSlot struct {
	Time time.Time
	// Temp is rounded to a whole degree.
	Temp   float64
	IsRain bool
}

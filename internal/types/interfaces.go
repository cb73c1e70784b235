package types

import (
	"context"
	"time"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
// Components convert to the configured location themselves.
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// FixedClock is a Clock frozen at a single instant. Used for replaying a
// run at a reference time (Lambda payload override, tests).
type FixedClock struct {
	At time.Time
}

// Now returns the frozen instant.
func (c FixedClock) Now() time.Time { return c.At }

// Logger defines the structured logging interface used throughout the module.
// Arguments after msg are alternating key/value pairs.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	With(args ...any) Logger
}

// ForecastSource retrieves a normalized condition sample for one location.
type ForecastSource interface {
	Sample(ctx context.Context, loc Location) (*ConditionSample, error)
}

// TimelineSource retrieves the upcoming hourly slots for the daily digest.
type TimelineSource interface {
	Timeline(ctx context.Context, loc Location) ([]ForecastSlot, error)
}

// Notifier delivers a single alert on a best-effort basis.
type Notifier interface {
	// Name identifies the channel in logs and metrics (e.g. "pushover").
	Name() string

	// Notify sends the alert once. Implementations never retry.
	Notify(ctx context.Context, alert Alert) error
}

// StateStore persists AlertState between runs.
type StateStore interface {
	// Load returns the persisted state. A missing record yields an empty
	// state and no error; an unreadable or corrupt record yields an empty
	// state together with a state_read_failed error so the caller can log it.
	Load(ctx context.Context) (AlertState, error)

	// Save replaces the persisted state.
	Save(ctx context.Context, state AlertState) error
}

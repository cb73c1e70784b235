// Package metrics publishes per-run counters of the alert job to CloudWatch
// or to a Prometheus node-exporter textfile.
package metrics

import (
	"context"
	"time"
)

// RunSummary is what one run reports.
type RunSummary struct {
	Location         string
	Channel          string
	AlertsSent       int
	AlertsSuppressed int
	NotifierFailures int
	ProviderFailure  bool
	StateFailure     bool
	Duration         time.Duration
	FinishedAt       time.Time
}

// Recorder publishes a RunSummary. Errors are returned for logging only; a
// metrics failure never fails the run.
type Recorder interface {
	Record(ctx context.Context, s RunSummary) error
}

// Noop discards summaries.
type Noop struct{}

// Record implements Recorder.
func (Noop) Record(context.Context, RunSummary) error { return nil }

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Package engine runs one pass of the alert job: load state, fetch the
// condition sample, evaluate rain and cold, notify, persist.
//
// A run is sequential and runs to completion. Forecast provider failures
// abort it before anything is sent or written. Notifier failures are logged
// and counted but never stop the run. A failed state read degrades to the
// empty state; a failed state write is returned after all notifications
// went out.
package engine

import (
	"context"
	"fmt"
	"time"

	"rainalert/internal/alerts"
	"rainalert/internal/logging"
	"rainalert/internal/metrics"
	"rainalert/internal/types"
)

// Outcome is the fate of one alert candidate or suppressed decision. A
// failed delivery still updates state like a sent one.
type Outcome string

const (
	OutcomeSent            Outcome = "sent"
	OutcomeFailed          Outcome = "failed"
	OutcomeDuplicateWindow Outcome = "duplicate_window"
	OutcomeQuietHours      Outcome = "suppressed_quiet_hours"
	OutcomeAlreadyCrossed  Outcome = "already_crossed"
)

// Decision records one notification decision of a run.
type Decision struct {
	Kind types.AlertKind
	// Threshold is set for cold decisions.
	Threshold *int
	Outcome   Outcome
	Alert     *types.Alert
	Err       error
}

// Suppressed reports whether the decision was deliberately not sent.
func (d Decision) Suppressed() bool {
	switch d.Outcome {
	case OutcomeDuplicateWindow, OutcomeQuietHours, OutcomeAlreadyCrossed:
		return true
	}
	return false
}

// RunReport summarizes one run.
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	Sample     *types.ConditionSample
	QuietHours bool
	Decisions  []Decision
	// State is the state computed by the run. It equals the loaded state
	// when the provider failed.
	State     types.AlertState
	Persisted bool

	StateReadErr  error
	StateWriteErr error
	ProviderErr   error
}

// Sent returns the number of delivered alerts.
func (r *RunReport) Sent() int {
	return r.count(func(d Decision) bool { return d.Outcome == OutcomeSent })
}

// Failed returns the number of alerts the notifier did not accept.
func (r *RunReport) Failed() int {
	return r.count(func(d Decision) bool { return d.Outcome == OutcomeFailed })
}

// Suppressed returns the number of suppressed decisions.
func (r *RunReport) Suppressed() int { return r.count(Decision.Suppressed) }

func (r *RunReport) count(match func(Decision) bool) int {
	n := 0
	for _, d := range r.Decisions {
		if match(d) {
			n++
		}
	}
	return n
}

// Settings are the run parameters derived from configuration.
type Settings struct {
	Location types.Location
	// LocationKey labels metrics and logs (config.Config.StateKey).
	LocationKey string
	Tiers       []types.ColdTier
	Quiet       alerts.QuietHours
	// DryRun skips persisting state. Pair it with a logging notifier.
	DryRun bool
}

// Config holds the collaborators of an Engine.
type Config struct {
	Settings Settings
	Forecast types.ForecastSource
	// Timeline feeds Digest. Run does not use it.
	Timeline types.TimelineSource
	Notifier types.Notifier
	Store    types.StateStore
	Metrics  metrics.Recorder
	Clock    types.Clock
	Logger   types.Logger
}

// Engine evaluates and delivers alerts for one location.
type Engine struct {
	settings Settings
	forecast types.ForecastSource
	timeline types.TimelineSource
	notifier types.Notifier
	store    types.StateStore
	metrics  metrics.Recorder
	clock    types.Clock
	logger   types.Logger
}

// New creates an Engine. A nil Metrics, Clock or Logger gets a no-op or real
// default.
func New(cfg Config) *Engine {
	rec := cfg.Metrics
	if rec == nil {
		rec = metrics.Noop{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Engine{
		settings: cfg.Settings,
		forecast: cfg.Forecast,
		timeline: cfg.Timeline,
		notifier: cfg.Notifier,
		store:    cfg.Store,
		metrics:  rec,
		clock:    clock,
		logger:   logger,
	}
}

// Run performs one evaluation pass. The returned error is the provider error
// when the forecast could not be fetched, or the state write error; the
// report is non-nil in both cases.
func (e *Engine) Run(ctx context.Context) (*RunReport, error) {
	now := e.clock.Now()
	runID := types.GetRunID(ctx)
	logger := e.runLogger(runID)
	report := &RunReport{RunID: runID, StartedAt: now}

	prior, err := e.store.Load(ctx)
	if err != nil {
		logger.Warn("alert state unreadable, starting from defaults", "error", err, "code", string(types.CodeOf(err)))
		report.StateReadErr = err
		prior = types.NewAlertState()
	}
	if prior.ColdCrossed == nil {
		prior.ColdCrossed = make(map[int]bool)
	}
	report.State = prior.Clone()

	sample, err := e.forecast.Sample(ctx, e.settings.Location)
	if err != nil {
		logger.Error("forecast fetch failed, run aborted", "error", err, "code", string(types.CodeOf(err)))
		report.ProviderErr = err
		e.record(ctx, logger, report)
		return report, fmt.Errorf("fetching forecast: %w", err)
	}
	report.Sample = sample

	next := types.AlertState{UpdatedAt: now}

	// Rain
	onset := sample.Onset()
	if onset != nil && e.settings.Location.Zone != nil {
		onset.Time = onset.Time.In(e.settings.Location.Zone)
	}
	rain := alerts.EvaluateRain(onset, prior.RainWindowKey)
	next.RainWindowKey = rain.Key
	switch rain.Outcome {
	case alerts.RainNotify:
		alert := alerts.RainAlert(*rain.Onset, now, e.settings.Location)
		report.Decisions = append(report.Decisions, e.deliver(ctx, logger, alert))
	case alerts.RainDuplicate:
		logger.Info("rain alert suppressed", "reason", string(OutcomeDuplicateWindow), "onset", *rain.Key)
		report.Decisions = append(report.Decisions, Decision{Kind: types.AlertKindRain, Outcome: OutcomeDuplicateWindow})
	case alerts.RainCleared:
		logger.Info("rain window cleared", "previous_onset", prior.RainKey())
	}

	// Cold
	quiet := e.settings.Quiet.ActiveAt(now, e.settings.Location.Zone)
	report.QuietHours = quiet
	cold := alerts.EvaluateCold(sample.FeelsLike, e.settings.Tiers, prior.ColdCrossed, quiet)
	next.ColdCrossed = cold.Crossed
	for _, d := range cold.Decisions {
		threshold := d.Tier.Threshold
		switch d.Outcome {
		case alerts.ColdNotify:
			alert := alerts.ColdAlert(d.Tier, sample.FeelsLike, now, e.settings.Location)
			report.Decisions = append(report.Decisions, e.deliver(ctx, logger, alert))
		case alerts.ColdSuppressedQuiet:
			logger.Info("cold alert suppressed", "reason", string(OutcomeQuietHours), "threshold", threshold, "feels_like", sample.FeelsLike)
			report.Decisions = append(report.Decisions, Decision{Kind: types.AlertKindCold, Threshold: &threshold, Outcome: OutcomeQuietHours})
		case alerts.ColdAlreadyCrossed:
			logger.Info("cold alert suppressed", "reason", string(OutcomeAlreadyCrossed), "threshold", threshold, "feels_like", sample.FeelsLike)
			report.Decisions = append(report.Decisions, Decision{Kind: types.AlertKindCold, Threshold: &threshold, Outcome: OutcomeAlreadyCrossed})
		case alerts.ColdCleared:
			logger.Info("cold threshold cleared", "threshold", threshold, "feels_like", sample.FeelsLike)
		}
	}
	report.State = next

	var runErr error
	if e.settings.DryRun {
		logger.Info("dry run: alert state not persisted")
	} else if err := e.store.Save(ctx, next); err != nil {
		logger.Error("alert state write failed", "error", err, "code", string(types.CodeOf(err)))
		report.StateWriteErr = err
		runErr = fmt.Errorf("saving alert state: %w", err)
	} else {
		report.Persisted = true
	}

	logger.Info("run complete",
		"sent", report.Sent(),
		"suppressed", report.Suppressed(),
		"failed", report.Failed(),
		"quiet_hours", quiet,
		"feels_like", sample.FeelsLike,
		"persisted", report.Persisted,
	)
	e.record(ctx, logger, report)
	return report, runErr
}

func (e *Engine) runLogger(runID string) types.Logger {
	if runID == "" {
		return e.logger
	}
	return e.logger.With("run_id", runID)
}

// deliver sends one alert. Errors are logged and folded into the Decision.
func (e *Engine) deliver(ctx context.Context, logger types.Logger, alert types.Alert) Decision {
	d := Decision{Kind: alert.Kind, Threshold: alert.Threshold, Alert: &alert}
	args := []any{"kind", string(alert.Kind), "title", alert.Title, "priority", int(alert.Priority), "channel", e.notifier.Name()}
	if alert.Threshold != nil {
		args = append(args, "threshold", *alert.Threshold)
	}

	if err := e.notifier.Notify(ctx, alert); err != nil {
		d.Outcome = OutcomeFailed
		d.Err = err
		logger.Error("notification failed", append(args, "error", err, "code", string(types.CodeOf(err)))...)
		return d
	}
	d.Outcome = OutcomeSent
	logger.Info("notification sent", args...)
	return d
}

func (e *Engine) record(ctx context.Context, logger types.Logger, report *RunReport) {
	summary := metrics.RunSummary{
		Location:         e.settings.LocationKey,
		Channel:          e.notifier.Name(),
		AlertsSent:       report.Sent(),
		AlertsSuppressed: report.Suppressed(),
		NotifierFailures: report.Failed(),
		ProviderFailure:  report.ProviderErr != nil,
		StateFailure:     report.StateReadErr != nil || report.StateWriteErr != nil,
		FinishedAt:       e.clock.Now(),
	}
	summary.Duration = summary.FinishedAt.Sub(report.StartedAt)
	if err := e.metrics.Record(ctx, summary); err != nil {
		logger.Warn("run metrics not recorded", "error", err)
	}
}

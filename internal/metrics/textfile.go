package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TextfileRecorder writes the last run's values as gauges to a file for the
// node-exporter textfile collector. Each run overwrites the file.
type TextfileRecorder struct {
	path     string
	registry *prometheus.Registry

	alertsSent       *prometheus.GaugeVec
	alertsSuppressed *prometheus.GaugeVec
	notifierFailures *prometheus.GaugeVec
	providerFailure  *prometheus.GaugeVec
	stateFailure     *prometheus.GaugeVec
	runDuration      *prometheus.GaugeVec
	lastRun          *prometheus.GaugeVec
}

var _ Recorder = (*TextfileRecorder)(nil)

// NewTextfileRecorder creates a TextfileRecorder writing to path. Metrics
// live on a private registry so process collectors are not exported.
func NewTextfileRecorder(path string) *TextfileRecorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "rainalert",
			Name:      name,
			Help:      help,
		}, labels)
	}

	return &TextfileRecorder{
		path:             path,
		registry:         reg,
		alertsSent:       gauge("alerts_sent", "Alerts delivered in the last run", "location", "channel"),
		alertsSuppressed: gauge("alerts_suppressed", "Alert candidates suppressed in the last run", "location"),
		notifierFailures: gauge("notifier_failures", "Failed notifier calls in the last run", "location", "channel"),
		providerFailure:  gauge("provider_failure", "1 if the last run failed to fetch the forecast", "location"),
		stateFailure:     gauge("state_failure", "1 if the last run failed to read or write state", "location"),
		runDuration:      gauge("run_duration_seconds", "Wall time of the last run", "location"),
		lastRun:          gauge("last_run_timestamp_seconds", "Unix time the last run finished", "location"),
	}
}

// Record implements Recorder.
func (r *TextfileRecorder) Record(_ context.Context, s RunSummary) error {
	r.alertsSent.WithLabelValues(s.Location, s.Channel).Set(float64(s.AlertsSent))
	r.alertsSuppressed.WithLabelValues(s.Location).Set(float64(s.AlertsSuppressed))
	r.notifierFailures.WithLabelValues(s.Location, s.Channel).Set(float64(s.NotifierFailures))
	r.providerFailure.WithLabelValues(s.Location).Set(boolToFloat(s.ProviderFailure))
	r.stateFailure.WithLabelValues(s.Location).Set(boolToFloat(s.StateFailure))
	r.runDuration.WithLabelValues(s.Location).Set(s.Duration.Seconds())
	if !s.FinishedAt.IsZero() {
		r.lastRun.WithLabelValues(s.Location).Set(float64(s.FinishedAt.Unix()))
	}

	if err := prometheus.WriteToTextfile(r.path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", r.path, err)
	}
	return nil
}

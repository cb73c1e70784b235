package engine

import (
	"context"
	"errors"
	"fmt"

	"rainalert/internal/alerts"
	"rainalert/internal/types"
)

// Digest sends the daily forecast digest. It reads no alert state, writes
// none, and records no run metrics. Both a provider failure and a rejected
// notification are returned as errors.
func (e *Engine) Digest(ctx context.Context) (*types.Alert, error) {
	logger := e.runLogger(types.GetRunID(ctx))
	if e.timeline == nil {
		return nil, errors.New("no forecast timeline configured")
	}

	slots, err := e.timeline.Timeline(ctx, e.settings.Location)
	if err != nil {
		logger.Error("forecast fetch failed, digest not sent", "error", err, "code", string(types.CodeOf(err)))
		return nil, fmt.Errorf("fetching forecast timeline: %w", err)
	}

	alert := alerts.DigestAlert(slots, e.clock.Now(), e.settings.Location)
	d := e.deliver(ctx, logger, alert)
	if d.Outcome == OutcomeFailed {
		return d.Alert, fmt.Errorf("sending digest: %w", d.Err)
	}
	logger.Info("digest complete", "slots", len(slots))
	return d.Alert, nil
}

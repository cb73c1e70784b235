package notify

import (
	"context"

	"rainalert/internal/types"
)

// LogNotifier records alerts in the log instead of sending them. It backs
// the -dry-run flag.
type LogNotifier struct {
	logger types.Logger
	sent   []types.Alert
}

var _ types.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger types.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Name implements types.Notifier.
func (n *LogNotifier) Name() string { return "dry-run" }

// Notify logs the alert and always succeeds.
func (n *LogNotifier) Notify(_ context.Context, alert types.Alert) error {
	n.sent = append(n.sent, alert)
	n.logger.Info("dry run: alert not sent",
		"kind", string(alert.Kind),
		"title", alert.Title,
		"message", alert.Message,
		"priority", int(alert.Priority),
	)
	return nil
}

// Sent returns the alerts seen so far.
func (n *LogNotifier) Sent() []types.Alert {
	return n.sent
}

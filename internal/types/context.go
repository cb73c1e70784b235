package types

import "context"

type contextKey string

const runIDKey contextKey = "run_id"

// WithRunID stores the run ID in the context. Notifiers that hand alerts to
// downstream systems (SQS) carry it along.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// GetRunID retrieves the run ID from the context, or "" when none is set.
func GetRunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// Package main is the Lambda entrypoint for the rain and cold alert job.
//
// An EventBridge schedule rule invokes the function (typically every 10 to
// 15 minutes). Dependency wiring happens once per cold start; each
// invocation performs one evaluation pass. State must live in postgres or
// sqlite on a mounted volume since /tmp does not survive container recycling.
package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"

	"rainalert/internal/app"
	"rainalert/internal/config"
	"rainalert/internal/engine"
	"rainalert/internal/logging"
	"rainalert/internal/types"
)

// runner is the part of engine.Engine the handler uses.
type runner interface {
	Run(ctx context.Context) (*engine.RunReport, error)
}

func main() {
	bootLogger := logging.New(logging.Options{})
	bootLogger.Info("rain-alert lambda initializing (cold start)")

	// Resolve SSM secrets before reading config so a missing parameter fails
	// the cold start with an SSM-specific error.
	provider := config.NewProvider(os.Getenv("AWS_REGION"), os.Getenv("AWS_ENDPOINT_URL"))
	if err := config.ResolveSecrets(provider); err != nil {
		bootLogger.Error("failed to resolve SSM secrets", "error", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(provider)
	if err != nil {
		bootLogger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}).With("location", cfg.StateKey())

	if cfg.State.Backend == "file" {
		logger.Warn("file state backend on Lambda is not durable across cold starts", "path", cfg.State.Path)
	}

	rt, err := app.Build(context.Background(), cfg, app.Options{Logger: logger})
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	logger.Info("rain-alert lambda initialized",
		"version", cfg.Build.Version,
		"notifier", cfg.Notify.Channel,
		"state_backend", cfg.State.Backend,
		"metrics_sink", cfg.Metrics.Sink,
		"openweather_key_suffix", cfg.Forecast.APIKey.Suffix(4),
	)

	lambda.Start(newHandler(rt.Engine, logger))
}

// newHandler wraps one engine run per scheduled event. The EventBridge event
// ID doubles as the run ID so log lines can be matched to invocations.
func newHandler(r runner, logger types.Logger) func(ctx context.Context, event events.CloudWatchEvent) (string, error) {
	return func(ctx context.Context, event events.CloudWatchEvent) (string, error) {
		runID := event.ID
		if runID == "" {
			runID = uuid.NewString()
		}
		ctx = types.WithRunID(ctx, runID)

		logger.Info("scheduled run invoked", "run_id", runID, "source", event.Source, "scheduled_at", event.Time)

		report, err := r.Run(ctx)
		if err != nil {
			logger.Error("scheduled run failed", "run_id", runID, "error", err, "code", string(types.CodeOf(err)))
			return "", fmt.Errorf("rain-alert run failed: %w", err)
		}

		return fmt.Sprintf("run complete: %d sent, %d suppressed, %d failed",
			report.Sent(), report.Suppressed(), report.Failed()), nil
	}
}

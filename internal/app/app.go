// Package app wires configuration into a ready-to-run engine. The CLI and
// the Lambda handler share it so both build the same object graph.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	"rainalert/internal/alerts"
	"rainalert/internal/config"
	"rainalert/internal/db"
	"rainalert/internal/engine"
	"rainalert/internal/external"
	"rainalert/internal/forecasts"
	"rainalert/internal/logging"
	"rainalert/internal/metrics"
	"rainalert/internal/notify"
	"rainalert/internal/state"
	"rainalert/internal/types"
)

// Options adjusts how Build wires the engine.
type Options struct {
	// DryRun swaps the notifier for a LogNotifier and skips persisting state.
	DryRun bool
	Logger types.Logger
	Clock  types.Clock
}

// Runtime is a built engine plus the resources it holds open.
type Runtime struct {
	Engine *engine.Engine

	closers []func()
	aws     *aws.Config
}

// Close releases database handles. It is safe to call more than once.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// Build wires an Engine from cfg. Database stores are opened (and their
// schema ensured) here, so a broken DATABASE_URL fails before the forecast
// is fetched.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	logger := opts.Logger
	rt := &Runtime{}

	loc, err := cfg.ResolveLocation()
	if err != nil {
		return nil, err
	}

	forecast := forecasts.NewService(
		external.NewOpenWeatherClient(&http.Client{Timeout: cfg.Forecast.Timeout}, external.OpenWeatherClientConfig{
			APIKey:  cfg.Forecast.APIKey,
			BaseURL: cfg.Forecast.BaseURL,
			Logger:  logger,
		}),
		logger,
	)

	notifier, err := rt.buildNotifier(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	store, err := rt.buildStore(ctx, cfg, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}

	recorder, err := rt.buildMetrics(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.Engine = engine.New(engine.Config{
		Settings: engine.Settings{
			Location:    loc,
			LocationKey: cfg.StateKey(),
			Tiers:       cfg.Alerts.Tiers,
			Quiet:       alerts.QuietHours{Start: cfg.Alerts.QuietStart, End: cfg.Alerts.QuietEnd},
			DryRun:      opts.DryRun,
		},
		Forecast: forecast,
		Timeline: forecast,
		Notifier: notifier,
		Store:    store,
		Metrics:  recorder,
		Clock:    opts.Clock,
		Logger:   logger,
	})
	return rt, nil
}

func (rt *Runtime) buildNotifier(ctx context.Context, cfg *config.Config, opts Options) (types.Notifier, error) {
	if opts.DryRun {
		return notify.NewLogNotifier(opts.Logger), nil
	}

	switch cfg.Notify.Channel {
	case "pushover":
		return external.NewPushoverClient(&http.Client{Timeout: cfg.Pushover.Timeout}, external.PushoverClientConfig{
			Token:           cfg.Pushover.Token,
			User:            cfg.Pushover.User,
			BaseURL:         cfg.Pushover.BaseURL,
			EmergencyRetry:  cfg.Pushover.EmergencyRetry,
			EmergencyExpire: cfg.Pushover.EmergencyExpire,
			Logger:          opts.Logger,
		}), nil
	case "sqs":
		awsCfg, err := rt.awsConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		return notify.NewSQSNotifier(client, cfg.Notify.SQSQueueURL, cfg.StateKey(), opts.Logger), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Notify.Channel)
	}
}

func (rt *Runtime) buildStore(ctx context.Context, cfg *config.Config, logger types.Logger) (types.StateStore, error) {
	switch cfg.State.Backend {
	case "file":
		store := state.NewFileStore(cfg.State.Path)
		logger.Info("alert state file", "path", store.Path())
		return store, nil
	case "sqlite":
		store, err := state.OpenSQLiteStore(ctx, cfg.State.SQLitePath, cfg.StateKey())
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = store.Close() })
		return store, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.State.DatabaseURL.Unmask())
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeStateReadFailed, "creating database pool", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		repo := db.NewAlertStateRepository(pool, cfg.StateKey())
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}
}

func (rt *Runtime) buildMetrics(ctx context.Context, cfg *config.Config) (metrics.Recorder, error) {
	switch cfg.Metrics.Sink {
	case "", "none":
		return metrics.Noop{}, nil
	case "prometheus":
		return metrics.NewTextfileRecorder(cfg.Metrics.TextfilePath), nil
	case "cloudwatch":
		awsCfg, err := rt.awsConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		return metrics.NewCloudWatchRecorder(client, cfg.Metrics.Namespace), nil
	default:
		return nil, fmt.Errorf("unknown metrics sink %q", cfg.Metrics.Sink)
	}
}

// awsConfig loads the SDK configuration once per Runtime.
func (rt *Runtime) awsConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	if rt.aws != nil {
		return *rt.aws, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS SDK config: %w", err)
	}
	rt.aws = &awsCfg
	return awsCfg, nil
}

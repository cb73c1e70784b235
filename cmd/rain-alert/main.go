// Package main is the one-shot CLI for the rain and cold alert job. It is
// meant to be started by cron, a systemd timer or a CI schedule; each
// invocation performs a single evaluation pass and exits.
//
// Usage:
//
//	rain-alert
//	rain-alert -env-file=/etc/rain-alert.env
//	rain-alert -dry-run -reference-time=2026-10-18T23:30:00-05:00
//	rain-alert -digest
//	rain-alert -version
//
// With -digest the job sends the daily forecast digest instead of evaluating
// alerts. It is meant for a separate morning schedule.
//
// Secrets referenced by _SSM_PARAM variables come from SSM when AWS_REGION
// is set and from the environment otherwise.
//
// Exit codes: 0 success, 1 run failure (forecast fetch, state write or a
// rejected digest), 2 configuration error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"rainalert/internal/app"
	"rainalert/internal/config"
	"rainalert/internal/logging"
	"rainalert/internal/types"
)

const (
	exitOK     = 0
	exitRun    = 1
	exitConfig = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rain-alert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env-file", "", "dotenv file to load instead of ./.env")
	dryRun := fs.Bool("dry-run", false, "evaluate and log alerts without sending them or saving state")
	refTime := fs.String("reference-time", "", "evaluate as of this instant (RFC3339) instead of now")
	digest := fs.Bool("digest", false, "send the daily forecast digest and exit")
	showVersion := fs.Bool("version", false, "print build information and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitConfig
	}

	if *showVersion {
		fmt.Fprintln(stdout, config.NewBuildInfo().String())
		return exitOK
	}

	var clock types.Clock = types.RealClock{}
	if *refTime != "" {
		at, err := time.Parse(time.RFC3339, *refTime)
		if err != nil {
			fmt.Fprintf(stderr, "error: invalid -reference-time %q: %v\n", *refTime, err)
			return exitConfig
		}
		clock = types.FixedClock{At: at}
	}

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}

	provider := config.NewProvider(os.Getenv("AWS_REGION"), os.Getenv("AWS_ENDPOINT_URL"))
	cfg, err := config.LoadConfig(provider, envFiles...)
	if err != nil {
		logging.New(logging.Options{Out: stderr}).Error("configuration invalid", "error", err)
		return exitConfig
	}

	runID := uuid.NewString()
	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Out:    stdout,
	}).With("location", cfg.StateKey())

	logger.Info("rain-alert starting",
		"run_id", runID,
		"version", cfg.Build.Version,
		"notifier", cfg.Notify.Channel,
		"state_backend", cfg.State.Backend,
		"openweather_key_suffix", cfg.Forecast.APIKey.Suffix(4),
		"dry_run", *dryRun,
		"digest", *digest,
	)

	ctx = types.WithRunID(ctx, runID)

	rt, err := app.Build(ctx, cfg, app.Options{
		DryRun: *dryRun,
		Logger: logger,
		Clock:  clock,
	})
	if err != nil {
		logger.Error("failed to initialize", "run_id", runID, "error", err)
		return exitRun
	}
	defer rt.Close()

	if *digest {
		if _, err := rt.Engine.Digest(ctx); err != nil {
			logger.Error("digest failed", "run_id", runID, "error", err, "code", string(types.CodeOf(err)))
			return exitRun
		}
		logger.Info("rain-alert digest sent", "run_id", runID)
		return exitOK
	}

	report, err := rt.Engine.Run(ctx)
	if err != nil {
		logger.Error("run failed", "run_id", runID, "error", err, "code", string(types.CodeOf(err)))
		return exitRun
	}

	logger.Info("rain-alert finished",
		"run_id", runID,
		"sent", report.Sent(),
		"suppressed", report.Suppressed(),
		"failed", report.Failed(),
	)
	return exitOK
}

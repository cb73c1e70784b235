// Package logging builds the zerolog-backed implementation of types.Logger
// shared by the CLI and Lambda entrypoints.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"rainalert/internal/types"
)

// Options configures New.
type Options struct {
	Level string
	// Format is "json" (default) or "console".
	Format string
	Out    io.Writer
}

// New returns a Logger writing to opts.Out (stdout when nil). An unknown
// level falls back to info.
func New(opts Options) types.Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if opts.Out != nil {
		out = opts.Out
	}
	if opts.Format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	zl := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &zerologAdapter{logger: zl}
}

// Nop returns a Logger that discards everything.
func Nop() types.Logger {
	return &zerologAdapter{logger: zerolog.Nop()}
}

// zerologAdapter wraps zerolog.Logger to implement the types.Logger interface.
type zerologAdapter struct {
	logger zerolog.Logger
}

// Compile-time assertion that zerologAdapter implements types.Logger.
var _ types.Logger = (*zerologAdapter)(nil)

func (a *zerologAdapter) Info(msg string, args ...any) {
	a.logger.Info().Fields(fields(args)).Msg(msg)
}

func (a *zerologAdapter) Warn(msg string, args ...any) {
	a.logger.Warn().Fields(fields(args)).Msg(msg)
}

func (a *zerologAdapter) Error(msg string, args ...any) {
	a.logger.Error().Fields(fields(args)).Msg(msg)
}

func (a *zerologAdapter) With(args ...any) types.Logger {
	return &zerologAdapter{logger: a.logger.With().Fields(fields(args)).Logger()}
}

// fields converts slog-style alternating key/value pairs into a zerolog
// field map. A dangling key is recorded under "!BADKEY" like slog does.
func fields(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			out["!BADKEY"] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		val := args[i+1]
		if err, isErr := val.(error); isErr && err != nil {
			val = err.Error()
		}
		out[key] = val
	}
	return out
}

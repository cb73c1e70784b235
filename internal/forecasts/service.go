// Package forecasts turns raw forecast provider payloads into the
// ConditionSample the alert engine evaluates.
package forecasts

import (
	"context"

	"rainalert/internal/external"
	"rainalert/internal/types"
)

// OneCallFetcher is implemented by external.OpenWeatherClient.
type OneCallFetcher interface {
	OneCall(ctx context.Context, loc types.Location) (*external.OneCallResponse, error)
}

// Service implements types.ForecastSource.
type Service struct {
	fetcher OneCallFetcher
	logger  types.Logger
}

var _ types.ForecastSource = (*Service)(nil)

// NewService creates a Service.
func NewService(fetcher OneCallFetcher, logger types.Logger) *Service {
	return &Service{fetcher: fetcher, logger: logger}
}

// Sample fetches the forecast for loc and normalizes it. Provider errors are
// returned unchanged so the caller can classify them.
func (s *Service) Sample(ctx context.Context, loc types.Location) (*types.ConditionSample, error) {
	payload, err := s.fetcher.OneCall(ctx, loc)
	if err != nil {
		return nil, err
	}

	sample := BuildSample(payload, loc.Zone)

	if s.logger != nil {
		args := []any{
			"source", string(sample.Source),
			"events", len(sample.NearTermEvents),
			"feels_like", sample.FeelsLike,
		}
		if onset := sample.Onset(); onset != nil {
			args = append(args, "onset", onset.Key(), "intensity", onset.Intensity)
		}
		s.logger.Info("condition sample built", args...)
	}
	return sample, nil
}

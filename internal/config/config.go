// Package config defines the configuration for the rain and cold alert job.
// Configuration is loaded once at process start and is immutable thereafter;
// the engine receives the values it needs explicitly.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// A missing credential or an invalid value is a startup error: the process
// exits before any network call.
package config

import (
	"fmt"
	"time"

	"rainalert/internal/types"
)

// SecretString is an alias for types.SecretString.
type SecretString = types.SecretString

// Config is the top-level configuration struct.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"oneof=local dev prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`

	Location LocationConfig
	Forecast ForecastConfig
	Pushover PushoverConfig
	Alerts   AlertsConfig
	State    StateConfig
	Notify   NotifyConfig
	Metrics  MetricsConfig
	AWS      AWSConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo `ignored:"true"`
}

// LocationConfig describes the single monitored location.
type LocationConfig struct {
	Lat      float64 `envconfig:"LAT" default:"33.1546624" validate:"gte=-90,lte=90"`
	Lon      float64 `envconfig:"LON" default:"-96.7180288" validate:"gte=-180,lte=180"`
	City     string  `envconfig:"CITY" default:"McKinney" validate:"required"`
	Timezone string  `envconfig:"TZ" default:"America/Chicago" validate:"required,timezone"`
	Units    string  `envconfig:"UNITS" default:"metric" validate:"oneof=metric imperial standard"`
}

// ForecastConfig holds the OpenWeather One Call settings.
type ForecastConfig struct {
	APIKey  SecretString  `envconfig:"OPENWEATHER_API_KEY"`
	BaseURL string        `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org" validate:"url"`
	Timeout time.Duration `envconfig:"FORECAST_TIMEOUT" default:"20s" validate:"gt=0"`
}

// PushoverConfig holds the Pushover notifier credentials and tuning.
type PushoverConfig struct {
	Token   SecretString  `envconfig:"PUSHOVER_TOKEN"`
	User    SecretString  `envconfig:"PUSHOVER_USER"`
	BaseURL string        `envconfig:"PUSHOVER_BASE_URL" default:"https://api.pushover.net" validate:"url"`
	Timeout time.Duration `envconfig:"PUSHOVER_TIMEOUT" default:"20s" validate:"gt=0"`
	// Emergency (priority 2) messages repeat every Retry until acknowledged
	// or Expire elapses. Pushover requires both for priority 2.
	EmergencyRetry  time.Duration `envconfig:"PUSHOVER_EMERGENCY_RETRY" default:"60s" validate:"gte=30s"`
	EmergencyExpire time.Duration `envconfig:"PUSHOVER_EMERGENCY_EXPIRE" default:"1h" validate:"lte=3h"`
}

// AlertsConfig holds the decision-engine tunables.
type AlertsConfig struct {
	QuietStart     int    `envconfig:"QUIET_START" default:"23" validate:"gte=0,lte=23"`
	QuietEnd       int    `envconfig:"QUIET_END" default:"6" validate:"gte=0,lte=23"`
	ColdThresholds []int  `envconfig:"COLD_THRESHOLDS" default:"15,10,5,0" validate:"min=1,unique"`
	TiersFile      string `envconfig:"COLD_TIERS_FILE"`

	// Tiers is derived from ColdThresholds or TiersFile during loading.
	Tiers []types.ColdTier `ignored:"true" validate:"min=1,dive"`
}

// StateConfig selects where AlertState is persisted.
type StateConfig struct {
	Backend     string       `envconfig:"STATE_BACKEND" default:"file" validate:"oneof=file postgres sqlite"`
	Path        string       `envconfig:"STATE_FILE" default:".state/alert_state.json" validate:"required_if=Backend file"`
	DatabaseURL SecretString `envconfig:"DATABASE_URL" validate:"required_if=Backend postgres"`
	SQLitePath  string       `envconfig:"SQLITE_PATH" default:".state/alert_state.db" validate:"required_if=Backend sqlite"`
}

// NotifyConfig selects the notification channel.
type NotifyConfig struct {
	Channel     string `envconfig:"NOTIFIER" default:"pushover" validate:"oneof=pushover sqs"`
	SQSQueueURL string `envconfig:"SQS_ALERTS_QUEUE_URL" validate:"required_if=Channel sqs"`
}

// MetricsConfig selects the run-metrics sink.
type MetricsConfig struct {
	Sink         string `envconfig:"METRICS_SINK" default:"none" validate:"oneof=none cloudwatch prometheus"`
	Namespace    string `envconfig:"METRIC_NAMESPACE" default:"RainAlert"`
	TextfilePath string `envconfig:"METRICS_TEXTFILE" default:"rainalert.prom" validate:"required_if=Sink prometheus"`
}

// AWSConfig holds AWS regional configuration shared by SSM, SQS and CloudWatch.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ResolveLocation resolves the configured location into the domain type.
func (c *Config) ResolveLocation() (types.Location, error) {
	zone, err := time.LoadLocation(c.Location.Timezone)
	if err != nil {
		return types.Location{}, fmt.Errorf("invalid timezone %q: %w", c.Location.Timezone, err)
	}
	return types.Location{
		Lat:   c.Location.Lat,
		Lon:   c.Location.Lon,
		City:  c.Location.City,
		Zone:  zone,
		Units: types.Units(c.Location.Units),
	}, nil
}

// StateKey identifies this location's row in the database-backed stores.
func (c *Config) StateKey() string {
	return fmt.Sprintf("%s@%.4f,%.4f", c.Location.City, c.Location.Lat, c.Location.Lon)
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required credential was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrSSMResolution indicates a failure when fetching secrets from AWS SSM.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment values or the
	// cold tier file.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)

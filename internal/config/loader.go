// loader.go implements the configuration loading lifecycle for the alert job.
//
// The loading sequence is:
//  1. Load .env file(s) via godotenv (non-fatal if the default file is absent).
//  2. Scan environment for _SSM_PARAM suffix variables.
//  3. If APP_ENV != "local", resolve SSM parameters via the SecretProvider
//     and inject the resolved values back into the environment.
//  4. Use envconfig to process struct tags and populate the Config struct.
//  5. Check the credentials required by the selected channels.
//  6. Build the cold tiers from COLD_TIERS_FILE or COLD_THRESHOLDS.
//  7. Populate BuildInfo from linker-injected variables.
//  8. Validate the struct using go-playground/validator.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"rainalert/internal/types"
)

// ConfigError is a diagnostic error type returned by LoadConfig to aid debugging.
// It wraps a ConfigErrorType and an underlying error message.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ssmParamSuffix identifies SSM pointer variables. For example,
// PUSHOVER_TOKEN_SSM_PARAM points to the SSM path for PUSHOVER_TOKEN.
const ssmParamSuffix = "_SSM_PARAM"

// localEnv is the APP_ENV value that bypasses SSM resolution.
const localEnv = "local"

// ssmTimeout bounds the whole SSM resolution step.
const ssmTimeout = 30 * time.Second

type envLookup func(key string) (string, bool)

type envSet func(key, value string) error

type environ func() []string

// loaderDeps holds the injectable dependencies for the loader, enabling
// testing without mutating global state.
type loaderDeps struct {
	lookupEnv envLookup
	setEnv    envSet
	environ   environ
}

func defaultDeps() loaderDeps {
	return loaderDeps{
		lookupEnv: os.LookupEnv,
		setEnv:    os.Setenv,
		environ:   os.Environ,
	}
}

// LoadConfig loads and validates the configuration.
//
// envFiles names dotenv files to load. With none given, ".env" in the
// working directory is loaded when present. Explicitly named files must exist.
// Dotenv values never override variables already set in the environment.
//
// The provider is only consulted for _SSM_PARAM variables outside the local
// environment; it may be nil when none are set.
func LoadConfig(provider SecretProvider, envFiles ...string) (*Config, error) {
	return loadConfigWithDeps(provider, defaultDeps(), envFiles...)
}

func loadConfigWithDeps(provider SecretProvider, deps loaderDeps, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: fmt.Sprintf("failed to load env file(s) %s", strings.Join(envFiles, ", ")),
			Err:     err,
		}
	}

	appEnv, _ := deps.lookupEnv("APP_ENV")
	if appEnv != localEnv {
		if err := resolveSSMParams(provider, deps); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	if err := checkCredentials(&cfg); err != nil {
		return nil, err
	}

	if err := buildTiers(&cfg); err != nil {
		return nil, err
	}

	cfg.Build = NewBuildInfo()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return &cfg, nil
}

// checkCredentials reports every missing credential at once.
func checkCredentials(cfg *Config) error {
	var missing []string
	if cfg.Forecast.APIKey.IsZero() {
		missing = append(missing, "OPENWEATHER_API_KEY")
	}
	if cfg.Notify.Channel == "pushover" {
		if cfg.Pushover.Token.IsZero() {
			missing = append(missing, "PUSHOVER_TOKEN")
		}
		if cfg.Pushover.User.IsZero() {
			missing = append(missing, "PUSHOVER_USER")
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ConfigError{
		Type:    ErrMissingEnv,
		Message: fmt.Sprintf("required credentials not set: %s", strings.Join(missing, ", ")),
	}
}

func buildTiers(cfg *Config) error {
	if cfg.Alerts.TiersFile != "" {
		tiers, err := LoadTiersFile(cfg.Alerts.TiersFile)
		if err != nil {
			return &ConfigError{
				Type:    ErrParsing,
				Message: "failed to load cold tiers",
				Err:     err,
			}
		}
		cfg.Alerts.Tiers = tiers
		return nil
	}
	symbol := types.Units(cfg.Location.Units).TemperatureSymbol()
	cfg.Alerts.Tiers = TiersFromThresholds(cfg.Alerts.ColdThresholds, symbol)
	return nil
}

// ResolveSecrets performs the SSM secret resolution step in isolation. The
// Lambda entrypoint calls it before LoadConfig so that a cold start fails
// fast with an SSM-specific error.
//
// It is a no-op when APP_ENV is "local" or no _SSM_PARAM variables are set.
func ResolveSecrets(provider SecretProvider) error {
	appEnv, _ := os.LookupEnv("APP_ENV")
	if appEnv == localEnv {
		return nil
	}
	return resolveSSMParams(provider, defaultDeps())
}

// resolveSSMParams scans the environment for variables ending in _SSM_PARAM,
// fetches the corresponding secret values via the SecretProvider, and injects
// them back into the environment so that envconfig can process them.
//
// If the target variable is already set (directly or via a .env file) the
// SSM lookup is skipped for it: OS Environment > Dotenv > SSM.
func resolveSSMParams(provider SecretProvider, deps loaderDeps) error {
	type ssmBinding struct {
		targetEnvVar string // e.g., PUSHOVER_TOKEN
		ssmPath      string // e.g., /prod/rainalert/pushover/token
	}

	var bindings []ssmBinding
	ssmPathToTarget := make(map[string]string)

	for _, envEntry := range deps.environ() {
		eqIdx := strings.IndexByte(envEntry, '=')
		if eqIdx < 0 {
			continue
		}
		key := envEntry[:eqIdx]
		if !strings.HasSuffix(key, ssmParamSuffix) {
			continue
		}

		targetEnvVar := strings.TrimSuffix(key, ssmParamSuffix)
		if _, exists := deps.lookupEnv(targetEnvVar); exists {
			continue
		}

		ssmPath := envEntry[eqIdx+1:]
		if ssmPath == "" {
			continue
		}

		bindings = append(bindings, ssmBinding{
			targetEnvVar: targetEnvVar,
			ssmPath:      ssmPath,
		})
		ssmPathToTarget[ssmPath] = targetEnvVar
	}

	if len(bindings) == 0 {
		return nil
	}

	if provider == nil {
		targetVars := make([]string, 0, len(bindings))
		for _, b := range bindings {
			targetVars = append(targetVars, b.targetEnvVar)
		}
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: fmt.Sprintf("SecretProvider is required for non-local environments (need to resolve: %s)", strings.Join(targetVars, ", ")),
		}
	}

	ssmPaths := make([]string, 0, len(bindings))
	for _, b := range bindings {
		ssmPaths = append(ssmPaths, b.ssmPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ssmTimeout)
	defer cancel()

	resolved, err := provider.GetParametersBatch(ctx, ssmPaths)
	if err != nil {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: fmt.Sprintf("failed to resolve %d SSM parameters", len(ssmPaths)),
			Err:     err,
		}
	}

	for ssmPath, value := range resolved {
		targetEnvVar, ok := ssmPathToTarget[ssmPath]
		if !ok {
			continue
		}
		if err := deps.setEnv(targetEnvVar, value); err != nil {
			return &ConfigError{
				Type:    ErrSSMResolution,
				Message: fmt.Sprintf("failed to set resolved value for %s", targetEnvVar),
				Err:     err,
			}
		}
	}

	var missing []string
	for _, b := range bindings {
		if _, ok := resolved[b.ssmPath]; !ok {
			missing = append(missing, b.targetEnvVar)
		}
	}
	if len(missing) > 0 {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: fmt.Sprintf("SSM parameters not found for: %s", strings.Join(missing, ", ")),
		}
	}

	return nil
}

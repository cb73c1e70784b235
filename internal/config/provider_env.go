package config

import (
	"context"
	"os"
	"strings"
)

// NewProvider picks the SecretProvider for a process. With no AWS region set
// the _SSM_PARAM pointers are resolved from the environment instead of SSM.
func NewProvider(region, endpoint string) SecretProvider {
	if region == "" {
		return NewEnvVarProvider()
	}
	return NewSSMProvider(region, endpoint)
}

// EnvVarProvider resolves parameter paths from environment variables. A key
// is looked up verbatim first, then by its env form: "/rain-alert/pushover-token"
// becomes RAIN_ALERT_PUSHOVER_TOKEN.
type EnvVarProvider struct {
	lookup envLookup
}

// NewEnvVarProvider creates an EnvVarProvider reading the process environment.
func NewEnvVarProvider() *EnvVarProvider {
	return &EnvVarProvider{lookup: os.LookupEnv}
}

// GetParametersBatch returns the keys that resolve. Unresolved keys are
// omitted, as with SSM InvalidParameters.
func (p *EnvVarProvider) GetParametersBatch(_ context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if val, ok := p.lookup(key); ok {
			result[key] = val
			continue
		}
		if name := envName(key); name != key {
			if val, ok := p.lookup(name); ok {
				result[key] = val
			}
		}
	}
	return result, nil
}

func envName(path string) string {
	path = strings.Trim(path, "/")
	return strings.ToUpper(strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(path))
}

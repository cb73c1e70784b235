package config

import "context"

// SecretProvider abstracts the retrieval of secrets so that SSM Parameter
// Store (Lambda, servers) and plain environment variables (local runs) can
// back the same loader.
type SecretProvider interface {
	// GetParametersBatch resolves the given parameter paths. The result maps
	// path to plaintext value and omits paths that could not be found.
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}

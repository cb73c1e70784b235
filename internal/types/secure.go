package types

const redactedPlaceholder = "***REDACTED***"

var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString holds a credential (API key, push token, database URL).
// Formatting and JSON encoding print a placeholder so config dumps and
// structured log lines never carry the raw value.
type SecretString string

// String returns the placeholder.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the raw value. Call sites are limited to the HTTP clients
// and database drivers that need it.
func (s SecretString) Unmask() string {
	return string(s)
}

// Suffix returns the last n characters of the secret for operator
// diagnostics ("key ending in 1a2b"). Short secrets are fully masked.
func (s SecretString) Suffix(n int) string {
	if n <= 0 || len(s) <= n*2 {
		return ""
	}
	return string(s[len(s)-n:])
}

// IsZero reports whether the secret is empty.
func (s SecretString) IsZero() bool {
	return s == ""
}

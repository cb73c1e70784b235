package types

// CloudWatch metric names and dimensions for run metrics.
const (
	MetricAlertsSent       = "AlertsSent"
	MetricAlertsSuppressed = "AlertsSuppressed"
	MetricNotifierFailures = "NotifierFailures"
	MetricProviderFailures = "ProviderFailures"
	MetricStateFailures    = "StateFailures"
	MetricRunDuration      = "RunDuration"

	// Dimension Keys
	DimChannel  = "Channel"
	DimLocation = "Location"

	// Metric Namespace
	MetricNamespace = "RainAlert"
)

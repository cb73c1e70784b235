package metrics

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"rainalert/internal/types"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchRecorder emits one PutMetricData call per run.
//
// Metrics emitted, all with the Location dimension:
//   - AlertsSent, AlertsSuppressed, NotifierFailures (also Channel)
//   - ProviderFailures, StateFailures: 0 or 1
//   - RunDuration in milliseconds
type CloudWatchRecorder struct {
	client    CloudWatchClient
	namespace string
}

var _ Recorder = (*CloudWatchRecorder)(nil)

// NewCloudWatchRecorder creates a CloudWatchRecorder. An empty namespace
// falls back to types.MetricNamespace.
func NewCloudWatchRecorder(client CloudWatchClient, namespace string) *CloudWatchRecorder {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	return &CloudWatchRecorder{client: client, namespace: namespace}
}

// Record implements Recorder.
func (r *CloudWatchRecorder) Record(ctx context.Context, s RunSummary) error {
	loc := cwtypes.Dimension{Name: aws.String(types.DimLocation), Value: aws.String(s.Location)}
	channel := cwtypes.Dimension{Name: aws.String(types.DimChannel), Value: aws.String(s.Channel)}

	datum := func(name string, value float64, unit cwtypes.StandardUnit, dims ...cwtypes.Dimension) cwtypes.MetricDatum {
		d := cwtypes.MetricDatum{
			MetricName: aws.String(name),
			Value:      aws.Float64(value),
			Unit:       unit,
			Dimensions: append([]cwtypes.Dimension{loc}, dims...),
		}
		if !s.FinishedAt.IsZero() {
			d.Timestamp = aws.Time(s.FinishedAt)
		}
		return d
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(r.namespace),
		MetricData: []cwtypes.MetricDatum{
			datum(types.MetricAlertsSent, float64(s.AlertsSent), cwtypes.StandardUnitCount, channel),
			datum(types.MetricAlertsSuppressed, float64(s.AlertsSuppressed), cwtypes.StandardUnitCount),
			datum(types.MetricNotifierFailures, float64(s.NotifierFailures), cwtypes.StandardUnitCount, channel),
			datum(types.MetricProviderFailures, boolToFloat(s.ProviderFailure), cwtypes.StandardUnitCount),
			datum(types.MetricStateFailures, boolToFloat(s.StateFailure), cwtypes.StandardUnitCount),
			datum(types.MetricRunDuration, float64(s.Duration.Milliseconds()), cwtypes.StandardUnitMilliseconds),
		},
	}

	if _, err := r.client.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("putting run metrics: %w", err)
	}
	return nil
}

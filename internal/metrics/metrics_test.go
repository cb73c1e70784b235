package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rainalert/internal/types"
)

type mockCloudWatch struct {
	mock.Mock
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cloudwatch.PutMetricDataOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

var summary = RunSummary{
	Location:         "McKinney@33.1547,-96.7180",
	Channel:          "pushover",
	AlertsSent:       2,
	AlertsSuppressed: 1,
	NotifierFailures: 1,
	StateFailure:     true,
	Duration:         1500 * time.Millisecond,
	FinishedAt:       time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC),
}

func TestCloudWatchRecorder_Record(t *testing.T) {
	client := new(mockCloudWatch)
	var captured *cloudwatch.PutMetricDataInput
	client.On("PutMetricData", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*cloudwatch.PutMetricDataInput) }).
		Return(&cloudwatch.PutMetricDataOutput{}, nil)

	require.NoError(t, NewCloudWatchRecorder(client, "").Record(context.Background(), summary))

	require.NotNil(t, captured)
	assert.Equal(t, types.MetricNamespace, aws.ToString(captured.Namespace))

	values := make(map[string]float64)
	for _, d := range captured.MetricData {
		values[aws.ToString(d.MetricName)] = aws.ToFloat64(d.Value)
		assert.Equal(t, types.DimLocation, aws.ToString(d.Dimensions[0].Name))
		assert.Equal(t, summary.Location, aws.ToString(d.Dimensions[0].Value))
	}
	assert.Equal(t, 2.0, values[types.MetricAlertsSent])
	assert.Equal(t, 1.0, values[types.MetricAlertsSuppressed])
	assert.Equal(t, 1.0, values[types.MetricNotifierFailures])
	assert.Equal(t, 0.0, values[types.MetricProviderFailures])
	assert.Equal(t, 1.0, values[types.MetricStateFailures])
	assert.Equal(t, 1500.0, values[types.MetricRunDuration])
}

func TestCloudWatchRecorder_Error(t *testing.T) {
	client := new(mockCloudWatch)
	client.On("PutMetricData", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	err := NewCloudWatchRecorder(client, "Custom").Record(context.Background(), summary)
	assert.ErrorContains(t, err, "throttled")
}

func TestTextfileRecorder_Record(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rainalert.prom")
	rec := NewTextfileRecorder(path)

	require.NoError(t, rec.Record(context.Background(), summary))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `rainalert_alerts_sent{channel="pushover",location="McKinney@33.1547,-96.7180"} 2`)
	assert.Contains(t, text, `rainalert_state_failure{location="McKinney@33.1547,-96.7180"} 1`)
	assert.Contains(t, text, `rainalert_provider_failure{location="McKinney@33.1547,-96.7180"} 0`)
	assert.Contains(t, text, `rainalert_run_duration_seconds{location="McKinney@33.1547,-96.7180"} 1.5`)
	assert.NotContains(t, text, "go_goroutines")
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Record(context.Background(), summary))
}

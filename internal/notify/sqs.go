// Package notify holds the Notifier implementations that do not talk to a
// push vendor directly: an SQS hand-off for downstream delivery workers and
// a logging notifier for dry runs.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"rainalert/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// AlertMessage is the SQS message body.
type AlertMessage struct {
	RunID    string      `json:"run_id,omitempty"`
	Location string      `json:"location"`
	Alert    types.Alert `json:"alert"`
}

// SQSNotifier publishes alerts to an SQS queue. FIFO queues (URL ending in
// ".fifo") get the location as message group and a per-run deduplication ID.
type SQSNotifier struct {
	client   SQSSender
	queueURL string
	location string
	logger   types.Logger
}

var _ types.Notifier = (*SQSNotifier)(nil)

// NewSQSNotifier creates an SQSNotifier. location is the state key of the
// monitored location.
func NewSQSNotifier(client SQSSender, queueURL, location string, logger types.Logger) *SQSNotifier {
	return &SQSNotifier{
		client:   client,
		queueURL: queueURL,
		location: location,
		logger:   logger,
	}
}

// Name implements types.Notifier.
func (n *SQSNotifier) Name() string { return "sqs" }

// Notify sends one message. SendMessage failures are notifier_unavailable.
func (n *SQSNotifier) Notify(ctx context.Context, alert types.Alert) error {
	runID := types.GetRunID(ctx)
	body, err := json.Marshal(AlertMessage{RunID: runID, Location: n.location, Alert: alert})
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "marshalling alert message", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(n.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"Kind": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(alert.Kind)),
			},
			"Priority": {
				DataType:    aws.String("Number"),
				StringValue: aws.String(strconv.Itoa(int(alert.Priority))),
			},
		},
	}
	if strings.HasSuffix(n.queueURL, ".fifo") {
		input.MessageGroupId = aws.String(messageGroupID(n.location))
		input.MessageDeduplicationId = aws.String(dedupID(runID, alert))
	}

	out, err := n.client.SendMessage(ctx, input)
	if err != nil {
		return types.NewAppError(
			types.ErrCodeNotifierUnavailable,
			fmt.Sprintf("sending alert to %s", n.queueURL),
			err,
		)
	}

	if n.logger != nil {
		n.logger.Info("alert message published",
			"queue", n.queueURL,
			"message_id", aws.ToString(out.MessageId),
			"kind", string(alert.Kind),
		)
	}
	return nil
}

// maxGroupIDLen is the SQS limit on MessageGroupId length.
const maxGroupIDLen = 128

// messageGroupID maps a location key onto the FIFO group ID alphabet, which
// is printable ASCII without the space. Other runes become '-'.
func messageGroupID(location string) string {
	var b strings.Builder
	for _, r := range location {
		if b.Len() == maxGroupIDLen {
			break
		}
		if r > ' ' && r <= '~' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "default"
	}
	return b.String()
}

func dedupID(runID string, alert types.Alert) string {
	id := runID + "-" + string(alert.Kind)
	if alert.Threshold != nil {
		id += "-" + strconv.Itoa(*alert.Threshold)
	}
	return id
}

package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSSink forwards audit records to an SQS queue for downstream consumers
// (safeguarding dashboards, long-term archival).
type SQSSink struct {
	client   *sqs.Client
	queueURL string
}

// NewSQSSink creates a queue-backed audit sink.
func NewSQSSink(client *sqs.Client, queueURL string) *SQSSink {
	if client == nil {
		panic("audit: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("audit: SQS queueURL cannot be empty")
	}
	return &SQSSink{
		client:   client,
		queueURL: queueURL,
	}
}

// Write publishes the record as a JSON message.
func (s *SQSSink) Write(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("audit: failed to marshal record: %w", err)
	}
	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("audit: failed to send SQS message: %w", err)
	}
	return nil
}

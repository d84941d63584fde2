package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// sqsClient is the subset of the SQS client the publisher calls.
type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type sqsPublisher struct {
	id       string
	queueURL string
	client   sqsClient
	log      Logger
}

func newSQSPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("publisher %q missing sqs configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.Region, cfg.SQS.Credentials)
	if err != nil {
		return nil, err
	}

	return &sqsPublisher{
		id:       cfg.ID,
		queueURL: cfg.SQS.QueueURL,
		client:   sqs.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *sqsPublisher) ID() string   { return s.id }
func (s *sqsPublisher) Type() string { return TypeSQS }

// Publish sends the event as one message. FIFO queues get the prediction id as
// deduplication id so a retried submit is not delivered twice.
func (s *sqsPublisher) Publish(ctx context.Context, evt Event) error {
	body, attrs, err := awsMessage(evt, func(v string) types.MessageAttributeValue {
		return types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
	})
	if err != nil {
		return err
	}

	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(body),
		MessageAttributes: attrs,
	}
	if isFIFO(s.queueURL) {
		input.MessageGroupId = aws.String(fifoMessageGroup)
		input.MessageDeduplicationId = aws.String(evt.PredictionID)
	}

	out, err := s.client.SendMessage(ctx, input)
	if err != nil {
		logDeliveryFailure(s.log, TypeSQS, s.id, evt.PredictionID, false, map[string]any{"error": err.Error()})
		return fmt.Errorf("send message to sqs: %w", err)
	}
	logDelivered(s.log, TypeSQS, s.id, evt.PredictionID, aws.ToString(out.MessageId))
	return nil
}

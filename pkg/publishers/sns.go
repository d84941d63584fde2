package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsClient is the subset of the SNS client the publisher calls.
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type snsPublisher struct {
	id       string
	topicARN string
	client   snsClient
	log      Logger
}

func newSNSPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("publisher %q missing sns configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.Region, cfg.SNS.Credentials)
	if err != nil {
		return nil, err
	}

	return &snsPublisher{
		id:       cfg.ID,
		topicARN: cfg.SNS.TopicARN,
		client:   sns.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *snsPublisher) ID() string   { return s.id }
func (s *snsPublisher) Type() string { return TypeSNS }

// Publish sends the event to the topic. Subscribers can filter on engagement_label.
func (s *snsPublisher) Publish(ctx context.Context, evt Event) error {
	body, attrs, err := awsMessage(evt, func(v string) types.MessageAttributeValue {
		return types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
	})
	if err != nil {
		return err
	}

	input := &sns.PublishInput{
		TopicArn:          aws.String(s.topicARN),
		Message:           aws.String(body),
		MessageAttributes: attrs,
	}
	if isFIFO(s.topicARN) {
		input.MessageGroupId = aws.String(fifoMessageGroup)
		input.MessageDeduplicationId = aws.String(evt.PredictionID)
	}

	out, err := s.client.Publish(ctx, input)
	if err != nil {
		logDeliveryFailure(s.log, TypeSNS, s.id, evt.PredictionID, false, map[string]any{"error": err.Error()})
		return fmt.Errorf("publish to sns: %w", err)
	}
	logDelivered(s.log, TypeSNS, s.id, evt.PredictionID, aws.ToString(out.MessageId))
	return nil
}

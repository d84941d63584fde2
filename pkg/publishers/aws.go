package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// fifoMessageGroup is the single ordering group used on FIFO queues and topics.
const fifoMessageGroup = "predictions"

// loadAWSConfig resolves an AWS config for region, pinning static credentials when provided.
func loadAWSConfig(ctx context.Context, region string, creds *AWSCredentials) (aws.Config, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(region)}
	if creds != nil {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// awsMessage is the body and string attributes shared by the SQS and SNS publishers.
// newAttr builds the service-specific attribute value; empty attributes are skipped.
func awsMessage[T any](evt Event, newAttr func(string) T) (string, map[string]T, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return "", nil, fmt.Errorf("marshal event: %w", err)
	}
	attrs := make(map[string]T)
	for k, v := range evt.attributes() {
		if v != "" {
			attrs[k] = newAttr(v)
		}
	}
	return string(payload), attrs, nil
}

// isFIFO reports whether a queue URL or topic ARN names a FIFO resource.
func isFIFO(target string) bool {
	return strings.HasSuffix(target, ".fifo")
}

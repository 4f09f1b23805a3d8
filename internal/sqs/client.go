package sqs

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/losbaristas/cafeteria-catalog/internal/config"
)

// ErrMissingRegion is returned when the AWS settings name no region.
var ErrMissingRegion = errors.New("AWS region is not set")

// NewClient builds the SQS client shared by the outbox publisher and the
// notification consumer. Credentials come from the default AWS chain.
// A non-empty Endpoint points the client at LocalStack.
func NewClient(ctx context.Context, conf config.AWSConfig) (*sqs.Client, error) {
	if conf.Region == "" {
		return nil, ErrMissingRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(conf.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
	}), nil
}

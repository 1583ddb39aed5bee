package alert

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// SNSTransport publishes alerts to an AWS SNS topic.
type SNSTransport struct {
	client   *sns.Client
	topicARN string
}

// NewSNSTransport builds an SNS client from the default AWS credential
// chain (profile, env, instance role) for the given region.
func NewSNSTransport(ctx context.Context, topicARN, region string) (*SNSTransport, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := sns.NewFromConfig(cfg, func(o *sns.Options) {
		// Keep the raw HTTP response around so Publish can report the
		// real acknowledgment status.
		o.APIOptions = append(o.APIOptions, awsmiddleware.AddRawResponseToMetadata)
	})

	return &SNSTransport{client: client, topicARN: topicARN}, nil
}

// Publish sends one message with string attributes to the topic and
// returns the HTTP status of the SNS response.
func (t *SNSTransport) Publish(ctx context.Context, message string, attrs map[string]string) (int, error) {
	msgAttrs := make(map[string]types.MessageAttributeValue, len(attrs))
	for k, v := range attrs {
		msgAttrs[k] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}

	out, err := t.client.Publish(ctx, &sns.PublishInput{
		TopicArn:          aws.String(t.topicARN),
		Message:           aws.String(message),
		MessageAttributes: msgAttrs,
	})
	if err != nil {
		return 0, fmt.Errorf("sns publish: %w", err)
	}

	if resp, ok := awsmiddleware.GetRawResponse(out.ResultMetadata).(*smithyhttp.Response); ok {
		return resp.StatusCode, nil
	}
	return http.StatusOK, nil
}

// Close is a no-op; the SNS client holds no persistent connection.
func (t *SNSTransport) Close() error {
	return nil
}

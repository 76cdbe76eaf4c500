package sns

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/smithy-go"
	"github.com/shopshap/internal/config"
	"github.com/shopshap/internal/domain"
)

// publisher is the slice of the SNS client the sender needs.
type publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Sender delivers verification messages as transactional SMS via AWS SNS.
// A Sender built without credentials fails every Send without calling AWS.
type Sender struct {
	client   publisher
	senderID string
}

// NewSender builds a Sender from the SMS_* credentials. Missing credentials
// are not an error: the sender is returned unconfigured.
func NewSender(ctx context.Context, cfg *config.Config) (*Sender, error) {
	s := &Sender{senderID: cfg.SMSSenderID}
	if cfg.SMSAccessKeyID == "" || cfg.SMSSecretKey == "" {
		return s, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.SNSRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SMSAccessKeyID, cfg.SMSSecretKey, ""),
		),
	)
	if err != nil {
		return nil, err
	}
	var opts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	s.client = sns.NewFromConfig(awsCfg, opts...)
	return s, nil
}

// Configured reports whether Send can reach the provider.
func (s *Sender) Configured() bool { return s.client != nil }

// Send publishes body to the given E.164 number. It makes exactly one
// provider call and never retries.
func (s *Sender) Send(ctx context.Context, to, body string) (string, error) {
	if s.client == nil {
		return "", &domain.DeliveryError{Reason: domain.DeliveryUnconfigured}
	}
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(s.senderID)}
	}
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(to),
		Message:           aws.String(body),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", &domain.DeliveryError{Reason: classify(err), Err: err}
	}
	return aws.ToString(out.MessageId), nil
}

// classify maps provider error codes onto the user-facing delivery reasons.
func classify(err error) domain.DeliveryReason {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return domain.DeliveryGeneric
	}
	switch apiErr.ErrorCode() {
	case "InvalidParameter", "InvalidParameterValue", "ValidationError":
		return domain.DeliveryInvalidNumber
	case "EndpointDisabled", "PlatformApplicationDisabled", "OptedOut", "OptedOutException":
		return domain.DeliveryChannelUnsupported
	case "AuthorizationError", "AccessDenied", "AccessDeniedException", "KMSAccessDenied":
		return domain.DeliveryPermissionDenied
	}
	return domain.DeliveryGeneric
}

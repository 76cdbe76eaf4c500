package sns

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
	"github.com/shopshap/internal/config"
	"github.com/shopshap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*sns.PublishOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestNewSender_MissingCredentials_Unconfigured(t *testing.T) {
	s, err := NewSender(context.Background(), &config.Config{SMSAccessKeyID: "key"})
	require.NoError(t, err)
	assert.False(t, s.Configured())

	_, err = s.Send(context.Background(), "+221701234567", "hello")
	var de *domain.DeliveryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.DeliveryUnconfigured, de.Reason)
	assert.True(t, errors.Is(err, domain.ErrDelivery))
}

func TestSend_PublishesSMS(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		sid, ok := in.MessageAttributes["AWS.SNS.SMS.SenderID"]
		return aws.ToString(in.PhoneNumber) == "+221701234567" &&
			aws.ToString(in.Message) == "Votre code : 123456" &&
			ok && aws.ToString(sid.StringValue) == "ShopShap"
	})).Return(&sns.PublishOutput{MessageId: aws.String("mid-1")}, nil).Once()

	s := &Sender{client: pub, senderID: "ShopShap"}
	id, err := s.Send(context.Background(), "+221701234567", "Votre code : 123456")
	require.NoError(t, err)
	assert.Equal(t, "mid-1", id)
	pub.AssertExpectations(t)
}

func TestSend_ClassifiesProviderErrors(t *testing.T) {
	cases := map[string]domain.DeliveryReason{
		"InvalidParameter":   domain.DeliveryInvalidNumber,
		"OptedOut":           domain.DeliveryChannelUnsupported,
		"EndpointDisabled":   domain.DeliveryChannelUnsupported,
		"AuthorizationError": domain.DeliveryPermissionDenied,
		"Throttling":         domain.DeliveryGeneric,
	}
	for code, want := range cases {
		t.Run(code, func(t *testing.T) {
			pub := &mockPublisher{}
			pub.On("Publish", mock.Anything, mock.Anything).
				Return(nil, &smithy.GenericAPIError{Code: code, Message: "boom"}).Once()
			s := &Sender{client: pub}

			_, err := s.Send(context.Background(), "+221701234567", "x")
			var de *domain.DeliveryError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, want, de.Reason)
			pub.AssertNumberOfCalls(t, "Publish", 1)
		})
	}
}

func TestSend_NetworkErrorIsGeneric(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: timeout"))
	s := &Sender{client: pub}

	_, err := s.Send(context.Background(), "+221701234567", "x")
	var de *domain.DeliveryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.DeliveryGeneric, de.Reason)
	assert.ErrorContains(t, err, "dial tcp")
}

package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	mock.Mock
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

func TestMessage_JoinedTo(t *testing.T) {
	msg := &Message{To: []string{"a@b.com", "c@d.com"}}
	assert.Equal(t, "a@b.com, c@d.com", msg.JoinedTo())
}

func TestSESMailer_Send(t *testing.T) {
	sesMock := &mockSES{}
	sesMock.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == "noreply@example.com" &&
			len(in.Destination.ToAddresses) == 2 &&
			aws.ToString(in.Message.Subject.Data) == "Hi" &&
			aws.ToString(in.Message.Body.Text.Data) == "plain" &&
			in.Message.Body.Html == nil
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("ses-123")}, nil)

	mailer := NewSESMailerWithClient(sesMock)
	id, err := mailer.Send(context.Background(), &Message{
		From:    "noreply@example.com",
		To:      []string{"a@b.com", "c@d.com"},
		Subject: "Hi",
		Text:    "plain",
	})

	require.NoError(t, err)
	assert.Equal(t, "ses-123", id)
	sesMock.AssertExpectations(t)
}

func TestSESMailer_SendFailure(t *testing.T) {
	sesMock := &mockSES{}
	sesMock.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	mailer := NewSESMailerWithClient(sesMock)
	_, err := mailer.Send(context.Background(), &Message{
		From: "noreply@example.com",
		To:   []string{"a@b.com"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestSMTPMailer_ContextAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mailer := NewSMTPMailer(smtpTestConfig(), "Mailer")
	_, err := mailer.Send(ctx, &Message{From: "noreply@example.com", To: []string{"a@b.com"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"eventmanager/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestTemplateRenderer_EventAccepted(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	data := &domain.EventAcceptedEmailData{
		Email:     "owner@example.com",
		Name:      "Ola",
		EventName: "Jazz <Night>",
		EventDate: "2025-06-01",
		City:      "Krakow",
		Street:    "Main",
		Number:    1,
	}
	subject, html, text, err := r.Render("event_accepted", data)
	require.NoError(t, err)
	assert.Equal(t, `Your event "Jazz <Night>" has been accepted`, subject)
	assert.Contains(t, html, "Jazz &lt;Night&gt;")
	assert.Contains(t, text, "Hi Ola,")
	assert.Contains(t, text, "Main 1, Krakow")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)
	_, _, _, err = r.Render("missing", nil)
	require.Error(t, err)
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, "events@example.com", "Events", testLogger)

	err := m.Send(context.Background(), "to@example.com", "Subject", "<p>hi</p>", "hi")
	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "Events <events@example.com>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"to@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Subject", aws.ToString(client.input.Message.Subject.Data))
	assert.Equal(t, "<p>hi</p>", aws.ToString(client.input.Message.Body.Html.Data))
	assert.Equal(t, "hi", aws.ToString(client.input.Message.Body.Text.Data))
}

func TestSESMailer_SendTextOnlyWithoutName(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, "events@example.com", "", testLogger)

	require.NoError(t, m.Send(context.Background(), "to@example.com", "S", "", "plain"))
	assert.Equal(t, "events@example.com", aws.ToString(client.input.Source))
	assert.Nil(t, client.input.Message.Body.Html)
}

func TestSESMailer_SendError(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	m := newSESMailer(client, "events@example.com", "", testLogger)

	err := m.Send(context.Background(), "to@example.com", "S", "", "plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, testLogger)
	require.NoError(t, err)
	require.IsType(t, &noopMailer{}, m)
	require.NoError(t, m.Send(context.Background(), "a@b.com", "s", "", ""))

	m, err = NewMailer(MailerConfig{Provider: "carrier-pigeon"}, testLogger)
	require.NoError(t, err)
	require.IsType(t, &noopMailer{}, m)

	_, err = NewMailer(MailerConfig{Provider: "ses"}, testLogger)
	require.Error(t, err)

	m, err = NewMailer(MailerConfig{Provider: "ses", FromAddress: "events@example.com", SES: SESConfig{Region: "eu-west-1"}}, testLogger)
	require.NoError(t, err)
	require.IsType(t, &sesMailer{}, m)
}

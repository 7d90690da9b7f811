package services

import (
	"context"
	"net/http"
	"time"

	"mandirdaan/internal/config"
	"mandirdaan/pkg/logger"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

const (
	ChannelModeLive = "twilio"
	ChannelModeMock = "mock"
)

// NotificationChannel delivers text messages. Send never returns an error:
// a failed delivery is logged and reported as false.
type NotificationChannel interface {
	Send(ctx context.Context, phoneNumber, message string) bool
	Mode() string
}

// NewNotificationChannel picks the delivery mode once, from the supplied
// credentials.
func NewNotificationChannel(cfg config.TwilioConfig, log *logger.Logger) NotificationChannel {
	if !cfg.Configured() {
		log.Info("Twilio credentials not configured, SMS service will run in mock mode")
		return &mockChannel{logger: log}
	}
	log.Info("Twilio SMS service initialized")
	return newTwilioChannel(cfg, &http.Client{Timeout: 15 * time.Second}, log)
}

type mockChannel struct {
	logger *logger.Logger
}

func (m *mockChannel) Send(_ context.Context, phoneNumber, message string) bool {
	m.logger.Info("SMS mock mode",
		zap.String("to", phoneNumber),
		zap.String("message", message),
	)
	return true
}

func (m *mockChannel) Mode() string { return ChannelModeMock }

type twilioChannel struct {
	from   string
	client *twilio.RestClient
	logger *logger.Logger
}

func newTwilioChannel(cfg config.TwilioConfig, httpClient *http.Client, log *logger.Logger) *twilioChannel {
	base := &twilioclient.Client{
		Credentials: twilioclient.NewCredentials(cfg.AccountSID, cfg.AuthToken),
		HTTPClient:  httpClient,
	}
	base.SetAccountSid(cfg.AccountSID)

	return &twilioChannel{
		from:   cfg.PhoneNumber,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{Client: base}),
		logger: log,
	}
}

func (t *twilioChannel) Mode() string { return ChannelModeLive }

// Send ignores ctx; the SDK call is bounded by the HTTP client timeout.
func (t *twilioChannel) Send(_ context.Context, phoneNumber, message string) bool {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(phoneNumber)
	params.SetFrom(t.from)
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		t.logger.Error("Failed to send SMS", err, zap.String("to", phoneNumber))
		return false
	}

	fields := []zap.Field{zap.String("to", phoneNumber)}
	if resp.Sid != nil {
		fields = append(fields, zap.String("sid", *resp.Sid))
	}
	t.logger.Info("SMS sent", fields...)
	return true
}

package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"mandirdaan/internal/config"
	"mandirdaan/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotificationChannel_SelectsMode(t *testing.T) {
	log := logger.NewNop()

	assert.Equal(t, ChannelModeMock, NewNotificationChannel(config.TwilioConfig{}, log).Mode())
	assert.Equal(t, ChannelModeMock, NewNotificationChannel(config.TwilioConfig{AccountSID: "your_twilio_account_sid", AuthToken: "x"}, log).Mode())
	assert.Equal(t, ChannelModeLive, NewNotificationChannel(config.TwilioConfig{AccountSID: "AC1", AuthToken: "tok"}, log).Mode())
}

func TestMockChannel_AlwaysSucceeds(t *testing.T) {
	ch := NewNotificationChannel(config.TwilioConfig{}, logger.NewNop())
	assert.True(t, ch.Send(context.Background(), "999", "hello"))
}

// redirectTo sends every request to srv regardless of the host the SDK dials.
func redirectTo(srv string) *http.Client {
	target, _ := url.Parse(srv)
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		r = r.Clone(r.Context())
		r.URL.Scheme = target.Scheme
		r.URL.Host = target.Host
		return http.DefaultTransport.RoundTrip(r)
	})}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestTwilioChannel_PostsMessage(t *testing.T) {
	var gotPath, gotUser, gotPass, gotTo, gotFrom, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotTo, gotFrom, gotBody = r.PostForm.Get("To"), r.PostForm.Get("From"), r.PostForm.Get("Body")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123"}`))
	}))
	defer srv.Close()

	cfg := config.TwilioConfig{AccountSID: "AC1", AuthToken: "tok", PhoneNumber: "+15550000"}
	ch := newTwilioChannel(cfg, redirectTo(srv.URL), logger.NewNop())

	assert.True(t, ch.Send(context.Background(), "+919990001111", "Namaste"))
	assert.Equal(t, "/2010-04-01/Accounts/AC1/Messages.json", gotPath)
	assert.Equal(t, "AC1", gotUser)
	assert.Equal(t, "tok", gotPass)
	assert.Equal(t, "+919990001111", gotTo)
	assert.Equal(t, "+15550000", gotFrom)
	assert.Equal(t, "Namaste", gotBody)
}

func TestTwilioChannel_ProviderErrorIsFailedSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","status":400}`))
	}))
	defer srv.Close()

	ch := newTwilioChannel(config.TwilioConfig{AccountSID: "AC1", AuthToken: "tok"}, redirectTo(srv.URL), logger.NewNop())
	assert.False(t, ch.Send(context.Background(), "999", "Namaste"))
}

func TestTwilioChannel_UnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	ch := newTwilioChannel(config.TwilioConfig{AccountSID: "AC1", AuthToken: "tok"}, redirectTo(addr), logger.NewNop())
	assert.False(t, ch.Send(context.Background(), "999", "Namaste"))
}

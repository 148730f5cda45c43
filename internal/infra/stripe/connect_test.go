package stripe

import (
	"encoding/base64"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	state, err := EncodeState("creator-1", now)
	require.NoError(t, err)

	got, err := DecodeState(state, now.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "creator-1", got.CreatorID)
	assert.Equal(t, now.UnixMilli(), got.Timestamp)
}

func TestDecodeStateRejects(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	old, _ := EncodeState("creator-1", now.Add(-2*time.Hour))
	_, err := DecodeState(old, now)
	assert.ErrorIs(t, err, ErrStateExpired)

	_, err = DecodeState("%%%not-base64", now)
	assert.Error(t, err)

	noCreator := base64.StdEncoding.EncodeToString([]byte(`{"timestamp":1}`))
	_, err = DecodeState(noCreator, now)
	assert.Error(t, err)
}

func TestDecodeStateMatchesOriginalFormat(t *testing.T) {
	now := time.UnixMilli(1767225600000)
	raw := `{"creatorId":"abc","timestamp":1767225600000}`
	state := base64.StdEncoding.EncodeToString([]byte(raw))

	got, err := DecodeState(state, now)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.CreatorID)
}

func TestConnectAuthorizeURL(t *testing.T) {
	raw := ConnectAuthorizeURL("ca_123", "https://api.example.com/api/stripe/callback", "c3RhdGU=")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "connect.stripe.com", u.Host)
	q := u.Query()
	assert.Equal(t, "ca_123", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "read_write", q.Get("scope"))
	assert.Equal(t, "c3RhdGU=", q.Get("state"))
}

func TestNotConfigured(t *testing.T) {
	Configure("", "")
	_, err := ExchangeConnectCode("code")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = CreateCheckoutSession(CheckoutRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

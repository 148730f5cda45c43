package stripe

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stripeapi "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/oauth"
)

// StateMaxAge bounds how long a Connect handshake may take.
const StateMaxAge = time.Hour

var ErrStateExpired = errors.New("connect state expired")

// ConnectState travels through Stripe's OAuth redirect. It is base64 JSON and
// is not signed.
type ConnectState struct {
	CreatorID string `json:"creatorId"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

func EncodeState(creatorID string, now time.Time) (string, error) {
	raw, err := json.Marshal(ConnectState{CreatorID: creatorID, Timestamp: now.UnixMilli()})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func DecodeState(state string, now time.Time) (*ConnectState, error) {
	raw, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		// some clients re-encode the query value url-safe
		raw, err = base64.URLEncoding.DecodeString(state)
		if err != nil {
			return nil, fmt.Errorf("decode state: %w", err)
		}
	}

	var s ConnectState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	if s.CreatorID == "" {
		return nil, errors.New("state missing creatorId")
	}

	issued := time.UnixMilli(s.Timestamp)
	if s.Timestamp <= 0 || now.Sub(issued) > StateMaxAge || issued.After(now.Add(time.Minute)) {
		return nil, ErrStateExpired
	}
	return &s, nil
}

// ConnectAuthorizeURL builds the Stripe Connect (standard) authorization link.
func ConnectAuthorizeURL(clientID, redirectURI, state string) string {
	return oauth.AuthorizeURL(&stripeapi.AuthorizeURLParams{
		ClientID:     stripeapi.String(clientID),
		RedirectURI:  stripeapi.String(redirectURI),
		ResponseType: stripeapi.String("code"),
		Scope:        stripeapi.String("read_write"),
		State:        stripeapi.String(state),
	})
}

// ConnectCredentials is what the platform keeps for a connected account.
type ConnectCredentials struct {
	AccountID    string
	AccessToken  string
	RefreshToken string
}

func ExchangeConnectCode(code string) (*ConnectCredentials, error) {
	if !Ready() {
		return nil, ErrNotConfigured
	}
	tok, err := oauth.New(&stripeapi.OAuthTokenParams{
		GrantType: stripeapi.String("authorization_code"),
		Code:      stripeapi.String(code),
	})
	if err != nil {
		return nil, fmt.Errorf("exchange connect code: %w", err)
	}
	if tok.StripeUserID == "" {
		return nil, errors.New("connect token response missing stripe_user_id")
	}
	return &ConnectCredentials{
		AccountID:    tok.StripeUserID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}, nil
}

// Deauthorize revokes the platform's access to a connected account.
func Deauthorize(clientID, accountID string) error {
	if !Ready() {
		return ErrNotConfigured
	}
	_, err := oauth.Del(&stripeapi.DeauthorizeParams{
		ClientID:     stripeapi.String(clientID),
		StripeUserID: stripeapi.String(accountID),
	})
	if err != nil {
		return fmt.Errorf("deauthorize %s: %w", accountID, err)
	}
	return nil
}

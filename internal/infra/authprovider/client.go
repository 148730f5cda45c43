// Package authprovider is a small client for a GoTrue-compatible auth API
// (the hosted provider that owns user accounts and sessions).
package authprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const maxResponseBytes = 1 << 20

type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	http       *http.Client
}

func New(baseURL, anonKey, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/auth/v1",
		anonKey:    anonKey,
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

func (c *Client) SignUp(ctx context.Context, email, password, redirectTo string) (*SignUpResult, error) {
	q := url.Values{}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	body, err := c.do(ctx, http.MethodPost, "/signup", q, c.anonKey, map[string]any{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	// Auto-confirming projects answer with a session, others with the bare user.
	if gjson.GetBytes(body, "access_token").Exists() {
		var s Session
		if err := json.Unmarshal(body, &s); err != nil {
			return nil, fmt.Errorf("decode signup session: %w", err)
		}
		return &SignUpResult{User: s.User, Session: &s}, nil
	}
	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode signup user: %w", err)
	}
	return &SignUpResult{User: &u}, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	q := url.Values{"grant_type": {"password"}}
	body, err := c.do(ctx, http.MethodPost, "/token", q, c.anonKey, map[string]any{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// SignInWithOTP requests a magic link. With createUser=false the provider
// refuses unknown emails instead of registering them.
func (c *Client) SignInWithOTP(ctx context.Context, email string, createUser bool) error {
	_, err := c.do(ctx, http.MethodPost, "/otp", nil, c.anonKey, map[string]any{
		"email":       email,
		"create_user": createUser,
	})
	return err
}

// ExchangeCodeForSession completes a PKCE authorization code flow.
func (c *Client) ExchangeCodeForSession(ctx context.Context, code, verifier string) (*Session, error) {
	q := url.Values{"grant_type": {"pkce"}}
	body, err := c.do(ctx, http.MethodPost, "/token", q, c.anonKey, map[string]any{
		"auth_code":     code,
		"code_verifier": verifier,
	})
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (c *Client) Resend(ctx context.Context, email, redirectTo string) error {
	payload := map[string]any{
		"type":  "signup",
		"email": email,
	}
	if redirectTo != "" {
		payload["options"] = map[string]string{"email_redirect_to": redirectTo}
	}
	_, err := c.do(ctx, http.MethodPost, "/resend", nil, c.anonKey, payload)
	return err
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, http.MethodPost, "/logout", nil, accessToken, nil)
	return err
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	body, err := c.do(ctx, http.MethodGet, "/user", nil, accessToken, nil)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

func (c *Client) UpdateEmail(ctx context.Context, accessToken, email string) (*User, error) {
	body, err := c.do(ctx, http.MethodPut, "/user", nil, accessToken, map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// ListUsers returns one page of users. Needs the service role key.
func (c *Client) ListUsers(ctx context.Context, page, perPage int) ([]User, error) {
	if c.serviceKey == "" {
		return nil, ErrAdminUnavailable
	}
	q := url.Values{
		"page":     {fmt.Sprint(page)},
		"per_page": {fmt.Sprint(perPage)},
	}
	body, err := c.do(ctx, http.MethodGet, "/admin/users", q, c.serviceKey, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Users []User `json:"users"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return out.Users, nil
}

// GenerateRecoveryLink asks the provider for a password recovery link without
// sending its own email. Needs the service role key.
func (c *Client) GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error) {
	if c.serviceKey == "" {
		return "", ErrAdminUnavailable
	}
	payload := map[string]any{
		"type":  "recovery",
		"email": email,
	}
	if redirectTo != "" {
		payload["redirect_to"] = redirectTo
	}
	body, err := c.do(ctx, http.MethodPost, "/admin/generate_link", nil, c.serviceKey, payload)
	if err != nil {
		return "", err
	}
	link := gjson.GetBytes(body, "action_link").String()
	if link == "" {
		link = gjson.GetBytes(body, "properties.action_link").String()
	}
	if link == "" {
		return "", fmt.Errorf("generate_link: response has no action_link")
	}
	return link, nil
}

// AuthorizeURL builds the provider redirect for an OAuth sign-in using PKCE.
func (c *Client) AuthorizeURL(provider, redirectTo, codeChallenge string) string {
	q := url.Values{
		"provider":              {provider},
		"redirect_to":           {redirectTo},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {"s256"},
	}
	return c.baseURL + "/authorize?" + q.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, bearer string, payload any) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("apikey", c.anonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseError(resp.StatusCode, body)
	}
	return body, nil
}

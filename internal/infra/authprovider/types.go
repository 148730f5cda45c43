package authprovider

import (
	"encoding/json"
	"time"
)

type Identity struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

type User struct {
	ID               string          `json:"id"`
	Email            string          `json:"email"`
	EmailConfirmedAt *time.Time      `json:"email_confirmed_at"`
	ConfirmedAt      *time.Time      `json:"confirmed_at"`
	Identities       []Identity      `json:"identities"`
	AppMetadata      json.RawMessage `json:"app_metadata,omitempty"`
	UserMetadata     json.RawMessage `json:"user_metadata,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Confirmed reports whether the user verified their email address.
func (u *User) Confirmed() bool {
	return u != nil && (u.EmailConfirmedAt != nil || u.ConfirmedAt != nil)
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// SignUpResult carries the user and, when the provider auto-confirms, a session.
type SignUpResult struct {
	User    *User
	Session *Session
}

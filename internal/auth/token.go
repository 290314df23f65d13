package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is a bearer access token issued by the music server.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Subject     string    `json:"subject,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
	SavedAt     time.Time `json:"saved_at"`
}

// NewToken builds a Token from a raw access token. When the token is a JWT its
// subject and expiry are read from the claims; the signature is not verified,
// that is the server's job.
func NewToken(raw string) (*Token, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return nil, errors.New("empty access token")
	}

	token := &Token{
		AccessToken: raw,
		TokenType:   "Bearer",
		SavedAt:     time.Now(),
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			token.ExpiresAt = exp.Time
		}
		if sub, err := claims.GetSubject(); err == nil {
			token.Subject = sub
		}
	}

	return token, nil
}

// IsExpired returns true if the token has a known expiry that has passed or
// will pass within the buffer. Opaque tokens never expire locally.
func (t *Token) IsExpired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	// Consider token expired 60 seconds before actual expiry
	return time.Now().Add(60 * time.Second).After(t.ExpiresAt)
}

package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultTTL is how long a login lasts.
const DefaultTTL = 24 * time.Hour

// ErrInvalidToken is returned for tokens that do not decode.
var ErrInvalidToken = errors.New("invalid session token")

// Token is the unsigned prototype login payload. Anyone can mint one;
// Expired is a freshness check, not authentication.
type Token struct {
	User string `json:"user"`
	// Exp is the expiry in Unix milliseconds.
	Exp int64 `json:"exp"`
}

// Issue creates a token for user expiring ttl after now.
func Issue(user string, ttl time.Duration, now time.Time) Token {
	return Token{User: user, Exp: now.Add(ttl).UnixMilli()}
}

// Encode returns the base64 JSON form sent to clients.
func (t Token) Encode() string {
	data, _ := json.Marshal(t)
	return base64.StdEncoding.EncodeToString(data)
}

// ExpiresAt converts Exp to a time.
func (t Token) ExpiresAt() time.Time {
	return time.UnixMilli(t.Exp)
}

// Expired reports whether the token is past its expiry at now.
func (t Token) Expired(now time.Time) bool {
	return now.UnixMilli() >= t.Exp
}

// Decode parses a token produced by Encode.
func Decode(s string) (Token, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return Token{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if t.User == "" || t.Exp == 0 {
		return Token{}, ErrInvalidToken
	}
	return t, nil
}

// Package session reads the backend's JWT access tokens. Tokens are issued
// and verified by the backend, so claims are decoded without verification and
// only used to know who is signed in and when the token lapses.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/templui/folio/internal/model"
)

var (
	ErrNoAccessToken = errors.New("access token is required")
)

// expirySkew treats tokens as expired slightly early so a request does not
// race the backend's own check.
const expirySkew = 30 * time.Second

type Session struct {
	AccessToken  string
	RefreshToken string
	User         model.User
	ExpiresAt    time.Time
}

// claims mirrors what the backend puts in its access tokens.
type claims struct {
	UserID   any    `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

var parser = jwt.NewParser()

// FromTokens builds a session from an access/refresh pair.
func FromTokens(access, refresh string) (*Session, error) {
	if access == "" {
		return nil, ErrNoAccessToken
	}

	var c claims
	_, _, err := parser.ParseUnverified(access, &c)
	if err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}

	s := &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		User: model.User{
			ID:       userID(c.UserID),
			Username: c.Username,
		},
	}
	if s.User.Username == "" {
		s.User.Username = c.Subject
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s, nil
}

func userID(v any) int64 {
	switch id := v.(type) {
	case float64:
		return int64(id)
	case string:
		n, _ := strconv.ParseInt(id, 10, 64)
		return n
	}
	return 0
}

// Expired reports whether the access token is unusable at now. Tokens without
// an expiry never expire.
func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(expirySkew).Before(s.ExpiresAt)
}

// Token exposes the session as an oauth2 bearer token.
func (s *Session) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
	}
	if !s.ExpiresAt.IsZero() {
		tok.Expiry = s.ExpiresAt.Add(-expirySkew)
	}
	return tok
}

package api

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/templui/folio/internal/session"
)

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, username, password string) (*session.Session, error) {
	in := map[string]string{"username": username, "password": password}

	var out tokenPair
	err := c.do(ctx, http.MethodPost, "auth/token/", nil, in, &out)
	if err != nil {
		return nil, err
	}
	return session.FromTokens(out.Access, out.Refresh)
}

// Refresh trades a refresh token for a new access token. Backends that do
// not rotate refresh tokens leave the old one in place.
func (c *Client) Refresh(ctx context.Context, refresh string) (*session.Session, error) {
	in := map[string]string{"refresh": refresh}

	var out tokenPair
	err := c.do(ctx, http.MethodPost, "auth/token/refresh/", nil, in, &out)
	if err != nil {
		return nil, err
	}
	if out.Refresh == "" {
		out.Refresh = refresh
	}
	return session.FromTokens(out.Access, out.Refresh)
}

// WithSession returns a copy of the client that authenticates as sess and
// refreshes the access token when it lapses.
func (c *Client) WithSession(sess *session.Session) *Client {
	authed := &Client{
		baseURL: c.baseURL,
		base:    c.base,
	}
	src := oauth2.ReuseTokenSource(sess.Token(), &refresher{c: c, refresh: sess.RefreshToken})
	authed.http = oauth2.NewClient(authed.clientContext(), src)
	authed.bind()
	return authed
}

// refresher is only called by oauth2.ReuseTokenSource, which serializes
// calls to Token.
type refresher struct {
	c       *Client
	refresh string
}

func (r *refresher) Token() (*oauth2.Token, error) {
	if r.refresh == "" {
		return nil, fmt.Errorf("access token expired and no refresh token is available")
	}
	sess, err := r.c.Refresh(context.Background(), r.refresh)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh access token: %w", err)
	}
	r.refresh = sess.RefreshToken
	return sess.Token(), nil
}

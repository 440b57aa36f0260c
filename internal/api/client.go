// Package api is the HTTP client for the portfolio REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/model"
)

const (
	defaultTimeout  = 15 * time.Second
	maxBodyBytes    = 4 << 20
	requestIDHeader = "X-Request-ID"
)

type Client struct {
	baseURL *url.URL
	base    *http.Client
	http    *http.Client

	Goals        *GoalService
	Steps        *StepService
	Projects     *ProjectService
	Certificates *CertificateService
}

type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.base = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.base.Timeout = d
	}
}

// WithToken authenticates every request with a static bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		if token == "" {
			return
		}
		c.http = oauth2.NewClient(c.clientContext(), oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url: %q", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL: u,
		base:    &http.Client{Timeout: defaultTimeout},
	}
	c.http = c.base
	for _, opt := range opts {
		opt(c)
	}
	c.bind()
	return c, nil
}

func (c *Client) bind() {
	c.Goals = &GoalService{r: resource[model.Goal]{c: c, path: "goals/"}}
	c.Steps = &StepService{r: resource[model.Step]{c: c, path: "goal-steps/"}}
	c.Projects = &ProjectService{r: resource[model.Project]{c: c, path: "projects/"}}
	c.Certificates = &CertificateService{r: resource[model.Certificate]{c: c, path: "certificates/"}}
}

// clientContext carries the base client into oauth2 so timeouts and test
// transports survive the token wrapping.
func (c *Client) clientContext() context.Context {
	return context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	op := method + " " + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := ctxkeys.RequestID(ctx); id != "" {
		req.Header.Set(requestIDHeader, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &apierr.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &apierr.NetworkError{Op: op, Err: err}
	}

	slog.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= 400 {
		return apierr.Decode(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	err = json.Unmarshal(data, out)
	if err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

// Package httpx wraps net/http with the saga's outbound admission
// discipline: every request first acquires a slot from a rate-limit
// Group, sleeping and re-checking as needed, before it is allowed onto
// the wire.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/evesaga/evesaga/internal/ratelimit"
)

// Client issues rate-limited HTTP requests; callers pass full URLs, so one
// Client serves every host behind the same limiter group.
type Client struct {
	http      *http.Client
	limiter   *ratelimit.Group
	start     time.Time
	userAgent string
}

// Config configures a Client.
type Config struct {
	Timeout   time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT"`
	UserAgent string        `yaml:"user_agent" env:"HTTP_USER_AGENT"`
}

// New builds a Client admitted through limiter.
func New(cfg Config, limiter *ratelimit.Group) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "evesaga/1.0"
	}
	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   limiter,
		start:     time.Now(),
		userAgent: cfg.UserAgent,
	}
}

func (c *Client) since() time.Duration { return time.Since(c.start) }

// admit blocks until the limiter group admits a hit, or ctx is cancelled.
func (c *Client) admit(ctx context.Context) error {
	for {
		wait, ok := c.limiter.HitAt(c.since())
		if ok {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Wrap("admit", KindTransport, ctx.Err())
		case <-timer.C:
		}
	}
}

// Do issues req after acquiring admission, and classifies the result into
// the httpx error taxonomy on failure.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.admit(ctx); err != nil {
		return nil, err
	}

	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", c.userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", req.URL.String()).Msg("httpx transport error")
		return nil, Wrap("do", KindTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		defer drain(resp)
		return nil, Wrap("do", KindAuth, statusError(resp))
	case resp.StatusCode >= 500:
		defer drain(resp)
		return nil, Wrap("do", KindServer, statusError(resp))
	case resp.StatusCode >= 400:
		defer drain(resp)
		return nil, Wrap("do", KindAPI, statusError(resp))
	}

	return resp, nil
}

// Get is a convenience wrapper for the common case.
func (c *Client) Get(ctx context.Context, url string, setHeaders func(h http.Header)) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, Wrap("get", KindTransport, err)
	}
	if setHeaders != nil {
		setHeaders(req.Header)
	}
	return c.Do(ctx, req)
}

// Post JSON-encodes body and issues a POST request, the shape used by the
// assets-names bulk-resolve endpoint.
func (c *Client) Post(ctx context.Context, url string, body any, setHeaders func(h http.Header)) (*http.Response, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, Wrap("post", KindParse, err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, Wrap("post", KindTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if setHeaders != nil {
		setHeaders(req.Header)
	}
	return c.Do(ctx, req)
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func statusError(resp *http.Response) error {
	return &statusErr{code: resp.StatusCode, status: resp.Status}
}

type statusErr struct {
	code   int
	status string
}

func (e *statusErr) Error() string { return e.status }
func (e *statusErr) StatusCode() int { return e.code }

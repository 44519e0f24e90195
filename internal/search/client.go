package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kalambet/jobassist/internal/contract"
)

// DefaultTimeout bounds a search round trip unless WithTimeout says otherwise.
const DefaultTimeout = 120 * time.Second

const (
	defaultEnvelopeDepth = 2
	maxResponseSize      = 10 << 20 // 10MB
)

// Client talks to the job search backend.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	limiter       *rate.Limiter
	envelopeDepth int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds a single search round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit throttles outgoing searches. Searches are expensive on the
// backend and are never retried, so callers wait instead of being rejected.
// A non-positive rps disables the limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithEnvelopeDepth sets how many status/data wrappers surround the result.
func WithEnvelopeDepth(n int) Option {
	return func(c *Client) {
		if n >= 1 {
			c.envelopeDepth = n
		}
	}
}

// New creates a Client targeting the given backend base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: DefaultTimeout},
		envelopeDepth: defaultEnvelopeDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// Search issues one POST /job-search and returns the unwrapped result.
// The role is not re-validated here.
func (c *Client) Search(ctx context.Context, q contract.SearchQuery) (contract.Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return contract.Result{}, &RequestFailedError{Err: fmt.Errorf("waiting for rate limiter: %w", err)}
		}
	}

	body, err := json.Marshal(q)
	if err != nil {
		return contract.Result{}, fmt.Errorf("marshaling query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/job-search", bytes.NewReader(body))
	if err != nil {
		return contract.Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contract.Result{}, &RequestFailedError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return contract.Result{}, &RequestFailedError{StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return contract.Result{}, &RequestFailedError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	return c.unwrap(raw)
}

// unwrap peels envelopeDepth status/data layers off raw and decodes the
// payload underneath. Each layer fails on its own so a broken envelope says
// which level was wrong.
func (c *Client) unwrap(raw []byte) (contract.Result, error) {
	for layer := 1; layer <= c.envelopeDepth; layer++ {
		env, err := contract.ParseEnvelope(raw)
		if err != nil {
			return contract.Result{}, malformed(layer, err)
		}
		raw = env.Data
	}

	result, err := contract.ParseResult(raw)
	if err != nil {
		return contract.Result{}, malformed(0, err)
	}
	return result, nil
}

func malformed(layer int, err error) *MalformedResponseError {
	me := &MalformedResponseError{Layer: layer, Err: err}
	var serr *contract.ShapeError
	if errors.As(err, &serr) {
		me.Problems = serr.Problems
	}
	return me
}

// Ping checks the backend's root health route.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestFailedError{Err: err}
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestFailedError{StatusCode: resp.StatusCode}
	}
	return nil
}

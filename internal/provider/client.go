// Package provider implements the HTTP plumbing shared by every upstream data source: per-call timeouts,
// outbound rate limiting, a circuit breaker and the mapping of every failure onto a small error taxonomy.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

var (
	// ErrUnavailable covers timeouts, network errors, non-2xx answers and an open circuit.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrNotFound means the provider answered but holds no entry for the address.
	ErrNotFound = errors.New("provider has no data")
	// ErrMalformed means the body could not be decoded or failed a sanity check.
	ErrMalformed = errors.New("malformed provider payload")
)

const (
	userAgent   = "ChainCheck/1.0"
	maxBodySize = 4 << 20
)

// Recorder receives one observation per upstream call.
type Recorder interface {
	ObserveProvider(provider, outcome string, elapsed time.Duration)
}

type Options struct {
	Name    string
	BaseURL string
	Timeout time.Duration
	Headers map[string]string

	// RPS <= 0 disables outbound throttling.
	RPS   float64
	Burst int

	BreakerFailures uint32
	BreakerCooldown time.Duration

	Recorder   Recorder
	HTTPClient *http.Client
}

type Client struct {
	name       string
	baseURL    string
	timeout    time.Duration
	headers    map[string]string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	recorder   Recorder
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	burst := opts.Burst
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
		if burst <= 0 {
			burst = 1
		}
	}

	failures := opts.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    opts.Name,
		Timeout: opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A clean "not found" says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})

	return &Client{
		name:       opts.Name,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		timeout:    opts.Timeout,
		headers:    opts.Headers,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    breaker,
		recorder:   opts.Recorder,
	}
}

func (c *Client) Name() string { return c.name }

// GetJSON fetches baseURL+path and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// PostJSON sends body as JSON to baseURL+path and decodes the JSON answer into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", c.name, err)
	}
	return c.do(ctx, http.MethodPost, path, nil, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.breaker.Execute(func() (interface{}, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s rate limit wait: %v", ErrUnavailable, c.name, err)
		}
		return nil, c.roundTrip(ctx, method, path, query, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %s circuit open", ErrUnavailable, c.name)
	}

	if c.recorder != nil {
		c.recorder.ObserveProvider(c.name, Outcome(err), time.Since(start))
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: %s build request: %v", ErrUnavailable, c.name, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, c.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: %s read body: %v", ErrUnavailable, c.name, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s returned 404", ErrNotFound, c.name)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s returned status %d", ErrUnavailable, c.name, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, c.name, err)
	}
	return nil
}

// Outcome maps an error from this package onto a short metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "unavailable"
	}
}

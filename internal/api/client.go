// Package api is a client for the IaSQL engine HTTP API.
//
// Requests carry the session's bearer token through oauth2.Transport. Reads
// are retried on transient failures; writes are sent once.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/oauth2"

	"github.com/iasql/cli/internal/session"
)

var tracer = otel.Tracer("github.com/iasql/cli/internal/api")

const maxResponseSize = 64 << 20

// Config holds the API endpoint settings.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseTransport http.RoundTripper
	retryWaitMin  time.Duration
	retryWaitMax  time.Duration
}

// WithTransport sets a custom base transport for API requests.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.baseTransport = transport
	}
}

// WithRetryWait bounds the backoff between retried reads.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(o *clientOptions) {
		o.retryWaitMin = minWait
		o.retryWaitMax = maxWait
	}
}

// Client talks to the IaSQL engine.
type Client struct {
	baseURL string
	reads   *retryablehttp.Client
	writes  *http.Client
}

// New creates a Client authenticating every request with tokens from ts.
func New(cfg Config, ts oauth2.TokenSource, opts ...Option) (*Client, error) {
	if ts == nil {
		return nil, errors.New("token source is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", cfg.BaseURL)
	}

	o := &clientOptions{
		baseTransport: http.DefaultTransport,
		retryWaitMin:  time.Second,
		retryWaitMax:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   o.baseTransport,
		},
	}

	reads := retryablehttp.NewClient()
	reads.HTTPClient = httpClient
	reads.RetryMax = cfg.RetryMax
	reads.RetryWaitMin = o.retryWaitMin
	reads.RetryWaitMax = o.retryWaitMax
	reads.Logger = slog.Default()
	reads.ErrorHandler = retryablehttp.PassthroughErrorHandler
	reads.CheckRetry = retryPolicy

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		reads:   reads,
		writes:  httpClient,
	}, nil
}

// retryPolicy never retries a request that failed for lack of a token.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if errors.Is(err, session.ErrNoToken) {
		return false, err
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// get sends a retried GET to path and decodes a JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	ctx, span := tracer.Start(ctx, "api GET "+path)
	defer span.End()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.url(path, query), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	requestID := setHeaders(req.Header)

	start := time.Now()
	resp, err := c.reads.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return c.finish(ctx, resp, path, requestID, start, out)
}

// post sends body as JSON to path once and decodes a JSON response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	ctx, span := tracer.Start(ctx, "api POST "+path)
	defer span.End()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	requestID := setHeaders(req.Header)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.writes.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("POST %s: %w", path, err)
	}
	return c.finish(ctx, resp, path, requestID, start, out)
}

func (c *Client) finish(ctx context.Context, resp *http.Response, path, requestID string, start time.Time, out any) error {
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	slog.DebugContext(ctx, "api request",
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func setHeaders(h http.Header) string {
	requestID := uuid.NewString()
	h.Set("Accept", "application/json")
	h.Set("X-Request-Id", requestID)
	return requestID
}

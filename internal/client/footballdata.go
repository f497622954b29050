package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"football_etl/internal/metrics"

	"github.com/rs/zerolog/log"
)

// ErrUpstreamExhausted is returned when the API keeps rate limiting past the retry budget
var ErrUpstreamExhausted = errors.New("upstream exhausted: rate limit retries used up")

// StatusError is returned for any non-200, non-429 response
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

// TransportError wraps timeouts, DNS failures, refused connections and unreadable bodies
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("API request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a 200 body is not a JSON object
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether err is an upstream failure that retrying will not fix.
// Callers may treat these as "no data" instead of aborting.
func IsPermanent(err error) bool {
	var statusErr *StatusError
	var transportErr *TransportError
	var decodeErr *DecodeError
	return errors.As(err, &statusErr) || errors.As(err, &transportErr) || errors.As(err, &decodeErr)
}

// Document is a decoded top-level JSON object
type Document map[string]json.RawMessage

// IsEmpty reports whether the document carries no keys
func (d Document) IsEmpty() bool {
	return len(d) == 0
}

// Decode unmarshals the value under key into v. A missing key leaves v untouched.
func (d Document) Decode(key string, v any) error {
	raw, ok := d[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// SnapshotWriter persists raw response bodies
type SnapshotWriter interface {
	Write(name string, body []byte) error
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config holds client settings
type Config struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RateLimitDelay time.Duration
	MaxBackoff     time.Duration
}

// Client is the football-data.org API client
type Client struct {
	baseURL        string
	apiKey         string
	httpClient     *http.Client
	snapshots      SnapshotWriter
	sleep          SleepFunc
	maxRetries     int
	rateLimitDelay time.Duration
	maxBackoff     time.Duration
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSleep replaces the wait used between rate-limited attempts
func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// NewClient creates a new football-data API client
func NewClient(cfg Config, snapshots SnapshotWriter, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		snapshots:      snapshots,
		sleep:          sleepContext,
		maxRetries:     cfg.MaxRetries,
		rateLimitDelay: cfg.RateLimitDelay,
		maxBackoff:     cfg.MaxBackoff,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	if c.rateLimitDelay <= 0 {
		c.rateLimitDelay = 60 * time.Second
	}
	if c.maxBackoff < c.rateLimitDelay {
		c.maxBackoff = c.rateLimitDelay
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the competitions endpoint the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchCompetitions fetches the competition list and snapshots it as competitions.json
func (c *Client) FetchCompetitions(ctx context.Context) (Document, error) {
	return c.fetch(ctx, "competitions", c.baseURL, "competitions.json")
}

// FetchTeams fetches the teams of one competition and snapshots it as teams_{code}.json
func (c *Client) FetchTeams(ctx context.Context, code string) (Document, error) {
	teamsURL := fmt.Sprintf("%s/%s/teams", c.baseURL, url.PathEscape(code))
	return c.fetch(ctx, "teams", teamsURL, fmt.Sprintf("teams_%s.json", code))
}

// Fetch performs one logical GET against url. On success the raw body is
// written to the snapshot named snapshotName and the decoded object is returned.
// On failure the returned document is empty, never nil.
func (c *Client) Fetch(ctx context.Context, url, snapshotName string) (Document, error) {
	return c.fetch(ctx, "raw", url, snapshotName)
}

func (c *Client) fetch(ctx context.Context, endpoint, url, snapshotName string) (Document, error) {
	body, err := c.get(ctx, endpoint, url)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return Document{}, &DecodeError{URL: url, Err: err}
	}
	if doc == nil {
		doc = Document{}
	}

	if err := c.snapshots.Write(snapshotName, body); err != nil {
		return Document{}, fmt.Errorf("failed to persist snapshot for %s: %w", url, err)
	}

	return doc, nil
}

// get performs a GET request, waiting and retrying while the API rate limits
func (c *Client) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("X-Auth-Token", c.apiKey)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "football-etl/1.0")

		log.Debug().
			Str("url", url).
			Int("attempt", attempt+1).
			Msg("Making API request")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
			return nil, &TransportError{URL: url, Err: err}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		metrics.RecordAPICall(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
		if err != nil {
			return nil, &TransportError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
		}

		switch resp.StatusCode {
		case http.StatusOK:
			log.Debug().
				Str("url", url).
				Int("status", resp.StatusCode).
				Int("size", len(body)).
				Msg("API request successful")
			return body, nil

		case http.StatusTooManyRequests:
			if attempt >= c.maxRetries {
				return nil, fmt.Errorf("%w: %s after %d attempts", ErrUpstreamExhausted, url, attempt+1)
			}

			backoff := c.backoff(attempt)
			log.Warn().
				Str("url", url).
				Int("attempt", attempt+1).
				Dur("backoff", backoff).
				Msg("Rate limit reached, waiting before retry")
			metrics.RecordRateLimitWait()

			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}

		default:
			return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
		}
	}
}

// backoff returns the wait before retry number attempt+1: the base delay doubled per attempt, capped
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.rateLimitDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= c.maxBackoff {
			return c.maxBackoff
		}
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/oshokin/alarm-chat/internal/logger"
	"github.com/oshokin/alarm-chat/internal/version"
)

// Request is the JSON body posted to the chat endpoint.
type Request struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

// Response is the JSON body expected back.
type Response struct {
	Response *string `json:"response"`
}

// Client posts widget messages to the chat endpoint.
type Client struct {
	// endpoint is the absolute URL of the responder.
	endpoint string
	// httpClient performs the requests.
	httpClient *http.Client
	// callTimeout bounds one exchange.
	callTimeout time.Duration
	// now stamps outgoing requests.
	now func() time.Time
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCallTimeout bounds each exchange.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

const (
	// timestampLayout matches the browser's Date.toISOString output.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
	// maxResponseBytes caps how much of a reply is read.
	maxResponseBytes = 1 << 20
)

var (
	// errEndpointRequired is returned when no endpoint is configured.
	errEndpointRequired = errors.New("chat endpoint must be provided")
	// errMissingResponse is wrapped when the reply lacks the response field.
	errMissingResponse = errors.New(`missing "response" field`)
)

// New creates a client for the given absolute endpoint URL.
func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, errEndpointRequired
	}

	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("parse chat endpoint: %w", err)
	}

	c := &Client{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Send posts message on behalf of sessionID and returns the responder's reply.
// Every failure is an *Error.
func (c *Client) Send(ctx context.Context, message, sessionID string) (string, error) {
	payload, err := json.Marshal(Request{
		Message:   message,
		UserID:    sessionID,
		Timestamp: c.now().UTC().Format(timestampLayout),
	})
	if err != nil {
		return "", &Error{Kind: KindMalformedResponse, Err: fmt.Errorf("encode request: %w", err)}
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: KindNetworkUnavailable, Err: fmt.Errorf("build request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Kind: KindNetworkUnavailable, Err: err}
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to close chat response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

		return "", &Error{Kind: KindServerError, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &Error{Kind: KindNetworkUnavailable, Err: fmt.Errorf("read response: %w", err)}
	}

	var decoded Response
	if err = json.Unmarshal(body, &decoded); err != nil {
		return "", &Error{Kind: KindMalformedResponse, Err: err}
	}

	if decoded.Response == nil {
		return "", &Error{Kind: KindMalformedResponse, Err: errMissingResponse}
	}

	return *decoded.Response, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

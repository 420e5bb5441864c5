// Package httpx is the one-shot half of the transport guard: every HTTP
// exchange with the backend goes through Call, which normalizes transport,
// protocol and authorization failures into the apperr taxonomy. No raw
// transport error or status code escapes this package.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skyflydev/threadly-go/pkg/apperr"
	"github.com/skyflydev/threadly-go/pkg/result"
)

// TokenProvider supplies the bearer token for authenticated calls. A missing
// token is a normal error path.
type TokenProvider func() (string, *apperr.Error)

// Client executes one-shot JSON requests against the backend.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenProvider
	onUnauthorized func()
	log            *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTokenProvider installs the bearer-token source for authenticated calls.
func WithTokenProvider(tokens TokenProvider) Option {
	return func(c *Client) { c.tokens = tokens }
}

// WithUnauthorizedHook installs the authorization monitor invoked on any
// 401 response.
func WithUnauthorizedHook(hook func()) Option {
	return func(c *Client) { c.onUnauthorized = hook }
}

// WithLogger replaces the no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.http = httpClient }
}

// New creates a client for the given base URL. The timeout bounds each
// request end to end.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type callSpec struct {
	auth bool
}

// CallOption configures a single call.
type CallOption func(*callSpec)

// WithAuth attaches the bearer token from the token provider.
func WithAuth() CallOption {
	return func(s *callSpec) { s.auth = true }
}

// Call executes one request and decodes the response body as T. Use
// result.Unit for void responses; those succeed on any 2xx without decoding.
//
// Classification: transport timeouts map to RequestTimeout, address
// resolution failures to NoInternet, other transport faults to
// RemoteUnknown. Non-2xx responses surface the structured server envelope
// as an API error when present, otherwise the status code decides. Any 401
// additionally invokes the unauthorized hook exactly once.
func Call[T any](ctx context.Context, c *Client, method, path string, body any, opts ...CallOption) result.Result[T] {
	spec := callSpec{}
	for _, opt := range opts {
		opt(&spec)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return result.Err[T](apperr.Unknown("encode request body: %v", err))
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return result.Err[T](apperr.Unknown("build request: %v", err))
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if spec.auth {
		token, tokenErr := c.tokens()
		if tokenErr != nil {
			return result.Err[T](tokenErr)
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		classified := classifyTransport(err)
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return result.Err[T](classified)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Debug("read response body failed", zap.String("path", path), zap.Error(err))
		return result.Err[T](classifyTransport(err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return decodeBody[T](c, path, respBody)
	}
	return result.Err[T](c.classifyStatus(resp.StatusCode, path, respBody))
}

func decodeBody[T any](c *Client, path string, body []byte) result.Result[T] {
	var value T
	if _, ok := any(value).(result.Unit); ok {
		return result.Ok(value)
	}
	if err := json.Unmarshal(body, &value); err != nil {
		c.log.Warn("response decode failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return result.Err[T](apperr.Serialization())
	}
	return result.Ok(value)
}

// classifyStatus maps a non-2xx response to the taxonomy. 401 always fires
// the unauthorized monitor and always maps to Unauthorized, so callers never
// special-case authorization loss themselves.
func (c *Client) classifyStatus(status int, path string, body []byte) *apperr.Error {
	c.log.Debug("http error response",
		zap.Int("status", status),
		zap.String("path", path),
	)

	if status == http.StatusUnauthorized {
		c.fireUnauthorized()
		return apperr.Unauthorized()
	}
	if apiErr, ok := apperr.DecodeEnvelope(body); ok {
		return apiErr
	}
	switch {
	case status == http.StatusRequestTimeout:
		return apperr.RequestTimeout()
	case status == http.StatusTooManyRequests:
		return apperr.TooManyRequests()
	case status >= 500 && status <= 599:
		return apperr.Server()
	default:
		return apperr.RemoteUnknown()
	}
}

func (c *Client) fireUnauthorized() {
	if c.onUnauthorized == nil {
		return
	}
	// The hook is best effort: a panic inside it must not mask the
	// classification returned to the caller.
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("unauthorized hook panicked", zap.Any("panic", r))
		}
	}()
	c.onUnauthorized()
}

func classifyTransport(err error) *apperr.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.RequestTimeout()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.RequestTimeout()
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return apperr.NoInternet()
	}
	return apperr.RemoteUnknown()
}

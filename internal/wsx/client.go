// Package wsx is the duplex half of the transport guard. It owns websocket
// session lifecycle: opening the channel, detecting authorization loss,
// classifying terminal failures into the apperr taxonomy and guaranteeing
// the connection is closed on both completion and cancellation.
package wsx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/skyflydev/threadly-go/pkg/apperr"
	"github.com/skyflydev/threadly-go/pkg/result"
)

// defaultHandshakeTimeout bounds the websocket opening handshake.
const defaultHandshakeTimeout = 10 * time.Second

// Client opens duplex channels against the backend.
type Client struct {
	dialer         *websocket.Dialer
	onUnauthorized func()
	log            *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithUnauthorizedHook installs the authorization monitor invoked when a
// channel reports authorization loss.
func WithUnauthorizedHook(hook func()) Option {
	return func(c *Client) { c.onUnauthorized = hook }
}

// WithLogger replaces the no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHandshakeTimeout overrides the opening-handshake bound.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.dialer.HandshakeTimeout = timeout }
}

// New creates a duplex channel client.
func New(opts ...Option) *Client {
	c := &Client{
		dialer: &websocket.Dialer{HandshakeTimeout: defaultHandshakeTimeout},
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Conn is an open duplex channel delivering text frames.
type Conn struct {
	ws        *websocket.Conn
	closeOnce sync.Once
}

// ReadText blocks until the next text frame arrives. Non-text frames are
// skipped.
func (c *Conn) ReadText() ([]byte, error) {
	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		if msgType == websocket.TextMessage {
			return data, nil
		}
	}
}

// WriteText sends one text frame.
func (c *Conn) WriteText(data []byte) error {
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) close() {
	c.closeOnce.Do(func() { _ = c.ws.Close() })
}

// Session opens the channel at wsURL, runs body and returns Success when
// body completes cleanly or the context is canceled. Every other outcome is
// classified: an explicit 401 handshake or an "unauthorized" failure text
// invokes the unauthorized hook and maps to Unauthorized, timeouts map to
// RequestTimeout, address resolution failures to NoInternet and the rest to
// RemoteUnknown. The connection is always closed before Session returns.
func (c *Client) Session(ctx context.Context, wsURL string, body func(conn *Conn) error) result.Result[result.Unit] {
	ws, resp, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		c.log.Debug("websocket dial failed", zap.Error(err))
		return result.Err[result.Unit](c.classify(ctx, err, resp))
	}
	conn := &Conn{ws: ws}
	defer conn.close()

	// Closing the connection is the only way to unblock a pending read, so
	// a watcher ties the channel lifetime to the context.
	watcherDone := make(chan struct{})
	defer close(watcherDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.close()
		case <-watcherDone:
		}
	}()

	if err := body(conn); err != nil {
		return c.sessionOutcome(ctx, err)
	}
	return result.Ok(result.Unit{})
}

// sessionOutcome decides whether a body error is a clean completion
// (cancellation, normal server close) or a classified failure.
func (c *Client) sessionOutcome(ctx context.Context, err error) result.Result[result.Unit] {
	if ctx.Err() != nil {
		// Subscriber cancellation never surfaces as an error.
		return result.Ok(result.Unit{})
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return result.Ok(result.Unit{})
	}
	c.log.Debug("websocket session failed", zap.Error(err))
	return result.Err[result.Unit](c.classify(ctx, err, nil))
}

func (c *Client) classify(ctx context.Context, err error, resp *http.Response) *apperr.Error {
	if isUnauthorized(err, resp) {
		c.fireUnauthorized()
		return apperr.Unauthorized()
	}
	if errors.Is(err, context.DeadlineExceeded) || (ctx.Err() == nil && isTimeout(err)) {
		return apperr.RequestTimeout()
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return apperr.NoInternet()
	}
	return apperr.RemoteUnknown()
}

func (c *Client) fireUnauthorized() {
	if c.onUnauthorized == nil {
		return
	}
	// Best effort: a failure inside the hook must not mask the original
	// classification.
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("unauthorized hook panicked", zap.Any("panic", r))
		}
	}()
	c.onUnauthorized()
}

func isUnauthorized(err error, resp *http.Response) bool {
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "401") || strings.Contains(strings.ToLower(msg), "unauthorized")
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Observe bridges a duplex channel into a stream of decoded events. It
// opens one connection for the lifetime of the subscription and returns a
// channel that completes (closes) when the subscriber cancels ctx or the
// underlying channel reports a terminal error; terminal errors are logged,
// never surfaced to the consumer. Individual frames that fail to decode are
// dropped so a single malformed frame cannot kill the stream.
func Observe[E any](ctx context.Context, c *Client, wsURL string, decode func([]byte) (E, error)) <-chan E {
	out := make(chan E)
	go func() {
		defer close(out)
		res := c.Session(ctx, wsURL, func(conn *Conn) error {
			for {
				frame, err := conn.ReadText()
				if err != nil {
					return err
				}
				event, err := decode(frame)
				if err != nil {
					c.log.Warn("dropping malformed frame", zap.Error(err))
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return nil
				}
			}
		})
		if err := res.Err(); err != nil {
			c.log.Warn("event stream ended", zap.String("reason", err.Message()))
		}
	}()
	return out
}

// Package sdk is the embedder-facing facade over the client core. It wires
// configuration, local storage, authorization, the session directory and the
// game layer behind one Client, with all derived-state changes serialized on
// a single dispatch goroutine.
package sdk

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skyflydev/threadly-go/internal/auth"
	"github.com/skyflydev/threadly-go/internal/config"
	"github.com/skyflydev/threadly-go/internal/game"
	"github.com/skyflydev/threadly-go/internal/httpx"
	"github.com/skyflydev/threadly-go/internal/sessions"
	"github.com/skyflydev/threadly-go/internal/store"
	"github.com/skyflydev/threadly-go/internal/wsx"
	"github.com/skyflydev/threadly-go/pkg/apperr"
	"github.com/skyflydev/threadly-go/pkg/result"
)

// defaultDispatcherQueueSize is the mailbox size for the state dispatcher.
const defaultDispatcherQueueSize = 256

// Client is the composition root of the client core.
type Client struct {
	cfg *config.Config
	log *zap.Logger

	kv       *store.KV
	auth     *auth.Repository
	sessions *sessions.Repository
	games    *game.Repository

	directory *sessions.Directory
	dispatch  *dispatcher
}

// Option configures a Client.
type Option func(*options)

type options struct {
	cfg *config.Config
	log *zap.Logger
}

// WithConfig supplies configuration instead of loading it from the
// environment.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger replaces the default logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// New builds a fully wired client. The returned client owns the local store;
// call Close when done.
func New(opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.cfg
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	log := o.log
	if log == nil {
		var err error
		if cfg.Debug {
			log, err = zap.NewDevelopment()
		} else {
			log, err = zap.NewProduction()
		}
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
	}

	kv, err := store.Open(cfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	// The transport guard and the auth repository reference each other: the
	// guard needs the token provider and the unauthorized hook, the
	// repository needs the guard for sign-in. Late binding breaks the cycle.
	var authRepo *auth.Repository
	tokens := func() (string, *apperr.Error) { return authRepo.Token() }
	onUnauthorized := func() { authRepo.HandleUnauthorized() }

	httpClient := httpx.New(cfg.ServerURL, cfg.RequestTimeout,
		httpx.WithTokenProvider(tokens),
		httpx.WithUnauthorizedHook(onUnauthorized),
		httpx.WithLogger(log),
	)
	wsClient := wsx.New(
		wsx.WithUnauthorizedHook(onUnauthorized),
		wsx.WithLogger(log),
	)
	authRepo = auth.NewRepository(httpClient, store.NewAuthStore(kv), log)

	return &Client{
		cfg:       cfg,
		log:       log,
		kv:        kv,
		auth:      authRepo,
		sessions:  sessions.NewRepository(httpClient, wsClient, cfg.WSURL, tokens, log),
		games:     game.NewRepository(httpClient, wsClient, cfg.WSURL, tokens, log),
		directory: sessions.NewDirectory(),
		dispatch:  newDispatcher(defaultDispatcherQueueSize),
	}, nil
}

// Close releases the local store and stops the state dispatcher. Cancel any
// open subscriptions first.
func (c *Client) Close() error {
	c.dispatch.stop()
	return c.kv.Close()
}

// SignIn exchanges credentials for a token and persists it.
func (c *Client) SignIn(ctx context.Context, username, password string) result.Result[store.AuthData] {
	return c.auth.SignIn(ctx, username, password)
}

// SignUp registers a new account and signs it in.
func (c *Client) SignUp(ctx context.Context, username, password string) result.Result[store.AuthData] {
	return c.auth.SignUp(ctx, username, password)
}

// SignOut clears the persisted credentials.
func (c *Client) SignOut() result.Result[result.Unit] {
	return c.auth.SignOut()
}

// LoggedIn reports the current authentication state.
func (c *Client) LoggedIn() bool {
	return c.auth.LoggedIn().Get()
}

// ObserveLoggedIn subscribes to authentication state changes. The current
// value is delivered first.
func (c *Client) ObserveLoggedIn() (<-chan bool, func()) {
	return c.auth.LoggedIn().Subscribe()
}

// UserID returns the local user's id from the persisted credentials.
func (c *Client) UserID() result.Result[string] {
	return result.Map(c.auth.AuthData(), func(data store.AuthData) string {
		return data.UserID
	})
}

// TokenExpiringSoon reports whether the persisted token expires within the
// window. The server stays authoritative; this only supports proactive
// sign-in prompts.
func (c *Client) TokenExpiringSoon(window time.Duration) bool {
	return c.auth.TokenExpiringSoon(window)
}

// Preference reads one slot of the local preference space.
func (c *Client) Preference(name string) (string, bool, error) {
	return c.kv.Preference(name)
}

// SetPreference writes one slot of the local preference space.
func (c *Client) SetPreference(name, value string) error {
	return c.kv.SetPreference(name, value)
}

// Sessions returns the materialized session directory. Without a running
// ObserveDirectory subscription it reflects the last applied snapshot.
func (c *Client) Sessions() []sessions.Session {
	return c.directory.List()
}

// SessionDetails fetches one session by id.
func (c *Client) SessionDetails(ctx context.Context, sessionID string) result.Result[sessions.Session] {
	return c.sessions.Details(ctx, sessionID)
}

// CreateSession creates a session owned by the local user.
func (c *Client) CreateSession(ctx context.Context, theme string, maxRounds int) result.Result[sessions.CreatedSession] {
	return c.sessions.Create(ctx, theme, maxRounds)
}

// JoinSession adds the local user to a session.
func (c *Client) JoinSession(ctx context.Context, sessionID string) result.Result[sessions.Player] {
	return c.sessions.Join(ctx, sessionID)
}

// LeaveSession removes the local user from a session.
func (c *Client) LeaveSession(ctx context.Context, sessionID string) result.Result[result.Unit] {
	return c.sessions.Leave(ctx, sessionID)
}

// SetReady updates the local user's lobby readiness.
func (c *Client) SetReady(ctx context.Context, sessionID string, ready bool) result.Result[sessions.Player] {
	return c.sessions.SetReady(ctx, sessionID, ready)
}

// StartGame begins play in a session the local user hosts.
func (c *Client) StartGame(ctx context.Context, sessionID string) result.Result[result.Unit] {
	return c.sessions.StartGame(ctx, sessionID)
}

// ObserveDirectory synchronizes the session directory: it fetches a snapshot,
// opens the directory event stream and emits the materialized list after the
// snapshot and after every applied event. The emitted channel completes when
// ctx is canceled or the stream ends; resubscribing is the caller's choice.
func (c *Client) ObserveDirectory(ctx context.Context) result.Result[<-chan []sessions.Session] {
	snapshot, err := c.sessions.Snapshot(ctx).Get()
	if err != nil {
		return result.Err[<-chan []sessions.Session](err)
	}
	stream, err := c.sessions.ObserveEvents(ctx).Get()
	if err != nil {
		return result.Err[<-chan []sessions.Session](err)
	}

	out := make(chan []sessions.Session)
	go func() {
		defer close(out)

		// The emitted list is captured inside the dispatched closure so each
		// snapshot is consistent with exactly the events applied so far.
		var list []sessions.Session
		c.dispatch.call(func() {
			c.directory.ReplaceAll(snapshot)
			list = c.directory.List()
		})
		if !emit(ctx, out, list) {
			return
		}
		for event := range stream {
			c.dispatch.call(func() {
				c.directory.Apply(event)
				list = c.directory.List()
			})
			if !emit(ctx, out, list) {
				return
			}
		}
	}()
	return result.Ok[<-chan []sessions.Session](out)
}

func emit[T any](ctx context.Context, out chan<- T, value T) bool {
	select {
	case out <- value:
		return true
	case <-ctx.Done():
		return false
	}
}

// Game is one live game subscription: the event stream folded into derived
// state plus the turn submission command.
type Game struct {
	client    *Client
	sessionID string
	reducer   *game.Reducer
	states    <-chan game.State
}

// ObserveGame opens the game stream for one session and folds it into
// derived state. The States channel completes when ctx is canceled or the
// stream ends; the final state stays readable via State.
func (c *Client) ObserveGame(ctx context.Context, sessionID string) result.Result[*Game] {
	userID, err := c.UserID().Get()
	if err != nil {
		return result.Err[*Game](err)
	}
	stream, err := c.games.ObserveEvents(ctx, sessionID).Get()
	if err != nil {
		return result.Err[*Game](err)
	}

	reducer := game.NewReducer(userID)
	states := make(chan game.State)
	go func() {
		defer close(states)
		for event := range stream {
			var next game.State
			c.dispatch.call(func() { next = reducer.Apply(event) })
			if !emit(ctx, states, next) {
				return
			}
		}
	}()

	return result.Ok(&Game{
		client:    c,
		sessionID: sessionID,
		reducer:   reducer,
		states:    states,
	})
}

// States is the stream of state snapshots, one per applied event.
func (g *Game) States() <-chan game.State {
	return g.states
}

// State returns the current derived state.
func (g *Game) State() game.State {
	return g.reducer.State()
}

// SubmitTurn sends the local user's text. On success the my-turn flag and
// the last player message are cleared immediately; the server does not echo
// a clearing event to the submitter. The updated state is readable via
// State, not re-emitted on States.
func (g *Game) SubmitTurn(ctx context.Context, content string) result.Result[result.Unit] {
	return g.client.games.SubmitTurn(ctx, g.sessionID, content).OnSuccess(func(result.Unit) {
		g.client.dispatch.call(func() { g.reducer.ClearTurn() })
	})
}

package sessions

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/skyflydev/threadly-go/internal/httpx"
	"github.com/skyflydev/threadly-go/internal/wsx"
	"github.com/skyflydev/threadly-go/pkg/result"
)

// Repository exposes the session directory and lobby operations. All
// operations are authenticated; failures surface as taxonomy values via
// the transport guard.
type Repository struct {
	http   *httpx.Client
	ws     *wsx.Client
	wsURL  string
	tokens httpx.TokenProvider
	log    *zap.Logger
}

// NewRepository wires the repository to the transport guard.
func NewRepository(httpClient *httpx.Client, wsClient *wsx.Client, wsBaseURL string, tokens httpx.TokenProvider, log *zap.Logger) *Repository {
	return &Repository{
		http:   httpClient,
		ws:     wsClient,
		wsURL:  wsBaseURL,
		tokens: tokens,
		log:    log,
	}
}

// Snapshot fetches the full list of joinable sessions.
func (r *Repository) Snapshot(ctx context.Context) result.Result[[]Session] {
	dtos := httpx.Call[[]sessionDTO](ctx, r.http, http.MethodGet, "/api/sessions", nil, httpx.WithAuth())
	return result.Map(dtos, func(dtos []sessionDTO) []Session {
		sessions := make([]Session, len(dtos))
		for i, dto := range dtos {
			sessions[i] = dto.toSession()
		}
		return sessions
	})
}

// Details fetches one session, including its member list.
func (r *Repository) Details(ctx context.Context, sessionID string) result.Result[Session] {
	dto := httpx.Call[sessionDTO](ctx, r.http, http.MethodGet, "/api/sessions/"+url.PathEscape(sessionID), nil, httpx.WithAuth())
	return result.Map(dto, sessionDTO.toSession)
}

// Create creates a session and returns its id and host.
func (r *Repository) Create(ctx context.Context, theme string, maxRounds int) result.Result[CreatedSession] {
	return httpx.Call[CreatedSession](ctx, r.http, http.MethodPost, "/api/sessions", createSessionRequest{
		Theme:     theme,
		MaxRounds: maxRounds,
	}, httpx.WithAuth())
}

// Join adds the local user to a session and returns their player entry.
func (r *Repository) Join(ctx context.Context, sessionID string) result.Result[Player] {
	return httpx.Call[Player](ctx, r.http, http.MethodPost, "/api/sessions/join", sessionIDRequest{
		SessionID: sessionID,
	}, httpx.WithAuth())
}

// Leave removes the local user from a session.
func (r *Repository) Leave(ctx context.Context, sessionID string) result.Result[result.Unit] {
	return httpx.Call[result.Unit](ctx, r.http, http.MethodDelete, "/api/sessions/leave", sessionIDRequest{
		SessionID: sessionID,
	}, httpx.WithAuth())
}

// SetReady updates the local user's lobby readiness and returns the
// refreshed player entry.
func (r *Repository) SetReady(ctx context.Context, sessionID string, ready bool) result.Result[Player] {
	return httpx.Call[Player](ctx, r.http, http.MethodPost, "/api/sessions/ready", setReadyRequest{
		SessionID: sessionID,
		IsReady:   ready,
	}, httpx.WithAuth())
}

// StartGame begins play. Host-only by convention; the server is
// authoritative on permission.
func (r *Repository) StartGame(ctx context.Context, sessionID string) result.Result[result.Unit] {
	return httpx.Call[result.Unit](ctx, r.http, http.MethodPost, "/api/sessions/start", sessionIDRequest{
		SessionID: sessionID,
	}, httpx.WithAuth())
}

// ObserveEvents opens the global directory stream. Exactly one channel is
// opened for the lifetime of the subscription; the returned stream follows
// the duplex guard semantics (malformed frames dropped, completion on
// cancel or terminal error). A missing token fails the subscription before
// any channel is opened.
func (r *Repository) ObserveEvents(ctx context.Context) result.Result[<-chan Event] {
	token, err := r.tokens()
	if err != nil {
		return result.Err[<-chan Event](err)
	}
	streamURL := fmt.Sprintf("%s/observe/sessions?token=%s", r.wsURL, url.QueryEscape(token))
	stream := wsx.Observe(ctx, r.ws, streamURL, DecodeEvent)
	return result.Ok(stream)
}

// Package game implements the per-session game layer: the duplex event
// stream, the turn submission call and the reducer deriving turn-taking and
// story state from the stream.
package game

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

// Repository exposes the game stream and the turn submission operation.
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

type submitTurnRequest struct {
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

// SubmitTurn sends the local user's text for the current turn. It does not
// clear the my-turn flag; the caller clears it on success (Reducer.ClearTurn)
// since the server does not echo a clearing event to the submitter.
func (r *Repository) SubmitTurn(ctx context.Context, sessionID, content string) result.Result[result.Unit] {
	return httpx.Call[result.Unit](ctx, r.http, http.MethodPost, "/api/sessions/message", submitTurnRequest{
		SessionID: sessionID,
		Content:   content,
	}, httpx.WithAuth())
}

// ObserveEvents opens the duplex stream for one game session. One channel is
// opened for the lifetime of the subscription; malformed frames are dropped
// and a terminal transport error completes the stream. Resubscription is the
// caller's choice. A missing token fails before any channel is opened.
func (r *Repository) ObserveEvents(ctx context.Context, sessionID string) result.Result[<-chan Event] {
	token, err := r.tokens()
	if err != nil {
		return result.Err[<-chan Event](err)
	}
	streamURL := fmt.Sprintf("%s/observe/game/%s?token=%s", r.wsURL, url.PathEscape(sessionID), url.QueryEscape(token))
	stream := wsx.Observe(ctx, r.ws, streamURL, DecodeEvent)
	return result.Ok(stream)
}

// Package auth owns credentials: sign-in/sign-up against the backend, the
// persisted AuthData slot, the observable logged-in state and the
// authorization monitor hook fired by the transport guard whenever any
// channel loses authorization.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/skyflydev/threadly-go/internal/httpx"
	"github.com/skyflydev/threadly-go/internal/store"
	"github.com/skyflydev/threadly-go/pkg/apperr"
	"github.com/skyflydev/threadly-go/pkg/result"
)

// authResponse is the wire shape of /login and /register responses.
type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Repository implements the authorization layer. It is the sole writer of
// the persisted AuthData and of the logged-in cell.
type Repository struct {
	http     *httpx.Client
	store    *store.AuthStore
	loggedIn *Cell[bool]
	log      *zap.Logger
}

// NewRepository creates the repository and seeds the logged-in state from
// the persisted credentials.
func NewRepository(httpClient *httpx.Client, authStore *store.AuthStore, log *zap.Logger) *Repository {
	r := &Repository{
		http:     httpClient,
		store:    authStore,
		loggedIn: NewCell(false),
		log:      log,
	}
	if r.store.Load().IsOk() {
		r.loggedIn.Set(true)
	}
	return r
}

// LoggedIn exposes the observable authentication state.
func (r *Repository) LoggedIn() *Cell[bool] {
	return r.loggedIn
}

// AuthData returns the persisted credentials.
func (r *Repository) AuthData() result.Result[store.AuthData] {
	return r.store.Load()
}

// Token supplies the bearer token for outbound calls.
func (r *Repository) Token() (string, *apperr.Error) {
	data, err := r.store.Load().Get()
	if err != nil {
		return "", err
	}
	return data.Token, nil
}

// SignIn exchanges credentials for a token, persists the auth data and
// flips the logged-in state.
func (r *Repository) SignIn(ctx context.Context, username, password string) result.Result[store.AuthData] {
	return r.authenticate(ctx, "/login", username, password)
}

// SignUp registers a new account; otherwise identical to SignIn.
func (r *Repository) SignUp(ctx context.Context, username, password string) result.Result[store.AuthData] {
	return r.authenticate(ctx, "/register", username, password)
}

func (r *Repository) authenticate(ctx context.Context, path, username, password string) result.Result[store.AuthData] {
	resp := httpx.Call[authResponse](ctx, r.http, http.MethodPost, path, credentials{
		Username: username,
		Password: password,
	})
	return result.Map(resp, func(resp authResponse) store.AuthData {
		data := store.AuthData{Token: resp.Token, UserID: resp.UserID}
		r.store.Save(data).OnError(func(err *apperr.Error) {
			r.log.Warn("persist auth data failed", zap.String("reason", err.Message()))
		})
		r.loggedIn.Set(true)
		return data
	})
}

// SignOut clears the persisted credentials and the logged-in state.
func (r *Repository) SignOut() result.Result[result.Unit] {
	r.loggedIn.Set(false)
	return r.store.Clear()
}

// HandleUnauthorized is the authorization monitor: the single hook the
// transport guard invokes when any channel reports authorization loss. It
// clears local credentials and signals the rest of the system to return to
// an unauthenticated state. Safe to invoke repeatedly.
func (r *Repository) HandleUnauthorized() {
	r.log.Info("authorization lost, signing out")
	r.SignOut().OnError(func(err *apperr.Error) {
		r.log.Warn("clear auth data failed", zap.String("reason", err.Message()))
	})
}

// TokenExpiringSoon reports whether the persisted token is expired or will
// expire within the window. The token signature is not verified; the server
// remains authoritative and will reject stale tokens with a 401.
func (r *Repository) TokenExpiringSoon(window time.Duration) bool {
	data, err := r.store.Load().Get()
	if err != nil {
		return true
	}
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(data.Token, &claims); err != nil {
		// Unparseable tokens are not treated as expired; the server will
		// 401 if they are invalid.
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Until(claims.ExpiresAt.Time) <= window
}

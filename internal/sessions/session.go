// Package sessions implements the session directory and lobby layers: the
// one-shot session operations, the server-pushed directory event stream and
// the materialized, queryable session list derived from it.
package sessions

// Player is an immutable membership entry. Membership changes replace
// players wholesale; fields are never patched in place.
type Player struct {
	UserID  string `json:"user_id"`
	IsReady bool   `json:"is_ready"`
	IsHost  bool   `json:"is_host"`
}

// Session is one joinable game instance as seen by the directory.
type Session struct {
	ID           string
	Theme        string
	MaxRounds    int
	CurrentRound int
	PlayersCount int
	Users        []Player
}

// CreatedSession is the response to a create-session call.
type CreatedSession struct {
	SessionID  string `json:"session_id"`
	HostUserID string `json:"host_user_id"`
}

// sessionDTO is the wire shape of a session.
type sessionDTO struct {
	ID           string   `json:"id"`
	Theme        string   `json:"theme"`
	MaxRounds    int      `json:"max_rounds"`
	CurrentRound int      `json:"current_round"`
	Users        []Player `json:"users"`
}

func (d sessionDTO) toSession() Session {
	return Session{
		ID:           d.ID,
		Theme:        d.Theme,
		MaxRounds:    d.MaxRounds,
		CurrentRound: d.CurrentRound,
		PlayersCount: len(d.Users),
		Users:        d.Users,
	}
}

type createSessionRequest struct {
	Theme     string `json:"theme"`
	MaxRounds int    `json:"max_rounds"`
}

type sessionIDRequest struct {
	SessionID string `json:"session_id"`
}

type setReadyRequest struct {
	SessionID string `json:"session_id"`
	IsReady   bool   `json:"is_ready"`
}

package sessions

import (
	"encoding/json"
	"fmt"
)

// Event is one frame of the session directory stream. The set is closed;
// the wire tag in the "type" field is the discriminant.
type Event interface {
	isSessionEvent()
}

// Created announces a newly created session.
type Created struct {
	SessionID string   `json:"session_id"`
	Theme     string   `json:"theme"`
	MaxRounds int      `json:"max_rounds"`
	Users     []Player `json:"users"`
}

// UpdatePlayers replaces the member list of one session.
type UpdatePlayers struct {
	SessionID string   `json:"session_id"`
	Users     []Player `json:"users"`
}

// Started removes a session from the joinable directory because play began.
type Started struct {
	SessionID string `json:"session_id"`
}

// Deleted removes a session from the directory.
type Deleted struct {
	SessionID string `json:"session_id"`
}

func (Created) isSessionEvent()       {}
func (UpdatePlayers) isSessionEvent() {}
func (Started) isSessionEvent()       {}
func (Deleted) isSessionEvent()       {}

// Session returns the directory entry a Created event describes.
func (e Created) Session() Session {
	return Session{
		ID:           e.SessionID,
		Theme:        e.Theme,
		MaxRounds:    e.MaxRounds,
		PlayersCount: len(e.Users),
		Users:        e.Users,
	}
}

// DecodeEvent parses one text frame into its event variant.
func DecodeEvent(data []byte) (Event, error) {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("decode event tag: %w", err)
	}

	switch tag.Type {
	case "created":
		return decodeAs[Created](data)
	case "update_players":
		return decodeAs[UpdatePlayers](data)
	case "started":
		return decodeAs[Started](data)
	case "deleted":
		return decodeAs[Deleted](data)
	default:
		return nil, fmt.Errorf("unknown session event type %q", tag.Type)
	}
}

func decodeAs[E Event](data []byte) (Event, error) {
	var event E
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode session event: %w", err)
	}
	return event, nil
}

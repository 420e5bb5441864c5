package game

import (
	"encoding/json"
	"fmt"
)

// Event is one frame of a per-session game stream. The set is closed; the
// wire tag in the "type" field is the discriminant.
type Event interface {
	isGameEvent()
}

// Started announces the transition out of the lobby into turn-taking.
type Started struct{}

// NewTurn hands the turn to one player.
type NewTurn struct {
	UserID string `json:"user_id"`
}

// PlayerJoined adds a player to the session presence set.
type PlayerJoined struct {
	UserID string `json:"user_id"`
}

// PlayerLeft removes a player from the session presence set.
type PlayerLeft struct {
	UserID string `json:"user_id"`
}

// PlayerReady reports a lobby readiness change. Transient; carries no
// derived state.
type PlayerReady struct {
	UserID string `json:"user_id"`
	Ready  bool   `json:"ready"`
}

// LastPlayerMessage carries the text the previous player submitted.
type LastPlayerMessage struct {
	Content string `json:"content"`
}

// ServerError is a transient error notification from the backend. It does
// not change game state.
type ServerError struct {
	Message string `json:"message"`
}

// SessionDeleted tells the subscriber to abandon the session. The stream is
// not self-terminated; acting on it is the caller's job.
type SessionDeleted struct{}

// WaitingForStoryGeneration announces a new story generation pass. Prior
// chunks and any completed text are invalidated.
type WaitingForStoryGeneration struct{}

// StoryChunk is one sequenced fragment of generated narrative.
type StoryChunk struct {
	Seq   int64  `json:"seq"`
	Chunk string `json:"chunk"`
}

// StoryComplete carries the authoritative full text of the finished
// generation pass, superseding any chunk-assembled approximation.
type StoryComplete struct {
	StoryID  string `json:"story_id"`
	FullText string `json:"full_text"`
}

// Finished ends the game. Terminal; later turn and story events are no-ops.
type Finished struct{}

func (Started) isGameEvent()                   {}
func (NewTurn) isGameEvent()                   {}
func (PlayerJoined) isGameEvent()              {}
func (PlayerLeft) isGameEvent()                {}
func (PlayerReady) isGameEvent()               {}
func (LastPlayerMessage) isGameEvent()         {}
func (ServerError) isGameEvent()               {}
func (SessionDeleted) isGameEvent()            {}
func (WaitingForStoryGeneration) isGameEvent() {}
func (StoryChunk) isGameEvent()                {}
func (StoryComplete) isGameEvent()             {}
func (Finished) isGameEvent()                  {}

// DecodeEvent parses one text frame into its event variant.
func DecodeEvent(data []byte) (Event, error) {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("decode event tag: %w", err)
	}

	switch tag.Type {
	case "game_started":
		return Started{}, nil
	case "new_turn":
		return decodeAs[NewTurn](data)
	case "player_joined":
		return decodeAs[PlayerJoined](data)
	case "player_left":
		return decodeAs[PlayerLeft](data)
	case "player_ready":
		return decodeAs[PlayerReady](data)
	case "last_player_message":
		return decodeAs[LastPlayerMessage](data)
	case "error":
		return decodeAs[ServerError](data)
	case "session_deleted":
		return SessionDeleted{}, nil
	case "waiting_for_story_generation":
		return WaitingForStoryGeneration{}, nil
	case "story_chunk":
		return decodeAs[StoryChunk](data)
	case "story_complete":
		return decodeAs[StoryComplete](data)
	case "game_finished":
		return Finished{}, nil
	default:
		return nil, fmt.Errorf("unknown game event type %q", tag.Type)
	}
}

func decodeAs[E Event](data []byte) (Event, error) {
	var event E
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode game event: %w", err)
	}
	return event, nil
}

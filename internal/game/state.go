package game

import (
	"sort"
	"strings"
	"sync"
)

// Phase is the coarse game lifecycle state.
type Phase int

const (
	// PhaseLobby means play has not started yet.
	PhaseLobby Phase = iota
	// PhasePlaying means players are taking turns.
	PhasePlaying
	// PhaseAwaitingStory means the server is generating narrative text.
	PhaseAwaitingStory
	// PhaseFinished is terminal.
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhasePlaying:
		return "playing"
	case PhaseAwaitingStory:
		return "awaiting_story"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// State is a snapshot of derived game state. Snapshots are value copies and
// safe to retain.
type State struct {
	Phase             Phase
	Players           []string
	CurrentTurnUserID string
	MyTurn            bool
	LastPlayerMessage string
	// StorySoFar is the chunk-assembled approximation until StoryComplete
	// supplies the authoritative text.
	StorySoFar     string
	StoryID        string
	StoryComplete  bool
	SessionDeleted bool
}

// Reducer folds the game event stream into derived state. It is the sole
// owner of that state; one logical subscriber feeds Apply in arrival order.
type Reducer struct {
	mu          sync.Mutex
	localUserID string
	state       State
	chunks      map[int64]string
}

// NewReducer creates a lobby-phase reducer for the given local user.
func NewReducer(localUserID string) *Reducer {
	return &Reducer{
		localUserID: localUserID,
		state:       State{Phase: PhaseLobby},
		chunks:      make(map[int64]string),
	}
}

// State returns a snapshot of the current state.
func (r *Reducer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

func (r *Reducer) snapshot() State {
	s := r.state
	s.Players = append([]string(nil), r.state.Players...)
	return s
}

// Apply folds one event into the state and returns the resulting snapshot.
func (r *Reducer) Apply(event Event) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev := event.(type) {
	case SessionDeleted:
		// Flagged outward only; the subscription is not self-terminated.
		r.state.SessionDeleted = true
	case PlayerJoined:
		r.addPlayer(ev.UserID)
	case PlayerLeft:
		r.removePlayer(ev.UserID)
	case Started:
		if r.state.Phase == PhaseLobby {
			r.state.Phase = PhasePlaying
		}
	case NewTurn:
		if r.state.Phase == PhaseFinished {
			break
		}
		r.state.CurrentTurnUserID = ev.UserID
		r.state.MyTurn = ev.UserID == r.localUserID
		if r.state.Phase == PhaseAwaitingStory {
			r.state.Phase = PhasePlaying
		}
	case LastPlayerMessage:
		if r.state.Phase == PhaseFinished {
			break
		}
		r.state.LastPlayerMessage = ev.Content
	case WaitingForStoryGeneration:
		if r.state.Phase == PhaseFinished {
			break
		}
		// A new generation pass invalidates prior chunks and any completed
		// text.
		r.state.Phase = PhaseAwaitingStory
		r.chunks = make(map[int64]string)
		r.state.StorySoFar = ""
		r.state.StoryID = ""
		r.state.StoryComplete = false
	case StoryChunk:
		if r.state.Phase == PhaseFinished || r.state.StoryComplete {
			break
		}
		r.chunks[ev.Seq] = ev.Chunk
		r.state.StorySoFar = assembleChunks(r.chunks)
	case StoryComplete:
		if r.state.Phase == PhaseFinished {
			break
		}
		r.state.StorySoFar = ev.FullText
		r.state.StoryID = ev.StoryID
		r.state.StoryComplete = true
		if r.state.Phase == PhaseAwaitingStory {
			r.state.Phase = PhasePlaying
		}
	case Finished:
		r.state.Phase = PhaseFinished
		r.state.MyTurn = false
	case PlayerReady, ServerError:
		// Transient notifications; no derived state.
	}
	return r.snapshot()
}

// ClearTurn clears the my-turn flag and the last player message. Called
// after a successful turn submission; the server does not echo a clearing
// event back to the submitter.
func (r *Reducer) ClearTurn() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.MyTurn = false
	r.state.LastPlayerMessage = ""
	return r.snapshot()
}

func (r *Reducer) addPlayer(userID string) {
	for _, p := range r.state.Players {
		if p == userID {
			return
		}
	}
	r.state.Players = append(r.state.Players, userID)
}

func (r *Reducer) removePlayer(userID string) {
	out := r.state.Players[:0]
	for _, p := range r.state.Players {
		if p != userID {
			out = append(out, p)
		}
	}
	r.state.Players = out
}

// assembleChunks concatenates buffered chunks unique by seq in ascending
// seq order. Arrival order never matters.
func assembleChunks(chunks map[int64]string) string {
	seqs := make([]int64, 0, len(chunks))
	for seq := range chunks {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })

	var b strings.Builder
	for _, seq := range seqs {
		b.WriteString(chunks[seq])
	}
	return b.String()
}

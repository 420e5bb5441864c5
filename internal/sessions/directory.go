package sessions

import "sync"

// Reduce applies one directory event to a session list and returns the
// updated list. The input slice is not mutated. Events referencing unknown
// session ids are no-ops; applying events in arrival order over a snapshot
// yields the current directory.
func Reduce(sessions []Session, event Event) []Session {
	switch ev := event.(type) {
	case Created:
		out := make([]Session, 0, len(sessions)+1)
		out = append(out, sessions...)
		return append(out, ev.Session())
	case UpdatePlayers:
		out := make([]Session, len(sessions))
		for i, s := range sessions {
			if s.ID == ev.SessionID {
				s.Users = ev.Users
				s.PlayersCount = len(ev.Users)
			}
			out[i] = s
		}
		return out
	case Started:
		return removeByID(sessions, ev.SessionID)
	case Deleted:
		return removeByID(sessions, ev.SessionID)
	default:
		return sessions
	}
}

func removeByID(sessions []Session, id string) []Session {
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

// Directory is the materialized, queryable session list. It is the sole
// owner of its sessions: callers get copies, never shared slices. One
// logical subscriber feeds it; Apply is not meant for concurrent writers.
type Directory struct {
	mu       sync.RWMutex
	sessions []Session
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{}
}

// ReplaceAll installs a fresh snapshot.
func (d *Directory) ReplaceAll(sessions []Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions = append([]Session(nil), sessions...)
}

// Apply folds one stream event into the directory.
func (d *Directory) Apply(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions = Reduce(d.sessions, event)
}

// List returns a copy of the current directory.
func (d *Directory) List() []Session {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Session(nil), d.sessions...)
}

// ByID returns the session with the given id, if present.
func (d *Directory) ByID(id string) (Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return Session{}, false
}

// WithUser returns the sessions the given user is a member of.
func (d *Directory) WithUser(userID string) []Session {
	return d.filter(userID, true)
}

// WithoutUser returns the sessions the given user is not a member of.
func (d *Directory) WithoutUser(userID string) []Session {
	return d.filter(userID, false)
}

func (d *Directory) filter(userID string, member bool) []Session {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		if hasUser(s, userID) == member {
			out = append(out, s)
		}
	}
	return out
}

func hasUser(s Session, userID string) bool {
	for _, u := range s.Users {
		if u.UserID == userID {
			return true
		}
	}
	return false
}

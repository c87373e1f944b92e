package scanner

import "sync"

// -----------------------------------------------------------------------------
// Process State
// -----------------------------------------------------------------------------

// State is the process-scoped scanner state shared by all sessions: the
// active flag plus the designated active session. The first connecting
// session sets the flag; this core never clears it.
type State struct {
	mu      sync.RWMutex
	active  bool
	current *Session
}

// -----------------------------------------------------------------------------

func NewState() *State {
	return &State{}
}

// -----------------------------------------------------------------------------

// Activate marks scanning active and, if no session holds the designation
// yet, designates the given one. Returns true if sess became the
// designated session.
func (s *State) Activate(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return false
	}
	s.active = true
	s.current = sess
	return true
}

// -----------------------------------------------------------------------------

// Active reports whether ingestion may run.
func (s *State) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// -----------------------------------------------------------------------------

// Current returns the designated active session, or nil.
func (s *State) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

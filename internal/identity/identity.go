// Package identity tracks which user is authenticated on the device.
//
// The device may be shared, so queued work is always stamped with the identity
// that created it and compared against CurrentUserID before it is submitted.
package identity

import "sync"

// Provider exposes the currently authenticated user.
type Provider interface {
	// CurrentUserID returns the authenticated user id, or "" when signed out.
	CurrentUserID() string
}

// ChangeFunc is invoked after the authenticated identity changes.
type ChangeFunc func(previous, current string)

// Session is an in-memory Provider that supports account switching.
type Session struct {
	mu        sync.RWMutex
	userID    string
	listeners map[int]ChangeFunc
	nextID    int
}

// NewSession creates a Session, optionally already signed in as userID.
func NewSession(userID string) *Session {
	return &Session{
		userID:    userID,
		listeners: make(map[int]ChangeFunc),
	}
}

// CurrentUserID returns the authenticated user id.
func (s *Session) CurrentUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Switch replaces the authenticated identity and returns the previous one.
// Listeners run only when the identity actually changes.
func (s *Session) Switch(userID string) string {
	s.mu.Lock()
	previous := s.userID
	if previous == userID {
		s.mu.Unlock()
		return previous
	}
	s.userID = userID
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(previous, userID)
	}
	return previous
}

// SignOut clears the authenticated identity.
func (s *Session) SignOut() string {
	return s.Switch("")
}

// Subscribe registers fn for identity changes and returns a function that removes it.
func (s *Session) Subscribe(fn ChangeFunc) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// snapshotListeners must be called with mu held.
func (s *Session) snapshotListeners() []ChangeFunc {
	listeners := make([]ChangeFunc, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	return listeners
}

// Package connectivity provides the device online/offline signal that drives queue processing.
package connectivity

import "sync"

// Listener receives the new connectivity state after a transition.
type Listener func(online bool)

// Signal is an observable boolean online state. Listeners are only called on transitions.
type Signal struct {
	mu        sync.RWMutex
	online    bool
	listeners map[int]Listener
	nextID    int
}

// NewSignal creates a Signal with the given initial state.
func NewSignal(online bool) *Signal {
	return &Signal{
		online:    online,
		listeners: make(map[int]Listener),
	}
}

// IsOnline reports the current state.
func (s *Signal) IsOnline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// Set updates the state and reports whether it changed. Listeners run synchronously
// on the caller's goroutine, outside the lock.
func (s *Signal) Set(online bool) bool {
	s.mu.Lock()
	if s.online == online {
		s.mu.Unlock()
		return false
	}
	s.online = online
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(online)
	}
	return true
}

// Subscribe registers fn for transitions and returns a function that removes it.
func (s *Signal) Subscribe(fn Listener) func() {
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

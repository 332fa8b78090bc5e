package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"chartanalyst/internal/domain"
)

// ControllerFactory builds the controller for a new session
type ControllerFactory func(id uuid.UUID) *SessionController

// SessionStore keeps one SessionController per browser session
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*SessionController
	factory  ControllerFactory
}

// NewSessionStore creates an empty store
func NewSessionStore(factory ControllerFactory) *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*SessionController),
		factory:  factory,
	}
}

// NewControllerFactory returns a factory that wires every controller to the
// same analyzer, timeout and result hook
func NewControllerFactory(analyzer domain.ChartAnalyzer, timeout time.Duration, onResult ResultHook) ControllerFactory {
	return func(id uuid.UUID) *SessionController {
		return NewSessionController(id, analyzer, timeout, onResult)
	}
}

// Get returns the controller for id if it exists
func (s *SessionStore) Get(id uuid.UUID) (*SessionController, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.sessions[id]
	return c, ok
}

// GetOrCreate returns the controller for id, creating it on first use
func (s *SessionStore) GetOrCreate(id uuid.UUID) *SessionController {
	if c, ok := s.Get(id); ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.sessions[id]; ok {
		return c
	}
	c := s.factory(id)
	s.sessions[id] = c
	return c
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than idleTTL. Sessions with an
// analysis in flight are kept. Returns the number removed.
func (s *SessionStore) Sweep(idleTTL time.Duration) int {
	cutoff := time.Now().Add(-idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.sessions {
		if c.IsAnalyzing() || c.LastActive().After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	if removed > 0 {
		log.Printf("[CRON] Swept %d idle session(s), %d remaining", removed, len(s.sessions))
	}
	return removed
}

// Drain waits for the analyses in flight across all sessions, used on shutdown
func (s *SessionStore) Drain(ctx context.Context) error {
	s.mu.RLock()
	controllers := make([]*SessionController, 0, len(s.sessions))
	for _, c := range s.sessions {
		controllers = append(controllers, c)
	}
	s.mu.RUnlock()

	for _, c := range controllers {
		if err := c.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

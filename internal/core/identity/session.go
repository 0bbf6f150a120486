package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Session mirrors the provider's current principal into local state. It is
// created once at startup, shared by every command, and closed at shutdown.
type Session struct {
	provider Provider
	log      zerolog.Logger

	mu     sync.RWMutex
	user   *Principal
	closed bool
}

// NewSession creates a Session backed by provider. No principal is loaded
// until Check is called.
func NewSession(provider Provider, log zerolog.Logger) *Session {
	return &Session{
		provider: provider,
		log:      log,
	}
}

// Check asks the provider for the current principal and stores the result.
// Any provider error clears the local principal. Returns whether a principal
// is now present.
func (s *Session) Check(ctx context.Context) bool {
	p, err := s.provider.CurrentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			s.log.Warn().Err(err).Msg("session check failed")
		}
		s.user = nil
		return false
	}

	s.log.Debug().Str("user_id", p.ID).Msg("session restored")
	s.user = &p
	return true
}

// User returns the mirrored principal, if any.
func (s *Session) User() (Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return Principal{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether a principal is present.
func (s *Session) IsAuthenticated() bool {
	_, ok := s.User()
	return ok
}

// Set replaces the mirrored principal, used right after sign-in.
func (s *Session) Set(p Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.user = &p
}

// Clear drops the mirrored principal, used after sign-out.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// Close releases the session. Later calls to Check and Set are no-ops.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.user = nil
	return nil
}

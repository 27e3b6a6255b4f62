// Package auth issues and validates the anonymous tokens used by the
// development server.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/scene-hunter/scenehunter/internal/model"
)

// Session is an anonymous token session. The player id is minted
// lazily on the first /user lookup so that an unclaimed token carries
// no identity.
type Session struct {
	Token     string
	PlayerID  model.PlayerID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service mints tokens and resolves them to player ids
type Service struct {
	clock clockwork.Clock

	mu       sync.RWMutex
	sessions map[string]*Session

	tokenDuration time.Duration
}

// Config holds auth service settings
type Config struct {
	TokenDuration time.Duration
}

// DefaultConfig returns default auth configuration. The token
// lifetime matches the client's credential TTL.
func DefaultConfig() Config {
	return Config{
		TokenDuration: 3 * time.Hour,
	}
}

// New creates a new auth service
func New(clock clockwork.Clock, cfg Config) *Service {
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = DefaultConfig().TokenDuration
	}
	return &Service{
		clock:         clock,
		sessions:      make(map[string]*Session),
		tokenDuration: cfg.TokenDuration,
	}
}

// IssueToken mints a fresh anonymous token
func (s *Service) IssueToken() *Session {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	now := s.clock.Now()

	session := &Session{
		Token:     base64.RawURLEncoding.EncodeToString(b),
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}

// ResolvePlayer returns the player id bound to a token, minting one on
// first use. Unknown or expired tokens fail with ErrUnauthorized.
func (s *Service) ResolvePlayer(token string) (model.PlayerID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return "", model.ErrUnauthorized
	}
	if s.clock.Now().After(session.ExpiresAt) {
		delete(s.sessions, token)
		return "", model.ErrUnauthorized
	}

	if session.PlayerID == "" {
		session.PlayerID = model.PlayerID(uuid.NewString())
	}
	return session.PlayerID, nil
}

// Validate checks a token without minting an identity for it
func (s *Service) Validate(token string) (model.PlayerID, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return "", model.ErrUnauthorized
	}
	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return "", model.ErrUnauthorized
	}
	return session.PlayerID, nil
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}

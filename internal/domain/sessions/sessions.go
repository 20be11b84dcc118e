package sessions

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// Session is an opaque bearer token bound to a user.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Service issues and validates bearer tokens. Sessions live in memory;
// a restart logs everyone out, which is acceptable for opaque tokens.
type Service interface {
	Issue(userID string) (Session, error)
	Validate(token string) (Session, error)
	Revoke(token string)
}

// NewService builds a session service with the given token lifetime.
func NewService(ttl time.Duration) Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &service{
		ttl:      ttl,
		sessions: make(map[string]Session),
	}
}

type service struct {
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]Session
}

func (s *service) Issue(userID string) (Session, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return Session{}, err
	}

	session := Session{
		Token:     base64.RawURLEncoding.EncodeToString(b[:]),
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session, nil
}

func (s *service) Validate(token string) (Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return Session{}, ErrNotFound
	}
	if time.Now().After(session.ExpiresAt) {
		s.Revoke(token)
		return Session{}, ErrExpired
	}
	return session, nil
}

func (s *service) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

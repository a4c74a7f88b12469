package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"sync"
	"time"

	"github.com/linkface/linkface/internal/hash"
)

const sweepInterval = time.Hour

// Credentials is the static admin credential surface: a password (plain or
// bcrypt-hashed) and an optional static bearer token. Comparisons are
// constant-time.
type Credentials struct {
	Password     string
	PasswordHash string
	Token        string
}

func (c Credentials) Verify(password, token string) bool {
	if token != "" && c.Token != "" &&
		subtle.ConstantTimeCompare([]byte(token), []byte(c.Token)) == 1 {
		return true
	}
	if password == "" {
		return false
	}
	if c.PasswordHash != "" {
		return hash.CheckPassword(c.PasswordHash, password)
	}
	if c.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
}

// Store keeps valid admin session tokens in memory with a fixed expiry.
// Nothing survives a restart.
type Store struct {
	mu       sync.Mutex
	sessions map[string]time.Time

	ttl  time.Duration
	now  func() time.Time
	done chan struct{}
}

func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Issue creates a cryptographically random session token valid for the
// configured TTL.
func (s *Store) Issue() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	s.mu.Lock()
	s.sessions[token] = s.now().Add(s.ttl)
	s.mu.Unlock()

	return token, nil
}

func (s *Store) Valid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.sessions[token]
	if !ok {
		return false
	}
	if s.now().After(exp) {
		delete(s.sessions, token)
		return false
	}
	return true
}

func (s *Store) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *Store) TTL() time.Duration { return s.ttl }

func (s *Store) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.done:
			return
		}
	}
}

func (s *Store) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for token, exp := range s.sessions {
		if now.After(exp) {
			delete(s.sessions, token)
		}
	}
}

func (s *Store) Close() {
	close(s.done)
}

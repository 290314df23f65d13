package auth

import (
	"log/slog"
	"sync"
)

// Credentials supplies the bearer token for API requests and is told when
// the server rejects it.
type Credentials interface {
	Bearer() string
	Invalidate()
}

// Session holds the current login. It is safe for concurrent use.
type Session struct {
	storage   *TokenStorage
	onExpired func()

	mu      sync.Mutex
	token   *Token
	expired bool
}

// NewSession loads the stored token, if any. onExpired runs once, the first
// time a stored token is rejected by the server.
func NewSession(storage *TokenStorage, onExpired func()) (*Session, error) {
	token, err := storage.Load()
	if err != nil {
		return nil, err
	}
	return &Session{storage: storage, token: token, onExpired: onExpired}, nil
}

// OnExpired replaces the expiry callback.
func (s *Session) OnExpired(fn func()) {
	s.mu.Lock()
	s.onExpired = fn
	s.mu.Unlock()
}

// Bearer returns the access token, or "" for a guest.
func (s *Session) Bearer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// LoggedIn reports whether a token is held.
func (s *Session) LoggedIn() bool {
	return s.Bearer() != ""
}

// Token returns the held token, or nil.
func (s *Session) Token() *Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Login stores a new token.
func (s *Session) Login(token *Token) error {
	if err := s.storage.Save(token); err != nil {
		return err
	}
	s.mu.Lock()
	s.token = token
	s.expired = false
	s.mu.Unlock()
	return nil
}

// Logout forgets the token.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
	return s.storage.Delete()
}

// Invalidate drops a rejected token. The stored copy is removed and the
// expiry callback fires at most once per login.
func (s *Session) Invalidate() {
	s.mu.Lock()
	if s.token == nil || s.expired {
		s.mu.Unlock()
		return
	}
	s.token = nil
	s.expired = true
	cb := s.onExpired
	s.mu.Unlock()

	if err := s.storage.Delete(); err != nil {
		slog.Warn("failed to remove rejected token", "error", err)
	}
	if cb != nil {
		cb()
	}
}

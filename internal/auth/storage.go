package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// DefaultTokenFileName is the name of the token file in the config directory.
const DefaultTokenFileName = "tokens.json"

// tokenFile is the on-disk layout: one token per server base URL, so
// switching api.base_url never sends a token to a server that did not
// issue it.
type tokenFile struct {
	Servers map[string]*Token `json:"servers"`
}

// TokenStorage persists the token for one music server. Tokens for other
// servers in the same file are left alone.
type TokenStorage struct {
	path   string
	server string

	mu sync.Mutex
}

// NewTokenStorage opens the token file at path for server. An empty path
// means tokens.json in the user config directory.
func NewTokenStorage(path, server string) (*TokenStorage, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		path = filepath.Join(configDir, "mewzy", DefaultTokenFileName)
	}
	return &TokenStorage{path: path, server: serverKey(server)}, nil
}

// serverKey normalizes a base URL so "https://x/" and "https://x" share a token.
func serverKey(server string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(server), "/"))
}

func (s *TokenStorage) read() (*tokenFile, error) {
	f := &tokenFile{Servers: map[string]*Token{}}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	if f.Servers == nil {
		f.Servers = map[string]*Token{}
	}
	return f, nil
}

func (s *TokenStorage) write(f *tokenFile) error {
	if len(f.Servers) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete token file: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}
	// Owner only.
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Save stores token for this server, replacing any earlier one.
func (s *TokenStorage) Save(token *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return err
	}
	f.Servers[s.server] = token
	return s.write(f)
}

// Load returns the token for this server, or nil when there is none. A token
// whose JWT expiry has passed is removed from the file and not returned.
func (s *TokenStorage) Load() (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return nil, err
	}
	token := f.Servers[s.server]
	if token == nil {
		return nil, nil
	}
	if token.IsExpired() {
		slog.Info("dropping expired token", "server", s.server, "expired_at", token.ExpiresAt)
		delete(f.Servers, s.server)
		if err := s.write(f); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return token, nil
}

// Delete removes this server's token. The file goes away with the last one.
func (s *TokenStorage) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := f.Servers[s.server]; !ok {
		return nil
	}
	delete(f.Servers, s.server)
	return s.write(f)
}

// Exists reports whether a token is stored for this server.
func (s *TokenStorage) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return false
	}
	return f.Servers[s.server] != nil
}

// Servers lists the servers that have a stored token, sorted.
func (s *TokenStorage) Servers() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return nil, err
	}
	servers := make([]string, 0, len(f.Servers))
	for server := range f.Servers {
		servers = append(servers, server)
	}
	slices.Sort(servers)
	return servers, nil
}

// Path returns the path to the token file.
func (s *TokenStorage) Path() string {
	return s.path
}

// Server returns the normalized server the storage is bound to.
func (s *TokenStorage) Server() string {
	return s.server
}

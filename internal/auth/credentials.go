package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// Header and cookie names the store expects.
const (
	APIKeyHeader  = "api_key"
	SessionCookie = "JSESSIONID"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
	ErrNoSessionInLogin  = errors.New("login message carries no session")
)

// Credentials are the static values attached to every request.
type Credentials struct {
	APIKey    string
	SessionID string
}

// Store holds credentials safely for concurrent use.
type Store struct {
	mu    sync.RWMutex
	creds Credentials
}

// NewStore creates a store holding creds.
func NewStore(creds Credentials) *Store {
	return &Store{creds: creds}
}

// Get returns the current credentials.
func (s *Store) Get() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.creds
}

// Set replaces the credentials.
func (s *Store) Set(creds Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = creds
}

// SetSessionID replaces only the session cookie value.
func (s *Store) SetSessionID(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds.SessionID = sessionID
}

// Clear removes all credentials.
func (s *Store) Clear() {
	s.Set(Credentials{})
}

// Authenticate adds the api_key header and, when known, the session cookie.
func (s *Store) Authenticate(_ context.Context, req *http.Request) error {
	creds := s.Get()

	if creds.APIKey != "" {
		req.Header.Set(APIKeyHeader, creds.APIKey)
	}

	if creds.SessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: creds.SessionID})
	}

	return nil
}

// ConfigPersister defines the interface for persisting session changes.
type ConfigPersister interface {
	UpdateSession(baseURL, sessionID string) error
}

// PersistingStore wraps Store and writes session changes to config.
type PersistingStore struct {
	*Store

	persister ConfigPersister
	baseURL   string
}

// NewPersistingStore creates a store that persists sessions for baseURL.
func NewPersistingStore(creds Credentials, persister ConfigPersister, baseURL string) *PersistingStore {
	return &PersistingStore{
		Store:     NewStore(creds),
		persister: persister,
		baseURL:   baseURL,
	}
}

// SetSessionID updates the session and persists it.
func (p *PersistingStore) SetSessionID(sessionID string) error {
	p.Store.SetSessionID(sessionID)

	if p.persister == nil {
		return ErrNoConfigPersister
	}

	if err := p.persister.UpdateSession(p.baseURL, sessionID); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

// SessionFromLogin extracts the session id from the store's login message
// ("logged in user session:1700000000000").
func SessionFromLogin(message string) (string, error) {
	_, session, found := strings.Cut(message, "session:")
	session = strings.TrimSpace(session)

	if !found || session == "" {
		return "", fmt.Errorf("%w: %q", ErrNoSessionInLogin, message)
	}

	return session, nil
}

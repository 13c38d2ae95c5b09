package session

import (
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rrhhdev/timesheet-client/internal/models"
	"github.com/rrhhdev/timesheet-client/internal/persist"
)

// accessClaims is the payload of the backend's access token.
type accessClaims struct {
	UserID   models.FlexID `json:"id"`
	Fullname string        `json:"fullname"`
	Email    string        `json:"email"`
	Role     string        `json:"role"`
	jwt.RegisteredClaims
}

// state is the serializable portion of the session, persisted under
// auth-storage.
type state struct {
	Credentials models.Credentials `json:"credentials"`
	Identity    models.Identity    `json:"identity"`
}

// Store holds the live session: the token pair and the identity decoded from
// the access token. It performs no network calls.
type Store struct {
	mu      sync.RWMutex
	state   state
	backend persist.Backend
	parser  *jwt.Parser
}

// New creates a session store, restoring any persisted session.
func New(backend persist.Backend) *Store {
	s := &Store{
		backend: backend,
		parser:  jwt.NewParser(),
	}
	restored, err := persist.LoadJSON[state](backend, persist.KeyAuth)
	if err != nil {
		log.Printf("session: could not restore persisted session: %v", err)
		return s
	}
	s.state = restored
	return s
}

// Login decodes the access token's identity claims and persists the session.
// A bundle without a usable access token is logged and ignored: the store
// keeps its previous state.
func (s *Store) Login(creds models.Credentials) {
	claims, err := s.decode(creds.AccessToken)
	if err != nil {
		log.Printf("session: login with undecodable access token: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state{
		Credentials: creds,
		Identity: models.Identity{
			ID:       claims.UserID,
			Fullname: claims.Fullname,
			Email:    claims.Email,
			Role:     claims.Role,
		},
	}
	s.persistLocked()
}

// Logout clears the session and removes the persisted entry.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state{}
	if err := s.backend.Delete(persist.KeyAuth); err != nil {
		log.Printf("session: could not delete persisted session: %v", err)
	}
}

// IsAuthenticated re-derives authentication from the access token's expiry
// claim on every call. An expired or undecodable token clears the session as
// a side effect.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	token := s.state.Credentials.AccessToken
	s.mu.RUnlock()

	if token == "" {
		return false
	}

	claims, err := s.decode(token)
	if err == nil {
		exp, expErr := claims.GetExpirationTime()
		if expErr == nil && exp != nil && exp.After(time.Now()) {
			return true
		}
	}

	s.Logout()
	return false
}

// Identity returns the decoded identity of the current session.
func (s *Store) Identity() models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Identity
}

// IsAdmin reports whether the session's role claim grants admin access.
func (s *Store) IsAdmin() bool {
	return s.Identity().Role == models.RoleAdmin
}

// AccessToken returns the current access token, empty when logged out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Credentials.AccessToken
}

// RefreshToken returns the current refresh token, empty when logged out.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Credentials.RefreshToken
}

// SetCredentials replaces the token pair after a successful refresh, keeping
// the identity, and persists the result.
func (s *Store) SetCredentials(creds models.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Credentials = creds
	s.persistLocked()
}

// decode extracts claims without verifying the signature. The client has no
// signing key; trust comes from the TLS channel the token arrived on.
func (s *Store) decode(token string) (*accessClaims, error) {
	claims := &accessClaims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Store) persistLocked() {
	if err := persist.SaveJSON(s.backend, persist.KeyAuth, s.state); err != nil {
		log.Printf("session: could not persist session: %v", err)
	}
}

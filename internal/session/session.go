// Package session holds the bearer token resolved for the current process.
package session

import (
	"errors"
	"sync"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned by Token while no token has been resolved.
var ErrNoToken = errors.New("not authenticated; run `iasql login`")

// Session is a write-once token cell shared by everything that talks to the
// IaSQL API within one process. The zero value is an empty session.
type Session struct {
	mu    sync.RWMutex
	token string
}

// Compile-time check to ensure Session implements oauth2.TokenSource
var _ oauth2.TokenSource = (*Session)(nil)

// New creates an empty Session.
func New() *Session {
	return &Session{}
}

// Get returns the cached token, or "" if none has been set.
func (s *Session) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set stores token if the session is still empty and reports whether it did.
// A held token is never replaced; an empty token is ignored.
func (s *Session) Set(token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		return false
	}
	s.token = token
	return true
}

// Token returns the session token as a bearer oauth2.Token.
func (s *Session) Token() (*oauth2.Token, error) {
	token := s.Get()
	if token == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}, nil
}

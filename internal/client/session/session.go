// Package session is the client-side holder of the authenticated
// identity and bearer token. The identity itself is issued by the
// external identity provider (or the stub backend in development);
// this type only stores and exposes it.
package session

import (
	"sync"

	"aqua_chat_client/internal/model"
)

// Session satisfies chat.Session and rest.TokenProvider. The zero
// state is logged out; every poller treats that as idle.
type Session struct {
	mu    sync.Mutex
	user  *model.User
	token string
}

// New returns a logged-out session.
func New() *Session {
	return &Session{}
}

// SetAuthenticated installs the identity and token after a login.
func (s *Session) SetAuthenticated(user model.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.user = &u
	s.token = token
}

// Clear drops the identity and token, returning to logged out.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
}

// CurrentUser returns the logged-in user, or false.
func (s *Session) CurrentUser() (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// Token returns the bearer token, or false when logged out.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", false
	}
	return s.token, true
}

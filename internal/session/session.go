// Package session holds the authenticated identity of one admin client.
package session

import (
	"sync"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// Session is owned by a single root controller and passed down explicitly.
type Session struct {
	mu    sync.RWMutex
	token string
	user  model.AuthUser
}

func New() *Session { return &Session{} }

func (s *Session) Set(token string, user model.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() (model.AuthUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.token != "" && s.user.ID != ""
}

func (s *Session) Authenticated() bool {
	_, ok := s.User()
	return ok
}

// IsSuperAdmin reports whether the current identity may manage users.
func (s *Session) IsSuperAdmin() bool {
	u, ok := s.User()
	return ok && u.Role == model.RoleSuperAdmin
}

// Clear forgets the token and identity.
func (s *Session) Clear() {
	s.Set("", model.AuthUser{})
}

package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/trailback/backend/pkg/models"
)

// User is the identity reported by the auth provider.
type User struct {
	ID    string
	Email string
}

// AuthProvider is the external identity service. Implementations wrap Firebase
// Authentication or any provider with the same capabilities.
type AuthProvider interface {
	CurrentUser(ctx context.Context) (*User, error)
	// OnSessionChange registers fn for sign-in and sign-out events and returns
	// a function removing the subscription.
	OnSessionChange(fn func(*User)) (unsubscribe func())
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignUp(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context) error
}

// TokenProvider is implemented by providers that can mint an ID token for the
// signed-in user. The client then sends it as a bearer token.
type TokenProvider interface {
	IDToken(ctx context.Context) (string, error)
}

// ErrNoAuthProvider is returned by Session when the client has no provider.
var ErrNoAuthProvider = errors.New("client: no auth provider configured")

// AuthError is an authentication failure meant to be shown next to the login form.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return "auth " + e.Op + ": " + e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

// Session tracks the signed-in user. Nothing but the login form should be shown
// while Authenticated is false.
type Session struct {
	provider AuthProvider

	mu          sync.RWMutex
	user        *User
	changes     uint64 // bumped on every set
	unsubscribe func()
}

// Session returns a gate bound to the client's auth provider. Call Start before use.
func (c *Client) Session() (*Session, error) {
	if c.auth == nil {
		return nil, ErrNoAuthProvider
	}
	return NewSession(c.auth), nil
}

func NewSession(provider AuthProvider) *Session {
	return &Session{provider: provider}
}

// Start follows session changes and loads the current user. A change delivered
// while the current user is being read wins over the read.
func (s *Session) Start(ctx context.Context) error {
	unsubscribe := s.provider.OnSessionChange(s.set)

	s.mu.Lock()
	previous := s.unsubscribe
	s.unsubscribe = unsubscribe
	seen := s.changes
	s.mu.Unlock()
	if previous != nil {
		previous()
	}

	user, err := s.provider.CurrentUser(ctx)
	if err != nil {
		s.Close()
		return &AuthError{Op: "current user", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.changes == seen {
		s.user = user
	}
	return nil
}

// Close stops following session changes. The last known user is kept.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Session) set(user *User) {
	s.mu.Lock()
	s.user = user
	s.changes++
	s.mu.Unlock()
}

// User returns the signed-in user or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) Authenticated() bool {
	return s.User() != nil
}

func (s *Session) SignIn(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, "sign in", email, password, s.provider.SignIn)
}

func (s *Session) SignUp(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, "sign up", email, password, s.provider.SignUp)
}

func (s *Session) authenticate(ctx context.Context, op, email, password string, fn func(context.Context, string, string) (*User, error)) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return &AuthError{Op: op, Err: errors.New("email and password are required")}
	}
	user, err := fn(ctx, email, password)
	if err != nil {
		return &AuthError{Op: op, Err: err}
	}
	s.set(user)
	return nil
}

func (s *Session) SignOut(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		return &AuthError{Op: "sign out", Err: err}
	}
	s.set(nil)
	return nil
}

// ExchangeToken trades a provider ID token for the caller's TrailBack profile,
// creating it on first sign-in.
func (c *Client) ExchangeToken(ctx context.Context, idToken string) (*models.Profile, error) {
	var profile models.Profile
	err := c.doJSON(ctx, http.MethodPost, "/auth/session", nil, models.SessionRequest{IDToken: idToken}, &profile)
	if err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			return nil, &AuthError{Op: "session", Err: err}
		}
		return nil, err
	}
	return &profile, nil
}

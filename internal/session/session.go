// Package session keeps the single signed-in user of an installation.
//
// Exactly one session exists at a time. It is persisted in a one-row table so
// it survives restarts, created by SignIn and destroyed by SignOut.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoSession is returned when an operation needs a signed-in user.
	ErrNoSession = errors.New("no active session")
	// ErrInvalidEmail is returned by SignIn for a blank email.
	ErrInvalidEmail = errors.New("email is required")
)

// userNamespace scopes the deterministic user ids derived from emails.
var userNamespace = uuid.MustParse("6f1c2a4e-0d55-4c36-9a37-2b1f0f6c9e21")

// Session is the signed-in user.
type Session struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	SignedInAt time.Time `json:"signed_in_at"`
	// Nonce changes on every sign-in so tokens from older sessions stop
	// validating.
	Nonce string `json:"-"`
}

// UserIDForEmail returns the stable user id for an email. Signing in again
// with the same address sees the same meals and shopping items.
func UserIDForEmail(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return uuid.NewSHA1(userNamespace, []byte(normalized)).String()
}

// Store persists the single session slot.
type Store interface {
	Get(ctx context.Context) (*Session, error)
	Put(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// Manager creates and destroys the session.
type Manager struct {
	store Store
	now   func() time.Time
}

// NewManager creates a Manager backed by store.
func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// SignIn replaces any existing session with one for email.
func (m *Manager) SignIn(ctx context.Context, email string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}

	s := Session{
		ID:         UserIDForEmail(email),
		Email:      email,
		SignedInAt: m.now().UTC().Truncate(time.Millisecond),
		Nonce:      uuid.NewString(),
	}
	if err := m.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return &s, nil
}

// SignOut destroys the session. Signing out twice is not an error.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Current returns the session, or ErrNoSession.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	s, err := m.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}

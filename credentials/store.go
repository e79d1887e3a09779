// Package credentials holds the aggregator access token for the session
// named by the request context.
package credentials

import (
	"context"

	apperrors "github.com/jrsteele09/go-plaid-link/internal/errors"
	"github.com/jrsteele09/go-plaid-link/sessions"
)

// Store is the per-session access token slot. Tokens are opaque and not
// validated here.
type Store interface {
	// Get returns the stored access token and whether one is present
	Get(ctx context.Context) (string, bool)
	// Set overwrites the stored access token unconditionally
	Set(ctx context.Context, accessToken, itemID string) error
	// Clear removes the stored access token; clearing an empty slot is fine
	Clear(ctx context.Context) error
}

// StateStore records where the session is in the link flow
type StateStore interface {
	LinkState(ctx context.Context) string
	SetLinkState(ctx context.Context, state string) error
}

// SessionStore implements Store and StateStore on top of the session repo
type SessionStore struct {
	repo sessions.Repo
}

var (
	_ Store      = (*SessionStore)(nil)
	_ StateStore = (*SessionStore)(nil)
)

func NewSessionStore(repo sessions.Repo) *SessionStore {
	return &SessionStore{repo: repo}
}

func (s *SessionStore) Get(ctx context.Context) (string, bool) {
	session, err := s.current(ctx)
	if err != nil || session.AccessToken == "" {
		return "", false
	}
	return session.AccessToken, true
}

func (s *SessionStore) Set(ctx context.Context, accessToken, itemID string) error {
	id, ok := sessions.IDFromContext(ctx)
	if !ok {
		return apperrors.ErrNoSession
	}
	return s.repo.Update(id, func(session *sessions.UserSession) {
		session.AccessToken = accessToken
		session.ItemID = itemID
	})
}

func (s *SessionStore) Clear(ctx context.Context) error {
	id, ok := sessions.IDFromContext(ctx)
	if !ok {
		return nil
	}
	err := s.repo.Update(id, func(session *sessions.UserSession) {
		session.AccessToken = ""
		session.ItemID = ""
	})
	if apperrors.Is(err, apperrors.ErrSessionNotFound) || apperrors.Is(err, apperrors.ErrSessionExpired) {
		return nil
	}
	return err
}

func (s *SessionStore) LinkState(ctx context.Context) string {
	session, err := s.current(ctx)
	if err != nil {
		return ""
	}
	return session.LinkState
}

func (s *SessionStore) SetLinkState(ctx context.Context, state string) error {
	id, ok := sessions.IDFromContext(ctx)
	if !ok {
		return apperrors.ErrNoSession
	}
	return s.repo.Update(id, func(session *sessions.UserSession) {
		session.LinkState = state
	})
}

func (s *SessionStore) current(ctx context.Context) (sessions.UserSession, error) {
	id, ok := sessions.IDFromContext(ctx)
	if !ok {
		return sessions.UserSession{}, apperrors.ErrNoSession
	}
	return s.repo.Get(id)
}

package credentials_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-plaid-link/credentials"
	apperrors "github.com/jrsteele09/go-plaid-link/internal/errors"
	"github.com/jrsteele09/go-plaid-link/sessions"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*credentials.SessionStore, *sessions.InMemoryRepo, context.Context) {
	t.Helper()
	repo := sessions.NewInMemoryRepo()
	require.NoError(t, repo.Upsert("s1", sessions.UserSession{UserID: "user_good", ExpiresAt: time.Now().Add(time.Hour)}))
	return credentials.NewSessionStore(repo), repo, sessions.WithID(context.Background(), "s1")
}

func TestSessionStore_SetGet(t *testing.T) {
	store, repo, ctx := setup(t)

	_, ok := store.Get(ctx)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "access-1", "item-1"))
	token, ok := store.Get(ctx)
	require.True(t, ok)
	require.Equal(t, "access-1", token)

	require.NoError(t, store.Set(ctx, "access-2", "item-2"), "set overwrites")
	token, _ = store.Get(ctx)
	require.Equal(t, "access-2", token)

	s, err := repo.Get("s1")
	require.NoError(t, err)
	require.Equal(t, "item-2", s.ItemID)
	require.Equal(t, "user_good", s.UserID, "identity untouched")
}

func TestSessionStore_Clear(t *testing.T) {
	store, _, ctx := setup(t)
	require.NoError(t, store.Set(ctx, "access-1", "item-1"))

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, ok := store.Get(ctx)
	require.False(t, ok)

	require.NoError(t, store.Clear(context.Background()), "no session is a no-op")
	require.NoError(t, store.Clear(sessions.WithID(context.Background(), "missing")))
}

func TestSessionStore_ScopedToSession(t *testing.T) {
	store, repo, ctx := setup(t)
	require.NoError(t, repo.Upsert("s2", sessions.UserSession{}))
	other := sessions.WithID(context.Background(), "s2")

	require.NoError(t, store.Set(ctx, "access-1", "item-1"))

	_, ok := store.Get(other)
	require.False(t, ok)
}

func TestSessionStore_NoSession(t *testing.T) {
	store, _, _ := setup(t)

	_, ok := store.Get(context.Background())
	require.False(t, ok)
	require.ErrorIs(t, store.Set(context.Background(), "access-1", "item-1"), apperrors.ErrNoSession)
	require.ErrorIs(t, store.SetLinkState(context.Background(), "link_initiated"), apperrors.ErrNoSession)
	require.ErrorIs(t, store.Set(sessions.WithID(context.Background(), "missing"), "a", "i"), apperrors.ErrSessionNotFound)
}

func TestSessionStore_LinkState(t *testing.T) {
	store, _, ctx := setup(t)

	require.Equal(t, "", store.LinkState(ctx))
	require.NoError(t, store.SetLinkState(ctx, "link_complete"))
	require.Equal(t, "link_complete", store.LinkState(ctx))
	require.Equal(t, "", store.LinkState(context.Background()))
}

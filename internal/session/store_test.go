package session_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pastoreohq/go-pastoreo/internal/api"
	"github.com/pastoreohq/go-pastoreo/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// routeRecorder remembers every navigation the store performs.
type routeRecorder struct {
	routes []string
}

func (r *routeRecorder) Navigate(route string) { r.routes = append(r.routes, route) }

func (r *routeRecorder) last() string {
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}

func TestLoginDestination(t *testing.T) {
	tests := []struct {
		name   string
		user   session.User
		tenant string
		want   string
	}{
		{"regular user", session.User{ID: "u1"}, "c1", session.RouteDashboard},
		{"regular user without tenant", session.User{ID: "u1"}, "", session.RouteDashboard},
		{"platform admin", session.User{ID: "u2", IsPlatformAdmin: true}, "", session.RouteAdmin},
		{"platform admin with tenant", session.User{ID: "u2", IsPlatformAdmin: true}, "c1", session.RouteAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &routeRecorder{}
			store := session.NewStore(session.NewMemoryStorage(), rec, discardLogger())

			store.Login("tok", tt.user, tt.tenant)

			assert.Equal(t, tt.want, rec.last())
			assert.True(t, store.IsAuthenticated())
		})
	}
}

func TestLoginPersistsKeys(t *testing.T) {
	storage := session.NewMemoryStorage()
	store := session.NewStore(storage, &routeRecorder{}, discardLogger())

	store.Login("tok-1", session.User{ID: "u1", Email: "a@b.c"}, "church-1")

	token, ok := storage.Get(session.KeyToken)
	require.True(t, ok)
	assert.Equal(t, "tok-1", token)

	_, ok = storage.Get(session.KeyUser)
	assert.True(t, ok)

	tenant, ok := storage.Get(session.KeyTenant)
	require.True(t, ok)
	assert.Equal(t, "church-1", tenant)
}

func TestLoginWithoutTenantRemovesKey(t *testing.T) {
	storage := session.NewMemoryStorage()
	require.NoError(t, storage.Set(session.KeyTenant, "stale-church"))

	store := session.NewStore(storage, &routeRecorder{}, discardLogger())
	store.Login("tok", session.User{ID: "admin", IsPlatformAdmin: true}, "")

	_, ok := storage.Get(session.KeyTenant)
	assert.False(t, ok, "tenant key must be deleted, not stored empty")
	assert.Empty(t, store.Current().TenantID)
}

func TestLogout(t *testing.T) {
	storage := session.NewMemoryStorage()
	rec := &routeRecorder{}
	store := session.NewStore(storage, rec, discardLogger())
	store.Login("tok", session.User{ID: "u1"}, "c1")

	store.Logout()

	for _, key := range []string{session.KeyToken, session.KeyUser, session.KeyTenant} {
		_, ok := storage.Get(key)
		assert.False(t, ok, key)
	}
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, session.RouteLogin, rec.last())

	// Logging out again is harmless.
	store.Logout()
	assert.Equal(t, session.RouteLogin, rec.last())
}

func TestRehydrate(t *testing.T) {
	t.Run("full session survives a restart", func(t *testing.T) {
		storage := session.NewMemoryStorage()
		first := session.NewStore(storage, &routeRecorder{}, discardLogger())
		first.Login("tok", session.User{ID: "u1", DisplayName: "Ana"}, "c1")

		second := session.NewStore(storage, &routeRecorder{}, discardLogger())
		require.True(t, second.IsAuthenticated())
		sess := second.Current()
		assert.Equal(t, "u1", sess.User.ID)
		assert.Equal(t, "c1", sess.TenantID)
		assert.Equal(t, "tok", sess.Token)
	})

	t.Run("token without user is not a session", func(t *testing.T) {
		storage := session.NewMemoryStorage()
		require.NoError(t, storage.Set(session.KeyToken, "orphan"))

		store := session.NewStore(storage, &routeRecorder{}, discardLogger())
		assert.False(t, store.IsAuthenticated())
	})

	t.Run("unreadable user record is discarded", func(t *testing.T) {
		storage := session.NewMemoryStorage()
		require.NoError(t, storage.Set(session.KeyToken, "tok"))
		require.NoError(t, storage.Set(session.KeyUser, "{not json"))

		store := session.NewStore(storage, &routeRecorder{}, discardLogger())
		assert.False(t, store.IsAuthenticated())
	})
}

func TestTokenSource(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage(), &routeRecorder{}, discardLogger())

	_, err := store.Token()
	assert.ErrorIs(t, err, api.ErrNoSession)

	store.Login("tok-9", session.User{ID: "u1"}, "c1")
	tok, err := store.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-9", tok.AccessToken)
}

func TestContext(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage(), &routeRecorder{}, discardLogger())
	ctx := session.NewContext(context.Background(), store)

	got, ok := session.FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, store, got)
	assert.Same(t, store, session.MustFromContext(ctx))

	_, ok = session.FromContext(context.Background())
	assert.False(t, ok)
	assert.Panics(t, func() { session.MustFromContext(context.Background()) })
}

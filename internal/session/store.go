// Package session holds the authenticated identity and tenant context the
// client keeps between login and logout, persisted across process restarts.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/pastoreohq/go-pastoreo/internal/api"
)

// Post-login and post-logout destinations.
const (
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"
	RouteAdmin     = "/admin"
)

// User is the identity half of a session.
type User struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	DisplayName     string `json:"displayName"`
	IsPlatformAdmin bool   `json:"isPlatformAdmin"`
}

// Session is the full client-side session. TenantID may be empty for
// platform-admin sessions.
type Session struct {
	User     User
	TenantID string
	Token    string
}

// Navigator receives the store's post-login/logout routing decisions.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Store is the session service: constructed once at process start, injected
// into whatever consumes it. It is the only writer of the persisted session
// keys.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	nav     Navigator
	logger  *slog.Logger
	sess    Session
}

// NewStore builds the store and rehydrates any persisted session. A missing
// or partially persisted session leaves the store unauthenticated; no token
// expiry check happens here; expiry surfaces as an auth error on a later
// API call.
func NewStore(storage Storage, nav Navigator, logger *slog.Logger) *Store {
	s := &Store{storage: storage, nav: nav, logger: logger}
	s.rehydrate()
	return s
}

func (s *Store) rehydrate() {
	token, okToken := s.storage.Get(KeyToken)
	rawUser, okUser := s.storage.Get(KeyUser)
	if !okToken || token == "" || !okUser {
		return
	}

	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.logger.Warn("discarding unreadable persisted session", "error", err)
		return
	}

	tenant, _ := s.storage.Get(KeyTenant)
	s.sess = Session{User: user, TenantID: tenant, Token: token}
	s.logger.Debug("session rehydrated", "user_id", user.ID, "tenant_id", tenant)
}

// Login installs the session in memory, persists it, and navigates to the
// post-login destination: platform admins go to the admin area, everyone
// else to the dashboard (with or without a tenant; the dashboard handles the
// setup flow when the tenant is absent).
func (s *Store) Login(token string, user User, tenantID string) {
	s.mu.Lock()
	s.sess = Session{User: user, TenantID: tenantID, Token: token}

	s.persist(KeyToken, token)
	if raw, err := json.Marshal(user); err == nil {
		s.persist(KeyUser, string(raw))
	} else {
		s.logger.Warn("failed to encode session user", "error", err)
	}
	if tenantID != "" {
		s.persist(KeyTenant, tenantID)
	} else {
		s.remove(KeyTenant)
	}
	s.mu.Unlock()

	if user.IsPlatformAdmin {
		s.nav.Navigate(RouteAdmin)
		return
	}
	s.nav.Navigate(RouteDashboard)
}

// Logout clears the in-memory and persisted session and navigates to the
// login surface. Calling it while logged out is a no-op apart from the
// navigation.
func (s *Store) Logout() {
	s.mu.Lock()
	s.sess = Session{}
	s.remove(KeyToken)
	s.remove(KeyUser)
	s.remove(KeyTenant)
	s.mu.Unlock()

	s.nav.Navigate(RouteLogin)
}

func (s *Store) persist(key, value string) {
	if err := s.storage.Set(key, value); err != nil {
		s.logger.Warn("failed to persist session key", "key", key, "error", err)
	}
}

func (s *Store) remove(key string) {
	if err := s.storage.Delete(key); err != nil {
		s.logger.Warn("failed to remove session key", "key", key, "error", err)
	}
}

// IsAuthenticated reports whether a token is held. Token presence is the
// whole check; validity is the backend's call.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.Token != ""
}

// Current returns a snapshot of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess
}

// Token implements oauth2.TokenSource so the store can back the API client's
// bearer transport. Unauthenticated calls fail here, before the network.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess.Token == "" {
		return nil, api.ErrNoSession
	}
	return &oauth2.Token{AccessToken: s.sess.Token}, nil
}

var _ oauth2.TokenSource = (*Store)(nil)

type contextKey struct{}

// NewContext returns a context carrying the session store.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext extracts the session store, reporting whether one was provided.
func FromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(contextKey{}).(*Store)
	return s, ok
}

// MustFromContext extracts the session store and panics when none was
// provided. Reaching for the session outside its provisioning scope is a
// programmer error and fails loudly rather than returning defaults.
func MustFromContext(ctx context.Context) *Store {
	s, ok := FromContext(ctx)
	if !ok {
		panic("session: store accessed outside its provisioning scope")
	}
	return s
}

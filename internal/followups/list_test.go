package followups_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pastoreohq/go-pastoreo/internal/api"
	"github.com/pastoreohq/go-pastoreo/internal/followups"
	"github.com/pastoreohq/go-pastoreo/internal/session"
	"github.com/pastoreohq/go-pastoreo/internal/stub"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newBackend starts an in-memory backend, logs a seeded user in, and returns
// the backend with an authenticated client.
func newBackend(t *testing.T) (*stub.Server, *api.Client) {
	t.Helper()
	srv := stub.New(stub.Options{Logger: discardLogger()})
	srv.SeedUser("pastor@ejemplo.org", "secreto123", "Pastor Prueba", "c1", false)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return srv, loginClient(t, ts.URL)
}

func loginClient(t *testing.T, baseURL string) *api.Client {
	t.Helper()
	sessions := session.NewStore(session.NewMemoryStorage(), session.NavigatorFunc(func(string) {}), discardLogger())
	client := api.NewClient(baseURL, sessions, 5*time.Second, discardLogger())

	result, err := client.Login(context.Background(), api.LoginInput{
		Email:    "pastor@ejemplo.org",
		Password: "secreto123",
	})
	require.NoError(t, err)
	sessions.Login(result.AccessToken, session.User{ID: result.User.ID, DisplayName: result.User.FullName}, result.ChurchID)
	return client
}

// fakeClient wires an authenticated client straight at an arbitrary handler.
func fakeClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	sessions := session.NewStore(session.NewMemoryStorage(), session.NavigatorFunc(func(string) {}), discardLogger())
	sessions.Login("test-token", session.User{ID: "u1"}, "c1")
	return api.NewClient(ts.URL, sessions, 5*time.Second, discardLogger())
}

// waitSettled polls until the store reports done, failing the test on timeout.
func waitSettled(t *testing.T, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if done() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for store to settle")
}

func TestListInitialFetch(t *testing.T) {
	srv, client := newBackend(t)
	srv.SeedFollowUp(followups.Person{FirstName: "María", LastName: "García", Status: followups.StatusVisitor})
	srv.SeedFollowUp(followups.Person{FirstName: "Juan", LastName: "Pérez", Status: followups.StatusProspect})

	store := followups.NewListStore(client, discardLogger(), followups.Filters{})
	defer store.Close()

	waitSettled(t, func() bool { return !store.State().Loading })

	state := store.State()
	assert.Empty(t, state.Err)
	assert.Len(t, state.People, 2)
	assert.Equal(t, 2, state.Meta.Total)
	assert.Equal(t, 1, state.Meta.Page)
}

func TestListStatusFilter(t *testing.T) {
	srv, client := newBackend(t)
	srv.SeedFollowUp(followups.Person{FirstName: "María", LastName: "García", Status: followups.StatusVisitor})
	srv.SeedFollowUp(followups.Person{FirstName: "Juan", LastName: "Pérez", Status: followups.StatusProspect})

	store := followups.NewListStore(client, discardLogger(), followups.Filters{Status: followups.StatusProspect})
	defer store.Close()

	waitSettled(t, func() bool {
		s := store.State()
		return !s.Loading && len(s.People) == 1
	})
	assert.Equal(t, "Juan", store.State().People[0].FirstName)
}

func TestListQuerySerialization(t *testing.T) {
	var got atomic.Pointer[url.Values]
	client := fakeClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got.Store(&q)
		_, _ = w.Write([]byte(`{"data":[],"meta":{"total":0,"page":1,"limit":20,"totalPages":1}}`))
	}))

	store := followups.NewListStore(client, discardLogger(), followups.Filters{
		Status:       followups.StatusVisitor,
		Search:       "maría",
		AssignedToMe: true,
		Page:         3,
		Limit:        20,
	})
	defer store.Close()

	waitSettled(t, func() bool { return !store.State().Loading })

	q := *got.Load()
	assert.Equal(t, "VISITOR", q.Get("status"))
	assert.Equal(t, "maría", q.Get("search"))
	assert.Equal(t, "true", q.Get("assignedToMe"))
	assert.Equal(t, "3", q.Get("page"))
	assert.Equal(t, "20", q.Get("limit"))
}

func TestListOmitsUnsetFilters(t *testing.T) {
	var got atomic.Pointer[url.Values]
	client := fakeClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got.Store(&q)
		_, _ = w.Write([]byte(`[]`))
	}))

	store := followups.NewListStore(client, discardLogger(), followups.Filters{})
	defer store.Close()

	waitSettled(t, func() bool { return !store.State().Loading })

	assert.Empty(t, *got.Load())
}

func TestListUnchangedFiltersSkipFetch(t *testing.T) {
	var calls atomic.Int32
	client := fakeClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))

	filters := followups.Filters{Status: followups.StatusVisitor}
	store := followups.NewListStore(client, discardLogger(), filters)
	defer store.Close()

	waitSettled(t, func() bool { return !store.State().Loading })
	require.EqualValues(t, 1, calls.Load())

	store.SetFilters(filters)
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}

func TestListLegacyArrayResponse(t *testing.T) {
	srv := stub.New(stub.Options{Logger: discardLogger(), LegacyLists: true})
	srv.SeedUser("pastor@ejemplo.org", "secreto123", "Pastor Prueba", "c1", false)
	srv.SeedFollowUp(followups.Person{FirstName: "María", LastName: "García", Status: followups.StatusVisitor})
	srv.SeedFollowUp(followups.Person{FirstName: "Juan", LastName: "Pérez", Status: followups.StatusVisitor})

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	client := loginClient(t, ts.URL)

	store := followups.NewListStore(client, discardLogger(), followups.Filters{})
	defer store.Close()

	waitSettled(t, func() bool { return !store.State().Loading })

	state := store.State()
	assert.Len(t, state.People, 2)
	assert.Equal(t, api.PageMeta{Total: 2, Page: 1, Limit: 2, TotalPages: 1}, state.Meta)
}

func TestListFailureKeepsPreviousPage(t *testing.T) {
	var fail atomic.Bool
	client := fakeClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"boom"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":"p1","firstName":"María","lastName":"García","status":"VISITOR"}]`))
	}))

	store := followups.NewListStore(client, discardLogger(), followups.Filters{})
	defer store.Close()

	waitSettled(t, func() bool {
		s := store.State()
		return !s.Loading && len(s.People) == 1
	})

	fail.Store(true)
	store.Refetch()
	waitSettled(t, func() bool { return store.State().Err != "" })

	state := store.State()
	assert.Equal(t, followups.ErrLoadList.Error(), state.Err)
	assert.Len(t, state.People, 1, "a failed reload must keep the last good page")

	// Recovering clears the error again.
	fail.Store(false)
	store.Refetch()
	waitSettled(t, func() bool {
		s := store.State()
		return !s.Loading && s.Err == ""
	})
}

// A slow response for an old filter set must not overwrite the page already
// loaded for the current one.
func TestListStaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	client := fakeClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search") == "juan" {
			_, _ = w.Write([]byte(`[{"id":"p2","firstName":"Juan","lastName":"Pérez","status":"VISITOR"}]`))
			return
		}
		<-release
		_, _ = w.Write([]byte(`[{"id":"p1","firstName":"María","lastName":"García","status":"VISITOR"}]`))
	}))

	store := followups.NewListStore(client, discardLogger(), followups.Filters{})
	defer store.Close()

	store.SetFilters(followups.Filters{Search: "juan"})
	waitSettled(t, func() bool {
		s := store.State()
		return !s.Loading && len(s.People) == 1
	})
	require.Equal(t, "Juan", store.State().People[0].FirstName)

	close(release)
	time.Sleep(100 * time.Millisecond)

	state := store.State()
	assert.Len(t, state.People, 1)
	assert.Equal(t, "Juan", state.People[0].FirstName, "stale response must be discarded")
	assert.Empty(t, state.Err)
}

func TestCreate(t *testing.T) {
	t.Run("requires both names before any request", func(t *testing.T) {
		var calls atomic.Int32
		client := fakeClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte(`[]`))
		}))

		store := followups.NewListStore(client, discardLogger(), followups.Filters{})
		defer store.Close()
		waitSettled(t, func() bool { return !store.State().Loading })
		before := calls.Load()

		err := store.Create(context.Background(), followups.PersonInput{FirstName: "María"})
		assert.ErrorIs(t, err, followups.ErrNameRequired)
		assert.Equal(t, before, calls.Load())
	})

	t.Run("reloads the list before returning", func(t *testing.T) {
		_, client := newBackend(t)

		store := followups.NewListStore(client, discardLogger(), followups.Filters{})
		defer store.Close()
		waitSettled(t, func() bool { return !store.State().Loading })

		err := store.Create(context.Background(), followups.PersonInput{
			FirstName: "Lucía",
			LastName:  "Moreno",
		})
		require.NoError(t, err)

		state := store.State()
		require.Len(t, state.People, 1)
		assert.Equal(t, "Lucía", state.People[0].FirstName)
		assert.Equal(t, followups.StatusVisitor, state.People[0].Status)
	})

	t.Run("backend failure maps to the save error", func(t *testing.T) {
		client := fakeClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(`[]`))
		}))

		store := followups.NewListStore(client, discardLogger(), followups.Filters{})
		defer store.Close()
		waitSettled(t, func() bool { return !store.State().Loading })

		err := store.Create(context.Background(), followups.PersonInput{FirstName: "A", LastName: "B"})
		assert.ErrorIs(t, err, followups.ErrSavePerson)
	})
}

func TestUpdate(t *testing.T) {
	srv, client := newBackend(t)
	seeded := srv.SeedFollowUp(followups.Person{FirstName: "María", LastName: "García", Status: followups.StatusVisitor})

	store := followups.NewListStore(client, discardLogger(), followups.Filters{})
	defer store.Close()
	waitSettled(t, func() bool { return !store.State().Loading })

	err := store.Update(context.Background(), seeded.ID, followups.PersonInput{
		FirstName: "María",
		LastName:  "García",
		Status:    followups.StatusMember,
	})
	require.NoError(t, err)

	state := store.State()
	require.Len(t, state.People, 1)
	assert.Equal(t, followups.StatusMember, state.People[0].Status)

	t.Run("unknown id maps to the save error", func(t *testing.T) {
		err := store.Update(context.Background(), "missing", followups.PersonInput{FirstName: "A", LastName: "B"})
		assert.ErrorIs(t, err, followups.ErrSavePerson)
	})
}

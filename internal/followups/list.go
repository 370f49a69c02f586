// Package followups binds the follow-up pipeline endpoints to local reactive
// state: the paged list, the per-person detail, and the notes thread.
package followups

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"sync"

	"github.com/pastoreohq/go-pastoreo/internal/api"
	"github.com/pastoreohq/go-pastoreo/internal/resource"
)

// User-facing failure strings. Reads store them on the state; writes return
// them to the caller. They are fixed and localized, independent of the
// underlying transport detail.
var (
	ErrLoadList     = errors.New("No se pudieron cargar los seguimientos")
	ErrSavePerson   = errors.New("No se pudo guardar el seguimiento")
	ErrNameRequired = errors.New("Nombre y apellido son obligatorios")
)

// ListState is a point-in-time snapshot of the list store.
type ListState struct {
	People  []Person
	Meta    api.PageMeta
	Loading bool
	Err     string
}

// ListStore fetches GET /follow-ups on construction and on every filter
// change, holding the latest page plus paging metadata. A failed fetch keeps
// the previously loaded page and raises the error string instead.
type ListStore struct {
	client *api.Client
	logger *slog.Logger

	mu      sync.Mutex
	track   resource.Tracker
	signal  resource.Signal
	filters Filters
	people  []Person
	meta    api.PageMeta
	closed  bool
}

func NewListStore(client *api.Client, logger *slog.Logger, filters Filters) *ListStore {
	s := &ListStore{
		client: client,
		logger: logger,
		signal: resource.NewSignal(),
	}
	s.mu.Lock()
	s.filters = filters
	s.fetchLocked()
	s.mu.Unlock()
	return s
}

// SetFilters replaces the query parameters and refetches. An unchanged
// filter set issues no request.
func (s *ListStore) SetFilters(filters Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || filters == s.filters {
		return
	}
	s.filters = filters
	s.fetchLocked()
}

// Refetch reloads the list with the current filters. External mutation flows
// call it after performing their own writes.
func (s *ListStore) Refetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.fetchLocked()
}

// fetchLocked dispatches one fetch for the current filters. The in-flight
// request is never cancelled by a newer one; the generation check on arrival
// decides which response lands.
func (s *ListStore) fetchLocked() {
	gen := s.track.Begin()
	filters := s.filters
	s.signal.Notify()

	go func() {
		page, err := s.fetchPage(context.Background(), filters)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		if err != nil {
			s.logger.Error("failed to load follow-ups", "error", err)
			if s.track.Finish(gen, ErrLoadList.Error()) {
				s.signal.Notify()
			}
			return
		}
		if !s.track.Finish(gen, "") {
			return
		}
		s.people = page.Data
		s.meta = page.Meta
		s.signal.Notify()
	}()
}

func (s *ListStore) fetchPage(ctx context.Context, filters Filters) (api.Page[Person], error) {
	q := url.Values{}
	api.SetNonEmpty(q, "status", string(filters.Status))
	api.SetNonEmpty(q, "search", filters.Search)
	api.SetFlag(q, "assignedToMe", filters.AssignedToMe)
	api.SetPositive(q, "page", filters.Page)
	api.SetPositive(q, "limit", filters.Limit)

	var raw json.RawMessage
	if err := s.client.Get(ctx, "/follow-ups", q, &raw); err != nil {
		return api.Page[Person]{}, err
	}
	return api.DecodePage[Person](raw)
}

// refetchWait reloads inline so a mutation's caller observes post-write
// state as soon as the mutation returns. A refetch failure after a
// successful write degrades to the state's error flag, not to the caller.
func (s *ListStore) refetchWait(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	gen := s.track.Begin()
	filters := s.filters
	s.mu.Unlock()

	page, err := s.fetchPage(ctx, filters)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		s.logger.Error("failed to reload follow-ups after mutation", "error", err)
		if s.track.Finish(gen, ErrLoadList.Error()) {
			s.signal.Notify()
		}
		return
	}
	if !s.track.Finish(gen, "") {
		return
	}
	s.people = page.Data
	s.meta = page.Meta
	s.signal.Notify()
}

// Create adds a follow-up person and reloads the list. The required-field
// check short-circuits before any request.
func (s *ListStore) Create(ctx context.Context, input PersonInput) error {
	if input.FirstName == "" || input.LastName == "" {
		return ErrNameRequired
	}
	if err := s.client.Post(ctx, "/follow-ups", input, nil); err != nil {
		s.logger.Error("failed to create follow-up", "error", err)
		return ErrSavePerson
	}
	s.refetchWait(ctx)
	return nil
}

// Update rewrites a follow-up person and reloads the list.
func (s *ListStore) Update(ctx context.Context, id string, input PersonInput) error {
	if input.FirstName == "" || input.LastName == "" {
		return ErrNameRequired
	}
	if err := s.client.Put(ctx, "/follow-ups/"+id, input, nil); err != nil {
		s.logger.Error("failed to update follow-up", "id", id, "error", err)
		return ErrSavePerson
	}
	s.refetchWait(ctx)
	return nil
}

// State returns a snapshot of the held page.
func (s *ListStore) State() ListState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ListState{
		People:  s.people,
		Meta:    s.meta,
		Loading: s.track.Loading(),
		Err:     s.track.Err(),
	}
}

// Changes returns the coalesced change notification channel.
func (s *ListStore) Changes() <-chan struct{} {
	return s.signal.Wait()
}

// Close tears the store down. In-flight requests are not aborted; their late
// responses are dropped.
func (s *ListStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

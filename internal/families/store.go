// Package families binds the family roster endpoint. Families group members
// of one household; the grouping itself is maintained by the backend.
package families

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/pastoreohq/go-pastoreo/internal/api"
	"github.com/pastoreohq/go-pastoreo/internal/resource"
)

var ErrLoadFamilies = errors.New("No se pudieron cargar las familias")

// Family is one household grouping.
type Family struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
}

type State struct {
	Families []Family
	Meta     api.PageMeta
	Loading  bool
	Err      string
}

// Store fetches GET /families on construction and on Refetch.
type Store struct {
	client *api.Client
	logger *slog.Logger

	mu       sync.Mutex
	track    resource.Tracker
	signal   resource.Signal
	families []Family
	meta     api.PageMeta
	closed   bool
}

func NewStore(client *api.Client, logger *slog.Logger) *Store {
	s := &Store{
		client: client,
		logger: logger,
		signal: resource.NewSignal(),
	}
	s.mu.Lock()
	s.fetchLocked()
	s.mu.Unlock()
	return s
}

func (s *Store) Refetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.fetchLocked()
}

func (s *Store) fetchLocked() {
	gen := s.track.Begin()
	s.signal.Notify()

	go func() {
		var raw json.RawMessage
		err := s.client.Get(context.Background(), "/families", nil, &raw)

		var page api.Page[Family]
		if err == nil {
			page, err = api.DecodePage[Family](raw)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		if err != nil {
			s.logger.Error("failed to load families", "error", err)
			if s.track.Finish(gen, ErrLoadFamilies.Error()) {
				s.signal.Notify()
			}
			return
		}
		if !s.track.Finish(gen, "") {
			return
		}
		s.families = page.Data
		s.meta = page.Meta
		s.signal.Notify()
	}()
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Families: s.families,
		Meta:     s.meta,
		Loading:  s.track.Loading(),
		Err:      s.track.Err(),
	}
}

func (s *Store) Changes() <-chan struct{} {
	return s.signal.Wait()
}

func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

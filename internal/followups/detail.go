package followups

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/pastoreohq/go-pastoreo/internal/api"
	"github.com/pastoreohq/go-pastoreo/internal/resource"
)

var ErrLoadDetail = errors.New("No se pudo cargar el seguimiento")

type DetailState struct {
	Detail  *Detail
	Loading bool
	Err     string
}

// DetailStore fetches GET /follow-ups/:id on construction and whenever the
// identifier changes.
type DetailStore struct {
	client *api.Client
	logger *slog.Logger

	mu     sync.Mutex
	track  resource.Tracker
	signal resource.Signal
	id     string
	detail *Detail
	closed bool
}

func NewDetailStore(client *api.Client, logger *slog.Logger, id string) *DetailStore {
	s := &DetailStore{
		client: client,
		logger: logger,
		signal: resource.NewSignal(),
	}
	s.mu.Lock()
	s.id = id
	s.fetchLocked()
	s.mu.Unlock()
	return s
}

// SetID switches the store to another person and refetches.
func (s *DetailStore) SetID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || id == s.id {
		return
	}
	s.id = id
	s.fetchLocked()
}

func (s *DetailStore) Refetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.fetchLocked()
}

func (s *DetailStore) fetchLocked() {
	gen := s.track.Begin()
	id := s.id
	s.signal.Notify()

	go func() {
		var detail Detail
		err := s.client.Get(context.Background(), "/follow-ups/"+id, nil, &detail)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		if err != nil {
			s.logger.Error("failed to load follow-up", "id", id, "error", err)
			if s.track.Finish(gen, ErrLoadDetail.Error()) {
				s.signal.Notify()
			}
			return
		}
		if !s.track.Finish(gen, "") {
			return
		}
		s.detail = &detail
		s.signal.Notify()
	}()
}

func (s *DetailStore) State() DetailState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DetailState{
		Detail:  s.detail,
		Loading: s.track.Loading(),
		Err:     s.track.Err(),
	}
}

func (s *DetailStore) Changes() <-chan struct{} {
	return s.signal.Wait()
}

func (s *DetailStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

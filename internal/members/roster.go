// Package members binds the member roster and search endpoints: listing by
// membership status, archive/restore, delete with conflict semantics, and
// the debounced name search behind selection widgets.
package members

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

// Membership status values the roster filters and toggles between.
const (
	StatusActive   = "ACTIVE"
	StatusArchived = "ARCHIVED"
)

var (
	ErrLoadRoster    = errors.New("No se pudieron cargar los miembros")
	ErrArchiveMember = errors.New("No se pudo archivar el miembro")
	ErrRestoreMember = errors.New("No se pudo restaurar el miembro")
	ErrDeleteMember  = errors.New("No se pudo eliminar el miembro")
)

// deleteConflictFallback is shown when the backend answers 409 without a
// message of its own.
const deleteConflictFallback = "No se puede eliminar: el miembro tiene referencias activas"

// PersonName is the embedded name projection of a member.
type PersonName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Member is the reduced member projection used by rosters and selection
// widgets.
type Member struct {
	ID               string     `json:"id"`
	Person           PersonName `json:"person"`
	MembershipStatus string     `json:"membershipStatus,omitempty"`
}

type RosterState struct {
	Members []Member
	Meta    api.PageMeta
	Loading bool
	Err     string
}

// RosterStore fetches GET /members on construction and on status-filter
// changes. Archive, Restore and Delete reload the roster after their write.
type RosterStore struct {
	client *api.Client
	logger *slog.Logger

	mu      sync.Mutex
	track   resource.Tracker
	signal  resource.Signal
	status  string
	members []Member
	meta    api.PageMeta
	closed  bool
}

func NewRosterStore(client *api.Client, logger *slog.Logger, status string) *RosterStore {
	s := &RosterStore{
		client: client,
		logger: logger,
		signal: resource.NewSignal(),
	}
	s.mu.Lock()
	s.status = status
	s.fetchLocked()
	s.mu.Unlock()
	return s
}

// SetStatus changes the status filter and refetches.
func (s *RosterStore) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || status == s.status {
		return
	}
	s.status = status
	s.fetchLocked()
}

func (s *RosterStore) Refetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.fetchLocked()
}

func (s *RosterStore) fetchLocked() {
	gen := s.track.Begin()
	status := s.status
	s.signal.Notify()

	go func() {
		page, err := s.fetchPage(context.Background(), status)
		s.applyFetch(gen, page, err)
	}()
}

func (s *RosterStore) fetchPage(ctx context.Context, status string) (api.Page[Member], error) {
	q := url.Values{}
	api.SetNonEmpty(q, "status", status)

	var raw json.RawMessage
	if err := s.client.Get(ctx, "/members", q, &raw); err != nil {
		return api.Page[Member]{}, err
	}
	return api.DecodePage[Member](raw)
}

func (s *RosterStore) applyFetch(gen uint64, page api.Page[Member], err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		s.logger.Error("failed to load members", "error", err)
		if s.track.Finish(gen, ErrLoadRoster.Error()) {
			s.signal.Notify()
		}
		return
	}
	if !s.track.Finish(gen, "") {
		return
	}
	s.members = page.Data
	s.meta = page.Meta
	s.signal.Notify()
}

func (s *RosterStore) refetchWait(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	gen := s.track.Begin()
	status := s.status
	s.mu.Unlock()

	page, err := s.fetchPage(ctx, status)
	s.applyFetch(gen, page, err)
}

// Archive moves a member to ARCHIVED and reloads the roster.
func (s *RosterStore) Archive(ctx context.Context, id string) error {
	return s.setMemberStatus(ctx, id, StatusArchived, ErrArchiveMember)
}

// Restore moves a member back to ACTIVE and reloads the roster.
func (s *RosterStore) Restore(ctx context.Context, id string) error {
	return s.setMemberStatus(ctx, id, StatusActive, ErrRestoreMember)
}

func (s *RosterStore) setMemberStatus(ctx context.Context, id, status string, failure error) error {
	body := map[string]string{"status": status}
	if err := s.client.Patch(ctx, "/members/"+id, body, nil); err != nil {
		s.logger.Error("failed to change member status", "id", id, "status", status, "error", err)
		return failure
	}
	s.refetchWait(ctx)
	return nil
}

// Delete removes a member and reloads the roster. A 409 means the member is
// still referenced; that is an expected conflict, surfaced with the server's
// message (or a fallback) and not logged as an error.
func (s *RosterStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/members/"+id); err != nil {
		if api.IsStatus(err, 409) {
			msg := api.StatusMessage(err)
			if msg == "" {
				msg = deleteConflictFallback
			}
			return errors.New(msg)
		}
		s.logger.Error("failed to delete member", "id", id, "error", err)
		return ErrDeleteMember
	}
	s.refetchWait(ctx)
	return nil
}

func (s *RosterStore) State() RosterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RosterState{
		Members: s.members,
		Meta:    s.meta,
		Loading: s.track.Loading(),
		Err:     s.track.Err(),
	}
}

func (s *RosterStore) Changes() <-chan struct{} {
	return s.signal.Wait()
}

func (s *RosterStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

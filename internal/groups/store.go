// Package groups binds the small-group detail endpoint plus the
// enroll/disenroll mutations on its membership.
package groups

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/pastoreohq/go-pastoreo/internal/api"
	"github.com/pastoreohq/go-pastoreo/internal/members"
	"github.com/pastoreohq/go-pastoreo/internal/resource"
)

var (
	ErrLoadGroup = errors.New("No se pudo cargar el grupo")
	ErrEnroll    = errors.New("No se pudo inscribir al miembro en el grupo")
	ErrDisenroll = errors.New("No se pudo quitar al miembro del grupo")
)

// GroupMember is one enrollment in a group.
type GroupMember struct {
	ID     string             `json:"id"`
	Person members.PersonName `json:"person"`
	Role   string             `json:"role,omitempty"`
}

// Group is a small group / community with its current membership.
type Group struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Members     []GroupMember `json:"members"`
}

type State struct {
	Group   *Group
	Loading bool
	Err     string
}

// Store fetches GET /groups/:id on construction; Enroll and Disenroll
// reload the group after their write.
type Store struct {
	client  *api.Client
	logger  *slog.Logger
	groupID string

	mu     sync.Mutex
	track  resource.Tracker
	signal resource.Signal
	group  *Group
	closed bool
}

func NewStore(client *api.Client, logger *slog.Logger, groupID string) *Store {
	s := &Store{
		client:  client,
		logger:  logger,
		groupID: groupID,
		signal:  resource.NewSignal(),
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
		var group Group
		err := s.client.Get(context.Background(), "/groups/"+s.groupID, nil, &group)
		s.applyFetch(gen, &group, err)
	}()
}

func (s *Store) applyFetch(gen uint64, group *Group, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		s.logger.Error("failed to load group", "group_id", s.groupID, "error", err)
		if s.track.Finish(gen, ErrLoadGroup.Error()) {
			s.signal.Notify()
		}
		return
	}
	if !s.track.Finish(gen, "") {
		return
	}
	s.group = group
	s.signal.Notify()
}

func (s *Store) refetchWait(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	gen := s.track.Begin()
	s.mu.Unlock()

	var group Group
	err := s.client.Get(ctx, "/groups/"+s.groupID, nil, &group)
	s.applyFetch(gen, &group, err)
}

// Enroll adds a member to the group and reloads it.
func (s *Store) Enroll(ctx context.Context, memberID string) error {
	if err := s.client.Post(ctx, "/groups/"+s.groupID+"/members/"+memberID, nil, nil); err != nil {
		s.logger.Error("failed to enroll member", "group_id", s.groupID, "member_id", memberID, "error", err)
		return ErrEnroll
	}
	s.refetchWait(ctx)
	return nil
}

// Disenroll removes a member from the group and reloads it.
func (s *Store) Disenroll(ctx context.Context, memberID string) error {
	if err := s.client.Delete(ctx, "/groups/"+s.groupID+"/members/"+memberID); err != nil {
		s.logger.Error("failed to disenroll member", "group_id", s.groupID, "member_id", memberID, "error", err)
		return ErrDisenroll
	}
	s.refetchWait(ctx)
	return nil
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Group:   s.group,
		Loading: s.track.Loading(),
		Err:     s.track.Err(),
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

package followups

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/pastoreohq/go-pastoreo/internal/api"
	"github.com/pastoreohq/go-pastoreo/internal/resource"
)

var (
	ErrLoadNotes  = errors.New("No se pudieron cargar las notas")
	ErrSaveNote   = errors.New("No se pudo guardar la nota")
	ErrDeleteNote = errors.New("No se pudo eliminar la nota")
	ErrEmptyNote  = errors.New("La nota no puede estar vacía")
)

type NotesState struct {
	Notes   []Note
	Loading bool
	Err     string
}

// NotesStore binds one person's notes thread. Every mutation performs its
// HTTP call and then reloads the whole list, so the visible state always
// reflects a server round trip rather than an optimistic patch.
type NotesStore struct {
	client   *api.Client
	logger   *slog.Logger
	personID string

	mu     sync.Mutex
	track  resource.Tracker
	signal resource.Signal
	notes  []Note
	closed bool
}

func NewNotesStore(client *api.Client, logger *slog.Logger, personID string) *NotesStore {
	s := &NotesStore{
		client:   client,
		logger:   logger,
		personID: personID,
		signal:   resource.NewSignal(),
	}
	s.mu.Lock()
	s.fetchLocked()
	s.mu.Unlock()
	return s
}

func (s *NotesStore) Refetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.fetchLocked()
}

func (s *NotesStore) fetchLocked() {
	gen := s.track.Begin()
	s.signal.Notify()

	go func() {
		notes, err := s.fetchNotes(context.Background())
		s.applyFetch(gen, notes, err)
	}()
}

func (s *NotesStore) fetchNotes(ctx context.Context) ([]Note, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/follow-ups/"+s.personID+"/notes", nil, &raw); err != nil {
		return nil, err
	}
	page, err := api.DecodePage[Note](raw)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (s *NotesStore) applyFetch(gen uint64, notes []Note, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		s.logger.Error("failed to load notes", "person_id", s.personID, "error", err)
		if s.track.Finish(gen, ErrLoadNotes.Error()) {
			s.signal.Notify()
		}
		return
	}
	if !s.track.Finish(gen, "") {
		return
	}
	s.notes = notes
	s.signal.Notify()
}

// refetchWait reloads inline so callers observe the mutation's effect as
// soon as it returns.
func (s *NotesStore) refetchWait(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	gen := s.track.Begin()
	s.mu.Unlock()

	notes, err := s.fetchNotes(ctx)
	s.applyFetch(gen, notes, err)
}

// Add creates a note and reloads the thread.
func (s *NotesStore) Add(ctx context.Context, input NoteInput) error {
	if input.Text == "" {
		return ErrEmptyNote
	}
	if err := s.client.Post(ctx, "/follow-ups/"+s.personID+"/notes", input, nil); err != nil {
		s.logger.Error("failed to create note", "person_id", s.personID, "error", err)
		return ErrSaveNote
	}
	s.refetchWait(ctx)
	return nil
}

// Update rewrites a note and reloads the thread.
func (s *NotesStore) Update(ctx context.Context, noteID string, input NoteInput) error {
	if input.Text == "" {
		return ErrEmptyNote
	}
	if err := s.client.Patch(ctx, "/follow-ups/"+s.personID+"/notes/"+noteID, input, nil); err != nil {
		s.logger.Error("failed to update note", "note_id", noteID, "error", err)
		return ErrSaveNote
	}
	s.refetchWait(ctx)
	return nil
}

// Delete removes a note and reloads the thread.
func (s *NotesStore) Delete(ctx context.Context, noteID string) error {
	if err := s.client.Delete(ctx, "/follow-ups/"+s.personID+"/notes/"+noteID); err != nil {
		s.logger.Error("failed to delete note", "note_id", noteID, "error", err)
		return ErrDeleteNote
	}
	s.refetchWait(ctx)
	return nil
}

func (s *NotesStore) State() NotesState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NotesState{
		Notes:   s.notes,
		Loading: s.track.Loading(),
		Err:     s.track.Err(),
	}
}

func (s *NotesStore) Changes() <-chan struct{} {
	return s.signal.Wait()
}

func (s *NotesStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

package followups_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pastoreohq/go-pastoreo/internal/followups"
)

func TestNotesThread(t *testing.T) {
	srv, client := newBackend(t)
	person := srv.SeedFollowUp(followups.Person{FirstName: "María", LastName: "García", Status: followups.StatusVisitor})
	seeded := srv.SeedNote(person.ID, followups.Note{Type: followups.NoteInternal, Text: "Primera visita"})

	store := followups.NewNotesStore(client, discardLogger(), person.ID)
	defer store.Close()

	waitSettled(t, func() bool {
		s := store.State()
		return !s.Loading && len(s.Notes) == 1
	})

	t.Run("add reflects in the thread on return", func(t *testing.T) {
		err := store.Add(context.Background(), followups.NoteInput{
			Type: followups.NotePastoral,
			Text: "Pidió oración por su familia",
		})
		require.NoError(t, err)

		state := store.State()
		require.Len(t, state.Notes, 2)
		assert.Equal(t, followups.NotePastoral, state.Notes[1].Type)
	})

	t.Run("update rewrites the note", func(t *testing.T) {
		err := store.Update(context.Background(), seeded.ID, followups.NoteInput{Text: "Primera visita, volvió el domingo"})
		require.NoError(t, err)

		assert.Equal(t, "Primera visita, volvió el domingo", store.State().Notes[0].Text)
	})

	t.Run("delete is visible immediately after return", func(t *testing.T) {
		err := store.Delete(context.Background(), seeded.ID)
		require.NoError(t, err)

		state := store.State()
		require.Len(t, state.Notes, 1)
		for _, n := range state.Notes {
			assert.NotEqual(t, seeded.ID, n.ID)
		}
	})
}

func TestNotesValidation(t *testing.T) {
	srv, client := newBackend(t)
	person := srv.SeedFollowUp(followups.Person{FirstName: "María", LastName: "García", Status: followups.StatusVisitor})

	store := followups.NewNotesStore(client, discardLogger(), person.ID)
	defer store.Close()
	waitSettled(t, func() bool { return !store.State().Loading })

	assert.ErrorIs(t, store.Add(context.Background(), followups.NoteInput{}), followups.ErrEmptyNote)
	assert.ErrorIs(t, store.Update(context.Background(), "n1", followups.NoteInput{}), followups.ErrEmptyNote)
}

func TestNotesMutationFailures(t *testing.T) {
	srv, client := newBackend(t)
	person := srv.SeedFollowUp(followups.Person{FirstName: "María", LastName: "García", Status: followups.StatusVisitor})

	store := followups.NewNotesStore(client, discardLogger(), person.ID)
	defer store.Close()
	waitSettled(t, func() bool { return !store.State().Loading })

	err := store.Update(context.Background(), "missing", followups.NoteInput{Text: "x"})
	assert.ErrorIs(t, err, followups.ErrSaveNote)

	err = store.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, followups.ErrDeleteNote)
}

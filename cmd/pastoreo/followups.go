package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pastoreohq/go-pastoreo/internal/followups"
)

func newFollowupsCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "followups",
		Short: "Visitor and prospect follow-up pipeline",
	}
	cmd.AddCommand(
		newFollowupsListCmd(a),
		newFollowupsShowCmd(a),
		newFollowupsCreateCmd(a),
		newFollowupsUpdateCmd(a),
		newNotesCmd(a),
	)
	return cmd
}

func newFollowupsListCmd(a **app) *cobra.Command {
	var status, search string
	var assigned bool
	var page, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List follow-up people",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := followups.NewListStore((*a).client, (*a).logger, followups.Filters{
				Status:       followups.Status(status),
				Search:       search,
				AssignedToMe: assigned,
				Page:         page,
				Limit:        limit,
			})
			defer store.Close()

			if err := waitSettled(func() bool { return store.State().Loading }, store.Changes()); err != nil {
				return err
			}

			state := store.State()
			if state.Err != "" {
				return fmt.Errorf("%s", state.Err)
			}
			for _, p := range state.People {
				fmt.Printf("%s\t%s %s\t%s\n", p.ID, p.FirstName, p.LastName, p.Status)
			}
			fmt.Printf("Página %d de %d (%d en total)\n", state.Meta.Page, state.Meta.TotalPages, state.Meta.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (VISITOR, PROSPECT, MEMBER, ARCHIVED)")
	cmd.Flags().StringVar(&search, "search", "", "name search")
	cmd.Flags().BoolVar(&assigned, "assigned", false, "only follow-ups assigned to me")
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size")

	return cmd
}

func newFollowupsShowCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one follow-up person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := followups.NewDetailStore((*a).client, (*a).logger, args[0])
			defer store.Close()

			if err := waitSettled(func() bool { return store.State().Loading }, store.Changes()); err != nil {
				return err
			}

			state := store.State()
			if state.Err != "" {
				return fmt.Errorf("%s", state.Err)
			}
			d := state.Detail
			fmt.Printf("%s %s (%s)\n", d.FirstName, d.LastName, d.Status)
			if d.Email != "" {
				fmt.Printf("Email: %s\n", d.Email)
			}
			if d.Phone != "" {
				fmt.Printf("Teléfono: %s\n", d.Phone)
			}
			fmt.Printf("Creado: %s\n", d.CreatedAt.Format("2006-01-02"))
			if d.ArchivedAt != nil {
				fmt.Printf("Archivado: %s\n", d.ArchivedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func personInputFlags(cmd *cobra.Command, input *followups.PersonInput) {
	cmd.Flags().StringVar(&input.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&input.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&input.Email, "email", "", "email")
	cmd.Flags().StringVar(&input.Phone, "phone", "", "phone")
	cmd.Flags().StringVar((*string)(&input.Status), "status", "", "VISITOR or PROSPECT")
	cmd.Flags().StringVar(&input.AssignedMemberID, "assigned-to", "", "assigned member id")
}

func newFollowupsCreateCmd(a **app) *cobra.Command {
	var input followups.PersonInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new follow-up person",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := followups.NewListStore((*a).client, (*a).logger, followups.Filters{})
			defer store.Close()

			if err := store.Create(cmd.Context(), input); err != nil {
				return err
			}
			fmt.Println("Seguimiento creado")
			return nil
		},
	}
	personInputFlags(cmd, &input)
	return cmd
}

func newFollowupsUpdateCmd(a **app) *cobra.Command {
	var input followups.PersonInput

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a follow-up person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := followups.NewListStore((*a).client, (*a).logger, followups.Filters{})
			defer store.Close()

			if err := store.Update(cmd.Context(), args[0], input); err != nil {
				return err
			}
			fmt.Println("Seguimiento actualizado")
			return nil
		},
	}
	personInputFlags(cmd, &input)
	return cmd
}

func newNotesCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Follow-up notes",
	}

	list := &cobra.Command{
		Use:   "list <person-id>",
		Short: "List a person's notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := followups.NewNotesStore((*a).client, (*a).logger, args[0])
			defer store.Close()

			if err := waitSettled(func() bool { return store.State().Loading }, store.Changes()); err != nil {
				return err
			}
			state := store.State()
			if state.Err != "" {
				return fmt.Errorf("%s", state.Err)
			}
			for _, n := range state.Notes {
				fmt.Printf("%s\t[%s]\t%s\n", n.ID, n.Type, n.Text)
			}
			return nil
		},
	}

	var noteType, text string
	add := &cobra.Command{
		Use:   "add <person-id>",
		Short: "Add a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := followups.NewNotesStore((*a).client, (*a).logger, args[0])
			defer store.Close()

			err := store.Add(cmd.Context(), followups.NoteInput{
				Type: followups.NoteType(noteType),
				Text: text,
			})
			if err != nil {
				return err
			}
			fmt.Println("Nota agregada")
			return nil
		},
	}
	add.Flags().StringVar(&noteType, "type", "INTERNAL", "INTERNAL, SHARED or PASTORAL")
	add.Flags().StringVar(&text, "text", "", "note text")

	rm := &cobra.Command{
		Use:   "rm <person-id> <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := followups.NewNotesStore((*a).client, (*a).logger, args[0])
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Println("Nota eliminada")
			return nil
		},
	}

	cmd.AddCommand(list, add, rm)
	return cmd
}

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pastoreohq/go-pastoreo/internal/members"
)

func newMembersCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Member roster",
	}
	cmd.AddCommand(
		newMembersListCmd(a),
		newMembersSearchCmd(a),
		newMemberStatusCmd(a, "archive", "Archive a member"),
		newMemberStatusCmd(a, "restore", "Restore an archived member"),
		newMembersRmCmd(a),
	)
	return cmd
}

func newMembersListCmd(a **app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List members",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := members.NewRosterStore((*a).client, (*a).logger, status)
			defer store.Close()

			if err := waitSettled(func() bool { return store.State().Loading }, store.Changes()); err != nil {
				return err
			}
			state := store.State()
			if state.Err != "" {
				return fmt.Errorf("%s", state.Err)
			}
			for _, m := range state.Members {
				fmt.Printf("%s\t%s %s\t%s\n", m.ID, m.Person.FirstName, m.Person.LastName, m.MembershipStatus)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by membership status")
	return cmd
}

func newMembersSearchCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search members by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// A one-shot CLI search has nothing to debounce.
			store := members.NewSearchStore((*a).client, (*a).logger,
				members.WithDebounceWindow(time.Millisecond))
			defer store.Close()

			store.SetQuery(args[0])

			// First change marks the scheduled fetch starting (or the
			// short-query clear); then wait for it to settle.
			select {
			case <-store.Changes():
			case <-time.After(5 * time.Second):
				return errors.New("timed out waiting for the backend")
			}
			if err := waitSettled(func() bool { return store.State().Loading }, store.Changes()); err != nil {
				return err
			}

			state := store.State()
			if state.Err != "" {
				return fmt.Errorf("%s", state.Err)
			}
			if len(state.Results) == 0 {
				fmt.Println("Sin resultados")
				return nil
			}
			for _, m := range state.Results {
				fmt.Printf("%s\t%s %s\n", m.ID, m.Person.FirstName, m.Person.LastName)
			}
			return nil
		},
	}
}

func newMemberStatusCmd(a **app, verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := members.NewRosterStore((*a).client, (*a).logger, "")
			defer store.Close()

			var err error
			if verb == "archive" {
				err = store.Archive(cmd.Context(), args[0])
			} else {
				err = store.Restore(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			fmt.Println("Listo")
			return nil
		},
	}
}

func newMembersRmCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := members.NewRosterStore((*a).client, (*a).logger, "")
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Miembro eliminado")
			return nil
		},
	}
}

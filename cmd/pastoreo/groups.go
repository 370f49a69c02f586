package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pastoreohq/go-pastoreo/internal/groups"
)

func newGroupsCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Small groups and communities",
	}
	cmd.AddCommand(
		newGroupsShowCmd(a),
		newGroupsEnrollCmd(a, "enroll", "Enroll a member in a group"),
		newGroupsEnrollCmd(a, "disenroll", "Remove a member from a group"),
	)
	return cmd
}

func newGroupsShowCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <group-id>",
		Short: "Show a group and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := groups.NewStore((*a).client, (*a).logger, args[0])
			defer store.Close()

			if err := waitSettled(func() bool { return store.State().Loading }, store.Changes()); err != nil {
				return err
			}
			state := store.State()
			if state.Err != "" {
				return fmt.Errorf("%s", state.Err)
			}
			g := state.Group
			fmt.Printf("%s\n", g.Name)
			if g.Description != "" {
				fmt.Println(g.Description)
			}
			for _, m := range g.Members {
				fmt.Printf("  %s\t%s %s\n", m.ID, m.Person.FirstName, m.Person.LastName)
			}
			return nil
		},
	}
}

func newGroupsEnrollCmd(a **app, verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <group-id> <member-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := groups.NewStore((*a).client, (*a).logger, args[0])
			defer store.Close()

			var err error
			if verb == "enroll" {
				err = store.Enroll(cmd.Context(), args[1])
			} else {
				err = store.Disenroll(cmd.Context(), args[1])
			}
			if err != nil {
				return err
			}
			fmt.Println("Listo")
			return nil
		},
	}
}

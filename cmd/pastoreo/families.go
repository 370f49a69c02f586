package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pastoreohq/go-pastoreo/internal/families"
)

func newFamiliesCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "families",
		Short: "Family groupings",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List families",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := families.NewStore((*a).client, (*a).logger)
			defer store.Close()

			if err := waitSettled(func() bool { return store.State().Loading }, store.Changes()); err != nil {
				return err
			}
			state := store.State()
			if state.Err != "" {
				return fmt.Errorf("%s", state.Err)
			}
			for _, f := range state.Families {
				fmt.Printf("%s\t%s\t%d miembros\n", f.ID, f.Name, f.MemberCount)
			}
			return nil
		},
	}

	cmd.AddCommand(list)
	return cmd
}

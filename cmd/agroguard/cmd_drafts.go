package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

func newDraftsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Manage saved registration drafts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved drafts, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.database(cmd.Context())
			if err != nil {
				return err
			}
			drafts, err := store.ListDrafts(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer(cmd.OutOrStdout()).print(drafts, func(w io.Writer) {
				row(w, "ID", "NAME", "PHONE", "DISTRICT", "CROP", "UPDATED", "LAST ERROR")
				for _, d := range drafts {
					row(w, d.ID, d.Input.Name, d.Input.Phone, d.Input.District, d.Input.Crop,
						d.UpdatedAt.Local().Format(time.DateTime), d.LastError)
				}
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.database(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.DeleteDraft(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete draft %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Draft %q deleted.\n", args[0])
			return nil
		},
	})
	return cmd
}

package main

import (
	"github.com/Veraticus/the-books-must-balance/internal/tui"
	"github.com/spf13/cobra"
)

func editCmd() *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "edit <view>",
		Short: "Edit a view in the interactive grid",
		Long: `Open a view in the interactive grid editor. Every change is saved as it is
made. Press ? in the editor for the key bindings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			view, g, err := openView(ctx, store, args[0])
			if err != nil {
				return err
			}
			if err := filters.apply(g); err != nil {
				return err
			}

			saver := watch(ctx, store, view.ID, g)
			if err := tui.Run(ctx, g,
				tui.WithTitle(view.Title),
				tui.WithExporter(exportDisplayed(view)),
			); err != nil {
				return err
			}
			return saver.err
		},
	}

	addFilterFlags(cmd, &filters)
	return cmd
}

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/export"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/spf13/cobra"
)

func viewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the accounting views",
		Long:  `Display every accounting view with its row count and export file name.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("Vues"))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("ID"),
				cli.BoldStyle.Render("Titre"),
				cli.BoldStyle.Render("Lignes"),
				cli.BoldStyle.Render("Fichier"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 13), strings.Repeat("-", 18), strings.Repeat("-", 6), strings.Repeat("-", 28))

			now := time.Now()
			for _, view := range ledger.All() {
				count, err := store.CountRows(ctx, view.ID)
				if err != nil {
					return fmt.Errorf("failed to count %s rows: %w", view.ID, err)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					view.ID, view.Title, count, export.FileName(view.Naming, export.FormatCSV, now))
			}
			return w.Flush()
		},
	}
}

func showCmd() *cobra.Command {
	var (
		filters filterFlags
		opts    cli.GridOptions
	)

	cmd := &cobra.Command{
		Use:   "show <view>",
		Short: "Print a view as a table",
		Long: `Print the rows of a view with a totals line. Filters narrow the rows and
the totals; --sort only changes the display order. Rows are numbered by
display position, which add/set/delete accept as row references. A "!"
after the position marks rows with empty required fields.`,
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

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle(view.Title))
			if g.Store().Len() == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render(fmt.Sprintf("Aucune ligne. Utilisez 'books add %s cle=valeur...' ou 'books edit %s'.", view.ID, view.ID)))
				return nil
			}
			fmt.Fprintln(out, cli.RenderGrid(g, opts))
			fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%d ligne(s) sur %d", len(g.Filtered()), g.Store().Len())))
			return nil
		},
	}

	addFilterFlags(cmd, &filters)
	cmd.Flags().StringSliceVar(&opts.Keys, "columns", nil, "column keys to print (default: all)")
	cmd.Flags().BoolVar(&opts.ShowIDs, "ids", false, "print row IDs")
	cmd.Flags().BoolVar(&opts.NoFooter, "no-totals", false, "hide the totals line")

	return cmd
}

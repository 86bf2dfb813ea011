package main

import (
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <view> [key=value...]",
		Short: "Append a row to a view",
		Long: `Append a row to a view. Unset columns get their defaults and calculated
columns are derived. Values are coerced like grid edits: numbers accept a
decimal comma and fall back to 0, dates are normalized when parseable.`,
		Example: `  books add receipts date=2024-03-01 patient="Martin Dupont" amount=25
  books add expenses supplier=Pharmacie amountHT=120 vatRate=5,5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			assignments, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			view, g, err := openView(ctx, store, args[0])
			if err != nil {
				return err
			}
			for _, kv := range assignments {
				if err := editable(g, kv[0]); err != nil {
					return err
				}
			}

			saver := watch(ctx, store, view.ID, g)
			row := g.AddRow()
			for _, kv := range assignments {
				if row, err = g.Edit(row.ID, kv[0], kv[1]); err != nil {
					return err
				}
			}
			if saver.err != nil {
				return saver.err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Ligne %s ajoutée à %s", cli.ShortID(row.ID), view.Title)))
			warnUnsatisfied(cmd, g, row)
			return nil
		},
	}
}

func setCmd() *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "set <view> <row> <key> <value>",
		Short: "Edit one cell",
		Long: `Edit one cell and recalculate the row. <row> is either the position printed
by 'books show' under the same filter and sort flags, or a prefix of the
row ID.`,
		Args: cobra.ExactArgs(4),
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
			if err := editable(g, args[2]); err != nil {
				return err
			}
			row, _, err := resolveRow(g, args[1])
			if err != nil {
				return err
			}

			saver := watch(ctx, store, view.ID, g)
			row, err = g.Edit(row.ID, args[2], args[3])
			if err != nil {
				return err
			}
			if saver.err != nil {
				return saver.err
			}

			col, _ := g.Columns().Column(args[2])
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s = %s", col.Label, g.Display(row, col.Key))))
			warnUnsatisfied(cmd, g, row)
			return nil
		},
	}

	addFilterFlags(cmd, &filters)
	return cmd
}

func deleteCmd() *cobra.Command {
	var (
		filters filterFlags
		yes     bool
	)

	cmd := &cobra.Command{
		Use:   "delete <view> <row>",
		Short: "Delete a row",
		Long: `Delete a row. <row> is either the position printed by 'books show' under
the same filter and sort flags, or a prefix of the row ID.`,
		Args: cobra.ExactArgs(2),
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
			row, index, err := resolveRow(g, args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes {
				question := fmt.Sprintf("Supprimer la ligne %d (%s) de %s ?", index+1, cli.ShortID(row.ID), view.Title)
				ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out, question)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("Suppression annulée"))
					return nil
				}
			}

			saver := watch(ctx, store, view.ID, g)
			if _, err := g.DeleteVisible(index); err != nil {
				return err
			}
			if saver.err != nil {
				return saver.err
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Ligne %s supprimée", cli.ShortID(row.ID))))
			return nil
		},
	}

	addFilterFlags(cmd, &filters)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

// editable checks key before any mutation so a bad key never leaves a half
// written row behind.
func editable(g *grid.Grid, key string) error {
	col, ok := g.Columns().Column(key)
	if !ok {
		return common.NewUserError(fmt.Sprintf("Colonne %q inconnue, colonnes : %v", key, g.Columns().Keys()), grid.ErrUnknownColumn)
	}
	if !col.Editable || col.IsCalculated() {
		return common.NewUserError(fmt.Sprintf("La colonne %s est calculée", col.Label), grid.ErrNotEditable)
	}
	return nil
}

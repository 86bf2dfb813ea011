package main

import (
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/distribution"
	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/spf13/cobra"
)

func distributionCmd() *cobra.Command {
	var (
		filters filterFlags
		by      string
	)

	cmd := &cobra.Command{
		Use:   "distribution <view>",
		Short: "Show totals per category",
		Long: `Group the filtered rows of a view by a category column and show each
group's total amount, row count and share. Groups appear in order of
first occurrence.`,
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

			groupKey := view.DistributionKey
			if by != "" {
				groupKey = by
			}
			col, ok := g.Columns().Column(groupKey)
			if !ok {
				return common.NewUserError(fmt.Sprintf("Colonne %q inconnue", groupKey), grid.ErrUnknownColumn)
			}
			amount, _ := g.Columns().Column(view.AmountKey)

			buckets := distribution.Aggregate(g.Filtered(), groupKey, view.AmountKey, distribution.DefaultPalette)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%s · %s par %s", view.Title, amount.Label, col.Label)))
			if len(buckets) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("Aucune ligne"))
				return nil
			}
			fmt.Fprintln(out, cli.RenderDistribution(buckets))
			return nil
		},
	}

	addFilterFlags(cmd, &filters)
	cmd.Flags().StringVar(&by, "by", "", "column key to group by (default: the view's category)")
	return cmd
}

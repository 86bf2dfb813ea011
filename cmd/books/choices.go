package main

import (
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/spf13/cobra"
)

func choicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "choices <view> <column> [add <value> | rename <from> <to> | remove <value>]",
		Short: "List or amend the values of a choice column",
		Long: `Without an action, list the allowed values of a choice column. Amended
lists are stored per view. Renaming a value rewrites the rows that hold it;
removing one leaves existing rows untouched.`,
		Example: `  books choices receipts act
  books choices receipts act add Téléconsultation
  books choices expenses category rename Logiciel "Logiciels et abonnements"`,
		Args: cobra.RangeArgs(2, 5),
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
			key := args[1]
			col, ok := g.Columns().Column(key)
			if !ok {
				return common.NewUserError(fmt.Sprintf("Colonne %q inconnue", key), grid.ErrUnknownColumn)
			}
			if col.Kind != grid.KindChoice {
				return common.NewUserError(fmt.Sprintf("%s n'est pas une liste de choix", col.Label), grid.ErrNotChoiceColumn)
			}

			out := cmd.OutOrStdout()
			if len(args) == 2 {
				fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%s · %s", view.Title, col.Label)))
				for i, choice := range col.Choices {
					fmt.Fprintf(out, "%2d. %s\n", i+1, choice)
				}
				return nil
			}

			saver := watch(ctx, store, view.ID, g)
			var message string
			switch action := args[2]; {
			case action == "add" && len(args) == 4:
				err = g.Store().AddChoice(key, args[3])
				message = fmt.Sprintf("%q ajouté à %s", args[3], col.Label)
			case action == "remove" && len(args) == 4:
				err = g.Store().RemoveChoice(key, args[3])
				message = fmt.Sprintf("%q retiré de %s", args[3], col.Label)
			case action == "rename" && len(args) == 5:
				var changed int
				changed, err = g.Store().RenameChoice(key, args[3], args[4])
				message = fmt.Sprintf("%q renommé en %q (%d ligne(s) mise(s) à jour)", args[3], args[4], changed)
			default:
				return common.NewUserError("Action attendue : add <valeur>, rename <ancien> <nouveau> ou remove <valeur>", grid.ErrInvalidInput)
			}
			if err != nil {
				return common.NewUserError(err.Error(), err)
			}
			if saver.err != nil {
				return saver.err
			}

			col, _ = g.Columns().Column(key)
			if err := store.SaveChoices(ctx, view.ID, key, col.Choices); err != nil {
				return fmt.Errorf("failed to save choices: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(message))
			return nil
		},
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/config"
	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
	"github.com/spf13/cobra"
)

// ErrAmbiguousRow is returned when a row reference matches several rows.
var ErrAmbiguousRow = errors.New("ambiguous row reference")

// initStorage opens the configured database and migrates it.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := config.DatabasePath()

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openView loads a view's rows and amended choice lists into a grid.
func openView(ctx context.Context, store service.Storage, name string) (ledger.View, *grid.Grid, error) {
	view, err := ledger.Lookup(name)
	if err != nil {
		return ledger.View{}, nil, common.NewUserError(
			fmt.Sprintf("Vue %q inconnue, vues disponibles : %s", name, strings.Join(ledger.IDs(), ", ")), err)
	}

	cols, err := view.ColumnSet(slog.Default())
	if err != nil {
		return view, nil, err
	}

	choices, err := store.LoadChoices(ctx, view.ID)
	if err != nil {
		return view, nil, fmt.Errorf("failed to load choices: %w", err)
	}
	for key, list := range choices {
		if err := cols.SetChoices(key, list); err != nil {
			slog.Warn("Ignoring stored choices", "view", view.ID, "column", key, "error", err)
		}
	}

	rows, err := store.LoadRows(ctx, view.ID)
	if err != nil {
		return view, nil, fmt.Errorf("failed to load rows: %w", err)
	}

	return view, view.GridFor(cols, rows), nil
}

// autosave persists a view after every store mutation and keeps the first
// failure for the command to report.
type autosave struct {
	ctx     context.Context
	storage service.Storage
	err     error
	view    string
}

func watch(ctx context.Context, store service.Storage, view string, g *grid.Grid) *autosave {
	a := &autosave{ctx: ctx, storage: store, view: view}
	g.Store().OnChange(a.save)
	return a
}

func (a *autosave) save(rows []grid.Row) {
	if err := a.storage.SaveRows(a.ctx, a.view, rows); err != nil {
		common.LogError(err, "Failed to save rows", common.Fields{"view": a.view, "rows": len(rows)})
		if a.err == nil {
			a.err = fmt.Errorf("failed to save %s: %w", a.view, err)
		}
	}
}

// filterFlags are the filter and sort flags shared by the listing commands.
type filterFlags struct {
	where  map[string]string
	search string
	from   string
	to     string
	min    string
	max    string
	sort   string
	desc   bool
}

func addFilterFlags(cmd *cobra.Command, f *filterFlags) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "case-insensitive text search")
	cmd.Flags().StringToStringVarP(&f.where, "where", "w", nil, "categorical filter, e.g. --where method=Carte")
	cmd.Flags().StringVar(&f.from, "from", "", "first date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&f.to, "to", "", "last date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&f.min, "min", "", "minimum amount (inclusive)")
	cmd.Flags().StringVar(&f.max, "max", "", "maximum amount (inclusive)")
	cmd.Flags().StringVar(&f.sort, "sort", "", "column key to sort by")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
}

// apply sets the flags' filter and sort state on g.
func (f filterFlags) apply(g *grid.Grid) error {
	state := grid.FilterState{
		Search:    f.search,
		DateFrom:  f.from,
		DateTo:    f.to,
		AmountMin: f.min,
		AmountMax: f.max,
	}
	for key, value := range f.where {
		if _, ok := g.Columns().Column(key); !ok {
			return common.NewUserError(fmt.Sprintf("Colonne %q inconnue dans --where", key), grid.ErrUnknownColumn)
		}
		state = state.WithCategory(key, value)
	}
	g.SetFilter(state)

	if f.sort == "" {
		return nil
	}
	if err := g.SetSort(grid.SortState{Key: f.sort, Desc: f.desc}); err != nil {
		return common.NewUserError(fmt.Sprintf("Colonne %q inconnue dans --sort", f.sort), err)
	}
	return nil
}

// resolveRow finds a visible row by its 1-based display position or by a
// prefix of its ID, and returns it with its 0-based visible index.
func resolveRow(g *grid.Grid, ref string) (grid.Row, int, error) {
	visible := g.Visible()

	if pos, err := strconv.Atoi(strings.TrimSuffix(ref, cli.MissingMarker)); err == nil {
		if pos < 1 || pos > len(visible) {
			return grid.Row{}, -1, common.NewUserError(
				fmt.Sprintf("La ligne %d n'existe pas (%d ligne(s) affichée(s))", pos, len(visible)), grid.ErrOutOfRange)
		}
		return visible[pos-1], pos - 1, nil
	}

	match := -1
	for i, row := range visible {
		if !strings.HasPrefix(row.ID, ref) {
			continue
		}
		if match >= 0 {
			return grid.Row{}, -1, common.NewUserError(fmt.Sprintf("La référence %q désigne plusieurs lignes", ref), ErrAmbiguousRow)
		}
		match = i
	}
	if match < 0 {
		return grid.Row{}, -1, common.NewUserError(fmt.Sprintf("Aucune ligne ne correspond à %q", ref), grid.ErrRowNotFound)
	}
	return visible[match], match, nil
}

// parseAssignments splits key=value arguments.
func parseAssignments(args []string) ([][2]string, error) {
	out := make([][2]string, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, common.NewUserError(fmt.Sprintf("Attendu cle=valeur, reçu %q", arg), grid.ErrInvalidInput)
		}
		out = append(out, [2]string{strings.TrimSpace(key), value})
	}
	return out, nil
}

func warnUnsatisfied(cmd *cobra.Command, g *grid.Grid, row grid.Row) {
	missing := g.Unsatisfied(row)
	if len(missing) == 0 {
		return
	}
	labels := make([]string, len(missing))
	for i, key := range missing {
		labels[i] = key
		if col, ok := g.Columns().Column(key); ok {
			labels[i] = col.Label
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Champs obligatoires vides : "+strings.Join(labels, ", ")))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/config"
	"github.com/Veraticus/the-books-must-balance/internal/importer"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/ofx"
	"github.com/Veraticus/the-books-must-balance/internal/plaid"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/Veraticus/the-books-must-balance/internal/simplefin"
	"github.com/spf13/cobra"
)

// Bank feeds accepted by import-bank.
const (
	feedPlaid     = "plaid"
	feedSimpleFIN = "simplefin"
)

// newBankSource builds the client of a bank feed. Tests swap it for a mock.
var newBankSource = func(ctx context.Context, feed string) (service.BankSource, error) {
	if feed == feedSimpleFIN {
		client, err := simplefin.NewClient(ctx, config.SimpleFINToken(), config.SimpleFINStateFile())
		if err != nil {
			if errors.Is(err, simplefin.ErrMissingToken) {
				return nil, common.NewUserError("Renseignez simplefin.token ou SIMPLEFIN_TOKEN", common.ErrMissingConfig)
			}
			return nil, err
		}
		return client, nil
	}

	cfg, err := config.LoadPlaidConfig()
	if err != nil {
		return nil, err
	}
	client, err := plaid.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func importCmd() *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "import <view> <file>",
		Short: "Append rows from a CSV or XLSX file",
		Long: `Append rows from a CSV or XLSX file. The first line must hold column labels
or keys (case-insensitive); unknown headers are ignored, calculated columns
are always derived and a trailing "Total" line is skipped. This reads back
the files written by 'books export'.`,
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

			var records [][]string
			if sheet != "" {
				f, openErr := os.Open(args[1])
				if openErr != nil {
					return fmt.Errorf("failed to open %s: %w", args[1], openErr)
				}
				records, err = importer.ReadXLSX(f, sheet)
				_ = f.Close()
			} else {
				records, err = importer.ReadFile(args[1])
			}
			if err != nil {
				return err
			}

			values, err := importer.MapRecords(g.Columns(), records)
			if err != nil {
				switch {
				case errors.Is(err, common.ErrNoRows):
					return common.NewUserError("Le fichier ne contient aucune ligne", err)
				case errors.Is(err, common.ErrUnknownHeaders):
					return common.NewUserError(fmt.Sprintf("Aucun en-tête ne correspond aux colonnes de %s", view.Title), err)
				}
				return err
			}

			bar := cli.NewProgress(cmd.ErrOrStderr(), len(values), "Import")
			added := importer.InsertAll(g.Store(), values, bar)
			_ = bar.Finish()

			if err := store.SaveRows(ctx, view.ID, g.Store().Rows()); err != nil {
				return fmt.Errorf("failed to save %s: %w", view.ID, err)
			}

			slog.Info("Imported rows", "view", view.ID, "file", args[1], "rows", added)
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%d ligne(s) importée(s) dans %s", added, view.Title)))
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX sheet to read (default: the first one)")
	return cmd
}

func importBankCmd() *cobra.Command {
	var (
		ofxFile      string
		usePlaid     bool
		useSimpleFIN bool
		from         string
		to           string
	)

	cmd := &cobra.Command{
		Use:   "import-bank <receipts|expenses>",
		Short: "Book bank statement lines",
		Long: `Book bank lines from an OFX/QFX statement, Plaid or a SimpleFIN bridge.
Credits go to receipts and debits to expenses; lines flowing the other way
are skipped.
Debits are booked as fully paid expenses with a 0% VAT rate, to be
completed by hand. Lines already imported are recognized and skipped.`,
		Example: `  books import-bank receipts --ofx releve-mars.ofx
  books import-bank expenses --plaid --from 2024-03-01 --to 2024-03-31
  books import-bank receipts --simplefin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := 0
			for _, set := range []bool{ofxFile != "", usePlaid, useSimpleFIN} {
				if set {
					sources++
				}
			}
			if sources != 1 {
				return common.NewUserError("Indiquez une seule source : --ofx <fichier>, --plaid ou --simplefin", common.ErrMissingConfig)
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Les lignes déjà importées sont enregistrées.")
			ctx, stop := handler.HandleInterrupts(cmd.Context())
			defer stop()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			view, g, err := openView(ctx, store, args[0])
			if err != nil {
				return err
			}

			var lines []model.BankLine
			switch {
			case usePlaid:
				lines, err = fetchFeed(ctx, feedPlaid, from, to)
			case useSimpleFIN:
				lines, err = fetchFeed(ctx, feedSimpleFIN, from, to)
			default:
				lines, err = readOFX(ctx, ofxFile)
			}
			if err != nil {
				return err
			}

			saver := watch(ctx, store, view.ID, g)
			bar := cli.NewProgress(cmd.ErrOrStderr(), len(lines), "Lignes bancaires")
			result, err := importer.NewBankImporter(store, slog.Default()).Import(ctx, view, g.Store(), lines, bar)
			_ = bar.Finish()
			if err != nil {
				if errors.Is(err, importer.ErrNoBankMapping) {
					return common.NewUserError("Seules les vues receipts et expenses reçoivent des lignes bancaires", err)
				}
				if handler.WasInterrupted() {
					return common.NewUserError(fmt.Sprintf("Import interrompu après %d ligne(s)", result.Added), err)
				}
				return err
			}
			if saver.err != nil {
				return saver.err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
				"%s : %d ligne(s) ajoutée(s), %d doublon(s), %d ignorée(s)",
				view.Title, result.Added, result.Duplicates, result.Skipped)))
			return nil
		},
	}

	cmd.Flags().StringVar(&ofxFile, "ofx", "", "OFX/QFX statement file")
	cmd.Flags().BoolVar(&usePlaid, "plaid", false, "fetch lines from Plaid")
	cmd.Flags().BoolVar(&useSimpleFIN, "simplefin", false, "fetch lines from a SimpleFIN bridge")
	cmd.Flags().StringVar(&from, "from", "", "first day to fetch from a feed (default: 30 days ago)")
	cmd.Flags().StringVar(&to, "to", "", "last day to fetch from a feed (default: today)")

	return cmd
}

func readOFX(ctx context.Context, path string) ([]model.BankLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	lines, err := ofx.NewParser().ParseFile(ctx, f)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Relevé OFX illisible : %s", path), err)
	}
	return lines, nil
}

func fetchFeed(ctx context.Context, feed, from, to string) ([]model.BankLine, error) {
	end := now()
	start := end.AddDate(0, 0, -30)

	var err error
	if from != "" {
		if start, err = time.Parse(time.DateOnly, from); err != nil {
			return nil, common.NewUserError(fmt.Sprintf("Date --from invalide : %q", from), err)
		}
	}
	if to != "" {
		if end, err = time.Parse(time.DateOnly, to); err != nil {
			return nil, common.NewUserError(fmt.Sprintf("Date --to invalide : %q", to), err)
		}
	}
	if end.Before(start) {
		return nil, common.NewUserError("--to précède --from", common.ErrInvalidConfig)
	}

	source, err := newBankSource(ctx, feed)
	if err != nil {
		return nil, err
	}
	return source.GetBankLines(ctx, start, end)
}

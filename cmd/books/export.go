package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/config"
	"github.com/Veraticus/the-books-must-balance/internal/export"
	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/Veraticus/the-books-must-balance/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newReportWriter builds the Google Sheets writer. Tests swap it for a mock.
var newReportWriter = func(ctx context.Context) (service.ReportWriter, error) {
	cfg, err := config.LoadSheetsConfig()
	if err != nil {
		return nil, err
	}
	writer, err := sheets.NewWriter(ctx, *cfg, slog.Default())
	if err != nil {
		return nil, err
	}
	return writer, nil
}

// now is the export clock.
var now = time.Now

func exportCmd() *cobra.Command {
	var (
		filters filterFlags
		format  string
		out     string
		legacy  bool
	)

	cmd := &cobra.Command{
		Use:   "export <view|all>",
		Short: "Export a view to CSV, XLSX or Google Sheets",
		Long: `Export the rows of a view, or of every view with "all". Files are named
after the view (depenses.csv, encaissements-2024-03-01.csv) and written to
export.dir unless --out is given. The sheets format writes one tab per view
in the configured spreadsheet, with a totals row.

CSV values are quoted per RFC 4180. --legacy writes the bare comma join of
older exports, which breaks on values holding commas, quotes or newlines.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("legacy") {
				legacy = viper.GetBool("export.legacy_csv")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			names := []string{args[0]}
			if args[0] == "all" {
				if out != "" && f != export.FormatSheets {
					return common.NewUserError("--out ne peut pas nommer plusieurs fichiers, utilisez export.dir", grid.ErrInvalidInput)
				}
				names = ledger.IDs()
			}

			var writer service.ReportWriter
			if f == export.FormatSheets {
				if writer, err = newReportWriter(ctx); err != nil {
					return fmt.Errorf("failed to connect to Google Sheets: %w", err)
				}
			}

			w := cmd.OutOrStdout()
			for _, name := range names {
				view, g, err := openView(ctx, store, name)
				if err != nil {
					return err
				}
				if err := filters.apply(g); err != nil {
					return err
				}
				rows := g.Visible()

				if f == export.FormatSheets {
					if err := writer.Write(ctx, export.Table(view.Title, g.Columns(), rows)); err != nil {
						return fmt.Errorf("failed to export %s: %w", view.ID, err)
					}
					fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("%s : %d ligne(s) envoyée(s) vers Google Sheets", view.Title, len(rows))))
					continue
				}

				path := out
				if path == "" {
					path = filepath.Join(config.ExportDir(), export.FileName(view.Naming, f, now()))
				}
				if err := writeFile(path, f, view, g.Columns(), rows, export.Options{Legacy: legacy}); err != nil {
					return err
				}
				slog.Info("Exported view",
					"view", view.ID,
					"rows", len(rows),
					"path", path,
					"content_type", f.ContentType())
				fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("%s : %d ligne(s) exportée(s) vers %s", view.Title, len(rows), path)))
			}
			return nil
		},
	}

	addFilterFlags(cmd, &filters)
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "export format (csv, xlsx, sheets)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: export.dir and the view's file name)")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "unquoted CSV as older exports wrote it")

	return cmd
}

// writeFile writes rows to path in format f, through a temporary file so
// a failed export never truncates the previous one.
func writeFile(path string, f export.Format, view ledger.View, cols *grid.ColumnSet, rows []grid.Row, opts export.Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	switch f {
	case export.FormatXLSX:
		err = export.WriteXLSX(tmp, view.Title, cols, rows)
	default:
		err = export.WriteCSV(tmp, cols, rows, opts)
	}
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to export %s: %w", view.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("failed to set export permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}

// exportDisplayed is the editor's export key: the displayed rows go to a
// CSV file in export.dir.
func exportDisplayed(view ledger.View) func(*grid.ColumnSet, []grid.Row) (string, error) {
	return func(cols *grid.ColumnSet, rows []grid.Row) (string, error) {
		path := filepath.Join(config.ExportDir(), export.FileName(view.Naming, export.FormatCSV, now()))
		opts := export.Options{Legacy: viper.GetBool("export.legacy_csv")}
		if err := writeFile(path, export.FormatCSV, view, cols, rows, opts); err != nil {
			return "", err
		}
		return path, nil
	}
}

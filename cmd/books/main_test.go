package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/plaid"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/Veraticus/the-books-must-balance/internal/sheets"
	"github.com/Veraticus/the-books-must-balance/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t      *testing.T
	dir    string
	config string
	db     string
	stdin  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "books.db")
	exports := filepath.Join(dir, "exports")

	cfg := filepath.Join(dir, "config.yaml")
	content := "database:\n  path: " + db + "\nexport:\n  dir: " + exports + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0600))

	t.Cleanup(viper.Reset)
	return &testEnv{t: t, dir: dir, config: cfg, db: db}
}

// run executes the command line and returns what it printed on stdout.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	viper.Reset()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(e.stdin))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "books %s", strings.Join(args, " "))
	return out
}

func (e *testEnv) rows(view string) []grid.Row {
	e.t.Helper()
	return testutil.OpenTestDB(e.t, e.db).MustRows(view)
}

func (e *testEnv) seedReceipts() {
	e.t.Helper()
	e.mustRun("add", "receipts", "date=2024-03-01", "patient=Martin Dupont", "act=Consultation", "method=Carte", "amount=25")
	e.mustRun("add", "receipts", "date=2024-03-02", "patient=Claire Petit", "act=Visite", "method=Espèces", "amount=35", "insurance=20")
	e.mustRun("add", "receipts", "date=2024-03-03", "patient=Louis Bernard", "act=Consultation", "method=Chèque", "amount=30")
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("version")
	assert.Equal(t, "books dev\n", out)
}

func TestViews(t *testing.T) {
	env := newTestEnv(t)
	env.seedReceipts()

	out := env.mustRun("views")
	for _, want := range []string{"Dépenses", "depenses.csv", "assets", "retrocessions"} {
		assert.Contains(t, out, want)
	}
	assert.Regexp(t, `receipts\s+Encaissements\s+3`, out)
}

func TestAddAndShow(t *testing.T) {
	env := newTestEnv(t)
	env.seedReceipts()

	rows := env.rows("receipts")
	require.Len(t, rows, 3)
	assert.Equal(t, "Claire Petit", rows[1].Text("patient"))
	assert.InDelta(t, 15.0, rows[1].Number("patientShare"), 1e-9)

	out := env.mustRun("show", "receipts")
	assert.Contains(t, out, "Encaissements")
	assert.Contains(t, out, "Martin Dupont")
	assert.Contains(t, out, "90.00")
	assert.Contains(t, out, "3 ligne(s) sur 3")

	out = env.mustRun("show", "receipts", "--where", "act=Consultation")
	assert.NotContains(t, out, "Claire Petit")
	assert.Contains(t, out, "55.00")
	assert.Contains(t, out, "2 ligne(s) sur 3")

	out = env.mustRun("show", "receipts", "--search", "petit", "--no-totals")
	assert.Contains(t, out, "Claire Petit")
	assert.Contains(t, out, "1 ligne(s) sur 3")
}

func TestShow_Empty(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("show", "debts")
	assert.Contains(t, out, "Aucune ligne")
}

func TestAdd_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		wantErr error
		name    string
		args    []string
	}{
		{name: "unknown view", args: []string{"add", "payroll"}, wantErr: ledger.ErrUnknownView},
		{name: "unknown column", args: []string{"add", "receipts", "colour=red"}, wantErr: grid.ErrUnknownColumn},
		{name: "calculated column", args: []string{"add", "receipts", "patientShare=3"}, wantErr: grid.ErrNotEditable},
		{name: "not an assignment", args: []string{"add", "receipts", "amount"}, wantErr: grid.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotEmpty(t, common.UserMessage(err))
		})
	}
	assert.Empty(t, env.rows("receipts"), "a rejected add must not leave a row behind")
}

func TestAdd_WarnsAboutRequiredFields(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("add", "receipts", "amount=10")
	assert.Contains(t, out, "ajoutée à Encaissements")
	assert.Contains(t, out, "Champs obligatoires vides : Date, Patient")
}

func TestSet(t *testing.T) {
	env := newTestEnv(t)
	env.seedReceipts()

	out := env.mustRun("set", "receipts", "2", "amount", "40,5")
	assert.Contains(t, out, "Montant = 40.50")

	rows := env.rows("receipts")
	assert.InDelta(t, 40.5, rows[1].Number("amount"), 1e-9)
	assert.InDelta(t, 20.5, rows[1].Number("patientShare"), 1e-9)

	// Position 1 under a descending amount sort is the largest receipt.
	env.mustRun("set", "receipts", "1", "notes", "relance", "--sort", "amount", "--desc")
	rows = env.rows("receipts")
	assert.Equal(t, "relance", rows[1].Text("notes"))

	// So does the row ID.
	env.mustRun("set", "receipts", rows[2].ID, "reference", "R-3")
	assert.Equal(t, "R-3", env.rows("receipts")[2].Text("reference"))

	_, err := env.run("set", "receipts", "9", "amount", "1")
	assert.ErrorIs(t, err, grid.ErrOutOfRange)

	_, err = env.run("set", "receipts", "1", "patientShare", "1")
	assert.ErrorIs(t, err, grid.ErrNotEditable)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	env.seedReceipts()

	t.Run("declined", func(t *testing.T) {
		env.stdin = "n\n"
		out := env.mustRun("delete", "receipts", "1")
		assert.Contains(t, out, "Supprimer la ligne 1")
		assert.Contains(t, out, "Suppression annulée")
		assert.Len(t, env.rows("receipts"), 3)
	})

	t.Run("no answer", func(t *testing.T) {
		env.stdin = ""
		out := env.mustRun("delete", "receipts", "1")
		assert.Contains(t, out, "Suppression annulée")
		assert.Len(t, env.rows("receipts"), 3)
	})

	t.Run("confirmed", func(t *testing.T) {
		env.stdin = "o\n"
		out := env.mustRun("delete", "receipts", "1")
		assert.Contains(t, out, "supprimée")
		rows := env.rows("receipts")
		require.Len(t, rows, 2)
		assert.Equal(t, "Claire Petit", rows[0].Text("patient"))
	})

	t.Run("position under a filter", func(t *testing.T) {
		env.stdin = ""
		env.mustRun("delete", "receipts", "1", "--where", "method=Chèque", "--yes")
		rows := env.rows("receipts")
		require.Len(t, rows, 1)
		assert.Equal(t, "Claire Petit", rows[0].Text("patient"))
	})
}

func TestChoices(t *testing.T) {
	env := newTestEnv(t)
	env.seedReceipts()

	out := env.mustRun("choices", "receipts", "act")
	assert.Contains(t, out, " 1. Consultation")
	assert.Contains(t, out, " 4. Certificat")

	env.mustRun("choices", "receipts", "act", "add", "Téléconsultation")
	out = env.mustRun("choices", "receipts", "act", "rename", "Consultation", "Consultation G")
	assert.Contains(t, out, "(2 ligne(s) mise(s) à jour)")

	out = env.mustRun("choices", "receipts", "act")
	assert.Contains(t, out, " 1. Consultation G")
	assert.Contains(t, out, " 5. Téléconsultation")
	assert.Equal(t, "Consultation G", env.rows("receipts")[0].Text("act"))

	env.mustRun("choices", "receipts", "act", "remove", "Certificat")
	out = env.mustRun("choices", "receipts", "act")
	assert.NotContains(t, out, "Certificat")

	_, err := env.run("choices", "receipts", "patient")
	assert.ErrorIs(t, err, grid.ErrNotChoiceColumn)

	_, err = env.run("choices", "receipts", "act", "add", "Visite")
	assert.ErrorIs(t, err, grid.ErrChoiceExists)

	_, err = env.run("choices", "receipts", "act", "purge", "x")
	assert.ErrorIs(t, err, grid.ErrInvalidInput)
}

func TestDistribution(t *testing.T) {
	env := newTestEnv(t)
	env.seedReceipts()

	out := env.mustRun("distribution", "receipts")
	assert.Contains(t, out, "Consultation")
	assert.Contains(t, out, "Visite")
	assert.Contains(t, out, "55.00")

	out = env.mustRun("distribution", "receipts", "--by", "method", "--min", "31")
	assert.Contains(t, out, "Espèces")
	assert.NotContains(t, out, "Carte")

	out = env.mustRun("distribution", "expenses")
	assert.Contains(t, out, "Aucune ligne")
}

func fixClock(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })
}

func TestExport_CSV(t *testing.T) {
	env := newTestEnv(t)
	env.seedReceipts()
	fixClock(t)

	out := env.mustRun("export", "receipts", "--where", "act=Consultation")
	path := filepath.Join(env.dir, "exports", "encaissements-2024-03-31.csv")
	assert.Contains(t, out, "2 ligne(s) exportée(s) vers "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Date,Patient,Référence,Acte,Mode de paiement,Montant,Part AMO,Part patient,Notes")
	assert.Contains(t, text, "Martin Dupont")
	assert.NotContains(t, text, "Claire Petit")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestExport_XLSXAndOut(t *testing.T) {
	env := newTestEnv(t)
	env.seedReceipts()

	path := filepath.Join(env.dir, "mars.xlsx")
	out := env.mustRun("export", "receipts", "--format", "xlsx", "--out", path)
	assert.Contains(t, out, "3 ligne(s) exportée(s)")

	// The workbook reads back through the table importer.
	out = env.mustRun("import", "receipts", path)
	assert.Contains(t, out, "3 ligne(s) importée(s)")
	assert.Len(t, env.rows("receipts"), 6)
}

func TestExport_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("export", "receipts", "--format", "pdf")
	require.Error(t, err)

	_, err = env.run("export", "all", "--out", filepath.Join(env.dir, "x.csv"))
	assert.ErrorIs(t, err, grid.ErrInvalidInput)
}

func TestExport_Sheets(t *testing.T) {
	env := newTestEnv(t)
	env.seedReceipts()

	writer := sheets.NewMockWriter()
	orig := newReportWriter
	newReportWriter = func(context.Context) (service.ReportWriter, error) { return writer, nil }
	t.Cleanup(func() { newReportWriter = orig })

	out := env.mustRun("export", "receipts", "--format", "sheets")
	assert.Contains(t, out, "Encaissements : 3 ligne(s) envoyée(s) vers Google Sheets")

	tables := writer.Written()
	require.Len(t, tables, 1)
	assert.Equal(t, "Encaissements", tables[0].Title)
	assert.Len(t, tables[0].Rows, 3)

	writer.Reset()
	env.mustRun("export", "all", "--format", "sheets")
	assert.Len(t, writer.Written(), 8)
}

func TestExport_SheetsFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedReceipts()

	writer := sheets.NewMockWriter()
	writer.WriteFunc = func(context.Context, service.Table) error { return errors.New("quota exceeded") }
	orig := newReportWriter
	newReportWriter = func(context.Context) (service.ReportWriter, error) { return writer, nil }
	t.Cleanup(func() { newReportWriter = orig })

	_, err := env.run("export", "receipts", "--format", "sheets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestImport_CSV(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("import", "receipts", filepath.Join("testdata", "patients.csv"))
	assert.Contains(t, out, "2 ligne(s) importée(s) dans Encaissements")

	rows := env.rows("receipts")
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-03-01", rows[0].Text("date"))
	assert.Equal(t, "Espèces", rows[1].Text("method"))
	assert.InDelta(t, 35.0, rows[1].Number("patientShare"), 1e-9)
}

func TestImport_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.seedReceipts()

	path := filepath.Join(env.dir, "receipts.csv")
	env.mustRun("export", "receipts", "--out", path)
	env.mustRun("import", "receipts", path)

	rows := env.rows("receipts")
	require.Len(t, rows, 6)
	assert.Equal(t, rows[1].Text("patient"), rows[4].Text("patient"))
	assert.InDelta(t, rows[1].Number("patientShare"), rows[4].Number("patientShare"), 1e-9)
}

func TestImportBank_OFX(t *testing.T) {
	env := newTestEnv(t)
	statement := filepath.Join("testdata", "releve.ofx")

	out := env.mustRun("import-bank", "receipts", "--ofx", statement)
	assert.Contains(t, out, "Encaissements : 1 ligne(s) ajoutée(s), 0 doublon(s), 2 ignorée(s)")

	rows := env.rows("receipts")
	require.Len(t, rows, 1)
	assert.InDelta(t, 412.5, rows[0].Number("amount"), 1e-9)
	assert.Equal(t, "Virement", rows[0].Text("method"))

	out = env.mustRun("import-bank", "receipts", "--ofx", statement)
	assert.Contains(t, out, "0 ligne(s) ajoutée(s), 1 doublon(s), 2 ignorée(s)")
	assert.Len(t, env.rows("receipts"), 1)

	out = env.mustRun("import-bank", "expenses", "--ofx", statement)
	assert.Contains(t, out, "Dépenses : 2 ligne(s) ajoutée(s)")
	expenses := env.rows("expenses")
	require.Len(t, expenses, 2)
	assert.Equal(t, "Payé", expenses[0].Text("status"))
}

func TestImportBank_Plaid(t *testing.T) {
	env := newTestEnv(t)

	mock := plaid.NewMockClient()
	mock.GetBankLinesFn = func(context.Context, time.Time, time.Time) ([]model.BankLine, error) {
		return []model.BankLine{
			{ID: "p1", Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Name: "CB PHARMACIE", Amount: 12.4, Direction: model.DirectionDebit},
			{ID: "p2", Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Name: "VIR CPAM", Amount: 80, Direction: model.DirectionCredit},
		}, nil
	}
	orig := newBankSource
	var feeds []string
	newBankSource = func(_ context.Context, feed string) (service.BankSource, error) {
		feeds = append(feeds, feed)
		return mock, nil
	}
	t.Cleanup(func() { newBankSource = orig })

	out := env.mustRun("import-bank", "expenses", "--plaid", "--from", "2024-03-01", "--to", "2024-03-31")
	assert.Contains(t, out, "1 ligne(s) ajoutée(s), 0 doublon(s), 1 ignorée(s)")

	assert.Equal(t, []string{"plaid"}, feeds)
	require.Len(t, mock.Calls, 1)
	assert.Equal(t, "2024-03-01", mock.Calls[0].StartDate.Format(time.DateOnly))
	assert.Equal(t, "2024-03-31", mock.Calls[0].EndDate.Format(time.DateOnly))

	rows := env.rows("expenses")
	require.Len(t, rows, 1)
	assert.Equal(t, "Carte", rows[0].Text("method"))
	assert.InDelta(t, 12.4, rows[0].Number("totalTTC"), 1e-9)

	out = env.mustRun("import-bank", "receipts", "--simplefin", "--from", "2024-03-01", "--to", "2024-03-31")
	assert.Contains(t, out, "1 ligne(s) ajoutée(s), 0 doublon(s), 1 ignorée(s)")
	assert.Equal(t, []string{"plaid", "simplefin"}, feeds)
	assert.Equal(t, "VIR CPAM", env.rows("receipts")[0].Text("patient"))
}

func TestImportBank_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("import-bank", "receipts")
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = env.run("import-bank", "receipts", "--plaid", "--ofx", "x.ofx")
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = env.run("import-bank", "receipts", "--plaid", "--simplefin")
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = env.run("import-bank", "receipts", "--plaid", "--from", "2024-03-31", "--to", "2024-03-01")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = env.run("import-bank", "debts", "--ofx", filepath.Join("testdata", "releve.ofx"))
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "receipts et expenses")
}

func TestMigrate(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("migrate")
	assert.Contains(t, out, "Base migrée du schéma 0")

	out = env.mustRun("migrate")
	assert.Contains(t, out, "Base à jour")

	out = env.mustRun("migrate", "--status")
	assert.Contains(t, out, env.db)
	assert.Contains(t, out, "Schéma :")
}

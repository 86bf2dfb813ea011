package ledger

import (
	"testing"

	"github.com/Veraticus/the-books-must-balance/internal/distribution"
	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViews_AreValid(t *testing.T) {
	seenIDs := make(map[string]bool)
	seenNames := make(map[string]bool)

	for _, v := range All() {
		t.Run(v.ID, func(t *testing.T) {
			cols, err := v.ColumnSet(nil)
			require.NoError(t, err)

			assert.False(t, seenIDs[v.ID], "duplicate view id")
			assert.False(t, seenNames[v.Naming.Base], "duplicate export name")
			seenIDs[v.ID] = true
			seenNames[v.Naming.Base] = true

			keys := append([]string{v.DistributionKey, v.AmountKey}, v.Panel.SearchKeys...)
			keys = append(keys, v.Panel.CategoryKeys...)
			for _, key := range []string{v.Panel.DateKey, v.Panel.AmountKey} {
				if key != "" {
					keys = append(keys, key)
				}
			}
			for _, key := range keys {
				_, ok := cols.Column(key)
				assert.True(t, ok, "panel references unknown column %q", key)
			}

			amount, _ := cols.Column(v.AmountKey)
			assert.True(t, amount.Numeric(), "amount column must be numeric")

			for _, col := range cols.Columns() {
				if !col.IsCalculated() {
					assert.True(t, col.Editable, "%s should be editable", col.Key)
				}
			}
		})
	}
	assert.Len(t, seenIDs, 8)
}

func TestViews_ChoicesHavePaletteColors(t *testing.T) {
	for _, v := range All() {
		for _, col := range v.Columns() {
			if col.Kind != grid.KindChoice {
				continue
			}
			for _, choice := range col.Choices {
				assert.NotEqual(t, distribution.Fallback, distribution.DefaultPalette.Color(choice),
					"%s.%s choice %q has no color", v.ID, col.Key, choice)
			}
		}
	}

	for _, status := range []string{StatusPaid, StatusPartial, StatusPending, StatusRepaid, StatusOngoing} {
		assert.NotEqual(t, distribution.Fallback, distribution.DefaultPalette.Color(status), status)
	}
}

func TestLookup(t *testing.T) {
	v, err := Lookup("expenses")
	require.NoError(t, err)
	assert.Equal(t, "Dépenses", v.Title)

	v, err = Lookup(" Charges-Sociales ")
	require.NoError(t, err)
	assert.Equal(t, "social", v.ID)

	_, err = Lookup("payroll")
	assert.ErrorIs(t, err, ErrUnknownView)

	assert.Equal(t, []string{"receipts", "expenses", "debts", "taxes", "invoices", "social", "retrocessions", "assets"}, IDs())
}

func TestColumns_ReturnsFreshDeclarations(t *testing.T) {
	first := Expenses.Columns()
	first[0].Label = "changed"
	assert.Equal(t, "Date", Expenses.Columns()[0].Label)
}

func TestExpenses(t *testing.T) {
	g, err := Expenses.NewGrid([]grid.Row{
		{ID: "a", Values: map[string]any{"supplier": "Pharmacie", "category": "Fournitures médicales", "amountHT": 100.0, "vatRate": 19.0}},
		{ID: "b", Values: map[string]any{"supplier": "Bailleur", "category": "Loyer", "amountHT": 300.0, "vatRate": 0.0, "paid": 300.0}},
	}, nil)
	require.NoError(t, err)

	a, _ := g.Store().Row("a")
	assert.InDelta(t, 19.0, a.Number("vatAmount"), 1e-9)
	assert.InDelta(t, 119.0, a.Number("totalTTC"), 1e-9)
	assert.InDelta(t, 119.0, a.Number("remaining"), 1e-9)
	assert.Equal(t, StatusPending, a.Text("status"))
	assert.Equal(t, "Carte", a.Text("method"))
	assert.InDelta(t, 119.0/419.0*100, a.Number("share"), 1e-9)

	a, err = g.Edit("a", "amountHT", "200")
	require.NoError(t, err)
	assert.InDelta(t, 38.0, a.Number("vatAmount"), 1e-9)
	assert.InDelta(t, 238.0, a.Number("totalTTC"), 1e-9)

	a, err = g.Edit("a", "paid", "100")
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, a.Text("status"))
	assert.InDelta(t, 138.0, a.Number("remaining"), 1e-9)

	b, _ := g.Store().Row("b")
	assert.Equal(t, StatusPaid, b.Text("status"))
	assert.InDelta(t, 300.0/538.0*100, b.Number("share"), 1e-9)
	assert.Equal(t, "55.76%", g.Display(b, "share"))
	assert.Equal(t, "300.00", g.Display(b, "totalTTC"))

	_, err = g.Edit("a", "status", "Payé")
	assert.ErrorIs(t, err, grid.ErrNotEditable)
}

func TestExpenses_FiltersAndDistribution(t *testing.T) {
	g, err := Expenses.NewGrid([]grid.Row{
		{Values: map[string]any{"date": "2024-01-10", "supplier": "Pharmacie", "category": "Fournitures médicales", "amountHT": 50.0}},
		{Values: map[string]any{"date": "2024-02-01", "supplier": "Bailleur", "category": "Loyer", "amountHT": 800.0, "vatRate": 0.0}},
		{Values: map[string]any{"date": "2024-02-15", "supplier": "Pharmacie", "category": "Fournitures médicales", "amountHT": 25.0}},
	}, nil)
	require.NoError(t, err)

	g.SetFilter(grid.FilterState{DateFrom: "2024-02-01", DateTo: "2024-02-28"})
	buckets := distribution.Aggregate(g.Filtered(), Expenses.DistributionKey, Expenses.AmountKey, nil)
	require.Len(t, buckets, 2)
	assert.Equal(t, "Loyer", buckets[0].Label)
	assert.InDelta(t, 800.0, buckets[0].TotalAmount, 1e-9)
	assert.Equal(t, "Fournitures médicales", buckets[1].Label)
	assert.InDelta(t, 30.0, buckets[1].TotalAmount, 1e-9)

	total, _ := g.Footer().Total("totalTTC")
	assert.InDelta(t, 830.0, total, 1e-9)
}

func TestReceipts(t *testing.T) {
	g, err := Receipts.NewGrid(nil, nil)
	require.NoError(t, err)

	row := g.AddRow()
	assert.Equal(t, []string{"date", "patient"}, g.Unsatisfied(row))
	assert.Equal(t, "Consultation", row.Text("act"))

	row, err = g.Edit(row.ID, "amount", "30,00")
	require.NoError(t, err)
	row, err = g.Edit(row.ID, "insurance", "21")
	require.NoError(t, err)
	assert.InDelta(t, 9.0, row.Number("patientShare"), 1e-9)

	row, err = g.Edit(row.ID, "date", "17/10/2026")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", row.Text("date"))
}

func TestDebts(t *testing.T) {
	g, err := Debts.NewGrid([]grid.Row{
		{ID: "flat", Values: map[string]any{"creditor": "Banque", "principal": 12000.0, "months": 12.0}},
		{ID: "loan", Values: map[string]any{"creditor": "Banque", "principal": 12000.0, "rate": 12.0, "months": 12.0, "repaid": 12000.0}},
		{ID: "open", Values: map[string]any{"creditor": "Leasing"}},
	}, nil)
	require.NoError(t, err)

	flat, _ := g.Store().Row("flat")
	assert.InDelta(t, 1000.0, flat.Number("monthly"), 1e-9)
	assert.Equal(t, StatusOngoing, flat.Text("status"))
	assert.InDelta(t, 12000.0, flat.Number("remaining"), 1e-9)

	loan, _ := g.Store().Row("loan")
	assert.InDelta(t, 1066.19, loan.Number("monthly"), 0.01)
	assert.Equal(t, StatusRepaid, loan.Text("status"))
	assert.Equal(t, 0.0, loan.Number("remaining"))

	open, _ := g.Store().Row("open")
	assert.Equal(t, 0.0, open.Number("monthly"))
}

func TestPaymentStatusViews(t *testing.T) {
	tests := []struct {
		view   View
		amount string
	}{
		{view: Taxes, amount: "amountDue"},
		{view: Social, amount: "amount"},
		{view: Invoices, amount: "amountHT"},
	}

	for _, tt := range tests {
		t.Run(tt.view.ID, func(t *testing.T) {
			g, err := tt.view.NewGrid(nil, nil)
			require.NoError(t, err)

			row := g.AddRow()
			assert.Equal(t, StatusPending, row.Text("status"))

			row, err = g.Edit(row.ID, tt.amount, "500")
			require.NoError(t, err)
			assert.Equal(t, StatusPending, row.Text("status"))

			row, err = g.Edit(row.ID, "paid", "200")
			require.NoError(t, err)
			assert.Equal(t, StatusPartial, row.Text("status"))

			row, err = g.Edit(row.ID, "paid", "500")
			require.NoError(t, err)
			assert.Equal(t, StatusPaid, row.Text("status"))
		})
	}
}

func TestRetrocessions(t *testing.T) {
	g, err := Retrocessions.NewGrid([]grid.Row{
		{ID: "a", Values: map[string]any{"replacement": "Dr Martin", "fees": 1000.0}},
		{ID: "b", Values: map[string]any{"replacement": "Dr Moreau", "fees": 3000.0, "rate": 70.0}},
	}, nil)
	require.NoError(t, err)

	a, _ := g.Store().Row("a")
	assert.InDelta(t, 700.0, a.Number("retrocession"), 1e-9)
	assert.InDelta(t, 300.0, a.Number("kept"), 1e-9)
	assert.InDelta(t, 25.0, a.Number("share"), 1e-9)

	_, err = g.DeleteVisible(1)
	require.NoError(t, err)
	a, _ = g.Store().Row("a")
	assert.InDelta(t, 100.0, a.Number("share"), 1e-9)
}

func TestAssets(t *testing.T) {
	g, err := Assets.NewGrid([]grid.Row{
		{ID: "echo", Values: map[string]any{"label": "Échographe", "cost": 15000.0, "depreciated": 6000.0}},
		{ID: "desk", Values: map[string]any{"label": "Bureau", "cost": 900.0, "years": 0.0}},
	}, nil)
	require.NoError(t, err)

	echo, _ := g.Store().Row("echo")
	assert.InDelta(t, 3000.0, echo.Number("annual"), 1e-9)
	assert.InDelta(t, 9000.0, echo.Number("netValue"), 1e-9)

	desk, _ := g.Store().Row("desk")
	assert.Equal(t, 0.0, desk.Number("annual"))

	g.SetFilter(grid.FilterState{Search: "bureau"})
	assert.Len(t, g.Visible(), 2, "assets have no filter panel")
}

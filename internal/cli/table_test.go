package cli

import (
	"strings"
	"testing"

	"github.com/Veraticus/the-books-must-balance/internal/distribution"
	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiptsGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := ledger.Receipts.NewGrid([]grid.Row{
		{ID: "aaaaaaaa-1111", Values: map[string]any{"date": "2024-03-01", "patient": "Martin", "amount": 30.0, "insurance": 21.0}},
		{ID: "bbbbbbbb-2222", Values: map[string]any{"date": "2024-03-02", "patient": "", "amount": 25.0}},
		{ID: "cccccccc-3333", Values: map[string]any{"date": "2024-04-01", "patient": "Petit", "amount": 100.0}},
	}, nil)
	require.NoError(t, err)
	return g
}

func TestRenderGrid(t *testing.T) {
	g := receiptsGrid(t)
	out := RenderGrid(g, GridOptions{Keys: []string{"date", "patient", "amount", "missing"}})

	assert.Contains(t, out, "Patient")
	assert.NotContains(t, out, "Part AMO", "unlisted columns are hidden")
	assert.Contains(t, out, "30.00")
	assert.Contains(t, out, "2!", "rows with empty required cells are flagged")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "155.00")
}

func TestRenderGrid_FollowsFilterAndSort(t *testing.T) {
	g := receiptsGrid(t)
	g.SetFilter(grid.FilterState{DateTo: "2024-03-31"})
	require.NoError(t, g.ToggleSort("amount"))
	require.NoError(t, g.ToggleSort("amount"))

	out := RenderGrid(g, GridOptions{Keys: []string{"patient", "amount"}, ShowIDs: true})

	assert.Contains(t, out, "Montant"+DescendingMarker)
	assert.NotContains(t, out, "Petit")
	assert.Contains(t, out, "55.00", "footer totals the filtered rows")
	assert.Less(t, strings.Index(out, "aaaaaaaa"), strings.Index(out, "bbbbbbbb"), "descending amount puts 30 before 25")
	assert.NotContains(t, out, "aaaaaaaa-1111")
}

func TestRenderGrid_Empty(t *testing.T) {
	g, err := ledger.Receipts.NewGrid(nil, nil)
	require.NoError(t, err)

	out := RenderGrid(g, GridOptions{})
	assert.Contains(t, out, "Date")
	assert.NotContains(t, out, "Total")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", ShortID("abc"))
	assert.Equal(t, "12345678", ShortID("123456789abc"))
}

func TestRenderDistribution(t *testing.T) {
	g := receiptsGrid(t)
	buckets := distribution.Aggregate(g.Store().Rows(), "act", "amount", nil)

	out := RenderDistribution(buckets)
	assert.Contains(t, out, "Consultation")
	assert.Contains(t, out, "155.00")
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "Catégorie")
}

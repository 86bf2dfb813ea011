package testutil

import (
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/grid"
)

// Receipts builds receipt rows with predictable IDs.
type Receipts struct {
	rows []grid.Row
}

// NewReceipts starts an empty receipts fixture.
func NewReceipts() *Receipts {
	return &Receipts{}
}

// Add appends a card consultation.
func (r *Receipts) Add(date, patient string, amount float64) *Receipts {
	return r.AddWith(date, patient, amount, nil)
}

// AddWith appends a receipt; extra overrides or completes the defaults.
func (r *Receipts) AddWith(date, patient string, amount float64, extra map[string]any) *Receipts {
	values := map[string]any{
		"date":    date,
		"patient": patient,
		"act":     "Consultation",
		"method":  "Carte",
		"amount":  amount,
	}
	for k, v := range extra {
		values[k] = v
	}
	r.rows = append(r.rows, grid.Row{
		ID:     fmt.Sprintf("receipt-%03d", len(r.rows)+1),
		Values: values,
	})
	return r
}

// WithBasicMonth adds three March receipts totalling 90.
func (r *Receipts) WithBasicMonth() *Receipts {
	return r.
		Add("2024-03-01", "Martin Dupont", 25).
		AddWith("2024-03-02", "Claire Petit", 35, map[string]any{"act": "Visite", "method": "Espèces", "insurance": 20.0}).
		AddWith("2024-03-03", "Louis Bernard", 30, map[string]any{"method": "Chèque"})
}

// Rows returns copies of the built rows.
func (r *Receipts) Rows() []grid.Row {
	out := make([]grid.Row, len(r.rows))
	for i, row := range r.rows {
		out[i] = row.Clone()
	}
	return out
}

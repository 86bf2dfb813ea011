// Package distribution folds grid rows into per-category totals for charts.
package distribution

import (
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/grid"
)

// Fallback is the color of categories the palette does not know.
const Fallback = "#9CA3AF"

// Bucket is the aggregated total and count of one category value.
type Bucket struct {
	Label       string
	Color       string
	TotalAmount float64
	RowCount    int
}

// Palette maps category labels to display colors. Lookups ignore case.
type Palette map[string]string

// DefaultPalette covers the choice values and statuses of the ledger views.
// Keys are lowercase.
var DefaultPalette = Palette{
	// acts
	"consultation":   "#3B82F6",
	"visite":         "#6366F1",
	"acte technique": "#8B5CF6",
	"certificat":     "#14B8A6",

	// payment methods
	"carte":        "#0EA5E9",
	"espèces":      "#22C55E",
	"chèque":       "#F59E0B",
	"virement":     "#A855F7",
	"tiers payant": "#06B6D4",

	// expense categories
	"fournitures médicales": "#EC4899",
	"loyer":                 "#F97316",
	"logiciel":              "#0891B2",
	"assurance":             "#7C3AED",
	"téléphonie":            "#2563EB",
	"déplacements":          "#CA8A04",
	"formation":             "#059669",

	// debt types
	"emprunt bancaire": "#1D4ED8",
	"crédit-bail":      "#9333EA",
	"prêt personnel":   "#DB2777",

	// taxes
	"impôt sur le revenu": "#B91C1C",
	"cfe":                 "#EA580C",
	"csg-crds":            "#D97706",
	"tva":                 "#65A30D",
	"taxe foncière":       "#0D9488",

	// payers
	"cpam":          "#2563EB",
	"mutuelle":      "#7C3AED",
	"patient":       "#10B981",
	"établissement": "#F59E0B",

	// social bodies
	"urssaf":     "#1E40AF",
	"carmf":      "#BE185D",
	"carpimko":   "#0E7490",
	"cipav":      "#6D28D9",
	"prévoyance": "#15803D",

	// asset categories
	"matériel médical": "#E11D48",
	"informatique":     "#0284C7",
	"mobilier":         "#A16207",
	"véhicule":         "#4F46E5",
	"agencement":       "#0F766E",

	"autre": "#64748B",

	// statuses
	"payé":       "#16A34A",
	"partiel":    "#EAB308",
	"en attente": "#DC2626",
	"remboursé":  "#16A34A",
	"en cours":   "#F97316",
}

// Color returns the color of label, or Fallback.
func (p Palette) Color(label string) string {
	if c, ok := p[strings.ToLower(strings.TrimSpace(label))]; ok {
		return c
	}
	return Fallback
}

// Aggregate groups rows by the value under groupKey and sums amountKey per
// group. Buckets keep the order in which their label first appears. A nil
// palette uses DefaultPalette.
func Aggregate(rows []grid.Row, groupKey, amountKey string, palette Palette) []Bucket {
	if palette == nil {
		palette = DefaultPalette
	}

	index := make(map[string]int)
	var buckets []Bucket
	for _, row := range rows {
		label := row.Text(groupKey)
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, Bucket{Label: label, Color: palette.Color(label)})
		}
		buckets[i].TotalAmount += row.Number(amountKey)
		buckets[i].RowCount++
	}
	return buckets
}

// Total sums the amounts of every bucket.
func Total(buckets []Bucket) float64 {
	total := 0.0
	for _, b := range buckets {
		total += b.TotalAmount
	}
	return total
}

// Share returns b's percentage of the total over buckets, or 0 when the
// total is zero.
func Share(b Bucket, buckets []Bucket) float64 {
	total := Total(buckets)
	if total == 0 {
		return 0
	}
	return b.TotalAmount / total * 100
}

package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testPanel = FilterPanel{
	SearchKeys:   []string{"patient", "reference", "notes"},
	CategoryKeys: []string{"method", "act"},
	DateKey:      "date",
	AmountKey:    "amount",
}

func filterRows() []Row {
	return []Row{
		{ID: "1", Values: map[string]any{"patient": "Martin Dupont", "reference": "R-001", "notes": "", "method": "Card", "act": "Consultation", "date": "2024-03-01", "amount": 25.0}},
		{ID: "2", Values: map[string]any{"patient": "Claire Petit", "reference": "R-002", "notes": "tiers payant", "method": "Cash", "act": "Consultation", "date": "2024-03-15", "amount": 30.0}},
		{ID: "3", Values: map[string]any{"patient": "Louis Bernard", "reference": "R-003", "notes": "", "method": "Card", "act": "Suture", "date": "2024-03-31", "amount": 60.0}},
		{ID: "4", Values: map[string]any{"patient": "Emma Leroy", "reference": "MARTIN-77", "notes": "", "method": "Transfer", "act": "Consultation", "date": "2024-04-02", "amount": 120.5}},
	}
}

func ids(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		state FilterState
		want  []string
	}{
		{
			name: "no filter keeps everything",
			want: []string{"1", "2", "3", "4"},
		},
		{
			name:  "search is case-insensitive and matches any field",
			state: FilterState{Search: "martin"},
			want:  []string{"1", "4"},
		},
		{
			name:  "search matches notes",
			state: FilterState{Search: "TIERS"},
			want:  []string{"2"},
		},
		{
			name:  "blank search is unconstrained",
			state: FilterState{Search: "   "},
			want:  []string{"1", "2", "3", "4"},
		},
		{
			name:  "categorical equality",
			state: FilterState{Categories: map[string]string{"method": "Card"}},
			want:  []string{"1", "3"},
		},
		{
			name:  "all sentinel is unconstrained",
			state: FilterState{Categories: map[string]string{"method": "all", "act": ""}},
			want:  []string{"1", "2", "3", "4"},
		},
		{
			name:  "categories on keys outside the panel are ignored",
			state: FilterState{Categories: map[string]string{"patient": "nobody"}},
			want:  []string{"1", "2", "3", "4"},
		},
		{
			name:  "date bounds are inclusive",
			state: FilterState{DateFrom: "2024-03-01", DateTo: "2024-03-31"},
			want:  []string{"1", "2", "3"},
		},
		{
			name:  "single day range",
			state: FilterState{DateFrom: "2024-03-15", DateTo: "2024-03-15"},
			want:  []string{"2"},
		},
		{
			name:  "amount bounds are inclusive",
			state: FilterState{AmountMin: "30", AmountMax: "60"},
			want:  []string{"2", "3"},
		},
		{
			name:  "decimal comma bound",
			state: FilterState{AmountMin: "120,5"},
			want:  []string{"4"},
		},
		{
			name:  "NaN bound is unconstrained",
			state: FilterState{AmountMin: "NaN", AmountMax: "60"},
			want:  []string{"1", "2", "3"},
		},
		{
			name:  "malformed bound is unconstrained",
			state: FilterState{AmountMin: "abc", AmountMax: "12..4"},
			want:  []string{"1", "2", "3", "4"},
		},
		{
			name: "predicates are conjunctive",
			state: FilterState{
				Search:     "r-00",
				Categories: map[string]string{"act": "Consultation"},
				AmountMax:  "29",
			},
			want: []string{"1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(filterRows(), testPanel, tt.state)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApply_EqualsConjunctionOfPredicates(t *testing.T) {
	state := FilterState{
		Search:     "r",
		Categories: map[string]string{"method": "Card"},
		DateTo:     "2024-03-31",
	}
	preds := testPanel.Predicates(state)
	assert.Len(t, preds, 3)

	var want []string
	for _, row := range filterRows() {
		ok := true
		for _, p := range preds {
			ok = ok && p(row)
		}
		if ok {
			want = append(want, row.ID)
		}
	}
	assert.Equal(t, want, ids(Apply(filterRows(), testPanel, state)))
}

func TestApply_RestrictingNeverGrows(t *testing.T) {
	steps := []FilterState{
		{},
		{Search: "a"},
		{Search: "a", DateFrom: "2024-03-02"},
		{Search: "a", DateFrom: "2024-03-02", AmountMax: "100"},
		{Search: "a", DateFrom: "2024-03-02", AmountMax: "100", Categories: map[string]string{"method": "Cash"}},
	}

	prev := len(filterRows())
	for _, state := range steps {
		n := len(Apply(filterRows(), testPanel, state))
		assert.LessOrEqual(t, n, prev, "state %+v", state)
		prev = n
	}
}

func TestApply_WithoutPanelKeys(t *testing.T) {
	state := FilterState{Search: "x", DateFrom: "2030-01-01", AmountMin: "1000"}
	got := Apply(filterRows(), FilterPanel{}, state)
	assert.Len(t, got, 4)
}

func TestFilterState_WithCategory(t *testing.T) {
	base := FilterState{Categories: map[string]string{"act": "Suture"}}
	next := base.WithCategory("method", "Card")

	assert.Equal(t, map[string]string{"act": "Suture"}, base.Categories)
	assert.Equal(t, "Card", next.Categories["method"])
	assert.False(t, next.IsZero())
	assert.True(t, FilterState{Categories: map[string]string{"act": "all"}}.IsZero())
}

package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddFillsDefaults(t *testing.T) {
	store := NewStore(mustColumnSet(t, vatColumns()...), nil)

	row := store.Add()
	assert.NotEmpty(t, row.ID)
	assert.Equal(t, "", row.Get("supplier"))
	assert.Equal(t, 0.0, row.Get("amountHT"))
	assert.Equal(t, 20.0, row.Get("vatRate"))
	assert.Equal(t, "Card", row.Get("method"))
	assert.Equal(t, 0.0, row.Get("totalTTC"))
	assert.Equal(t, "Pending", row.Get("status"))
	assert.Equal(t, 1, store.Len())
}

func TestNewStore_CoercesStringValues(t *testing.T) {
	set := mustColumnSet(t,
		append(vatColumns(), Column{Key: "date", Label: "Date", Kind: KindDate, Editable: true})...)
	store := NewStore(set, []Row{
		{ID: "a", Values: map[string]any{"supplier": "Labo", "amountHT": "12.5", "date": "01/03/2024"}},
		{ID: "b", Values: map[string]any{"supplier": "Pharmacie", "amountHT": "NaN", "paid": "1.234,56"}},
	})

	a, _ := store.Row("a")
	assert.Equal(t, 12.5, a.Get("amountHT"))
	assert.Equal(t, "2024-03-01", a.Get("date"))
	assert.InDelta(t, 15.0, a.Number("totalTTC"), 1e-9)

	b, _ := store.Row("b")
	assert.Equal(t, 0.0, b.Get("amountHT"))
	assert.Equal(t, 1234.56, b.Get("paid"))
	assert.Equal(t, "Pharmacie", b.Get("supplier"))
	assert.NotPanics(t, func() { _ = Money(b.Get("amountHT")) })
}

func TestStore_InsertCoercesStringValues(t *testing.T) {
	store := NewStore(mustColumnSet(t, vatColumns()...), nil)

	row := store.Insert(map[string]any{"supplier": "Labo", "amountHT": "40,5"})
	assert.Equal(t, 40.5, row.Get("amountHT"))
}

func TestToFloat_RejectsNonFiniteText(t *testing.T) {
	for _, in := range []string{"NaN", "Inf", "-Inf", "1e400"} {
		_, ok := ToFloat(in)
		assert.False(t, ok, in)
	}
	f, ok := ToFloat(" 2.5 ")
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)
}

func TestStore_RequiredFieldsNeverBlock(t *testing.T) {
	set := mustColumnSet(t, vatColumns()...)
	store := NewStore(set, nil)

	row := store.Add()
	assert.Equal(t, []string{"supplier"}, set.Unsatisfied(row))

	row, err := store.Edit(row.ID, "amountHT", "80")
	require.NoError(t, err)
	assert.InDelta(t, 96.0, row.Number("totalTTC"), 1e-9)
}

func TestStore_Insert(t *testing.T) {
	store := NewStore(mustColumnSet(t, vatColumns()...), nil)

	row := store.Insert(map[string]any{
		"supplier":  "Pharmacie du Centre",
		"amountHT":  50,
		"paid":      60.0,
		"vatAmount": 999.0,
	})
	assert.Equal(t, 50.0, row.Get("amountHT"))
	assert.InDelta(t, 10.0, row.Number("vatAmount"), 1e-9, "calculated input is ignored")
	assert.Equal(t, "Paid", row.Text("status"))
}

func TestStore_EditErrors(t *testing.T) {
	store := NewStore(mustColumnSet(t, vatColumns()...), []Row{
		{ID: "r1", Values: map[string]any{"supplier": "Labo", "amountHT": 10.0}},
	})

	tests := []struct {
		wantErr error
		name    string
		id      string
		key     string
	}{
		{name: "calculated column", id: "r1", key: "vatAmount", wantErr: ErrNotEditable},
		{name: "status column", id: "r1", key: "status", wantErr: ErrNotEditable},
		{name: "unknown column", id: "r1", key: "nope", wantErr: ErrUnknownColumn},
		{name: "unknown row", id: "r2", key: "amountHT", wantErr: ErrRowNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Edit(tt.id, tt.key, "1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	row, _ := store.Row("r1")
	assert.Equal(t, 10.0, row.Get("amountHT"))
}

func TestStore_EditParseFailureStoresZero(t *testing.T) {
	store := NewStore(mustColumnSet(t, vatColumns()...), []Row{
		{ID: "r1", Values: map[string]any{"amountHT": 10.0}},
	})

	row, err := store.Edit("r1", "amountHT", "ten euros")
	require.NoError(t, err)
	assert.Equal(t, 0.0, row.Get("amountHT"))
	assert.Equal(t, 0.0, row.Get("totalTTC"))
}

func TestApplyEdit_LeavesInputUntouched(t *testing.T) {
	set := mustColumnSet(t, vatColumns()...)
	rows := RecalculateAll(set, []Row{
		{ID: "r1", Values: map[string]any{"amountHT": 10.0, "vatRate": 20.0}},
	})

	out, row, err := ApplyEdit(set, rows, "r1", "amountHT", "20")
	require.NoError(t, err)
	assert.Equal(t, 20.0, row.Get("amountHT"))
	assert.Equal(t, 20.0, out[0].Get("amountHT"))
	assert.Equal(t, 10.0, rows[0].Get("amountHT"))
	assert.InDelta(t, 12.0, rows[0].Number("totalTTC"), 1e-9)
}

func TestStore_RowsAreCopies(t *testing.T) {
	store := NewStore(mustColumnSet(t, vatColumns()...), []Row{
		{ID: "r1", Values: map[string]any{"supplier": "Labo"}},
	})

	rows := store.Rows()
	rows[0].Values["supplier"] = "changed"

	row, ok := store.Row("r1")
	require.True(t, ok)
	assert.Equal(t, "Labo", row.Get("supplier"))
}

func TestStore_OnChange(t *testing.T) {
	store := NewStore(mustColumnSet(t, vatColumns()...), nil)

	var calls int
	var last []Row
	store.OnChange(func(rows []Row) {
		calls++
		last = rows
	})

	row := store.Add()
	_, err := store.Edit(row.ID, "supplier", "Labo")
	require.NoError(t, err)
	_, err = store.Edit(row.ID, "vatAmount", "1")
	require.Error(t, err)
	require.NoError(t, store.Delete(row.ID))

	assert.Equal(t, 3, calls)
	assert.Empty(t, last)
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(mustColumnSet(t, vatColumns()...), []Row{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	})

	require.NoError(t, store.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, ids(store.Rows()))
	assert.ErrorIs(t, store.Delete("b"), ErrRowNotFound)
}

func TestStore_RenameChoiceRewritesRows(t *testing.T) {
	store := NewStore(mustColumnSet(t, vatColumns()...), []Row{
		{ID: "a", Values: map[string]any{"method": "Cash"}},
		{ID: "b", Values: map[string]any{"method": "Card"}},
		{ID: "c", Values: map[string]any{"method": "Cash"}},
	})

	n, err := store.RenameChoice("method", "Cash", "Espèces")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var methods []string
	for _, row := range store.Rows() {
		methods = append(methods, row.Text("method"))
	}
	assert.Equal(t, []string{"Espèces", "Card", "Espèces"}, methods)

	_, err = store.RenameChoice("method", "Cash", "Other")
	assert.ErrorIs(t, err, ErrChoiceNotFound)
}

func TestStore_RemoveChoiceKeepsStoredValues(t *testing.T) {
	store := NewStore(mustColumnSet(t, vatColumns()...), []Row{
		{ID: "a", Values: map[string]any{"method": "Cash"}},
	})

	require.NoError(t, store.RemoveChoice("method", "Cash"))
	row, _ := store.Row("a")
	assert.Equal(t, "Cash", row.Get("method"))

	col, _ := store.Columns().Column("method")
	assert.False(t, col.HasChoice("Cash"))
}

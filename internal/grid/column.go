package grid

import (
	"fmt"
	"strings"
)

// Kind is the type of a column, which decides how its cells are coerced on
// edit, compared on sort and rendered.
type Kind int

// Column kinds. The zero Kind is unset and is resolved by NewColumnSet.
const (
	KindText Kind = iota + 1
	KindNumber
	KindDate
	KindChoice
	KindCalculated
)

var kindNames = map[Kind]string{
	KindText:       "text",
	KindNumber:     "number",
	KindDate:       "date",
	KindChoice:     "choice",
	KindCalculated: "calculated",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Formula derives a calculated cell. rows is the full row collection and is
// only meaningful for aggregate columns; row-local formulas must ignore it.
// Formulas must be pure: same inputs, same output.
type Formula func(row Row, rows []Row) any

// Formatter renders a value for display. It is never used for sorting or
// filtering.
type Formatter func(value any) string

// Column is the schema unit of a grid.
type Column struct {
	Default   any
	Formula   Formula
	Formatter Formatter
	Key       string
	Label     string
	Choices   []string
	// Reads lists the keys the formula reads. Calculated columns that read
	// other calculated columns are evaluated after them. A calculated column
	// with no Reads is evaluated after every calculated column declared
	// before it.
	Reads     []string
	Kind      Kind
	Result    Kind
	Editable  bool
	Required  bool
	Aggregate bool
	Status    bool
}

// IsCalculated reports whether the column is derived by a formula.
func (c Column) IsCalculated() bool {
	return c.Kind == KindCalculated
}

// ValueKind is the kind of value stored in the column's cells. For calculated
// columns this is the formula's result kind.
func (c Column) ValueKind() Kind {
	if c.IsCalculated() {
		return c.Result
	}
	return c.Kind
}

// Numeric reports whether the column holds numbers.
func (c Column) Numeric() bool {
	return c.ValueKind() == KindNumber
}

// Summable reports whether the footer totals this column.
func (c Column) Summable() bool {
	return c.Numeric() && !c.Status
}

// Unsatisfied reports whether a required column is empty in row. It is
// advisory only.
func (c Column) Unsatisfied(row Row) bool {
	if !c.Required {
		return false
	}
	return isEmpty(row.Get(c.Key))
}

// HasChoice reports whether value is one of the column's choices.
func (c Column) HasChoice(value string) bool {
	for _, choice := range c.Choices {
		if choice == value {
			return true
		}
	}
	return false
}

// defaultValue is the value a blank row gets for this column.
func (c Column) defaultValue() any {
	if c.Default != nil {
		return c.Default
	}
	switch c.ValueKind() {
	case KindNumber:
		return 0.0
	case KindChoice:
		if len(c.Choices) > 0 {
			return c.Choices[0]
		}
	}
	return ""
}

// sentinel replaces the value of a formula that failed.
func (c Column) sentinel() any {
	if c.Numeric() {
		return 0.0
	}
	return Placeholder
}

// Placeholder is displayed in place of a text formula that failed.
const Placeholder = "—"

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

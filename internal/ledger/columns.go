package ledger

import "github.com/Veraticus/the-books-must-balance/internal/grid"

func text(key, label string) grid.Column {
	return grid.Column{Key: key, Label: label, Kind: grid.KindText, Editable: true}
}

func required(col grid.Column) grid.Column {
	col.Required = true
	return col
}

func date(key, label string) grid.Column {
	return grid.Column{Key: key, Label: label, Kind: grid.KindDate, Editable: true}
}

func number(key, label string) grid.Column {
	return grid.Column{Key: key, Label: label, Kind: grid.KindNumber, Editable: true}
}

func money(key, label string) grid.Column {
	col := number(key, label)
	col.Formatter = grid.Money
	return col
}

func rate(key, label string, def float64) grid.Column {
	col := number(key, label)
	col.Default = def
	col.Formatter = grid.Percent
	return col
}

func choice(key, label string, choices ...string) grid.Column {
	return grid.Column{Key: key, Label: label, Kind: grid.KindChoice, Editable: true, Choices: choices}
}

func calculated(key, label string, reads []string, f grid.Formula) grid.Column {
	return grid.Column{Key: key, Label: label, Reads: reads, Formula: f, Formatter: grid.Money}
}

func status(key, label string, reads []string, f grid.Formula) grid.Column {
	return grid.Column{Key: key, Label: label, Reads: reads, Formula: f, Status: true}
}

func share(key, label, of string) grid.Column {
	return grid.Column{
		Key:       key,
		Label:     label,
		Reads:     []string{of},
		Formula:   shareOf(of),
		Formatter: grid.Percent,
		Aggregate: true,
	}
}

func notes() grid.Column {
	return text("notes", "Notes")
}

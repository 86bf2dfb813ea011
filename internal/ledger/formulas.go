package ledger

import (
	"math"

	"github.com/Veraticus/the-books-must-balance/internal/grid"
)

// Payment statuses.
const (
	StatusPaid    = "Payé"
	StatusPartial = "Partiel"
	StatusPending = "En attente"
	StatusRepaid  = "Remboursé"
	StatusOngoing = "En cours"
)

// percentOf returns base * rate / 100. Rates are stored as plain
// percentages.
func percentOf(baseKey, rateKey string) grid.Formula {
	return func(r grid.Row, _ []grid.Row) any {
		return r.Number(baseKey) * r.Number(rateKey) / 100
	}
}

func sum(keys ...string) grid.Formula {
	return func(r grid.Row, _ []grid.Row) any {
		total := 0.0
		for _, key := range keys {
			total += r.Number(key)
		}
		return total
	}
}

func diff(a, b string) grid.Formula {
	return func(r grid.Row, _ []grid.Row) any {
		return r.Number(a) - r.Number(b)
	}
}

// outstanding is what is left to pay, never negative.
func outstanding(totalKey, paidKey string) grid.Formula {
	return func(r grid.Row, _ []grid.Row) any {
		return math.Max(0, r.Number(totalKey)-r.Number(paidKey))
	}
}

func ratio(a, b string) grid.Formula {
	return func(r grid.Row, _ []grid.Row) any {
		if r.Number(b) == 0 {
			return 0.0
		}
		return r.Number(a) / r.Number(b)
	}
}

func paymentStatus(totalKey, paidKey string) grid.Formula {
	return func(r grid.Row, _ []grid.Row) any {
		paid, total := r.Number(paidKey), r.Number(totalKey)
		switch {
		case total > 0 && paid >= total:
			return StatusPaid
		case paid > 0:
			return StatusPartial
		default:
			return StatusPending
		}
	}
}

func repaymentStatus(principalKey, repaidKey string) grid.Formula {
	return func(r grid.Row, _ []grid.Row) any {
		if r.Number(principalKey) > 0 && r.Number(repaidKey) >= r.Number(principalKey) {
			return StatusRepaid
		}
		return StatusOngoing
	}
}

// shareOf is the row's percentage of the column total across every row.
func shareOf(key string) grid.Formula {
	return func(r grid.Row, rows []grid.Row) any {
		total := 0.0
		for _, other := range rows {
			total += other.Number(key)
		}
		if total == 0 {
			return 0.0
		}
		return r.Number(key) / total * 100
	}
}

// annuity is the constant monthly installment of a loan at an annual rate.
func annuity(principalKey, rateKey, monthsKey string) grid.Formula {
	return func(r grid.Row, _ []grid.Row) any {
		principal, months := r.Number(principalKey), r.Number(monthsKey)
		if months <= 0 {
			return 0.0
		}
		monthly := r.Number(rateKey) / 100 / 12
		if monthly == 0 {
			return principal / months
		}
		return principal * monthly / (1 - math.Pow(1+monthly, -months))
	}
}

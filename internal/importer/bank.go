package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
)

// ErrNoBankMapping is returned for views that bank lines cannot feed.
var ErrNoBankMapping = errors.New("view does not accept bank lines")

// Payment method labels used for imported lines.
const (
	methodCard     = "Carte"
	methodCash     = "Espèces"
	methodCheck    = "Chèque"
	methodTransfer = "Virement"
)

// BankResult counts what an import did with each line.
type BankResult struct {
	Added      int
	Duplicates int
	Skipped    int // lines flowing the other way
}

// BankImporter turns bank lines into receipts (credits) and expenses
// (debits), skipping lines already imported.
type BankImporter struct {
	storage service.Storage
	logger  *slog.Logger
}

// NewBankImporter creates an importer recording imports in storage.
func NewBankImporter(storage service.Storage, logger *slog.Logger) *BankImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BankImporter{
		storage: storage,
		logger:  logger.With("component", "bank-import"),
	}
}

// Import appends the lines matching view's direction to store.
func (b *BankImporter) Import(ctx context.Context, view ledger.View, store *grid.Store, lines []model.BankLine, progress Progress) (BankResult, error) {
	var result BankResult

	direction, ok := viewDirection(view)
	if !ok {
		return result, fmt.Errorf("%w: %s", ErrNoBankMapping, view.ID)
	}

	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if progress != nil {
			_ = progress.Add(1)
		}

		if line.Direction != direction {
			result.Skipped++
			continue
		}
		if line.Hash == "" {
			line.Hash = line.GenerateHash()
		}

		seen, err := b.storage.IsImported(ctx, line.Hash)
		if err != nil {
			return result, fmt.Errorf("failed to check bank line %s: %w", line.ID, err)
		}
		if seen {
			result.Duplicates++
			continue
		}

		row := store.Insert(BankValues(view, line))
		if err := b.storage.MarkImported(ctx, line, view.ID, row.ID); err != nil {
			if errors.Is(err, common.ErrDuplicateEntry) {
				_ = store.Delete(row.ID)
				result.Duplicates++
				continue
			}
			return result, fmt.Errorf("failed to record bank line %s: %w", line.ID, err)
		}
		result.Added++
	}

	b.logger.Info("Imported bank lines",
		"view", view.ID,
		"added", result.Added,
		"duplicates", result.Duplicates,
		"skipped", result.Skipped)

	return result, nil
}

func viewDirection(view ledger.View) (model.Direction, bool) {
	switch view.ID {
	case ledger.Receipts.ID:
		return model.DirectionCredit, true
	case ledger.Expenses.ID:
		return model.DirectionDebit, true
	}
	return "", false
}

// BankValues maps a bank line onto the input columns of view. Expenses are
// booked at the debited amount with no VAT and as fully paid.
func BankValues(view ledger.View, line model.BankLine) map[string]any {
	reference := line.ID
	if line.CheckNumber != "" {
		reference = line.CheckNumber
	}

	values := map[string]any{
		"date":      line.Date.Format(grid.DateLayout),
		"reference": reference,
		"method":    paymentMethod(line),
		"notes":     line.Name,
	}

	switch view.ID {
	case ledger.Receipts.ID:
		values["patient"] = line.Counterparty()
		values["amount"] = line.Amount
	case ledger.Expenses.ID:
		values["supplier"] = line.Counterparty()
		values["amountHT"] = line.Amount
		values["vatRate"] = 0.0
		values["paid"] = line.Amount
	}
	return values
}

func paymentMethod(line model.BankLine) string {
	label := strings.ToUpper(line.Name)
	switch {
	case line.CheckNumber != "" || line.Type == "CHECK" || strings.HasPrefix(label, "CHQ") || strings.HasPrefix(label, "REMISE CHEQUE"):
		return methodCheck
	case line.Type == "ATM" || line.Type == "CASH" || strings.HasPrefix(label, "RETRAIT"):
		return methodCash
	case line.Type == "POS" || strings.HasPrefix(label, "CB ") || strings.HasPrefix(label, "CARTE") ||
		strings.HasPrefix(label, "PAIEMENT CB") || strings.HasPrefix(label, "REMISE CB"):
		return methodCard
	default:
		return methodTransfer
	}
}

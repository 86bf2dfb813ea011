// Package model holds the data types exchanged between importers, storage
// and the ledger.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Direction tells whether money came in or went out.
type Direction string

// Bank line directions.
const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// BankLine is one entry of a bank statement or feed. Amount is always
// positive; Direction carries the sign.
type BankLine struct {
	Date        time.Time
	ID          string
	Name        string // raw statement label
	Payee       string // cleaned counterparty
	AccountID   string
	Hash        string
	Type        string // e.g. DEBIT, CHECK, PAYMENT, ATM
	CheckNumber string
	Direction   Direction
	Amount      float64
}

// GenerateHash creates a unique hash for duplicate detection.
func (l *BankLine) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s:%s",
		l.Date.Format("2006-01-02"),
		l.Amount,
		l.Direction,
		l.Payee,
		l.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Counterparty returns the cleaned payee, or the raw label when there is
// none.
func (l BankLine) Counterparty() string {
	if l.Payee != "" {
		return l.Payee
	}
	return l.Name
}

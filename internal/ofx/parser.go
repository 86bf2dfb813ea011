// Package ofx reads OFX/QFX bank statements into bank lines.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/aclindsa/ofxgo"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// an SGML opening tag alone on its line and missing its closing bracket
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	// "CB 12/03 " style card date prefixes
	cardDateRegex = regexp.MustCompile(`^\d{2}/\d{2}(/\d{2,4})?\s+`)
)

// labelPrefixes are the bank wording stripped from statement labels to find
// the counterparty.
var labelPrefixes = []string{
	"PRLV SEPA ",
	"VIR SEPA RECU ",
	"VIR SEPA ",
	"VIR INST ",
	"VIR ",
	"PAIEMENT PAR CARTE ",
	"PAIEMENT CB ",
	"CARTE ",
	"CB ",
	"REMISE CHEQUE ",
	"REMISE CB ",
	"CHQ ",
	"RETRAIT DAB ",
	"POS PURCHASE ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file and returns its bank lines.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.BankLine, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var lines []model.BankLine
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			lines = append(lines, p.convertList(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))...)
		}
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			lines = append(lines, p.convertList(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))...)
		}
	}

	slog.Info("Parsed OFX file",
		"bank_lines", len(lines),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return lines, nil
}

func (p *Parser) convertList(list *ofxgo.TransactionList, accountID string) []model.BankLine {
	if list == nil {
		return nil
	}
	lines := make([]model.BankLine, 0, len(list.Transactions))
	for _, tx := range list.Transactions {
		lines = append(lines, p.convertTransaction(tx, accountID))
	}
	return lines
}

// convertTransaction converts an OFX transaction to a bank line. OFX
// amounts are negative for money going out.
func (p *Parser) convertTransaction(tx ofxgo.Transaction, accountID string) model.BankLine {
	amount, _ := tx.TrnAmt.Float64()
	direction := model.DirectionCredit
	if amount < 0 {
		amount = -amount
		direction = model.DirectionDebit
	}

	line := model.BankLine{
		ID:          string(tx.FiTID),
		Date:        tx.DtPosted.Time,
		Name:        strings.TrimSpace(string(tx.Name)),
		Payee:       p.extractPayee(tx),
		AccountID:   accountID,
		Amount:      amount,
		Direction:   direction,
		Type:        tx.TrnType.String(),
		CheckNumber: string(tx.CheckNum),
	}
	line.Hash = line.GenerateHash()
	return line
}

// extractPayee finds a clean counterparty name in OFX data.
func (p *Parser) extractPayee(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}
	return cleanLabel(name)
}

func cleanLabel(name string) string {
	upper := strings.ToUpper(name)
	for _, prefix := range labelPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	name = cardDateRegex.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// isGenericDescription checks if a statement label is too generic to name
// the counterparty.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "", "DEBIT", "CREDIT", "VIREMENT", "PRELEVEMENT", "PAIEMENT", "PAYMENT", "CARTE", "PURCHASE":
		return true
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id ofxgo.String) {
		if id != "" && !seen[string(id)] {
			seen[string(id)] = true
			accounts = append(accounts, string(id))
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(stmt.BankAcctFrom.AcctID)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(stmt.CCAcctFrom.AcctID)
		}
	}

	return accounts, nil
}

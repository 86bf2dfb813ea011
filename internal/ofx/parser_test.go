package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>FRA
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>EUR
<BANKACCTFROM>
<BANKID>30004
<ACCTID>00012345678
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301120000[0:GMT]
<DTEND>20240331120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240305120000[0:GMT]
<TRNAMT>412.50
<FITID>2024030501
<NAME>VIR SEPA RECU CPAM DU RHONE
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240312120000[0:GMT]
<TRNAMT>-38.90
<FITID>2024031201
<NAME>CB 12/03 PHARMACIE DU CENTRE
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240320120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024032001
<CHECKNUM>8812
<NAME>CHQ 8812
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>FRA
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>EUR
<CCACCTFROM>
<ACCTID>4970101122223333
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301120000[0:GMT]
<DTEND>20240331120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240310120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024031001
<NAME>PAIEMENT CB 09/03 MEDISTORE
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240315120000[0:GMT]
<TRNAMT>15.00
<FITID>CC2024031501
<NAME>REMBOURSEMENT MEDISTORE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-30.99
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantLen int
		wantErr bool
	}{
		{
			name:    "bank statement",
			content: sampleBankOFX,
			wantLen: 3,
		},
		{
			name:    "credit card statement",
			content: sampleCreditCardOFX,
			wantLen: 2,
		},
		{
			name:    "leading whitespace is tolerated",
			content: "\n\n  " + sampleBankOFX,
			wantLen: 3,
		},
		{
			name:    "invalid content",
			content: "this is not an OFX file",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()
			lines, err := parser.ParseFile(context.Background(), strings.NewReader(tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, lines, tt.wantLen)
		})
	}
}

func TestParseBankLines(t *testing.T) {
	parser := NewParser()

	lines, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, lines, 3)

	credit := lines[0]
	assert.Equal(t, "2024030501", credit.ID)
	assert.Equal(t, "VIR SEPA RECU CPAM DU RHONE", credit.Name)
	assert.Equal(t, "CPAM DU RHONE", credit.Payee)
	assert.Equal(t, 412.50, credit.Amount)
	assert.Equal(t, model.DirectionCredit, credit.Direction)
	assert.Equal(t, "00012345678", credit.AccountID)
	assert.Equal(t, 2024, credit.Date.Year())
	assert.Equal(t, time.March, credit.Date.Month())
	assert.Equal(t, 5, credit.Date.Day())
	assert.NotEmpty(t, credit.Hash)

	card := lines[1]
	assert.Equal(t, "PHARMACIE DU CENTRE", card.Payee)
	assert.Equal(t, 38.90, card.Amount)
	assert.Equal(t, model.DirectionDebit, card.Direction)

	check := lines[2]
	assert.Equal(t, "CHECK", check.Type)
	assert.Equal(t, "8812", check.CheckNumber)
	assert.Equal(t, 500.00, check.Amount)
	assert.Equal(t, model.DirectionDebit, check.Direction)
}

func TestParseCreditCardLines(t *testing.T) {
	parser := NewParser()

	lines, err := parser.ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "CC2024031001", lines[0].ID)
	assert.Equal(t, "MEDISTORE", lines[0].Payee)
	assert.Equal(t, 45.99, lines[0].Amount)
	assert.Equal(t, model.DirectionDebit, lines[0].Direction)
	assert.Equal(t, "4970101122223333", lines[0].AccountID)

	assert.Equal(t, "REMBOURSEMENT MEDISTORE", lines[1].Payee)
	assert.Equal(t, 15.00, lines[1].Amount)
	assert.Equal(t, model.DirectionCredit, lines[1].Direction)
}

func TestParseFile_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().ParseFile(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractPayee(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		label    string
		memo     string
		payee    string
		expected string
	}{
		{
			name:     "direct debit prefix",
			label:    "PRLV SEPA URSSAF RHONE ALPES",
			expected: "URSSAF RHONE ALPES",
		},
		{
			name:     "card prefix with date",
			label:    "CB 28/02 LABORATOIRE BIOMED",
			expected: "LABORATOIRE BIOMED",
		},
		{
			name:     "prefix is case-insensitive",
			label:    "Vir Sepa Dr Martin",
			expected: "Dr Martin",
		},
		{
			name:     "keep clean name",
			label:    "EDF",
			expected: "EDF",
		},
		{
			name:     "trim whitespace",
			label:    "  MAIF  ",
			expected: "MAIF",
		},
		{
			name:     "generic label falls back to memo",
			label:    "PRELEVEMENT",
			memo:     "DGFIP CFE 2024",
			expected: "DGFIP CFE 2024",
		},
		{
			name:     "payee aggregate wins",
			label:    "VIR SEPA 1234",
			payee:    "Mutuelle Generale",
			expected: "Mutuelle Generale",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ofxgo.Transaction{
				Name: ofxgo.String(tt.label),
				Memo: ofxgo.String(tt.memo),
			}
			if tt.payee != "" {
				tx.Payee = &ofxgo.Payee{Name: ofxgo.String(tt.payee)}
			}
			assert.Equal(t, tt.expected, parser.extractPayee(tx))
		})
	}
}

func TestBankLineDeduplication(t *testing.T) {
	parser := NewParser()

	first, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	second, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].Hash, second[i].Hash, "re-importing a statement yields the same hashes")
	}

	seen := make(map[string]bool)
	for _, line := range first {
		assert.False(t, seen[line.Hash], "hash %s repeated", line.Hash)
		seen[line.Hash] = true
	}
}

func TestGetAccounts(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{
			name:     "bank account",
			content:  sampleBankOFX,
			expected: []string{"00012345678"},
		},
		{
			name:     "credit card account",
			content:  sampleCreditCardOFX,
			expected: []string{"4970101122223333"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts, err := NewParser().GetAccounts(context.Background(), strings.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, accounts)
		})
	}
}

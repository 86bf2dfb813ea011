// Package plaid fetches bank lines from the Plaid API.
package plaid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/plaid/plaid-go/v20/plaid"
)

const (
	dateLayout = "2006-01-02"
	// Plaid's max page size.
	pageSize = int32(500)
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	switch {
	case c.ClientID == "":
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	case c.Secret == "":
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	case c.AccessToken == "":
		return fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	case c.Environment == "":
		return fmt.Errorf("%w: plaid environment is required", common.ErrMissingConfig)
	case c.Environment != "sandbox" && c.Environment != "production":
		return fmt.Errorf("%w: plaid environment must be sandbox or production", common.ErrInvalidConfig)
	}
	return nil
}

// Client implements service.BankSource on top of the Plaid API.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   service.RetryOptions
	accessToken string
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// GetBankLines fetches the transactions posted between startDate and
// endDate, following pagination.
func (c *Client) GetBankLines(ctx context.Context, startDate, endDate time.Time) ([]model.BankLine, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}
	if startDate.After(endDate) {
		return nil, errors.New("start date must be before end date")
	}

	c.logger.Info("Fetching transactions from Plaid",
		"start_date", startDate.Format(dateLayout),
		"end_date", endDate.Format(dateLayout))

	var all []plaid.Transaction
	offset := int32(0)

	for {
		var page []plaid.Transaction

		err := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsGetRequest(
				c.accessToken,
				startDate.Format(dateLayout),
				endDate.Format(dateLayout),
			)
			request.SetOptions(plaid.TransactionsGetRequestOptions{
				Count:  plaid.PtrInt32(pageSize),
				Offset: plaid.PtrInt32(offset),
			})

			resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				return c.classify(err, "failed to fetch transactions")
			}

			page = resp.GetTransactions()
			c.logger.Debug("Fetched transaction batch",
				"count", len(page),
				"offset", offset,
				"total", resp.GetTotalTransactions())
			return nil
		}, c.retryOpts)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < int(pageSize) {
			break
		}
		offset += pageSize
	}

	c.logger.Info("Fetched all transactions", "count", len(all))

	lines := make([]model.BankLine, 0, len(all))
	for _, pt := range all {
		lines = append(lines, c.toBankLine(fromPlaid(pt)))
	}
	return lines, nil
}

// GetAccounts fetches account IDs from Plaid.
func (c *Client) GetAccounts(ctx context.Context) ([]string, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}

	var accounts []plaid.AccountBase
	err := common.WithRetry(ctx, func() error {
		request := plaid.NewAccountsGetRequest(c.accessToken)
		resp, _, err := c.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			return c.classify(err, "failed to fetch accounts")
		}
		accounts = resp.GetAccounts()
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.GetAccountId())
	}
	return ids, nil
}

// classify turns an API failure into a retryable rate-limit error or a
// permanent one.
func (c *Client) classify(err error, msg string) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
		c.logger.Warn("Rate limit hit, will retry", "error", plaidErr.ErrorMessage)
		return &common.RetryableError{Err: common.ErrPlaidRateLimit, Retryable: true}
	}
	return common.Permanent(fmt.Errorf("%w: %s - %s", common.ErrPlaidConnection, plaidErr.ErrorCode, plaidErr.ErrorMessage))
}

// transaction is the subset of a Plaid transaction a bank line needs.
type transaction struct {
	ID           string
	AccountID    string
	Date         string
	Name         string
	MerchantName string
	Channel      string
	CheckNumber  string
	Amount       float64
}

func fromPlaid(pt plaid.Transaction) transaction {
	tx := transaction{
		ID:           pt.GetTransactionId(),
		AccountID:    pt.GetAccountId(),
		Date:         pt.GetDate(),
		Name:         pt.GetName(),
		MerchantName: pt.GetMerchantName(),
		Channel:      pt.GetPaymentChannel(),
		Amount:       pt.GetAmount(),
	}
	if pt.HasCheckNumber() {
		tx.CheckNumber = pt.GetCheckNumber()
	}
	return tx
}

// toBankLine maps a Plaid transaction. Plaid amounts are positive for money
// going out.
func (c *Client) toBankLine(tx transaction) model.BankLine {
	date, err := time.Parse(dateLayout, tx.Date)
	if err != nil {
		c.logger.Error("Failed to parse transaction date", "date", tx.Date, "error", err)
		date = time.Now()
	}

	payee := tx.MerchantName
	if payee == "" {
		payee = tx.Name
	}

	lineType := ""
	switch tx.Channel {
	case "":
	case "online":
		lineType = "ONLINE"
	case "in store":
		lineType = "POS"
	default:
		lineType = "OTHER"
	}
	if tx.CheckNumber != "" && lineType == "" {
		lineType = "CHECK"
	}

	amount := tx.Amount
	direction := model.DirectionDebit
	if amount < 0 {
		direction = model.DirectionCredit
		amount = -amount
	}

	line := model.BankLine{
		Date:        date,
		ID:          tx.ID,
		Name:        tx.Name,
		Payee:       cleanPayee(payee),
		AccountID:   tx.AccountID,
		Amount:      amount,
		Direction:   direction,
		Type:        lineType,
		CheckNumber: tx.CheckNumber,
	}
	line.Hash = line.GenerateHash()
	return line
}

// legalSuffixes are company forms dropped from payee names.
var legalSuffixes = []string{
	" Sarl",
	" Sas",
	" Sasu",
	" Selarl",
	" Scm",
	" Eurl",
	" Sa",
	" Llc",
	" Inc",
	" Ltd",
}

// cleanPayee title-cases a payee, drops a trailing reference number and
// company-form suffixes.
func cleanPayee(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		runes := []rune(word)
		for j := range runes {
			if j == 0 || !unicode.IsLetter(runes[j-1]) {
				runes[j] = unicode.ToUpper(runes[j])
			}
		}
		words[i] = string(runes)
	}

	if n := len(words); n > 1 && len(words[n-1]) > 5 && isAllDigits(words[n-1]) {
		words = words[:n-1]
	}
	name = strings.Join(words, " ")

	for changed := true; changed; {
		changed = false
		for _, suffix := range legalSuffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSuffix(name, suffix)
				changed = true
			}
		}
	}
	return strings.TrimSpace(name)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var _ service.BankSource = (*Client)(nil)

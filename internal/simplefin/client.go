// Package simplefin fetches bank lines from a SimpleFIN bridge.
package simplefin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Errors returned by the SimpleFIN client.
var (
	ErrMissingToken = errors.New("no SimpleFIN setup token and no saved access URL")
	ErrInvalidToken = errors.New("invalid SimpleFIN token")
)

// APIError is a non-200 answer from the bridge.
type APIError struct {
	Body       string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("SimpleFIN API error: %d - %s", e.StatusCode, e.Body)
}

const defaultTimeout = 30 * time.Second

type accountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []account `json:"accounts"`
}

type account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Transactions []transaction `json:"transactions"`
}

type transaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Posted      int64  `json:"posted"`
	Pending     bool   `json:"pending"`
}

// Client reads account transactions through a claimed access URL.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	accessURL  string
}

// NewClient loads the saved access URL from stateFile, claiming token first
// when there is none.
func NewClient(ctx context.Context, token, stateFile string) (*Client, error) {
	httpClient := &http.Client{Timeout: defaultTimeout}
	auth, err := LoadOrClaimAuth(ctx, httpClient, token, stateFile)
	if err != nil {
		return nil, err
	}
	return NewClientWithURL(auth.AccessURL, httpClient, slog.Default()), nil
}

// NewClientWithURL builds a client for an already claimed access URL.
func NewClientWithURL(accessURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		accessURL:  strings.TrimRight(accessURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// GetBankLines returns the posted transactions between startDate and
// endDate, both inclusive. Pending transactions are left out.
func (c *Client) GetBankLines(ctx context.Context, startDate, endDate time.Time) ([]model.BankLine, error) {
	set, err := c.accounts(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	for _, msg := range set.Errors {
		c.logger.Warn("SimpleFIN bridge reported an error", "message", msg)
	}

	last := endDate.AddDate(0, 0, 1)
	var lines []model.BankLine
	for _, acct := range set.Accounts {
		for _, tx := range acct.Transactions {
			if tx.Pending {
				continue
			}
			date := time.Unix(tx.Posted, 0).UTC()
			if date.Before(startDate) || !date.Before(last) {
				continue
			}

			line, err := toBankLine(acct, tx, date)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}
	}

	c.logger.Info("Fetched SimpleFIN lines",
		"accounts", len(set.Accounts),
		"lines", len(lines),
		"start", startDate.Format(time.DateOnly),
		"end", endDate.Format(time.DateOnly))
	return lines, nil
}

func (c *Client) accounts(ctx context.Context, startDate, endDate time.Time) (*accountSet, error) {
	u, err := url.Parse(c.accessURL + "/accounts")
	if err != nil {
		return nil, fmt.Errorf("failed to parse access URL: %w", err)
	}

	// end-date is exclusive on the bridge side.
	q := u.Query()
	q.Set("start-date", strconv.FormatInt(startDate.Unix(), 10))
	q.Set("end-date", strconv.FormatInt(endDate.AddDate(0, 0, 1).Unix(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var set accountSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}
	return &set, nil
}

func toBankLine(acct account, tx transaction, date time.Time) (model.BankLine, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(tx.Amount))
	if err != nil {
		return model.BankLine{}, fmt.Errorf("failed to parse amount %q of %s: %w", tx.Amount, tx.ID, err)
	}

	direction := model.DirectionCredit
	if amount.IsNegative() {
		direction = model.DirectionDebit
	}
	value, _ := amount.Abs().Float64()

	line := model.BankLine{
		Date:      date,
		ID:        acct.ID + "_" + tx.ID,
		Name:      tx.Description,
		Payee:     normalizePayee(tx.Payee),
		AccountID: acct.ID,
		Amount:    value,
		Direction: direction,
	}
	line.Hash = line.GenerateHash()
	return line, nil
}

var payeeCaser = cases.Title(language.French)

var payeeSuffixes = []string{" Sarl", " Sas", " Selarl", " Scm", " Eurl", " Sa"}

// normalizePayee title-cases a payee and drops company-form suffixes.
func normalizePayee(raw string) string {
	payee := payeeCaser.String(strings.Join(strings.Fields(raw), " "))
	for _, suffix := range payeeSuffixes {
		payee = strings.TrimSuffix(payee, suffix)
	}
	return payee
}

var _ service.BankSource = (*Client)(nil)

package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
)

// MockClient is a scripted bank source for tests.
type MockClient struct {
	GetBankLinesFn func(ctx context.Context, startDate, endDate time.Time) ([]model.BankLine, error)
	Calls          []GetBankLinesCall
}

// GetBankLinesCall records the parameters of a GetBankLines call.
type GetBankLinesCall struct {
	StartDate time.Time
	EndDate   time.Time
}

// NewMockClient creates a new mock Plaid client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// GetBankLines records the call and returns the scripted lines.
func (m *MockClient) GetBankLines(ctx context.Context, startDate, endDate time.Time) ([]model.BankLine, error) {
	m.Calls = append(m.Calls, GetBankLinesCall{StartDate: startDate, EndDate: endDate})
	if m.GetBankLinesFn != nil {
		return m.GetBankLinesFn(ctx, startDate, endDate)
	}
	return []model.BankLine{}, nil
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.Calls = nil
}

var _ service.BankSource = (*MockClient)(nil)

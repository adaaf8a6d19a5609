package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO 8601 calendar date format used for transaction dates
const DateLayout = "2006-01-02"

// TransactionType is the direction of a transaction
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Transaction represents a single income or expense record.
// Amount is never negative; the direction is carried by Type.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"` // Format: YYYY-MM-DD
	CreatedAt   time.Time       `json:"created_at"`
}

// Month returns the YYYY-MM bucket of the transaction date
func (t Transaction) Month() string {
	if d, err := time.Parse(DateLayout, t.Date); err == nil {
		return d.Format("2006-01")
	}
	if len(t.Date) >= 7 {
		return t.Date[:7]
	}
	return t.Date
}

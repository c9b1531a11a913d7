package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DateLayout is the persisted timestamp format of a transaction.
const DateLayout = "2006-01-02 15:04:05"

const maxDescriptionLen = 200

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string
		Amount      Money // always a positive magnitude; sign comes from Type
		Type        TransactionType
		Description string
		Category    string // optional
		Date        time.Time
	}

	// Settings holds the user-configurable values. A zero limit means no limit.
	Settings struct {
		MonthlyExpenseLimit Money
	}
)

var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidType        = errors.New("transaction type must be income or expense")
	ErrInvalidDate        = errors.New("date cannot be zero")
	ErrNegativeLimit      = errors.New("limit cannot be negative")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string {
	return string(t)
}

// ParseTransactionType accepts "income" or "expense" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &ValidationError{Field: "type", Err: ErrInvalidType}
	}
	return t, nil
}

// NewTransaction builds a validated transaction with a fresh ID.
// Date is truncated to whole seconds, the precision it is stored with.
func NewTransaction(amount Money, description string, typ TransactionType, date time.Time, category string) (Transaction, error) {
	t := Transaction{
		ID:          uuid.NewString(),
		Amount:      amount,
		Type:        typ,
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
		Date:        date.Truncate(time.Second),
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if utf8.RuneCountInString(t.Description) > maxDescriptionLen {
		return &ValidationError{Field: "description", Err: ErrDescriptionTooLong}
	}
	if !t.Type.Valid() {
		return &ValidationError{Field: "type", Err: ErrInvalidType}
	}
	if t.Date.IsZero() {
		return &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	return nil
}

// Signed returns the amount with its ledger sign: positive for income,
// negative for expense.
func (t Transaction) Signed() Money {
	if t.Type == Expense {
		return Money{Cents: -t.Amount.Cents}
	}
	return t.Amount
}

// YearMonth returns the calendar month the transaction belongs to.
func (t Transaction) YearMonth() YearMonth {
	return YearMonthOf(t.Date)
}

func (s Settings) Validate() error {
	if s.MonthlyExpenseLimit.Cents < 0 {
		return &ValidationError{Field: "monthly_expense_limit", Err: ErrNegativeLimit}
	}
	return nil
}

// Limit reports the monthly expense limit and whether one is set.
func (s Settings) Limit() (Money, bool) {
	return s.MonthlyExpenseLimit, s.MonthlyExpenseLimit.Cents > 0
}

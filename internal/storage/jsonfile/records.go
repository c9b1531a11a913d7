package jsonfile

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
)

// transactionRecord is the on-disk shape of a transaction. Amount is a
// positive number in currency units; the sign lives in TransactionType.
type transactionRecord struct {
	ID              string   `json:"id"`
	Amount          *float64 `json:"amount"`
	Category        string   `json:"category"`
	Description     string   `json:"description"`
	TransactionType string   `json:"transaction_type"`
	Date            string   `json:"date"`
}

type settingsRecord struct {
	MonthlyExpenseLimit *float64 `json:"monthly_expense_limit"`
	MonthlyLimit        *float64 `json:"monthly_limit"` // older files
}

type summaryRecord struct {
	Income        float64 `json:"income"`
	Expense       float64 `json:"expense"`
	Net           float64 `json:"net"`
	LimitExceeded bool    `json:"limit_exceeded"`
}

var errMissingAmount = errors.New("missing amount")

// dateLayouts are tried in order when reading a record's date.
var dateLayouts = []string{core.DateLayout, time.RFC3339, "2006-01-02"}

func fromCore(t core.Transaction) transactionRecord {
	amount := t.Amount.Float()
	return transactionRecord{
		ID:              t.ID,
		Amount:          &amount,
		Category:        t.Category,
		Description:     t.Description,
		TransactionType: t.Type.String(),
		Date:            t.Date.Format(core.DateLayout),
	}
}

// toCore turns a decoded record into a validated transaction. Records
// without an ID get a fresh one.
func (r transactionRecord) toCore() (core.Transaction, error) {
	if r.Amount == nil {
		return core.Transaction{}, &core.ValidationError{Field: "amount", Err: errMissingAmount}
	}
	typ, err := core.ParseTransactionType(r.TransactionType)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDate(r.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.MoneyFromFloat(*r.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	t := core.Transaction{
		ID:          id,
		Amount:      amount,
		Type:        typ,
		Description: strings.TrimSpace(r.Description),
		Category:    strings.TrimSpace(r.Category),
		Date:        date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return d, nil
		}
	}
	return time.Time{}, &core.ValidationError{Field: "date", Err: core.ErrInvalidDate}
}

func (r settingsRecord) toCore() (core.Settings, error) {
	limit := r.MonthlyExpenseLimit
	if limit == nil {
		limit = r.MonthlyLimit
	}
	if limit == nil {
		return core.Settings{}, nil
	}
	m, err := core.MoneyFromFloat(*limit)
	if err != nil {
		return core.Settings{}, err
	}
	return core.Settings{MonthlyExpenseLimit: m}, nil
}

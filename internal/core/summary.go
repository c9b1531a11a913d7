package core

import (
	"fmt"
	"sort"
	"time"
)

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthlySummary aggregates one calendar month of the ledger.
type MonthlySummary struct {
	YearMonth     YearMonth
	TotalIncome   Money
	TotalExpense  Money
	NetBalance    Money
	Limit         Money // zero when no limit is configured
	LimitExceeded bool
}

// Balance is the income/expense split of an arbitrary set of transactions.
type Balance struct {
	TotalIncome  Money
	TotalExpense Money
	Net          Money
}

func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses the "2006-01" form.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, &ValidationError{Field: "year_month", Err: fmt.Errorf("expected YYYY-MM, got %q", s)}
	}
	return YearMonthOf(t), nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

// ComputeMonthlySummary totals the transactions dated within ym and checks
// the expense total against limit. A zero or negative limit is never exceeded.
func ComputeMonthlySummary(txs []Transaction, ym YearMonth, limit Money) MonthlySummary {
	s := MonthlySummary{YearMonth: ym}
	if limit.Cents > 0 {
		s.Limit = limit
	}
	for _, t := range txs {
		if t.YearMonth() != ym {
			continue
		}
		s.add(t)
	}
	s.finish()
	return s
}

func (s *MonthlySummary) add(t Transaction) {
	switch t.Type {
	case Income:
		s.TotalIncome = s.TotalIncome.Add(t.Amount)
	case Expense:
		s.TotalExpense = s.TotalExpense.Add(t.Amount)
	}
}

func (s *MonthlySummary) finish() {
	s.NetBalance = s.TotalIncome.Sub(s.TotalExpense)
	s.LimitExceeded = s.Limit.Cents > 0 && s.TotalExpense.Cents > s.Limit.Cents
}

// ComputeOverallBalance sums the signed amounts of every transaction.
func ComputeOverallBalance(txs []Transaction) Money {
	var total Money
	for _, t := range txs {
		total = total.Add(t.Signed())
	}
	return total
}

func ComputeBalance(txs []Transaction) Balance {
	var b Balance
	for _, t := range txs {
		switch t.Type {
		case Income:
			b.TotalIncome = b.TotalIncome.Add(t.Amount)
		case Expense:
			b.TotalExpense = b.TotalExpense.Add(t.Amount)
		}
	}
	b.Net = b.TotalIncome.Sub(b.TotalExpense)
	return b
}

// ComputeYearlySummary is ComputeBalance restricted to one calendar year.
func ComputeYearlySummary(txs []Transaction, year int) Balance {
	inYear := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Date.Year() == year {
			inYear = append(inYear, t)
		}
	}
	return ComputeBalance(inYear)
}

// SummarizeByMonth groups the ledger in a single pass and returns one
// summary per month that has transactions, oldest first.
func SummarizeByMonth(txs []Transaction, limit Money) []MonthlySummary {
	byMonth := make(map[YearMonth]*MonthlySummary)
	for _, t := range txs {
		ym := t.YearMonth()
		s, ok := byMonth[ym]
		if !ok {
			s = &MonthlySummary{YearMonth: ym}
			if limit.Cents > 0 {
				s.Limit = limit
			}
			byMonth[ym] = s
		}
		s.add(t)
	}
	out := make([]MonthlySummary, 0, len(byMonth))
	for _, s := range byMonth {
		s.finish()
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].YearMonth.Before(out[j].YearMonth) })
	return out
}

// Months lists the distinct months present in the ledger, oldest first.
func Months(txs []Transaction) []YearMonth {
	seen := make(map[YearMonth]struct{})
	var out []YearMonth
	for _, t := range txs {
		ym := t.YearMonth()
		if _, ok := seen[ym]; ok {
			continue
		}
		seen[ym] = struct{}{}
		out = append(out, ym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Categories returns the sorted, distinct non-empty categories used by
// transactions of the given type.
func Categories(txs []Transaction, typ TransactionType) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range txs {
		if t.Type != typ || t.Category == "" {
			continue
		}
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	sort.Strings(out)
	return out
}

// FilterByType keeps ledger order.
func FilterByType(txs []Transaction, typ TransactionType) []Transaction {
	var out []Transaction
	for _, t := range txs {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	return out
}

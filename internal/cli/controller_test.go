package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"ledger/internal/core"
	"ledger/internal/services"
	"ledger/internal/storage/memory"
)

var fixedNow = time.Date(2025, 1, 20, 10, 0, 0, 0, time.Local)

type harness struct {
	store    *memory.Store
	ledger   *services.Ledger
	settings *services.SettingsManager
	out      bytes.Buffer
}

func newHarness(t *testing.T, store *memory.Store) *harness {
	t.Helper()
	ctx := context.Background()
	h := &harness{store: store}
	var err error
	if h.ledger, err = services.OpenLedger(ctx, store, services.WithSummaryStore(store)); err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	if h.settings, err = services.OpenSettings(ctx, store, nil); err != nil {
		t.Fatalf("open settings: %v", err)
	}
	return h
}

// run feeds the given input lines to a fresh controller and returns its output.
func (h *harness) run(t *testing.T, lines ...string) string {
	t.Helper()
	h.out.Reset()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	c := NewController(h.ledger, h.settings, in, &h.out, "TL", WithClock(func() time.Time { return fixedNow }))
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return h.out.String()
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Fatalf("output missing %q:\n%s", w, out)
		}
	}
}

func TestAddIncomeAndExpenseThenBalance(t *testing.T) {
	h := newHarness(t, memory.New())
	out := h.run(t,
		"1", "1000", "Salary", "salary", "",
		"2", "200", "Food", "groceries", "",
		"4",
		"0",
	)
	assertContains(t, out,
		"Income successfully added: 1,000.00 TL",
		"Expense successfully added: 200.00 TL",
		"Net Balance  : +800.00 TL",
		"Income Categories: Salary",
		"Expense Categories: Food",
		"Have a good day!",
	)
	if got := h.ledger.OverallBalance(); got.Cents != 80000 {
		t.Fatalf("expected 800.00, got %s", got)
	}
	persisted, _ := h.store.LoadTransactions(context.Background())
	if len(persisted) != 2 || !persisted[0].Date.Equal(fixedNow) {
		t.Fatalf("unexpected persisted ledger %+v", persisted)
	}
}

func TestAmountValidationRetries(t *testing.T) {
	h := newHarness(t, memory.New())
	out := h.run(t,
		"2", "0", "-5", "abc", "12,50", "", "", "coffee", "2025-01-05",
		"0",
	)
	if strings.Count(out, "Amount must be a number greater than zero!") != 3 {
		t.Fatalf("expected three amount complaints:\n%s", out)
	}
	assertContains(t, out, "Description cannot be empty!", "Expense successfully added: 12.50 TL")
	txs := h.ledger.Transactions()
	if len(txs) != 1 || txs[0].Date.Day() != 5 || txs[0].Category != "" {
		t.Fatalf("unexpected ledger %+v", txs)
	}
}

func TestMonthlyLimitWarning(t *testing.T) {
	h := newHarness(t, memory.New())
	out := h.run(t,
		"6", "-1", "500",
		"2", "300", "", "rent", "",
		"2", "250", "", "food", "",
		"5", "",
		"0",
	)
	assertContains(t, out,
		"Invalid input:",
		"Monthly limit set to 500.00 TL",
		"Warning: You have exceeded your monthly limit of 500.00 TL for 2025-01!",
		"Monthly Summary - 2025-01",
		"Expense: 550.00 TL",
		"exceeded by 50.00 TL",
	)
	if strings.Count(out, "Warning: You have exceeded") != 1 {
		t.Fatalf("expected exactly one warning:\n%s", out)
	}
	snap := h.store.Summaries()
	if len(snap) != 1 || !snap[0].LimitExceeded {
		t.Fatalf("expected snapshot with exceeded month, got %+v", snap)
	}
}

func TestEmptyLedgerViews(t *testing.T) {
	h := newHarness(t, memory.New())
	out := h.run(t, "3", "4", "5", "2024-13", "2024-02", "7", "", "8", "0")
	assertContains(t, out,
		"No transactions recorded yet.",
		"Net Balance  : +0.00 TL",
		"Please enter the month as YYYY-MM!",
		"Monthly Summary - 2024-02",
		"Limit  : not set",
		"Yearly Summary - 2025",
	)
}

func TestListShowsLatestOfEachType(t *testing.T) {
	var seed []core.Transaction
	for i := 1; i <= 12; i++ {
		tx, _ := core.NewTransaction(core.Money{Cents: int64(i * 100)}, "expense "+string(rune('a'+i-1)), core.Expense, fixedNow, "")
		seed = append(seed, tx)
	}
	for i := 1; i <= 10; i++ {
		tx, _ := core.NewTransaction(core.Money{Cents: 1}, "income", core.Income, fixedNow, "")
		seed = append(seed, tx)
	}
	h := newHarness(t, memory.NewSeeded(seed, core.Settings{}))
	out := h.run(t, "3", "0")

	assertContains(t, out, "TOTAL 22 TRANSACTIONS", "INCOMES:", "EXPENSES:", "expense l", "total: 22")
	if strings.Contains(out, "expense a ") || strings.Contains(out, "expense b ") {
		t.Fatalf("oldest expenses should be hidden:\n%s", out)
	}
}

func TestInvalidChoiceAndEOF(t *testing.T) {
	h := newHarness(t, memory.New())
	out := h.run(t, "9")
	assertContains(t, out, "Invalid choice!", "Goodbye!")

	// input ending in the middle of an action is a normal exit
	out = h.run(t, "1", "100")
	assertContains(t, out, "Goodbye!")
	if h.ledger.Len() != 0 {
		t.Fatalf("partial input must not add a transaction")
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	h := newHarness(t, memory.New())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewController(h.ledger, h.settings, strings.NewReader("1\n"), &h.out, "TL")
	if err := c.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	assertContains(t, h.out.String(), "Terminating application...")
}

func TestGroupThousands(t *testing.T) {
	cases := map[string]string{
		"0.00":        "0.00",
		"999.99":      "999.99",
		"1000.00":     "1,000.00",
		"-1234567.89": "-1,234,567.89",
		"123456":      "123,456",
	}
	for in, want := range cases {
		if got := groupThousands(in); got != want {
			t.Fatalf("%q: expected %q, got %q", in, want, got)
		}
	}
}

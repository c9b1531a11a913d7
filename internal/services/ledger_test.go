package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ledger/internal/core"
	"ledger/internal/storage/memory"
)

// flakyStore fails saves while failSave is set.
type flakyStore struct {
	*memory.Store
	failSave bool
	failLoad bool
	saves    int
}

var errDisk = errors.New("disk full")

func (f *flakyStore) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	f.saves++
	if f.failSave {
		return &core.StorageError{Op: "save", Path: "test", Err: errDisk}
	}
	return f.Store.SaveTransactions(ctx, txs)
}

func (f *flakyStore) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	if f.failLoad {
		return nil, &core.StorageError{Op: "load", Path: "test", Err: errors.New("corrupt")}
	}
	return f.Store.LoadTransactions(ctx)
}

func (f *flakyStore) SaveSettings(ctx context.Context, s core.Settings) error {
	if f.failSave {
		return &core.StorageError{Op: "save", Path: "test", Err: errDisk}
	}
	return f.Store.SaveSettings(ctx, s)
}

func (f *flakyStore) SaveSummaries(ctx context.Context, s []core.MonthlySummary) error {
	if f.failSave {
		return &core.StorageError{Op: "save", Path: "test", Err: errDisk}
	}
	return f.Store.SaveSummaries(ctx, s)
}

var jan15 = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func openLedger(t *testing.T, store *flakyStore) *Ledger {
	t.Helper()
	l, err := OpenLedger(context.Background(), store, WithSummaryStore(store))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	return l
}

func TestLedgerSalaryAndGroceries(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memory.New()}
	l := openLedger(t, store)

	if _, err := l.Record(ctx, core.Income, core.Money{Cents: 100000}, "salary", "job", jan15); err != nil {
		t.Fatalf("add income: %v", err)
	}
	if _, err := l.Record(ctx, core.Expense, core.Money{Cents: 20000}, "groceries", "food", jan15); err != nil {
		t.Fatalf("add expense: %v", err)
	}
	if got := l.OverallBalance(); got.Cents != 80000 {
		t.Fatalf("expected 800.00, got %s", got)
	}
	b := l.Balance()
	if b.TotalIncome.Cents != 100000 || b.TotalExpense.Cents != 20000 || b.Net.Cents != 80000 {
		t.Fatalf("unexpected balance %+v", b)
	}

	// persisted immediately
	reopened := openLedger(t, &flakyStore{Store: memory.NewSeeded(mustLoad(t, store), core.Settings{})})
	if reopened.Len() != 2 {
		t.Fatalf("expected 2 persisted transactions, got %d", reopened.Len())
	}
}

func mustLoad(t *testing.T, s *flakyStore) []core.Transaction {
	t.Helper()
	txs, err := s.LoadTransactions(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return txs
}

func TestLedgerMonthlyLimit(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, &flakyStore{Store: memory.New()})
	for _, cents := range []int64{30000, 25000} {
		if _, err := l.Record(ctx, core.Expense, core.Money{Cents: cents}, "spend", "", jan15); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	s := l.MonthlySummary(core.YearMonthOf(jan15), core.Money{Cents: 50000})
	if s.TotalExpense.Cents != 55000 || !s.LimitExceeded {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestLedgerEmpty(t *testing.T) {
	l := openLedger(t, &flakyStore{Store: memory.New()})
	if !l.OverallBalance().IsZero() {
		t.Fatalf("expected zero balance")
	}
	s := l.MonthlySummary(core.YearMonthOf(jan15), core.Money{Cents: 1})
	if !s.TotalExpense.IsZero() || !s.TotalIncome.IsZero() || s.LimitExceeded {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestLedgerRejectsZeroAmount(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memory.New()}
	l := openLedger(t, store)

	_, err := l.Record(ctx, core.Expense, core.Money{}, "nothing", "", jan15)
	if !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if l.Len() != 0 || store.saves != 0 {
		t.Fatalf("ledger changed: len=%d saves=%d", l.Len(), store.saves)
	}

	bad := core.Transaction{ID: "x", Amount: core.Money{}, Type: core.Expense, Description: "x", Date: jan15}
	if err := l.Add(ctx, bad); !core.IsValidation(err) {
		t.Fatalf("expected validation error from Add, got %v", err)
	}
}

func TestLedgerRollsBackOnStorageError(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memory.New()}
	l := openLedger(t, store)

	if _, err := l.Record(ctx, core.Income, core.Money{Cents: 100}, "first", "", jan15); err != nil {
		t.Fatalf("add: %v", err)
	}
	store.failSave = true
	_, err := l.Record(ctx, core.Income, core.Money{Cents: 200}, "second", "", jan15)
	if !core.IsStorage(err) || !errors.Is(err, errDisk) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if l.Len() != 1 || l.OverallBalance().Cents != 100 {
		t.Fatalf("expected rollback, got len=%d balance=%s", l.Len(), l.OverallBalance())
	}

	// snapshot failures are swallowed
	l.RefreshSnapshot(ctx, core.Money{})

	store.failSave = false
	if err := l.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := mustLoad(t, store); len(got) != 1 {
		t.Fatalf("expected 1 persisted transaction, got %d", len(got))
	}
}

func TestOpenLedgerStorageError(t *testing.T) {
	_, err := OpenLedger(context.Background(), &flakyStore{Store: memory.New(), failLoad: true})
	if !core.IsStorage(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestLedgerSnapshotAndQueries(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memory.New()}
	l := openLedger(t, store)
	feb := jan15.AddDate(0, 1, 0)

	_, _ = l.Record(ctx, core.Income, core.Money{Cents: 1000}, "pay", "job", jan15)
	_, _ = l.Record(ctx, core.Expense, core.Money{Cents: 700}, "rent", "home", feb)
	_, _ = l.Record(ctx, core.Expense, core.Money{Cents: 100}, "tea", "food", feb)

	l.RefreshSnapshot(ctx, core.Money{Cents: 500})
	snap := store.Summaries()
	if len(snap) != 2 || snap[0].YearMonth.Month != time.January || !snap[1].LimitExceeded {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	if got := l.ByType(core.Expense); len(got) != 2 || got[0].Description != "rent" {
		t.Fatalf("unexpected expenses %+v", got)
	}
	if got := l.Categories(core.Expense); len(got) != 2 || got[0] != "food" {
		t.Fatalf("unexpected categories %v", got)
	}
	if got := l.Months(); len(got) != 2 {
		t.Fatalf("unexpected months %v", got)
	}
	if y := l.YearlySummary(2025); y.Net.Cents != 200 {
		t.Fatalf("unexpected yearly net %s", y.Net)
	}

	txs := l.Transactions()
	txs[0].Description = "mutated"
	if l.Transactions()[0].Description != "pay" {
		t.Fatalf("Transactions must return a copy")
	}
}

func TestSettingsManager(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memory.New()}
	m, err := OpenSettings(ctx, store, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := m.Limit(); ok {
		t.Fatalf("expected no limit by default")
	}

	if err := m.SetLimit(ctx, core.Money{Cents: 50000}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if l, ok := m.Limit(); !ok || l.Cents != 50000 {
		t.Fatalf("unexpected limit %v %v", l, ok)
	}
	persisted, _ := store.LoadSettings(ctx)
	if persisted.MonthlyExpenseLimit.Cents != 50000 {
		t.Fatalf("limit not persisted: %+v", persisted)
	}

	if err := m.SetLimit(ctx, core.Money{Cents: -1}); !errors.Is(err, core.ErrNegativeLimit) {
		t.Fatalf("expected ErrNegativeLimit, got %v", err)
	}

	store.failSave = true
	if err := m.SetLimit(ctx, core.Money{Cents: 1}); !core.IsStorage(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if l, _ := m.Limit(); l.Cents != 50000 {
		t.Fatalf("limit changed after failed save: %s", l)
	}

	store.failSave = false
	if err := m.SetLimit(ctx, core.Money{}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := m.Limit(); ok {
		t.Fatalf("expected zero to disable the limit")
	}
}

func TestLedgerConcurrentAddAndClose(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memory.New()}
	l := openLedger(t, store)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Record(ctx, core.Expense, core.Money{Cents: 100}, "coffee", "", jan15); err != nil {
				t.Errorf("add: %v", err)
			}
			_ = l.OverallBalance()
		}()
	}
	if err := l.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	wg.Wait()

	if err := l.Close(ctx); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if got := mustLoad(t, store); len(got) != writers {
		t.Fatalf("expected %d persisted transactions, got %d", writers, len(got))
	}
	if got := l.OverallBalance(); got.Cents != -writers*100 {
		t.Fatalf("unexpected balance %s", got)
	}
}

// Package services holds the ledger and settings managers that sit between
// the CLI and the storage ports.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// Ledger is the in-process view of the transaction log for one run. It is
// loaded from storage on open, written back after every change and once
// more on Close. It is safe for concurrent use.
type Ledger struct {
	store     storage.TransactionStore
	summaries storage.SummaryStore
	logger    *log.Logger

	mu  sync.RWMutex
	txs []core.Transaction
}

type LedgerOption func(*Ledger)

// WithSummaryStore enables the derived monthly snapshot.
func WithSummaryStore(s storage.SummaryStore) LedgerOption {
	return func(l *Ledger) { l.summaries = s }
}

func WithLedgerLogger(logger *log.Logger) LedgerOption {
	return func(l *Ledger) { l.logger = logger }
}

// OpenLedger loads the persisted transactions. A storage error is returned
// as-is so the caller can decide whether to abort.
func OpenLedger(ctx context.Context, store storage.TransactionStore, opts ...LedgerOption) (*Ledger, error) {
	l := &Ledger{store: store, logger: log.Discard()}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.WithComponent(log.ComponentLedger)

	txs, err := store.LoadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	l.txs = txs

	l.logger.InfoContext(ctx, "Ledger loaded", log.FieldCount, len(txs))
	return l, nil
}

// Add appends a transaction and persists the whole ledger. If the save
// fails the transaction is dropped again, so memory matches what is on disk.
func (l *Ledger) Add(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.txs = append(l.txs, t)
	if err := l.store.SaveTransactions(ctx, l.txs); err != nil {
		l.txs = l.txs[:len(l.txs)-1]
		l.logger.ErrorContext(ctx, "Failed to persist transaction",
			log.NewFields().WithOperation(log.OpAppend).WithTransaction(t).WithError(err).ToSlice()...)
		return err
	}

	l.logger.InfoContext(ctx, "Transaction added",
		log.NewFields().WithOperation(log.OpAppend).WithTransaction(t).ToSlice()...)
	return nil
}

// Record builds, validates and adds a transaction in one step.
func (l *Ledger) Record(ctx context.Context, typ core.TransactionType, amount core.Money, description, category string, date time.Time) (core.Transaction, error) {
	t, err := core.NewTransaction(amount, description, typ, date, category)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := l.Add(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// Transactions returns a copy of the ledger in insertion order.
func (l *Ledger) Transactions() []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.Transaction(nil), l.txs...)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.txs)
}

func (l *Ledger) ByType(typ core.TransactionType) []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return core.FilterByType(l.txs, typ)
}

func (l *Ledger) Balance() core.Balance {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return core.ComputeBalance(l.txs)
}

func (l *Ledger) OverallBalance() core.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return core.ComputeOverallBalance(l.txs)
}

func (l *Ledger) MonthlySummary(ym core.YearMonth, limit core.Money) core.MonthlySummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return core.ComputeMonthlySummary(l.txs, ym, limit)
}

func (l *Ledger) YearlySummary(year int) core.Balance {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return core.ComputeYearlySummary(l.txs, year)
}

func (l *Ledger) Summaries(limit core.Money) []core.MonthlySummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return core.SummarizeByMonth(l.txs, limit)
}

func (l *Ledger) Categories(typ core.TransactionType) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return core.Categories(l.txs, typ)
}

func (l *Ledger) Months() []core.YearMonth {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return core.Months(l.txs)
}

// RefreshSnapshot writes the monthly summaries to the summary store, if one
// is configured. Failures are logged and otherwise ignored: the snapshot is
// derived data.
func (l *Ledger) RefreshSnapshot(ctx context.Context, limit core.Money) {
	if l.summaries == nil {
		return
	}
	summaries := l.Summaries(limit)
	if err := l.summaries.SaveSummaries(ctx, summaries); err != nil {
		l.logger.WarnContext(ctx, "Failed to write summary snapshot",
			log.NewFields().WithOperation(log.OpSnapshot).WithError(err).ToSlice()...)
		return
	}
	l.logger.DebugContext(ctx, "Summary snapshot written", log.FieldCount, len(summaries))
}

// Close performs the final save of the ledger.
func (l *Ledger) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.SaveTransactions(ctx, l.txs); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	l.logger.InfoContext(ctx, "Ledger closed", log.FieldCount, len(l.txs))
	return nil
}

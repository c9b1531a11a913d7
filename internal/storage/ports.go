// Package storage defines the persistence ports used by the ledger.
// Implementations live in the jsonfile, sqlite and memory subpackages.
package storage

import (
	"context"

	"ledger/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionStore persists the whole ledger. SaveTransactions replaces
	// the stored set all-or-nothing; LoadTransactions returns an empty set
	// when nothing has been saved yet.
	TransactionStore interface {
		LoadTransactions(ctx context.Context) ([]core.Transaction, error)
		SaveTransactions(ctx context.Context, txs []core.Transaction) error
	}

	// SettingsStore persists the single settings record. LoadSettings
	// returns zero-value settings when nothing has been saved yet.
	SettingsStore interface {
		LoadSettings(ctx context.Context) (core.Settings, error)
		SaveSettings(ctx context.Context, s core.Settings) error
	}

	// SummaryStore receives a snapshot of derived monthly figures. It is
	// write-only: summaries are always recomputed from the ledger.
	SummaryStore interface {
		SaveSummaries(ctx context.Context, summaries []core.MonthlySummary) error
	}
)

package memory

import (
	"context"
	"sync"

	"ledger/internal/core"
)

// Store keeps everything in process memory. It backs DATA_BACKEND=memory
// and the tests of packages that need a storage port.
type Store struct {
	mu        sync.Mutex
	items     []core.Transaction
	settings  core.Settings
	summaries []core.MonthlySummary
}

func New() *Store {
	return &Store{}
}

// NewSeeded returns a store that already holds txs.
func NewSeeded(txs []core.Transaction, settings core.Settings) *Store {
	return &Store{items: append([]core.Transaction(nil), txs...), settings: settings}
}

// LoadTransactions returns a copy of the stored set.
func (s *Store) LoadTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction{}, s.items...), nil
}

// SaveTransactions validates every record before replacing the set, so a
// bad record leaves the previous set in place.
func (s *Store) SaveTransactions(_ context.Context, txs []core.Transaction) error {
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Transaction(nil), txs...)
	return nil
}

func (s *Store) LoadSettings(_ context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, settings core.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

func (s *Store) SaveSummaries(_ context.Context, summaries []core.MonthlySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append([]core.MonthlySummary(nil), summaries...)
	return nil
}

// Summaries returns the last snapshot written through SaveSummaries.
func (s *Store) Summaries() []core.MonthlySummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.MonthlySummary(nil), s.summaries...)
}

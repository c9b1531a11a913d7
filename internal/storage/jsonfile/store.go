// Package jsonfile stores the ledger as plain JSON files, one per concern.
// Every save rewrites its file wholesale through a temp file and a rename,
// so a failed write never leaves a half-written file behind.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ledger/internal/core"
	"ledger/internal/log"
)

type Store struct {
	transactionsPath string
	settingsPath     string
	summaryPath      string
	logger           *log.Logger
}

// New returns a store over the given files. An empty summaryPath disables
// the summary snapshot.
func New(transactionsPath, settingsPath, summaryPath string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{
		transactionsPath: transactionsPath,
		settingsPath:     settingsPath,
		summaryPath:      summaryPath,
		logger:           logger.WithComponent(log.ComponentStorage),
	}
}

// LoadTransactions implements storage.TransactionStore
func (s *Store) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	data, err := s.read(s.transactionsPath)
	if err != nil {
		return nil, err
	}
	if data == nil {
		s.logger.DebugContext(ctx, "No transactions file yet", log.FieldPath, s.transactionsPath)
		return []core.Transaction{}, nil
	}

	var records []transactionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &core.StorageError{Op: log.OpLoad, Path: s.transactionsPath, Err: fmt.Errorf("decode transactions: %w", err)}
	}

	txs := make([]core.Transaction, 0, len(records))
	for i, r := range records {
		t, err := r.toCore()
		if err != nil {
			return nil, &core.StorageError{Op: log.OpLoad, Path: s.transactionsPath, Err: fmt.Errorf("record %d: %w", i, err)}
		}
		txs = append(txs, t)
	}

	s.logger.DebugContext(ctx, "Loaded transactions", log.FieldPath, s.transactionsPath, log.FieldCount, len(txs))
	return txs, nil
}

// SaveTransactions implements storage.TransactionStore
func (s *Store) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	records := make([]transactionRecord, len(txs))
	for i, t := range txs {
		records[i] = fromCore(t)
	}
	if err := s.write(s.transactionsPath, records); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "Saved transactions", log.FieldPath, s.transactionsPath, log.FieldCount, len(txs))
	return nil
}

// LoadSettings implements storage.SettingsStore
func (s *Store) LoadSettings(ctx context.Context) (core.Settings, error) {
	data, err := s.read(s.settingsPath)
	if err != nil {
		return core.Settings{}, err
	}
	if data == nil {
		s.logger.DebugContext(ctx, "No settings file yet, using defaults", log.FieldPath, s.settingsPath)
		return core.Settings{}, nil
	}

	var r settingsRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return core.Settings{}, &core.StorageError{Op: log.OpLoad, Path: s.settingsPath, Err: fmt.Errorf("decode settings: %w", err)}
	}
	settings, err := r.toCore()
	if err == nil {
		err = settings.Validate()
	}
	if err != nil {
		return core.Settings{}, &core.StorageError{Op: log.OpLoad, Path: s.settingsPath, Err: err}
	}
	return settings, nil
}

// SaveSettings implements storage.SettingsStore
func (s *Store) SaveSettings(ctx context.Context, settings core.Settings) error {
	out := struct {
		MonthlyExpenseLimit float64 `json:"monthly_expense_limit"`
	}{settings.MonthlyExpenseLimit.Float()}
	if err := s.write(s.settingsPath, out); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "Saved settings", log.FieldPath, s.settingsPath, log.FieldLimitCents, settings.MonthlyExpenseLimit.Cents)
	return nil
}

// SaveSummaries implements storage.SummaryStore
func (s *Store) SaveSummaries(ctx context.Context, summaries []core.MonthlySummary) error {
	if s.summaryPath == "" {
		return nil
	}
	out := make(map[string]summaryRecord, len(summaries))
	for _, m := range summaries {
		out[m.YearMonth.String()] = summaryRecord{
			Income:        m.TotalIncome.Float(),
			Expense:       m.TotalExpense.Float(),
			Net:           m.NetBalance.Float(),
			LimitExceeded: m.LimitExceeded,
		}
	}
	if err := s.write(s.summaryPath, out); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "Saved summary snapshot", log.FieldPath, s.summaryPath, log.FieldCount, len(summaries))
	return nil
}

// read returns nil data, without error, when the file does not exist or
// holds only whitespace.
func (s *Store) read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &core.StorageError{Op: log.OpLoad, Path: path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

func (s *Store) write(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return &core.StorageError{Op: log.OpSave, Path: path, Err: fmt.Errorf("encode: %w", err)}
	}
	if err := writeFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return &core.StorageError{Op: log.OpSave, Path: path, Err: err}
	}
	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place. The temp file is removed on any failure.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}

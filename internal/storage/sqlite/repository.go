// Package sqlite stores the ledger in a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

func NewRepository(dbPath string, logger *log.Logger) (*Repository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, &core.StorageError{Op: log.OpStartup, Path: dbPath, Err: fmt.Errorf("create db directory: %w", err)}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &core.StorageError{Op: log.OpStartup, Path: dbPath, Err: fmt.Errorf("open sqlite database: %w", err)}
	}
	// one writer, one process
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &core.StorageError{Op: log.OpStartup, Path: dbPath, Err: fmt.Errorf("ping database: %w", err)}
	}

	version, err := migrateSchema(dbPath)
	if err != nil {
		db.Close()
		return nil, &core.StorageError{Op: log.OpMigrate, Path: dbPath, Err: err}
	}

	logger.Debug("Opened SQLite ledger", log.FieldPath, dbPath, "schema_version", version)

	return &Repository{db: db, path: dbPath, logger: logger}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadTransactions implements storage.TransactionStore
func (r *Repository) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, transaction_type, description, category, date
		FROM transactions
		ORDER BY position`)
	if err != nil {
		return nil, r.storageErr(log.OpLoad, fmt.Errorf("query transactions: %w", err))
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		var (
			t       core.Transaction
			typ     string
			dateStr string
		)
		if err := rows.Scan(&t.ID, &t.Amount.Cents, &typ, &t.Description, &t.Category, &dateStr); err != nil {
			return nil, r.storageErr(log.OpLoad, fmt.Errorf("scan transaction: %w", err))
		}
		t.Type = core.TransactionType(typ)
		t.Date, err = time.ParseInLocation(core.DateLayout, dateStr, time.Local)
		if err != nil {
			return nil, r.storageErr(log.OpLoad, fmt.Errorf("transaction %s: %w", t.ID, &core.ValidationError{Field: "date", Err: core.ErrInvalidDate}))
		}
		if err := t.Validate(); err != nil {
			return nil, r.storageErr(log.OpLoad, fmt.Errorf("transaction %s: %w", t.ID, err))
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.storageErr(log.OpLoad, fmt.Errorf("iterate transactions: %w", err))
	}

	r.logger.DebugContext(ctx, "Loaded transactions from SQLite", log.FieldCount, len(txs))
	return txs, nil
}

// SaveTransactions implements storage.TransactionStore. The table is
// replaced inside one SQL transaction.
func (r *Repository) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
			return fmt.Errorf("clear transactions: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transactions (id, position, amount_cents, transaction_type, description, category, date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, t := range txs {
			if _, err := stmt.ExecContext(ctx, t.ID, i, t.Amount.Cents, t.Type.String(),
				t.Description, t.Category, t.Date.Format(core.DateLayout)); err != nil {
				return fmt.Errorf("insert transaction %s: %w", t.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return r.storageErr(log.OpSave, err)
	}

	r.logger.DebugContext(ctx, "Saved transactions to SQLite", log.FieldCount, len(txs))
	return nil
}

// LoadSettings implements storage.SettingsStore
func (r *Repository) LoadSettings(ctx context.Context) (core.Settings, error) {
	var s core.Settings
	err := r.db.QueryRowContext(ctx,
		`SELECT monthly_expense_limit_cents FROM settings WHERE id = 1`).Scan(&s.MonthlyExpenseLimit.Cents)
	if err == sql.ErrNoRows {
		return core.Settings{}, nil
	}
	if err != nil {
		return core.Settings{}, r.storageErr(log.OpLoad, fmt.Errorf("query settings: %w", err))
	}
	if err := s.Validate(); err != nil {
		return core.Settings{}, r.storageErr(log.OpLoad, err)
	}
	return s, nil
}

// SaveSettings implements storage.SettingsStore
func (r *Repository) SaveSettings(ctx context.Context, s core.Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, monthly_expense_limit_cents) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET monthly_expense_limit_cents = excluded.monthly_expense_limit_cents`,
		s.MonthlyExpenseLimit.Cents)
	if err != nil {
		return r.storageErr(log.OpSave, fmt.Errorf("upsert settings: %w", err))
	}
	return nil
}

// SaveSummaries implements storage.SummaryStore
func (r *Repository) SaveSummaries(ctx context.Context, summaries []core.MonthlySummary) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM monthly_summaries`); err != nil {
			return fmt.Errorf("clear summaries: %w", err)
		}
		for _, m := range summaries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO monthly_summaries (year_month, income_cents, expense_cents, net_cents, limit_exceeded)
				VALUES (?, ?, ?, ?, ?)`,
				m.YearMonth.String(), m.TotalIncome.Cents, m.TotalExpense.Cents, m.NetBalance.Cents, m.LimitExceeded); err != nil {
				return fmt.Errorf("insert summary %s: %w", m.YearMonth, err)
			}
		}
		return nil
	})
	if err != nil {
		return r.storageErr(log.OpSnapshot, err)
	}
	return nil
}

func (r *Repository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *Repository) storageErr(op string, err error) error {
	return &core.StorageError{Op: op, Path: r.path, Err: err}
}

package services

import (
	"context"
	"fmt"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// SettingsManager owns the user settings for one run.
type SettingsManager struct {
	store    storage.SettingsStore
	settings core.Settings
	logger   *log.Logger
}

func OpenSettings(ctx context.Context, store storage.SettingsStore, logger *log.Logger) (*SettingsManager, error) {
	if logger == nil {
		logger = log.Discard()
	}
	s, err := store.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	return &SettingsManager{
		store:    store,
		settings: s,
		logger:   logger.WithComponent(log.ComponentSettings),
	}, nil
}

// Limit returns the monthly expense limit and whether one is set.
func (m *SettingsManager) Limit() (core.Money, bool) {
	return m.settings.Limit()
}

// SetLimit validates and persists a new monthly expense limit. Zero turns
// the limit off. The current value is kept when the save fails.
func (m *SettingsManager) SetLimit(ctx context.Context, limit core.Money) error {
	next := m.settings
	next.MonthlyExpenseLimit = limit
	if err := next.Validate(); err != nil {
		return err
	}
	if err := m.store.SaveSettings(ctx, next); err != nil {
		m.logger.ErrorContext(ctx, "Failed to save monthly limit",
			log.FieldLimitCents, limit.Cents, log.FieldError, err)
		return err
	}
	m.settings = next
	m.logger.InfoContext(ctx, "Monthly limit updated", log.FieldLimitCents, limit.Cents)
	return nil
}

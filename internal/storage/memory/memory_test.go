package memory

import (
	"context"
	"testing"
	"time"

	"ledger/internal/core"
)

func TestMemoryStoreSaveAndLoad(t *testing.T) {
	s := New()
	ctx := context.Background()

	txs, err := s.LoadTransactions(ctx)
	if err != nil || txs == nil || len(txs) != 0 {
		t.Fatalf("unexpected initial load: %v err=%v", txs, err)
	}

	tx, _ := core.NewTransaction(core.Money{Cents: 123}, "t", core.Expense, time.Now(), "")
	if err := s.SaveTransactions(ctx, []core.Transaction{tx}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ := s.LoadTransactions(ctx)
	if len(got) != 1 || got[0].ID != tx.ID {
		t.Fatalf("unexpected load: %+v", got)
	}

	// the returned slice must not alias the stored one
	got[0].Description = "changed"
	again, _ := s.LoadTransactions(ctx)
	if again[0].Description != "t" {
		t.Fatalf("store was mutated through a loaded slice")
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	tx, _ := core.NewTransaction(core.Money{Cents: 1}, "ok", core.Income, time.Now(), "")
	s := NewSeeded([]core.Transaction{tx}, core.Settings{})
	ctx := context.Background()

	bad := core.Transaction{Amount: core.Money{Cents: 0}, Type: core.Expense, Description: "x", Date: time.Now()}
	if err := s.SaveTransactions(ctx, []core.Transaction{tx, bad}); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got, _ := s.LoadTransactions(ctx)
	if len(got) != 1 {
		t.Fatalf("expected previous set to survive, got %d", len(got))
	}

	if err := s.SaveSettings(ctx, core.Settings{MonthlyExpenseLimit: core.Money{Cents: -1}}); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

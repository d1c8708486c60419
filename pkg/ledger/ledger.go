package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gestfin/gestfin/pkg/model"
	"github.com/gestfin/gestfin/pkg/storage"
)

// Ledger records income/expense transactions and keeps budget spend
// counters in sync with expenses.
type Ledger struct {
	store  storage.Store
	logger *slog.Logger
}

// New creates a ledger.
func New(store storage.Store, logger *slog.Logger) *Ledger {
	return &Ledger{store: store, logger: logger}
}

// Record persists a transaction. Expense transactions roll their amount
// into the budget named after their category; a missing budget is logged
// and skipped, not an error. Rejected input comes back as a
// *model.ValidationError so callers can tell it apart from storage failures.
func (l *Ledger) Record(ctx context.Context, t *model.Transaction) error {
	switch t.Kind {
	case model.KindIncome, model.KindExpense:
	default:
		return &model.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown transaction kind %q", t.Kind)}
	}
	if !t.Amount.IsPositive() {
		return &model.ValidationError{Field: "amount", Reason: fmt.Sprintf("must be positive, got %s", t.Amount)}
	}

	if err := l.store.RecordTransaction(ctx, t); err != nil {
		return fmt.Errorf("store transaction: %w", err)
	}

	l.logger.Info("transaction recorded",
		"id", t.ID,
		"kind", t.Kind,
		"category", t.Category,
		"amount", t.Amount.String(),
	)

	if t.Kind == model.KindExpense && t.Category != "" {
		if err := l.store.AddBudgetSpend(ctx, t.Category, t.Amount); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				l.logger.Debug("no budget for category", "category", t.Category)
				return nil
			}
			l.logger.Error("update budget spend", "category", t.Category, "error", err)
		}
	}

	return nil
}

// Summary aggregates income/expense totals for the given filter.
func (l *Ledger) Summary(ctx context.Context, filter model.TransactionFilter) (*model.TransactionSummary, error) {
	return l.store.SummarizeTransactions(ctx, filter)
}

// Query returns individual transactions for the given filter.
func (l *Ledger) Query(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	return l.store.QueryTransactions(ctx, filter)
}

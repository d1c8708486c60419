package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gestfin/gestfin/pkg/model"
)

// ErrNotFound is wrapped by lookups and mutations that reference a missing row.
var ErrNotFound = errors.New("not found")

// Store defines the persistence layer for Gestfin's domain entities.
// Alerts and notification settings are engine-owned and never persisted.
type Store interface {
	// CreatePayable persists a payable, defaulting its status to pending.
	CreatePayable(ctx context.Context, p *model.Payable) error

	// ListPayables returns payables, optionally filtered by status.
	ListPayables(ctx context.Context, status model.PayableStatus) ([]model.Payable, error)

	// MarkPayablePaid flips a payable to paid.
	MarkPayablePaid(ctx context.Context, id string) error

	// MarkPayablesOverdue flips pending payables whose due date has passed
	// to overdue, returning how many rows changed.
	MarkPayablesOverdue(ctx context.Context, now time.Time) (int64, error)

	// DeletePayable removes a payable.
	DeletePayable(ctx context.Context, id string) error

	// CreateInvestment persists an investment.
	CreateInvestment(ctx context.Context, inv *model.Investment) error

	// ListInvestments returns all investments.
	ListInvestments(ctx context.Context) ([]model.Investment, error)

	// UpdateInvestmentValue sets an investment's current market value.
	UpdateInvestmentValue(ctx context.Context, id string, value decimal.Decimal) error

	// SetBudget creates or updates a budget by name.
	SetBudget(ctx context.Context, b *model.Budget) error

	// GetBudget retrieves a budget by name.
	GetBudget(ctx context.Context, name string) (*model.Budget, error)

	// ListBudgets returns all budgets.
	ListBudgets(ctx context.Context) ([]model.Budget, error)

	// AddBudgetSpend atomically adds to a budget's spent amount. Period
	// rollovers reset by adding the negated spend.
	AddBudgetSpend(ctx context.Context, name string, amount decimal.Decimal) error

	// CreateAccount persists an account.
	CreateAccount(ctx context.Context, a *model.Account) error

	// ListAccounts returns all accounts.
	ListAccounts(ctx context.Context) ([]model.Account, error)

	// SetAccountBalance sets an account's balance.
	SetAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error

	// RecordTransaction persists a transaction.
	RecordTransaction(ctx context.Context, tx *model.Transaction) error

	// QueryTransactions retrieves transactions matching the filter,
	// newest first.
	QueryTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error)

	// SummarizeTransactions aggregates income/expense totals for the filter.
	SummarizeTransactions(ctx context.Context, filter model.TransactionFilter) (*model.TransactionSummary, error)

	// Snapshot assembles the source-entity view the alert engine evaluates.
	Snapshot(ctx context.Context) (*model.Snapshot, error)

	// Close releases resources.
	Close() error
}

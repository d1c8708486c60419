package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayableStatus tracks a payable through its lifecycle.
type PayableStatus string

const (
	PayablePending PayableStatus = "pending"
	PayablePaid    PayableStatus = "paid"
	PayableOverdue PayableStatus = "overdue"
)

// Payable is a bill or obligation with an amount and a due date.
type Payable struct {
	ID          string          `json:"id" db:"id"`
	Description string          `json:"description" db:"description"`
	Category    string          `json:"category" db:"category"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	DueDate     time.Time       `json:"due_date" db:"due_date"`
	Status      PayableStatus   `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Investment holds a purchase amount and its current market value.
type Investment struct {
	ID           string          `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	CurrentValue decimal.Decimal `json:"current_value" db:"current_value"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// BudgetPeriod defines the time window for a budget.
type BudgetPeriod string

const (
	PeriodDaily   BudgetPeriod = "daily"
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
)

// Budget is a spending limit for a category group over a period.
type Budget struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	LimitAmount decimal.Decimal `json:"limit_amount" db:"limit_amount"`
	SpentAmount decimal.Decimal `json:"spent_amount" db:"spent_amount"`
	Period      BudgetPeriod    `json:"period" db:"period"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Account is a money account with a running balance.
type Account struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// TransactionKind distinguishes income from expense entries.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          string          `json:"id" db:"id"`
	Kind        TransactionKind `json:"kind" db:"kind"`
	Description string          `json:"description" db:"description"`
	Category    string          `json:"category" db:"category"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	OccurredAt  time.Time       `json:"occurred_at" db:"occurred_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// TransactionFilter controls which transactions are included in queries.
type TransactionFilter struct {
	Kind      TransactionKind `json:"kind,omitempty"`
	Category  string          `json:"category,omitempty"`
	StartTime time.Time       `json:"start_time,omitempty"`
	EndTime   time.Time       `json:"end_time,omitempty"`
}

// TransactionSummary holds aggregated income/expense totals.
type TransactionSummary struct {
	TotalIncome  decimal.Decimal            `json:"total_income"`
	TotalExpense decimal.Decimal            `json:"total_expense"`
	Net          decimal.Decimal            `json:"net"`
	RecordCount  int64                      `json:"record_count"`
	ByCategory   map[string]decimal.Decimal `json:"by_category,omitempty"`
}

// Snapshot is the source-entity view the alert engine evaluates.
type Snapshot struct {
	Payables    []Payable    `json:"payables"`
	Investments []Investment `json:"investments"`
	Budgets     []Budget     `json:"budgets"`
	Accounts    []Account    `json:"accounts"`
}

// PeriodBounds returns the start and end time for the current period.
func PeriodBounds(period BudgetPeriod) (start, end time.Time) {
	now := time.Now().UTC()
	switch period {
	case PeriodDaily:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 1)
	case PeriodWeekly:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day()-weekday+1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 7)
	case PeriodMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	default:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 1)
	}
	return start, end
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gestfin/gestfin/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements the Store interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) CreatePayable(ctx context.Context, p *model.Payable) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = model.PayablePending
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payables (id, description, category, amount, due_date, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Description, p.Category, p.Amount, p.DueDate, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payable: %w", err)
	}
	return nil
}

func (s *SQLite) ListPayables(ctx context.Context, status model.PayableStatus) ([]model.Payable, error) {
	query := `SELECT id, description, category, amount, due_date, status, created_at, updated_at FROM payables`
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY due_date"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payables: %w", err)
	}
	defer rows.Close()

	var payables []model.Payable
	for rows.Next() {
		var p model.Payable
		if err := rows.Scan(&p.ID, &p.Description, &p.Category, &p.Amount,
			&p.DueDate, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan payable row: %w", err)
		}
		payables = append(payables, p)
	}
	return payables, rows.Err()
}

func (s *SQLite) MarkPayablePaid(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE payables SET status = ?, updated_at = ? WHERE id = ?`,
		model.PayablePaid, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("mark payable paid: %w", err)
	}
	return checkAffected(result, "payable", id)
}

func (s *SQLite) MarkPayablesOverdue(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE payables SET status = ?, updated_at = ? WHERE status = ? AND due_date < ?`,
		model.PayableOverdue, now, model.PayablePending, now,
	)
	if err != nil {
		return 0, fmt.Errorf("mark payables overdue: %w", err)
	}
	return result.RowsAffected()
}

func (s *SQLite) DeletePayable(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM payables WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete payable: %w", err)
	}
	return checkAffected(result, "payable", id)
}

func (s *SQLite) CreateInvestment(ctx context.Context, inv *model.Investment) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	if inv.CurrentValue.IsZero() {
		inv.CurrentValue = inv.Amount
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO investments (id, name, amount, current_value, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Name, inv.Amount, inv.CurrentValue, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert investment: %w", err)
	}
	return nil
}

func (s *SQLite) ListInvestments(ctx context.Context) ([]model.Investment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, amount, current_value, created_at, updated_at FROM investments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query investments: %w", err)
	}
	defer rows.Close()

	var investments []model.Investment
	for rows.Next() {
		var inv model.Investment
		if err := rows.Scan(&inv.ID, &inv.Name, &inv.Amount, &inv.CurrentValue,
			&inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan investment row: %w", err)
		}
		investments = append(investments, inv)
	}
	return investments, rows.Err()
}

func (s *SQLite) UpdateInvestmentValue(ctx context.Context, id string, value decimal.Decimal) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE investments SET current_value = ?, updated_at = ? WHERE id = ?`,
		value, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update investment value: %w", err)
	}
	return checkAffected(result, "investment", id)
}

func (s *SQLite) SetBudget(ctx context.Context, b *model.Budget) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, name, limit_amount, spent_amount, period, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   limit_amount = excluded.limit_amount,
		   period = excluded.period,
		   updated_at = excluded.updated_at`,
		b.ID, b.Name, b.LimitAmount, b.SpentAmount, b.Period, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

func (s *SQLite) GetBudget(ctx context.Context, name string) (*model.Budget, error) {
	var b model.Budget
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, limit_amount, spent_amount, period, created_at, updated_at
		 FROM budgets WHERE name = ?`, name,
	).Scan(&b.ID, &b.Name, &b.LimitAmount, &b.SpentAmount, &b.Period, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("budget %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return &b, nil
}

func (s *SQLite) ListBudgets(ctx context.Context) ([]model.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, limit_amount, spent_amount, period, created_at, updated_at
		 FROM budgets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(&b.ID, &b.Name, &b.LimitAmount, &b.SpentAmount,
			&b.Period, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan budget row: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// AddBudgetSpend reads, adds and writes back inside one transaction: spent
// amounts are stored as decimal text, so the arithmetic happens in Go.
func (s *SQLite) AddBudgetSpend(ctx context.Context, name string, amount decimal.Decimal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin budget spend: %w", err)
	}
	defer tx.Rollback()

	var spent decimal.Decimal
	err = tx.QueryRowContext(ctx,
		`SELECT spent_amount FROM budgets WHERE name = ?`, name,
	).Scan(&spent)
	if err == sql.ErrNoRows {
		return fmt.Errorf("budget %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read budget spend: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE budgets SET spent_amount = ?, updated_at = ? WHERE name = ?`,
		spent.Add(amount), time.Now().UTC(), name,
	)
	if err != nil {
		return fmt.Errorf("update budget spend: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) CreateAccount(ctx context.Context, a *model.Account) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, balance, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Balance, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *SQLite) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, balance, created_at, updated_at FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *SQLite) SetAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ?`,
		balance, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set account balance: %w", err)
	}
	return checkAffected(result, "account", id)
}

func (s *SQLite) RecordTransaction(ctx context.Context, t *model.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if t.OccurredAt.IsZero() {
		t.OccurredAt = now
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, kind, description, category, amount, occurred_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Kind, t.Description, t.Category, t.Amount, t.OccurredAt, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *SQLite) QueryTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	query := `SELECT id, kind, description, category, amount, occurred_at, created_at FROM transactions`
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY occurred_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.Kind, &t.Description, &t.Category,
			&t.Amount, &t.OccurredAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// SummarizeTransactions sums in Go rather than SQL so the decimal text
// columns keep exact arithmetic.
func (s *SQLite) SummarizeTransactions(ctx context.Context, filter model.TransactionFilter) (*model.TransactionSummary, error) {
	txs, err := s.QueryTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := &model.TransactionSummary{
		ByCategory: make(map[string]decimal.Decimal),
	}
	for _, t := range txs {
		summary.RecordCount++
		switch t.Kind {
		case model.KindIncome:
			summary.TotalIncome = summary.TotalIncome.Add(t.Amount)
		case model.KindExpense:
			summary.TotalExpense = summary.TotalExpense.Add(t.Amount)
			if t.Category != "" {
				summary.ByCategory[t.Category] = summary.ByCategory[t.Category].Add(t.Amount)
			}
		}
	}
	summary.Net = summary.TotalIncome.Sub(summary.TotalExpense)
	if len(summary.ByCategory) == 0 {
		summary.ByCategory = nil
	}
	return summary, nil
}

func (s *SQLite) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	payables, err := s.ListPayables(ctx, "")
	if err != nil {
		return nil, err
	}
	investments, err := s.ListInvestments(ctx)
	if err != nil {
		return nil, err
	}
	budgets, err := s.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	return &model.Snapshot{
		Payables:    payables,
		Investments: investments,
		Budgets:     budgets,
		Accounts:    accounts,
	}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func checkAffected(result sql.Result, kind, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return nil
}

// buildWhereClause constructs a SQL WHERE clause from a TransactionFilter.
func buildWhereClause(filter model.TransactionFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if !filter.StartTime.IsZero() {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, filter.StartTime)
	}
	if !filter.EndTime.IsZero() {
		conditions = append(conditions, "occurred_at < ?")
		args = append(args, filter.EndTime)
	}

	return strings.Join(conditions, " AND "), args
}

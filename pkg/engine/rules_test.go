package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestfin/gestfin/pkg/engine"
	"github.com/gestfin/gestfin/pkg/model"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testSettings() model.NotificationSettings {
	return model.DefaultNotificationSettings(testNow)
}

func TestEvaluate_NilSnapshot(t *testing.T) {
	eval := engine.NewEvaluator(nil)
	assert.Nil(t, eval.Evaluate(nil, testSettings(), testNow))
}

func TestEvaluate_EmptySnapshot(t *testing.T) {
	eval := engine.NewEvaluator(nil)
	alerts := eval.Evaluate(&model.Snapshot{}, testSettings(), testNow)
	assert.Empty(t, alerts)
}

func TestEvaluate_Deterministic(t *testing.T) {
	eval := engine.NewEvaluator(nil)
	snap := &model.Snapshot{
		Payables: []model.Payable{
			{ID: "p1", Description: "Rent", Amount: decimal.NewFromInt(1200),
				DueDate: testNow.AddDate(0, 0, -2), Status: model.PayableOverdue},
			{ID: "p2", Description: "Power", Amount: decimal.NewFromInt(80),
				DueDate: testNow.AddDate(0, 0, 2), Status: model.PayablePending},
		},
		Accounts: []model.Account{
			{ID: "a1", Name: "Checking", Balance: decimal.NewFromInt(300)},
		},
	}

	first := eval.Evaluate(snap, testSettings(), testNow)
	second := eval.Evaluate(snap, testSettings(), testNow)
	assert.Equal(t, first, second)
}

func TestEvaluate_OverduePayable(t *testing.T) {
	eval := engine.NewEvaluator(nil)
	snap := &model.Snapshot{
		Payables: []model.Payable{
			{ID: "p1", Description: "Rent", Amount: decimal.NewFromFloat(1200.50),
				DueDate: testNow.AddDate(0, 0, -5), Status: model.PayableOverdue},
		},
	}

	alerts := eval.Evaluate(snap, testSettings(), testNow)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, "overdue-p1", a.ID)
	assert.Equal(t, model.AlertPayableOverdue, a.Type)
	assert.Equal(t, model.SeverityCritical, a.Severity)
	assert.Equal(t, "p1", a.RelatedID)
	assert.Equal(t, model.RelatedPayable, a.RelatedType)
	assert.Contains(t, a.Message, "Rent")
	assert.Contains(t, a.Message, "1200.50")
	require.NotNil(t, a.DueDate)
	assert.Equal(t, snap.Payables[0].DueDate, *a.DueDate)
}

// An overdue payable produces only the overdue alert, never an additional
// due-soon one.
func TestEvaluate_OverdueSuppressesDueSoon(t *testing.T) {
	eval := engine.NewEvaluator(nil)
	snap := &model.Snapshot{
		Payables: []model.Payable{
			{ID: "p1", Description: "Rent", Amount: decimal.NewFromInt(1200),
				DueDate: testNow.Add(24 * time.Hour), Status: model.PayableOverdue},
		},
	}

	alerts := eval.Evaluate(snap, testSettings(), testNow)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertPayableOverdue, alerts[0].Type)
}

func TestEvaluate_DueSoonBoundaries(t *testing.T) {
	eval := engine.NewEvaluator(nil)
	settings := testSettings()
	settings.PayableDueDays = 7

	tests := []struct {
		name         string
		due          time.Time
		wantAlert    bool
		wantSeverity model.Severity
	}{
		{"due in 1 day", testNow.Add(24 * time.Hour), true, model.SeverityHigh},
		{"due in 3 days", testNow.Add(72 * time.Hour), true, model.SeverityHigh},
		{"due in just over 3 days", testNow.Add(73 * time.Hour), true, model.SeverityMedium},
		{"due in 7 days", testNow.Add(7 * 24 * time.Hour), true, model.SeverityMedium},
		{"due in 8 days", testNow.Add(8 * 24 * time.Hour), false, ""},
		{"due right now", testNow, false, ""},
		{"due an hour ago, not yet swept", testNow.Add(-time.Hour), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &model.Snapshot{
				Payables: []model.Payable{
					{ID: "p1", Description: "Power", Amount: decimal.NewFromInt(80),
						DueDate: tt.due, Status: model.PayablePending},
				},
			}
			alerts := eval.Evaluate(snap, settings, testNow)
			if !tt.wantAlert {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, "due-p1", alerts[0].ID)
			assert.Equal(t, model.AlertPayableDue, alerts[0].Type)
			assert.Equal(t, tt.wantSeverity, alerts[0].Severity)
		})
	}
}

func TestEvaluate_DueSoonWindowFollowsSettings(t *testing.T) {
	eval := engine.NewEvaluator(nil)
	snap := &model.Snapshot{
		Payables: []model.Payable{
			{ID: "p1", Description: "Insurance", Amount: decimal.NewFromInt(400),
				DueDate: testNow.Add(5 * 24 * time.Hour), Status: model.PayablePending},
		},
	}

	// Default 3-day window: five days out is not yet alertable.
	alerts := eval.Evaluate(snap, testSettings(), testNow)
	assert.Empty(t, alerts)

	// Widening the window to 7 days picks it up at medium severity.
	settings := testSettings()
	settings.PayableDueDays = 7
	alerts = eval.Evaluate(snap, settings, testNow)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.SeverityMedium, alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "5 day(s)")
}

func TestEvaluate_PaidPayableIgnored(t *testing.T) {
	eval := engine.NewEvaluator(nil)
	snap := &model.Snapshot{
		Payables: []model.Payable{
			{ID: "p1", Description: "Rent", Amount: decimal.NewFromInt(1200),
				DueDate: testNow.Add(24 * time.Hour), Status: model.PayablePaid},
		},
	}

	assert.Empty(t, eval.Evaluate(snap, testSettings(), testNow))
}

func TestEvaluate_InvestmentYield(t *testing.T) {
	eval := engine.NewEvaluator(nil)

	tests := []struct {
		name         string
		amount       int64
		value        int64
		wantAlert    bool
		wantSeverity model.Severity
	}{
		{"below threshold", 1000, 1049, false, ""},
		{"at threshold", 1000, 1050, true, model.SeverityMedium},
		{"at high cutoff", 1000, 1100, true, model.SeverityHigh},
		{"above high cutoff", 1000, 1300, true, model.SeverityHigh},
		{"losing value", 1000, 900, false, ""},
		{"zero principal skipped", 0, 500, false, ""},
		{"negative principal skipped", -100, 500, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &model.Snapshot{
				Investments: []model.Investment{
					{ID: "i1", Name: "Index fund",
						Amount:       decimal.NewFromInt(tt.amount),
						CurrentValue: decimal.NewFromInt(tt.value)},
				},
			}
			alerts := eval.Evaluate(snap, testSettings(), testNow)
			if !tt.wantAlert {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, "yield-i1", alerts[0].ID)
			assert.Equal(t, model.AlertInvestmentYield, alerts[0].Type)
			assert.Equal(t, tt.wantSeverity, alerts[0].Severity)
			assert.Equal(t, model.RelatedInvestment, alerts[0].RelatedType)
		})
	}
}

func TestEvaluate_BudgetLimit(t *testing.T) {
	eval := engine.NewEvaluator(nil)

	tests := []struct {
		name         string
		limit        int64
		spent        int64
		wantAlert    bool
		wantSeverity model.Severity
	}{
		{"under threshold", 100, 79, false, ""},
		{"at threshold", 100, 80, true, model.SeverityHigh},
		{"at critical", 100, 95, true, model.SeverityCritical},
		{"over limit", 100, 120, true, model.SeverityCritical},
		{"zero limit skipped", 0, 50, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &model.Snapshot{
				Budgets: []model.Budget{
					{ID: "b1", Name: "groceries",
						LimitAmount: decimal.NewFromInt(tt.limit),
						SpentAmount: decimal.NewFromInt(tt.spent),
						Period:      model.PeriodMonthly},
				},
			}
			alerts := eval.Evaluate(snap, testSettings(), testNow)
			if !tt.wantAlert {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, "budget-b1", alerts[0].ID)
			assert.Equal(t, model.AlertBudgetLimit, alerts[0].Type)
			assert.Equal(t, tt.wantSeverity, alerts[0].Severity)
			assert.Equal(t, model.RelatedBudget, alerts[0].RelatedType)
		})
	}
}

func TestEvaluate_LowBalance(t *testing.T) {
	eval := engine.NewEvaluator(nil)

	tests := []struct {
		name         string
		balance      string
		wantAlert    bool
		wantSeverity model.Severity
	}{
		{"above threshold", "1000.01", false, ""},
		{"at threshold", "1000", true, model.SeverityHigh},
		{"just above critical", "500.01", true, model.SeverityHigh},
		{"at critical", "500", true, model.SeverityCritical},
		{"negative balance", "-20", true, model.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance, err := decimal.NewFromString(tt.balance)
			require.NoError(t, err)

			snap := &model.Snapshot{
				Accounts: []model.Account{
					{ID: "a1", Name: "Checking", Balance: balance},
				},
			}
			alerts := eval.Evaluate(snap, testSettings(), testNow)
			if !tt.wantAlert {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, "balance-a1", alerts[0].ID)
			assert.Equal(t, model.AlertLowBalance, alerts[0].Type)
			assert.Equal(t, tt.wantSeverity, alerts[0].Severity)
			assert.Equal(t, model.RelatedAccount, alerts[0].RelatedType)
		})
	}
}

// Overdue alerts come before due-soon alerts even when the pending payable
// sorts first in the snapshot.
func TestEvaluate_OverdueEmittedBeforeDueSoon(t *testing.T) {
	eval := engine.NewEvaluator(nil)
	snap := &model.Snapshot{
		Payables: []model.Payable{
			{ID: "p1", Description: "Power", Amount: decimal.NewFromInt(80),
				DueDate: testNow.Add(48 * time.Hour), Status: model.PayablePending},
			{ID: "p2", Description: "Rent", Amount: decimal.NewFromInt(1200),
				DueDate: testNow.AddDate(0, 0, -1), Status: model.PayableOverdue},
		},
	}

	alerts := eval.Evaluate(snap, testSettings(), testNow)
	require.Len(t, alerts, 2)
	assert.Equal(t, "overdue-p2", alerts[0].ID)
	assert.Equal(t, "due-p1", alerts[1].ID)
}

// Rule order defines emission order: payables, investments, budgets, accounts.
func TestEvaluate_EmissionOrder(t *testing.T) {
	eval := engine.NewEvaluator(nil)
	snap := &model.Snapshot{
		Payables: []model.Payable{
			{ID: "p1", Description: "Rent", Amount: decimal.NewFromInt(1200),
				DueDate: testNow.AddDate(0, 0, -1), Status: model.PayableOverdue},
		},
		Investments: []model.Investment{
			{ID: "i1", Name: "Fund", Amount: decimal.NewFromInt(1000),
				CurrentValue: decimal.NewFromInt(1200)},
		},
		Budgets: []model.Budget{
			{ID: "b1", Name: "groceries", LimitAmount: decimal.NewFromInt(100),
				SpentAmount: decimal.NewFromInt(96), Period: model.PeriodMonthly},
		},
		Accounts: []model.Account{
			{ID: "a1", Name: "Checking", Balance: decimal.NewFromInt(100)},
		},
	}

	alerts := eval.Evaluate(snap, testSettings(), testNow)
	require.Len(t, alerts, 4)
	assert.Equal(t, "overdue-p1", alerts[0].ID)
	assert.Equal(t, "yield-i1", alerts[1].ID)
	assert.Equal(t, "budget-b1", alerts[2].ID)
	assert.Equal(t, "balance-a1", alerts[3].ID)
}

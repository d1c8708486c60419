package engine

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gestfin/gestfin/pkg/locale"
	"github.com/gestfin/gestfin/pkg/model"
)

// Fixed severity escalation points. These are independent of the
// user-configurable thresholds in NotificationSettings.
const dueSoonHighDays = 3

var (
	hundred         = decimal.NewFromInt(100)
	yieldHighPct    = decimal.NewFromInt(10)
	budgetCritical  = decimal.NewFromInt(95)
	balanceCritical = decimal.NewFromInt(500)
)

// Evaluator derives the complete alert set for a source-data snapshot.
// Pure function of (snapshot, settings, now); it holds no state beyond the
// message catalog used for titles and messages.
type Evaluator struct {
	catalog *locale.Catalog
}

// NewEvaluator creates an evaluator. A nil catalog falls back to the
// built-in English one.
func NewEvaluator(catalog *locale.Catalog) *Evaluator {
	if catalog == nil {
		catalog = locale.Default()
	}
	return &Evaluator{catalog: catalog}
}

// Evaluate produces every alert that should exist for the given snapshot,
// settings and instant. Rule order defines emission order; each rule emits
// at most one alert per source entity. Malformed entities are skipped
// without aborting the pass.
func (e *Evaluator) Evaluate(snap *model.Snapshot, settings model.NotificationSettings, now time.Time) []model.Alert {
	if snap == nil {
		return nil
	}

	var out []model.Alert
	out = append(out, e.payableAlerts(snap.Payables, settings, now)...)
	out = append(out, e.investmentAlerts(snap.Investments, settings, now)...)
	out = append(out, e.budgetAlerts(snap.Budgets, settings, now)...)
	out = append(out, e.accountAlerts(snap.Accounts, settings, now)...)
	return out
}

// payableAlerts covers both the overdue and the due-soon rules; all overdue
// alerts are emitted before any due-soon alert, whatever the payable order.
// An overdue payable never also produces a due-soon alert. A pending payable
// due today (daysUntilDue == 0) emits nothing; only the status flip to
// overdue covers it.
func (e *Evaluator) payableAlerts(payables []model.Payable, settings model.NotificationSettings, now time.Time) []model.Alert {
	var out []model.Alert
	for _, p := range payables {
		if p.Status != model.PayableOverdue {
			continue
		}
		due := p.DueDate
		out = append(out, model.Alert{
			ID:    "overdue-" + p.ID,
			Type:  model.AlertPayableOverdue,
			Title: e.catalog.Format("payable_overdue.title", nil),
			Message: e.catalog.Format("payable_overdue.message", map[string]string{
				"description": p.Description,
				"amount":      p.Amount.StringFixed(2),
			}),
			Severity:    model.SeverityCritical,
			CreatedAt:   now,
			DueDate:     &due,
			RelatedID:   p.ID,
			RelatedType: model.RelatedPayable,
		})
	}
	for _, p := range payables {
		if p.Status != model.PayablePending {
			continue
		}
		days := daysUntil(p.DueDate, now)
		if days <= 0 || days > settings.PayableDueDays {
			continue
		}
		severity := model.SeverityMedium
		if days <= dueSoonHighDays {
			severity = model.SeverityHigh
		}
		due := p.DueDate
		out = append(out, model.Alert{
			ID:    "due-" + p.ID,
			Type:  model.AlertPayableDue,
			Title: e.catalog.Format("payable_due.title", nil),
			Message: e.catalog.Format("payable_due.message", map[string]string{
				"description": p.Description,
				"days":        strconv.Itoa(days),
			}),
			Severity:    severity,
			CreatedAt:   now,
			DueDate:     &due,
			RelatedID:   p.ID,
			RelatedType: model.RelatedPayable,
		})
	}
	return out
}

func (e *Evaluator) investmentAlerts(investments []model.Investment, settings model.NotificationSettings, now time.Time) []model.Alert {
	threshold := decimal.NewFromFloat(settings.InvestmentYieldThreshold)

	var out []model.Alert
	for _, inv := range investments {
		// Zero or negative principal makes the yield undefined.
		if !inv.Amount.IsPositive() {
			continue
		}
		yieldPct := inv.CurrentValue.Sub(inv.Amount).Div(inv.Amount).Mul(hundred)
		if yieldPct.LessThan(threshold) {
			continue
		}
		severity := model.SeverityMedium
		if yieldPct.GreaterThanOrEqual(yieldHighPct) {
			severity = model.SeverityHigh
		}
		out = append(out, model.Alert{
			ID:    "yield-" + inv.ID,
			Type:  model.AlertInvestmentYield,
			Title: e.catalog.Format("investment_yield.title", nil),
			Message: e.catalog.Format("investment_yield.message", map[string]string{
				"name": inv.Name,
				"pct":  yieldPct.StringFixed(1),
			}),
			Severity:    severity,
			CreatedAt:   now,
			RelatedID:   inv.ID,
			RelatedType: model.RelatedInvestment,
		})
	}
	return out
}

func (e *Evaluator) budgetAlerts(budgets []model.Budget, settings model.NotificationSettings, now time.Time) []model.Alert {
	threshold := decimal.NewFromFloat(settings.BudgetLimitThreshold)

	var out []model.Alert
	for _, b := range budgets {
		if !b.LimitAmount.IsPositive() {
			continue
		}
		usagePct := b.SpentAmount.Div(b.LimitAmount).Mul(hundred)
		if usagePct.LessThan(threshold) {
			continue
		}
		severity := model.SeverityHigh
		if usagePct.GreaterThanOrEqual(budgetCritical) {
			severity = model.SeverityCritical
		}
		out = append(out, model.Alert{
			ID:    "budget-" + b.ID,
			Type:  model.AlertBudgetLimit,
			Title: e.catalog.Format("budget_limit.title", nil),
			Message: e.catalog.Format("budget_limit.message", map[string]string{
				"name": b.Name,
				"pct":  usagePct.StringFixed(1),
			}),
			Severity:    severity,
			CreatedAt:   now,
			RelatedID:   b.ID,
			RelatedType: model.RelatedBudget,
		})
	}
	return out
}

func (e *Evaluator) accountAlerts(accounts []model.Account, settings model.NotificationSettings, now time.Time) []model.Alert {
	var out []model.Alert
	for _, a := range accounts {
		if a.Balance.GreaterThan(settings.LowBalanceThreshold) {
			continue
		}
		severity := model.SeverityHigh
		if a.Balance.LessThanOrEqual(balanceCritical) {
			severity = model.SeverityCritical
		}
		out = append(out, model.Alert{
			ID:    "balance-" + a.ID,
			Type:  model.AlertLowBalance,
			Title: e.catalog.Format("low_balance.title", nil),
			Message: e.catalog.Format("low_balance.message", map[string]string{
				"name":    a.Name,
				"balance": a.Balance.StringFixed(2),
			}),
			Severity:    severity,
			CreatedAt:   now,
			RelatedID:   a.ID,
			RelatedType: model.RelatedAccount,
		})
	}
	return out
}

// daysUntil is the ceiling of the whole days between now and due.
func daysUntil(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AlertType identifies which generation rule produced an alert.
type AlertType string

const (
	AlertPayableDue      AlertType = "payable_due"
	AlertPayableOverdue  AlertType = "payable_overdue"
	AlertInvestmentYield AlertType = "investment_yield"
	AlertBudgetLimit     AlertType = "budget_limit"
	AlertGoalDeadline    AlertType = "goal_deadline"
	AlertLowBalance      AlertType = "low_balance"
)

// Severity is the ordinal urgency classification of an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the ordinal position of the severity (critical > high > medium > low).
func (s Severity) Rank() int {
	return severityRank[s]
}

// AtLeast reports whether s is at least as urgent as other.
func (s Severity) AtLeast(other Severity) bool {
	return severityRank[s] >= severityRank[other]
}

// RelatedType names the kind of source entity an alert points back to.
type RelatedType string

const (
	RelatedPayable    RelatedType = "payable"
	RelatedInvestment RelatedType = "investment"
	RelatedBudget     RelatedType = "budget"
	RelatedGoal       RelatedType = "goal"
	RelatedAccount    RelatedType = "account"
)

// Alert is a single notification-worthy event derived from source data.
// The ID is deterministic per (type, source entity), so regenerating from
// the same state yields the same id for the same logical event.
type Alert struct {
	ID          string      `json:"id"`
	Type        AlertType   `json:"type"`
	Title       string      `json:"title"`
	Message     string      `json:"message"`
	Severity    Severity    `json:"severity"`
	IsRead      bool        `json:"is_read"`
	CreatedAt   time.Time   `json:"created_at"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	RelatedID   string      `json:"related_id"`
	RelatedType RelatedType `json:"related_type"`
}

// NotificationSettings is the per-user threshold configuration the alert
// rules evaluate against. One record per engine instance; not persisted.
type NotificationSettings struct {
	EmailNotifications       bool            `json:"email_notifications"`
	PushNotifications        bool            `json:"push_notifications"`
	PayableDueDays           int             `json:"payable_due_days"`
	InvestmentYieldThreshold float64         `json:"investment_yield_threshold"`
	BudgetLimitThreshold     float64         `json:"budget_limit_threshold"`
	LowBalanceThreshold      decimal.Decimal `json:"low_balance_threshold"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
}

// DefaultNotificationSettings returns the settings record an engine starts with.
func DefaultNotificationSettings(now time.Time) NotificationSettings {
	return NotificationSettings{
		EmailNotifications:       true,
		PushNotifications:        false,
		PayableDueDays:           3,
		InvestmentYieldThreshold: 5.0,
		BudgetLimitThreshold:     80.0,
		LowBalanceThreshold:      decimal.NewFromInt(1000),
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}

// SettingsPatch is a partial settings update; nil fields are left untouched.
type SettingsPatch struct {
	EmailNotifications       *bool            `json:"email_notifications,omitempty"`
	PushNotifications        *bool            `json:"push_notifications,omitempty"`
	PayableDueDays           *int             `json:"payable_due_days,omitempty"`
	InvestmentYieldThreshold *float64         `json:"investment_yield_threshold,omitempty"`
	BudgetLimitThreshold     *float64         `json:"budget_limit_threshold,omitempty"`
	LowBalanceThreshold      *decimal.Decimal `json:"low_balance_threshold,omitempty"`
}

// ValidationError reports a rejected settings field. The settings record is
// left unchanged when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

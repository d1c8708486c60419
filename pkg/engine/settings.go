package engine

import "github.com/gestfin/gestfin/pkg/model"

// Settings returns a copy of the current notification settings record.
func (e *Engine) Settings() model.NotificationSettings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// UpdateSettings merges the provided fields into the settings record and
// refreshes UpdatedAt. Nil fields are left untouched. The whole patch is
// validated first; on rejection the record is unchanged and the returned
// error is a *model.ValidationError naming the offending field.
func (e *Engine) UpdateSettings(patch model.SettingsPatch) (model.NotificationSettings, error) {
	if err := validatePatch(patch); err != nil {
		return model.NotificationSettings{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if patch.EmailNotifications != nil {
		e.settings.EmailNotifications = *patch.EmailNotifications
	}
	if patch.PushNotifications != nil {
		e.settings.PushNotifications = *patch.PushNotifications
	}
	if patch.PayableDueDays != nil {
		e.settings.PayableDueDays = *patch.PayableDueDays
	}
	if patch.InvestmentYieldThreshold != nil {
		e.settings.InvestmentYieldThreshold = *patch.InvestmentYieldThreshold
	}
	if patch.BudgetLimitThreshold != nil {
		e.settings.BudgetLimitThreshold = *patch.BudgetLimitThreshold
	}
	if patch.LowBalanceThreshold != nil {
		e.settings.LowBalanceThreshold = *patch.LowBalanceThreshold
	}
	e.settings.UpdatedAt = e.now().UTC()

	return e.settings, nil
}

func validatePatch(patch model.SettingsPatch) error {
	if patch.PayableDueDays != nil && *patch.PayableDueDays < 1 {
		return &model.ValidationError{Field: "payable_due_days", Reason: "must be at least 1"}
	}
	if patch.InvestmentYieldThreshold != nil && *patch.InvestmentYieldThreshold < 0 {
		return &model.ValidationError{Field: "investment_yield_threshold", Reason: "must not be negative"}
	}
	if patch.BudgetLimitThreshold != nil && *patch.BudgetLimitThreshold < 0 {
		return &model.ValidationError{Field: "budget_limit_threshold", Reason: "must not be negative"}
	}
	if patch.LowBalanceThreshold != nil && patch.LowBalanceThreshold.IsNegative() {
		return &model.ValidationError{Field: "low_balance_threshold", Reason: "must not be negative"}
	}
	return nil
}

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gestfin/gestfin/pkg/model"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Inspect and test notification delivery",
}

var notifyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective notification thresholds",
	RunE:  runNotifyShow,
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test alert through the configured notifiers",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyShowCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("Notification thresholds:\n")
	fmt.Printf("  Email enabled:        %t\n", cfg.Notifications.Email)
	fmt.Printf("  Push enabled:         %t\n", cfg.Notifications.Push)
	fmt.Printf("  Payable due days:     %d\n", cfg.Notifications.PayableDueDays)
	fmt.Printf("  Yield threshold:      %.1f%%\n", cfg.Notifications.YieldThreshold)
	fmt.Printf("  Budget threshold:     %.1f%%\n", cfg.Notifications.BudgetThreshold)
	fmt.Printf("  Low balance:          %.2f\n", cfg.Notifications.LowBalance)
	fmt.Printf("\nDelivery channels:\n")
	fmt.Printf("  Slack:   enabled=%t\n", cfg.Alerts.Slack.Enabled)
	fmt.Printf("  Webhook: enabled=%t\n", cfg.Alerts.Webhook.Enabled)

	return nil
}

func runNotifyTest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	notifiers := newNotifiers(cfg)
	if len(notifiers) == 0 {
		fmt.Println("No notifiers configured. Enable slack or webhook delivery in config.")
		return nil
	}

	alert := model.Alert{
		ID:        "test-" + time.Now().UTC().Format("20060102150405"),
		Type:      model.AlertLowBalance,
		Title:     "Test alert",
		Message:   "This is a Gestfin delivery test.",
		Severity:  model.SeverityHigh,
		CreatedAt: time.Now().UTC(),
	}

	for _, n := range notifiers {
		if err := n.Send(cmd.Context(), alert); err != nil {
			return fmt.Errorf("notifier %s: %w", n.Name(), err)
		}
		fmt.Printf("Sent test alert via %s.\n", n.Name())
	}
	return nil
}

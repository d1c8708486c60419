package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/gestfin/gestfin/pkg/model"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Manage category spending budgets",
}

var budgetSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update a budget",
	RunE:  runBudgetSet,
}

var budgetStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current budget usage",
	RunE:  runBudgetStatus,
}

func init() {
	rootCmd.AddCommand(budgetCmd)
	budgetCmd.AddCommand(budgetSetCmd)
	budgetCmd.AddCommand(budgetStatusCmd)

	budgetSetCmd.Flags().StringP("name", "n", "", "Budget name (matches expense categories)")
	budgetSetCmd.Flags().StringP("limit", "l", "", "Spending limit")
	budgetSetCmd.Flags().StringP("period", "P", "monthly", "Budget period (daily, weekly, monthly)")
	_ = budgetSetCmd.MarkFlagRequired("name")
	_ = budgetSetCmd.MarkFlagRequired("limit")
}

func runBudgetSet(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	limitStr, _ := cmd.Flags().GetString("limit")
	period, _ := cmd.Flags().GetString("period")

	limit, err := decimal.NewFromString(limitStr)
	if err != nil {
		return fmt.Errorf("parse limit %q: %w", limitStr, err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	budget := &model.Budget{
		Name:        name,
		LimitAmount: limit,
		Period:      model.BudgetPeriod(period),
	}
	if err := store.SetBudget(cmd.Context(), budget); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}

	fmt.Printf("Budget set:\n")
	fmt.Printf("  Name:   %s\n", name)
	fmt.Printf("  Limit:  %s\n", limit.StringFixed(2))
	fmt.Printf("  Period: %s\n", period)

	return nil
}

func runBudgetStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	budgets, err := store.ListBudgets(cmd.Context())
	if err != nil {
		return fmt.Errorf("list budgets: %w", err)
	}

	if len(budgets) == 0 {
		fmt.Println("No budgets configured. Use 'gestfin budget set' to create one.")
		return nil
	}

	hundred := decimal.NewFromInt(100)
	threshold := decimal.NewFromFloat(cfg.Notifications.BudgetThreshold)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tPERIOD\tLIMIT\tSPENT\tREMAINING\tUSAGE\n")
	for _, b := range budgets {
		remaining := b.LimitAmount.Sub(b.SpentAmount)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		pct := decimal.Zero
		if b.LimitAmount.IsPositive() {
			pct = b.SpentAmount.Div(b.LimitAmount).Mul(hundred)
		}

		status := ""
		switch {
		case pct.GreaterThanOrEqual(decimal.NewFromInt(95)):
			status = " [CRITICAL]"
		case pct.GreaterThanOrEqual(threshold):
			status = " [WARNING]"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s%%%s\n",
			b.Name, b.Period, b.LimitAmount.StringFixed(2), b.SpentAmount.StringFixed(2),
			remaining.StringFixed(2), pct.StringFixed(1), status,
		)
	}
	w.Flush()

	return nil
}

package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gestfin/gestfin/pkg/ledger"
	"github.com/gestfin/gestfin/pkg/model"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate an income/expense summary",
	Long:  `Aggregate income and expense transactions for a time period.`,
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("period", "P", "monthly", "Report period (daily, weekly, monthly)")
	reportCmd.Flags().Bool("detailed", false, "Show individual transactions")
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	period, _ := cmd.Flags().GetString("period")
	detailed, _ := cmd.Flags().GetBool("detailed")

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	led := ledger.New(store, newLogger(cfg))

	start, end := model.PeriodBounds(model.BudgetPeriod(period))
	filter := model.TransactionFilter{StartTime: start, EndTime: end}

	summary, err := led.Summary(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	fmt.Printf("=== Gestfin Report (%s) ===\n", period)
	fmt.Printf("Period: %s to %s\n\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Printf("Total Income:   %s\n", summary.TotalIncome.StringFixed(2))
	fmt.Printf("Total Expenses: %s\n", summary.TotalExpense.StringFixed(2))
	fmt.Printf("Net:            %s\n", summary.Net.StringFixed(2))
	fmt.Printf("Transactions:   %d\n", summary.RecordCount)

	if len(summary.ByCategory) > 0 {
		fmt.Printf("\nExpenses by Category:\n")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  CATEGORY\tSPENT\n")
		for name, spent := range summary.ByCategory {
			fmt.Fprintf(w, "  %s\t%s\n", name, spent.StringFixed(2))
		}
		w.Flush()
	}

	if detailed {
		txs, err := led.Query(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("query transactions: %w", err)
		}

		if len(txs) > 0 {
			fmt.Printf("\nTransactions:\n")
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "  DATE\tKIND\tDESCRIPTION\tCATEGORY\tAMOUNT\n")
			for _, t := range txs {
				fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
					t.OccurredAt.Format("2006-01-02"),
					t.Kind, t.Description, t.Category, t.Amount.StringFixed(2),
				)
			}
			w.Flush()
		}
	}

	return nil
}

package cli

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/gestfin/gestfin/pkg/ledger"
	"github.com/gestfin/gestfin/pkg/model"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Record income and expense transactions",
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	Long: `Record a single income or expense transaction. Expense transactions
with a category roll into the matching budget's spent amount.`,
	RunE: runTxAdd,
}

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txAddCmd)

	txAddCmd.Flags().StringP("kind", "k", "expense", "Transaction kind (income, expense)")
	txAddCmd.Flags().StringP("description", "d", "", "What the transaction was for")
	txAddCmd.Flags().StringP("amount", "a", "", "Amount")
	txAddCmd.Flags().StringP("category", "c", "", "Category group")
	txAddCmd.Flags().String("date", "", "Date (YYYY-MM-DD, default today)")
	_ = txAddCmd.MarkFlagRequired("description")
	_ = txAddCmd.MarkFlagRequired("amount")
}

func runTxAdd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	kind, _ := cmd.Flags().GetString("kind")
	description, _ := cmd.Flags().GetString("description")
	amountStr, _ := cmd.Flags().GetString("amount")
	category, _ := cmd.Flags().GetString("category")
	dateStr, _ := cmd.Flags().GetString("date")

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", amountStr, err)
	}

	occurred := time.Now().UTC()
	if dateStr != "" {
		occurred, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("parse date %q: %w", dateStr, err)
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	led := ledger.New(store, newLogger(cfg))
	t := &model.Transaction{
		Kind:        model.TransactionKind(kind),
		Description: description,
		Category:    category,
		Amount:      amount,
		OccurredAt:  occurred,
	}
	if err := led.Record(cmd.Context(), t); err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}

	fmt.Printf("Transaction recorded:\n")
	fmt.Printf("  ID:          %s\n", t.ID)
	fmt.Printf("  Kind:        %s\n", t.Kind)
	fmt.Printf("  Description: %s\n", t.Description)
	fmt.Printf("  Amount:      %s\n", t.Amount.StringFixed(2))
	fmt.Printf("  Category:    %s\n", t.Category)

	return nil
}

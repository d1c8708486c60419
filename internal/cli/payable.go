package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/gestfin/gestfin/pkg/model"
)

var payableCmd = &cobra.Command{
	Use:   "payable",
	Short: "Manage bills and obligations",
}

var payableAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new payable",
	RunE:  runPayableAdd,
}

var payableListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payables",
	RunE:  runPayableList,
}

var payablePayCmd = &cobra.Command{
	Use:   "pay <id>",
	Short: "Mark a payable as paid",
	Args:  cobra.ExactArgs(1),
	RunE:  runPayablePay,
}

func init() {
	rootCmd.AddCommand(payableCmd)
	payableCmd.AddCommand(payableAddCmd)
	payableCmd.AddCommand(payableListCmd)
	payableCmd.AddCommand(payablePayCmd)

	payableAddCmd.Flags().StringP("description", "d", "", "What the payable is for")
	payableAddCmd.Flags().StringP("amount", "a", "", "Amount owed")
	payableAddCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	payableAddCmd.Flags().StringP("category", "c", "", "Category group")
	_ = payableAddCmd.MarkFlagRequired("description")
	_ = payableAddCmd.MarkFlagRequired("amount")
	_ = payableAddCmd.MarkFlagRequired("due")

	payableListCmd.Flags().StringP("status", "s", "", "Filter by status (pending, paid, overdue)")
}

func runPayableAdd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	description, _ := cmd.Flags().GetString("description")
	amountStr, _ := cmd.Flags().GetString("amount")
	dueStr, _ := cmd.Flags().GetString("due")
	category, _ := cmd.Flags().GetString("category")

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", amountStr, err)
	}
	due, err := time.Parse("2006-01-02", dueStr)
	if err != nil {
		return fmt.Errorf("parse due date %q: %w", dueStr, err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	p := &model.Payable{
		Description: description,
		Category:    category,
		Amount:      amount,
		DueDate:     due.UTC(),
	}
	if err := store.CreatePayable(cmd.Context(), p); err != nil {
		return fmt.Errorf("create payable: %w", err)
	}

	fmt.Printf("Payable recorded:\n")
	fmt.Printf("  ID:          %s\n", p.ID)
	fmt.Printf("  Description: %s\n", p.Description)
	fmt.Printf("  Amount:      %s\n", p.Amount.StringFixed(2))
	fmt.Printf("  Due:         %s\n", p.DueDate.Format("2006-01-02"))

	return nil
}

func runPayableList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	status, _ := cmd.Flags().GetString("status")

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	payables, err := store.ListPayables(cmd.Context(), model.PayableStatus(status))
	if err != nil {
		return fmt.Errorf("list payables: %w", err)
	}

	if len(payables) == 0 {
		fmt.Println("No payables found. Use 'gestfin payable add' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tDESCRIPTION\tCATEGORY\tAMOUNT\tDUE\tSTATUS\n")
	for _, p := range payables {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Description, p.Category,
			p.Amount.StringFixed(2), p.DueDate.Format("2006-01-02"), p.Status,
		)
	}
	w.Flush()

	return nil
}

func runPayablePay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.MarkPayablePaid(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}

	fmt.Printf("Payable %s marked paid.\n", args[0])
	return nil
}

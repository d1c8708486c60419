package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/gestfin/gestfin/pkg/model"
)

var investCmd = &cobra.Command{
	Use:   "invest",
	Short: "Manage investments",
}

var investAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new investment",
	RunE:  runInvestAdd,
}

var investListCmd = &cobra.Command{
	Use:   "list",
	Short: "List investments with yields",
	RunE:  runInvestList,
}

var investSetValueCmd = &cobra.Command{
	Use:   "set-value <id>",
	Short: "Update an investment's current market value",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvestSetValue,
}

func init() {
	rootCmd.AddCommand(investCmd)
	investCmd.AddCommand(investAddCmd)
	investCmd.AddCommand(investListCmd)
	investCmd.AddCommand(investSetValueCmd)

	investAddCmd.Flags().StringP("name", "n", "", "Investment name")
	investAddCmd.Flags().StringP("amount", "a", "", "Purchase amount")
	investAddCmd.Flags().String("value", "", "Current value (defaults to purchase amount)")
	_ = investAddCmd.MarkFlagRequired("name")
	_ = investAddCmd.MarkFlagRequired("amount")

	investSetValueCmd.Flags().String("value", "", "Current market value")
	_ = investSetValueCmd.MarkFlagRequired("value")
}

func runInvestAdd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	amountStr, _ := cmd.Flags().GetString("amount")
	valueStr, _ := cmd.Flags().GetString("value")

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", amountStr, err)
	}
	value := amount
	if valueStr != "" {
		value, err = decimal.NewFromString(valueStr)
		if err != nil {
			return fmt.Errorf("parse value %q: %w", valueStr, err)
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	inv := &model.Investment{Name: name, Amount: amount, CurrentValue: value}
	if err := store.CreateInvestment(cmd.Context(), inv); err != nil {
		return fmt.Errorf("create investment: %w", err)
	}

	fmt.Printf("Investment recorded:\n")
	fmt.Printf("  ID:     %s\n", inv.ID)
	fmt.Printf("  Name:   %s\n", inv.Name)
	fmt.Printf("  Amount: %s\n", inv.Amount.StringFixed(2))
	fmt.Printf("  Value:  %s\n", inv.CurrentValue.StringFixed(2))

	return nil
}

func runInvestList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	investments, err := store.ListInvestments(cmd.Context())
	if err != nil {
		return fmt.Errorf("list investments: %w", err)
	}

	if len(investments) == 0 {
		fmt.Println("No investments found. Use 'gestfin invest add' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tAMOUNT\tVALUE\tYIELD\n")
	hundred := decimal.NewFromInt(100)
	for _, inv := range investments {
		yield := "n/a"
		if inv.Amount.IsPositive() {
			pct := inv.CurrentValue.Sub(inv.Amount).Div(inv.Amount).Mul(hundred)
			yield = pct.StringFixed(1) + "%"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			inv.ID, inv.Name, inv.Amount.StringFixed(2), inv.CurrentValue.StringFixed(2), yield,
		)
	}
	w.Flush()

	return nil
}

func runInvestSetValue(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	valueStr, _ := cmd.Flags().GetString("value")
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return fmt.Errorf("parse value %q: %w", valueStr, err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.UpdateInvestmentValue(cmd.Context(), args[0], value); err != nil {
		return fmt.Errorf("update value: %w", err)
	}

	fmt.Printf("Investment %s value set to %s.\n", args[0], value.StringFixed(2))
	return nil
}

package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/gestfin/gestfin/pkg/model"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage money accounts",
}

var accountAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new account",
	RunE:  runAccountAdd,
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts and balances",
	RunE:  runAccountList,
}

var accountSetBalanceCmd = &cobra.Command{
	Use:   "set-balance <id>",
	Short: "Update an account balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountSetBalance,
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountAddCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountSetBalanceCmd)

	accountAddCmd.Flags().StringP("name", "n", "", "Account name")
	accountAddCmd.Flags().StringP("balance", "b", "0", "Opening balance")
	_ = accountAddCmd.MarkFlagRequired("name")

	accountSetBalanceCmd.Flags().StringP("balance", "b", "", "New balance")
	_ = accountSetBalanceCmd.MarkFlagRequired("balance")
}

func runAccountAdd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	balanceStr, _ := cmd.Flags().GetString("balance")

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return fmt.Errorf("parse balance %q: %w", balanceStr, err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	a := &model.Account{Name: name, Balance: balance}
	if err := store.CreateAccount(cmd.Context(), a); err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	fmt.Printf("Account recorded:\n")
	fmt.Printf("  ID:      %s\n", a.ID)
	fmt.Printf("  Name:    %s\n", a.Name)
	fmt.Printf("  Balance: %s\n", a.Balance.StringFixed(2))

	return nil
}

func runAccountList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	accounts, err := store.ListAccounts(cmd.Context())
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	if len(accounts) == 0 {
		fmt.Println("No accounts found. Use 'gestfin account add' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tBALANCE\n")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, a.Name, a.Balance.StringFixed(2))
	}
	w.Flush()

	return nil
}

func runAccountSetBalance(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	balanceStr, _ := cmd.Flags().GetString("balance")
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return fmt.Errorf("parse balance %q: %w", balanceStr, err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SetAccountBalance(cmd.Context(), args[0], balance); err != nil {
		return fmt.Errorf("set balance: %w", err)
	}

	fmt.Printf("Account %s balance set to %s.\n", args[0], balance.StringFixed(2))
	return nil
}

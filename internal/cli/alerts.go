package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gestfin/gestfin/pkg/model"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Evaluate and list current alerts",
	Long: `Run one alert pass over the stored payables, investments, budgets and
accounts, and list the results. Pending payables past their due date are
swept to overdue first.`,
	RunE: runAlerts,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.Flags().StringP("type", "t", "", "Filter by alert type")
	alertsCmd.Flags().StringP("severity", "s", "", "Filter by severity (low, medium, high, critical)")
	alertsCmd.Flags().Bool("notify", false, "Also deliver high/critical alerts to configured notifiers")
}

func runAlerts(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	typeFilter, _ := cmd.Flags().GetString("type")
	severityFilter, _ := cmd.Flags().GetString("severity")
	doNotify, _ := cmd.Flags().GetBool("notify")

	if !doNotify {
		cfg.Alerts.Slack.Enabled = false
		cfg.Alerts.Webhook.Enabled = false
	}

	logger := newLogger(cfg)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.MarkPayablesOverdue(cmd.Context(), time.Now().UTC()); err != nil {
		return fmt.Errorf("sweep overdue payables: %w", err)
	}

	eng, err := newEngine(cfg, store, logger)
	if err != nil {
		return err
	}
	if err := eng.Regenerate(cmd.Context()); err != nil {
		return fmt.Errorf("evaluate alerts: %w", err)
	}

	var alerts []model.Alert
	switch {
	case typeFilter != "":
		alerts = eng.AlertsByType(model.AlertType(typeFilter))
	case severityFilter != "":
		alerts = eng.AlertsBySeverity(model.Severity(severityFilter))
	default:
		alerts = eng.Alerts()
	}

	if len(alerts) == 0 {
		fmt.Println("No alerts.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SEVERITY\tTYPE\tTITLE\tMESSAGE\tDUE\n")
	for _, a := range alerts {
		due := ""
		if a.DueDate != nil {
			due = a.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.Severity, a.Type, a.Title, a.Message, due)
	}
	w.Flush()

	fmt.Printf("\n%d alert(s), %d unread.\n", len(alerts), eng.UnreadCount())
	return nil
}

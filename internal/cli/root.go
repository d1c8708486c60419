package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/gestfin/gestfin/internal/config"
	"github.com/gestfin/gestfin/pkg/engine"
	"github.com/gestfin/gestfin/pkg/locale"
	"github.com/gestfin/gestfin/pkg/model"
	"github.com/gestfin/gestfin/pkg/notify"
	"github.com/gestfin/gestfin/pkg/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gestfin",
	Short: "Gestfin - personal finance tracking with threshold alerts",
	Long: `Gestfin tracks payables, investments, budgets and accounts, and derives
notification-worthy alerts from configurable thresholds: payables coming due
or overdue, investment yields, budget usage and low account balances.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.gestfin/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// newCatalog resolves the configured locale through a registry of every
// catalog file in the locale directory. An unregistered tag falls back to
// the built-in English catalog; a broken catalog file is an error.
func newCatalog(cfg *config.Config) (*locale.Catalog, error) {
	registry, err := locale.LoadDir(cfg.Locale.Dir)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}

	tag := cfg.Locale.Tag
	if tag == "" {
		tag = "en"
	}
	catalog, err := registry.Get(tag)
	if err != nil {
		return locale.Default(), nil
	}
	return catalog, nil
}

// newNotifiers creates alert notifiers from config.
func newNotifiers(cfg *config.Config) []notify.Notifier {
	var notifiers []notify.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(
			cfg.Alerts.Slack.WebhookURL,
			cfg.Alerts.Slack.Channel,
		))
	}

	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(
			cfg.Alerts.Webhook.URL,
			cfg.Alerts.Webhook.Secret,
		))
	}

	return notifiers
}

// openStore creates a storage backend from config.
func openStore(cfg *config.Config) (storage.Store, error) {
	return storage.NewSQLite(cfg.Storage.Path)
}

// newEngine creates a fully wired alert engine seeded with the configured
// thresholds.
func newEngine(cfg *config.Config, store storage.Store, logger *slog.Logger) (*engine.Engine, error) {
	catalog, err := newCatalog(cfg)
	if err != nil {
		return nil, err
	}

	eng := engine.New(store, engine.NewEvaluator(catalog), newNotifiers(cfg), logger)

	lowBalance := decimal.NewFromFloat(cfg.Notifications.LowBalance)
	patch := model.SettingsPatch{
		EmailNotifications:       &cfg.Notifications.Email,
		PushNotifications:        &cfg.Notifications.Push,
		PayableDueDays:           &cfg.Notifications.PayableDueDays,
		InvestmentYieldThreshold: &cfg.Notifications.YieldThreshold,
		BudgetLimitThreshold:     &cfg.Notifications.BudgetThreshold,
		LowBalanceThreshold:      &lowBalance,
	}
	if _, err := eng.UpdateSettings(patch); err != nil {
		return nil, fmt.Errorf("apply configured thresholds: %w", err)
	}

	return eng, nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all Gestfin configuration.
type Config struct {
	Storage       StorageConfig       `mapstructure:"storage"`
	Server        ServerConfig        `mapstructure:"server"`
	Alerts        AlertsConfig        `mapstructure:"alerts"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Locale        LocaleConfig        `mapstructure:"locale"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// StorageConfig defines database settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig defines HTTP API settings.
type ServerConfig struct {
	Listen       string `mapstructure:"listen"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// AlertsConfig defines regeneration and delivery settings.
type AlertsConfig struct {
	Interval string        `mapstructure:"interval"`
	Slack    SlackConfig   `mapstructure:"slack"`
	Webhook  WebhookConfig `mapstructure:"webhook"`
}

// SlackConfig defines Slack webhook settings.
type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Secret  string `mapstructure:"secret"`
}

// NotificationsConfig seeds the engine's initial threshold settings.
type NotificationsConfig struct {
	Email           bool    `mapstructure:"email"`
	Push            bool    `mapstructure:"push"`
	PayableDueDays  int     `mapstructure:"payable_due_days"`
	YieldThreshold  float64 `mapstructure:"yield_threshold"`
	BudgetThreshold float64 `mapstructure:"budget_threshold"`
	LowBalance      float64 `mapstructure:"low_balance"`
}

// LocaleConfig defines message catalog settings.
type LocaleConfig struct {
	Dir string `mapstructure:"dir"`
	Tag string `mapstructure:"tag"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".gestfin"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("storage.path", filepath.Join(home, ".gestfin", "gestfin.db"))
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("alerts.interval", "5m")
	v.SetDefault("alerts.slack.channel", "#gestfin")
	v.SetDefault("notifications.email", true)
	v.SetDefault("notifications.push", false)
	v.SetDefault("notifications.payable_due_days", 3)
	v.SetDefault("notifications.yield_threshold", 5.0)
	v.SetDefault("notifications.budget_threshold", 80.0)
	v.SetDefault("notifications.low_balance", 1000.0)
	v.SetDefault("locale.dir", "locales/")
	v.SetDefault("locale.tag", "en")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Environment variables
	v.SetEnvPrefix("GESTFIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

package locale

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatalogConfig holds YAML-loaded message templates for one locale.
type CatalogConfig struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog resolves message keys to localized templates. Placeholders use
// the form {name} and are substituted verbatim.
type Catalog struct {
	tag      string
	messages map[string]string
}

// Built-in English templates. Every alert rule key must resolve here so a
// partial catalog file cannot produce empty titles.
var defaultMessages = map[string]string{
	"payable_overdue.title":    "Payable overdue",
	"payable_overdue.message":  "{description} ({amount}) is past its due date",
	"payable_due.title":        "Payable due soon",
	"payable_due.message":      "{description} is due in {days} day(s)",
	"investment_yield.title":   "Investment yield",
	"investment_yield.message": "{name} is up {pct}% over its purchase amount",
	"budget_limit.title":       "Budget limit",
	"budget_limit.message":     "Budget {name} has used {pct}% of its limit",
	"low_balance.title":        "Low balance",
	"low_balance.message":      "Account {name} balance is down to {balance}",
}

// Default returns the built-in English catalog.
func Default() *Catalog {
	return &Catalog{tag: "en", messages: defaultMessages}
}

// NewCatalog creates a catalog from a loaded config.
func NewCatalog(cfg *CatalogConfig) *Catalog {
	m := make(map[string]string, len(cfg.Messages))
	for k, v := range cfg.Messages {
		m[k] = v
	}
	return &Catalog{tag: cfg.Locale, messages: m}
}

// NewCatalogFromFile creates a catalog from a YAML message file.
func NewCatalogFromFile(path string) (*Catalog, error) {
	cfg, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(cfg), nil
}

// LoadCatalog reads a YAML message file and returns the catalog configuration.
func LoadCatalog(path string) (*CatalogConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locale file %s: %w", path, err)
	}

	var cfg CatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse locale file %s: %w", path, err)
	}

	if cfg.Locale == "" {
		return nil, fmt.Errorf("locale file %s: missing locale tag", path)
	}
	if len(cfg.Messages) == 0 {
		return nil, fmt.Errorf("locale file %s: no messages defined", path)
	}

	return &cfg, nil
}

// Tag returns the locale identifier (e.g. "en", "pt-BR").
func (c *Catalog) Tag() string { return c.tag }

// Format resolves a message key and substitutes {placeholder} args.
// Unknown keys fall back to the built-in English templates, then to the
// key itself.
func (c *Catalog) Format(key string, args map[string]string) string {
	tpl, ok := c.messages[key]
	if !ok {
		tpl, ok = defaultMessages[key]
		if !ok {
			return key
		}
	}

	if len(args) == 0 {
		return tpl
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

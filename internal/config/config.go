package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
)

// Config represents the top-level tresorerie.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Database DatabaseConfig `yaml:"database"`
	Treasury TreasuryConfig `yaml:"treasury"`
}

// BusinessConfig identifies the business entity on exports.
type BusinessConfig struct {
	Name      string `yaml:"name"`
	SIRET     string `yaml:"siret,omitempty"`
	VATNumber string `yaml:"vat_number,omitempty"`
}

// DatabaseConfig locates the local database file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// TreasuryConfig seeds the account settings.
type TreasuryConfig struct {
	InitialBalance float64 `yaml:"initial_balance"`
	AlertThreshold float64 `yaml:"alert_threshold"`
	VATRegime      string  `yaml:"vat_regime"` // mensuel, trimestriel, franchise
}

// Load reads a tresorerie.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Database: DatabaseConfig{
			Path: "tresorerie.db",
		},
		Treasury: TreasuryConfig{
			AlertThreshold: 5000,
			VATRegime:      string(model.RegimeTrimestriel),
		},
	}
}

// Settings converts the treasury section into account settings,
// substituting the regime default when the configured value is unknown.
func (c *Config) Settings() model.Settings {
	s := model.DefaultSettings()
	s.InitialBalance = decimal.NewFromFloat(c.Treasury.InitialBalance)
	if c.Treasury.AlertThreshold != 0 {
		s.AlertThreshold = decimal.NewFromFloat(c.Treasury.AlertThreshold)
	}
	if regime := model.VATRegime(c.Treasury.VATRegime); regime.Valid() {
		s.VATRegime = regime
	}
	s.VATNumber = c.Business.VATNumber
	return s
}

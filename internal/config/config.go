// Package config loads khata.yaml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/khata-dev/khata/internal/logger"
	"github.com/khata-dev/khata/internal/posting"
)

// FileName is the config file at the root of a project.
const FileName = "khata.yaml"

// Storage drivers.
const (
	DriverCSV      = "csv"
	DriverPostgres = "postgres"
)

// Environment variables that override the file.
const (
	EnvDatabaseURL   = "KHATA_DATABASE_URL"
	EnvStorageDriver = "KHATA_STORAGE_DRIVER"
	EnvLogLevel      = "KHATA_LOG_LEVEL"
)

// Config represents the top-level khata.yaml configuration.
type Config struct {
	Business       BusinessConfig `yaml:"business"`
	Fiscal         FiscalConfig   `yaml:"fiscal"`
	SystemAccounts SystemAccounts `yaml:"system_accounts"`
	Import         ImportConfig   `yaml:"import"`
	Storage        StorageConfig  `yaml:"storage"`
	Log            logger.Config  `yaml:"log"`
	Git            GitConfig      `yaml:"git"`
}

// BusinessConfig identifies the business.
type BusinessConfig struct {
	Name  string `yaml:"name"`
	GSTIN string `yaml:"gstin,omitempty"`
	State string `yaml:"state,omitempty"`
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start"` // "MM-DD", e.g. "04-01"
}

// SystemAccounts points the posting rules at chart accounts.
type SystemAccounts struct {
	Sales     int `yaml:"sales"`
	Purchase  int `yaml:"purchase"`
	OutputTax int `yaml:"output_tax"`
	InputTax  int `yaml:"input_tax"`
	Bank      int `yaml:"bank"` // default bank for payments, receipts and imports
}

// ImportConfig holds the default counter accounts for statement imports.
type ImportConfig struct {
	IncomeAccount  int `yaml:"income_account"`
	ExpenseAccount int `yaml:"expense_account"`
}

// StorageConfig selects the ledger store.
type StorageConfig struct {
	Driver string `yaml:"driver"` // csv or postgres
	DSN    string `yaml:"dsn,omitempty"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Posting returns the accounts the posting engine needs.
func (s SystemAccounts) Posting() posting.SystemAccounts {
	return posting.SystemAccounts{
		Sales:     s.Sales,
		Purchase:  s.Purchase,
		OutputTax: s.OutputTax,
		InputTax:  s.InputTax,
	}
}

// Load reads a khata.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadProject reads <dir>/khata.yaml, then <dir>/.env, then applies the
// KHATA_* environment overrides. Variables already set in the process
// environment win over .env.
func LoadProject(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides storage and log settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvStorageDriver); v != "" {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the settings a command needs before it touches storage.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverCSV:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage driver %q needs a dsn or %s", DriverPostgres, EnvDatabaseURL)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if _, _, err := c.Fiscal.monthDay(); err != nil {
		return err
	}
	return nil
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

// Default returns a Config with sensible defaults for a new project. The
// fiscal year starts on April 1.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Fiscal: FiscalConfig{
			YearStart: "04-01",
		},
		Storage: StorageConfig{
			Driver: DriverCSV,
		},
		Log: logger.DefaultConfig(),
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Khata",
			AuthorEmail: "books@khata.local",
		},
	}
}

// YearStartFor returns the first day of the fiscal year containing day.
func (f FiscalConfig) YearStartFor(day time.Time) (time.Time, error) {
	month, dayOfMonth, err := f.monthDay()
	if err != nil {
		return time.Time{}, err
	}
	start := time.Date(day.Year(), month, dayOfMonth, 0, 0, 0, 0, time.UTC)
	if start.After(day) {
		start = start.AddDate(-1, 0, 0)
	}
	return start, nil
}

func (f FiscalConfig) monthDay() (time.Month, int, error) {
	t, err := time.Parse("01-02", f.YearStart)
	if err != nil {
		return 0, 0, fmt.Errorf("fiscal year_start %q must be MM-DD: %w", f.YearStart, err)
	}
	return t.Month(), t.Day(), nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

type Config struct {
	// Backend selection
	DataBackend string

	// JSON files, relative names resolve under DataDir
	DataDir          string
	TransactionsFile string
	SettingsFile     string
	SummaryFile      string

	// SQLite
	SQLiteDBPath string

	// Logging
	LogLevel  string
	LogFormat string

	// Display
	Currency string
}

var (
	validBackends   = []string{"json", "sqlite", "memory"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

func Load() *Config {
	return &Config{
		DataBackend: getEnv("DATA_BACKEND", "json"),

		DataDir:          getEnv("DATA_DIR", "./data"),
		TransactionsFile: getEnv("TRANSACTIONS_FILE", "transactions.json"),
		SettingsFile:     getEnv("SETTINGS_FILE", "settings.json"),
		SummaryFile:      getEnvAllowEmpty("SUMMARY_FILE", "monthly_summary.json"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledger.db"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "warn")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		Currency: getEnv("CURRENCY", "TL"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "json" {
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using json backend")
		}
		if c.TransactionsFile == "" {
			errors = append(errors, "transactions file cannot be empty when using json backend")
		}
		if c.SettingsFile == "" {
			errors = append(errors, "settings file cannot be empty when using json backend")
		}
		if c.TransactionsFile != "" && c.TransactionsFile == c.SettingsFile {
			errors = append(errors, fmt.Sprintf("transactions and settings must use different files, both are '%s'", c.TransactionsFile))
		}
	}

	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}

	if strings.TrimSpace(c.Currency) == "" {
		errors = append(errors, "currency label cannot be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// TransactionsPath resolves the transactions file against DataDir.
func (c *Config) TransactionsPath() string { return c.resolve(c.TransactionsFile) }

// SettingsPath resolves the settings file against DataDir.
func (c *Config) SettingsPath() string { return c.resolve(c.SettingsFile) }

// SummaryPath resolves the summary snapshot file; empty disables the snapshot.
func (c *Config) SummaryPath() string { return c.resolve(c.SummaryFile) }

func (c *Config) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes an unset variable from one set to "".
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

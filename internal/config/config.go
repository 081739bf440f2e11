// Package config loads the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/router-for-me/InvoiceDrafter/internal/util"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that overrides the config file location.
const EnvConfigPath = "INVOICE_DRAFTER_CONFIG"

const configFileName = "config.yaml"

// AppConfig holds process-level inputs supplied on the command line.
type AppConfig struct {
	ConfigPath string
}

// Config is the on-disk configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Output   OutputConfig   `yaml:"output"`
}

// DatabaseConfig selects the settings database.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// LoggingConfig controls the application log.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
	Stdout     bool   `yaml:"stdout"`
}

// OutputConfig controls where finalized invoices are exported.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// Default returns the configuration used when no file exists, rooted at the data directory.
func Default() Config {
	dataDir := util.DataDir()
	return Config{
		Database: DatabaseConfig{DSN: filepath.Join(dataDir, "settings.db")},
		Logging: LoggingConfig{
			Level:      "info",
			File:       filepath.Join(dataDir, "logs", "invoice-drafter.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Output: OutputConfig{Directory: filepath.Join(dataDir, "invoices")},
	}
}

// ResolveConfigPath picks the config file: the explicit path, then $INVOICE_DRAFTER_CONFIG,
// then config.yaml under WRITABLE_PATH, then config.yaml in the data directory.
func ResolveConfigPath(explicit string) string {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return env
	}
	if writable := util.WritablePath(); writable != "" {
		return filepath.Join(writable, configFileName)
	}
	return filepath.Join(util.DataDir(), configFileName)
}

// Load reads path over the defaults. A missing file yields the defaults; a file that exists
// but cannot be parsed is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, errRead := os.ReadFile(path)
	if errRead != nil {
		if errors.Is(errRead, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
	}
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
	}
	cfg.normalize(filepath.Dir(path))
	return cfg, nil
}

// LoadDatabaseDSN returns only the database DSN from the config at path.
func LoadDatabaseDSN(path string) (string, error) {
	cfg, err := Load(path)
	if err != nil {
		return "", err
	}
	if cfg.Database.DSN == "" {
		return "", fmt.Errorf("config: database.dsn is empty")
	}
	return cfg.Database.DSN, nil
}

// normalize trims values and resolves relative file paths against the config file directory.
func (c *Config) normalize(baseDir string) {
	defaults := Default()

	c.Database.DSN = strings.TrimSpace(c.Database.DSN)
	if c.Database.DSN == "" {
		c.Database.DSN = defaults.Database.DSN
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	c.Logging.File = resolvePath(baseDir, c.Logging.File)
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}

	c.Output.Directory = resolvePath(baseDir, c.Output.Directory)
	if c.Output.Directory == "" {
		c.Output.Directory = defaults.Output.Directory
	}
}

func resolvePath(baseDir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

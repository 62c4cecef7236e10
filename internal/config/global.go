// Package config handles import configuration files and the global user
// configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/pcat/config.yml.
type GlobalConfig struct {
	DBPath         string  `yaml:"db_path,omitempty"`
	LogLevel       string  `yaml:"log_level,omitempty"`
	LogFile        string  `yaml:"log_file,omitempty"`
	LogFormat      string  `yaml:"log_format,omitempty"`
	PdftotextPath  string  `yaml:"pdftotext_path,omitempty"`
	ExtractTimeout string  `yaml:"extract_timeout,omitempty"`
	ExtractRate    float64 `yaml:"extract_rate,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "pcat"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// DefaultDBFile is the store used when nothing else is configured.
	DefaultDBFile = "papercat.db"
)

// Environment variables that override the global config file.
const (
	EnvDB        = "PCAT_DB"
	EnvLogLevel  = "PCAT_LOG_LEVEL"
	EnvLogFile   = "PCAT_LOG_FILE"
	EnvPdftotext = "PCAT_PDFTOTEXT"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/pcat/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file and applies
// environment overrides. A missing file yields an empty config.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg := &GlobalConfig{}
	if path := GlobalConfigPath(); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	cfg.DBPath = GetConfigValue(EnvDB, cfg.DBPath)
	cfg.LogLevel = GetConfigValue(EnvLogLevel, cfg.LogLevel)
	cfg.LogFile = GetConfigValue(EnvLogFile, cfg.LogFile)
	cfg.PdftotextPath = GetConfigValue(EnvPdftotext, cfg.PdftotextPath)

	if cfg.DBPath != "" {
		cfg.DBPath = ExpandPath(cfg.DBPath)
	}
	if cfg.LogFile != "" {
		cfg.LogFile = ExpandPath(cfg.LogFile)
	}
	if _, err := cfg.Timeout(); err != nil {
		return nil, err
	}
	if cfg.ExtractRate < 0 {
		return nil, fmt.Errorf("invalid extract_rate %s: must not be negative",
			strconv.FormatFloat(cfg.ExtractRate, 'g', -1, 64))
	}

	globalConfigCache = cfg
	return cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetConfigValue returns the environment variable if set, else fallback.
func GetConfigValue(envKey, fallback string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

// Timeout parses extract_timeout. Zero means the extractor default.
func (c *GlobalConfig) Timeout() (time.Duration, error) {
	if c.ExtractTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.ExtractTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid extract_timeout %q: %w", c.ExtractTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid extract_timeout %q: must not be negative", c.ExtractTimeout)
	}
	return d, nil
}

// ResolveDBPath returns flagValue if set, then the configured path, then
// DefaultDBFile.
func (c *GlobalConfig) ResolveDBPath(flagValue string) string {
	if flagValue != "" {
		return ExpandPath(flagValue)
	}
	if c.DBPath != "" {
		return c.DBPath
	}
	return DefaultDBFile
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

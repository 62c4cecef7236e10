package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := GlobalConfigPath(), "/custom/config/pcat/config.yml"; got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}

	// Empty XDG_CONFIG_HOME falls back to ~/.config
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := GlobalConfigPath(), filepath.Join(home, ".config", "pcat", "config.yml"); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

// writeGlobalConfig points XDG_CONFIG_HOME at a temp dir holding content.
func writeGlobalConfig(t *testing.T, content string) {
	t.Helper()
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	for _, key := range []string{EnvDB, EnvLogLevel, EnvLogFile, EnvPdftotext} {
		t.Setenv(key, "")
	}
	if content == "" {
		return
	}
	dir := filepath.Join(tmpDir, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, GlobalConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	writeGlobalConfig(t, "")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if *cfg != (GlobalConfig{}) {
		t.Errorf("expected empty config, got %+v", cfg)
	}
	if got := cfg.ResolveDBPath(""); got != DefaultDBFile {
		t.Errorf("ResolveDBPath() = %q, want %q", got, DefaultDBFile)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	writeGlobalConfig(t, `db_path: ~/papers/catalog.db
log_level: INFO
log_format: json
pdftotext_path: /opt/poppler/bin/pdftotext
extract_timeout: 30s
extract_rate: 2.5
`)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "papers/catalog.db"); cfg.DBPath != want {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, want)
	}
	if cfg.LogLevel != "INFO" {
		t.Errorf("LogLevel = %q, want INFO", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.PdftotextPath != "/opt/poppler/bin/pdftotext" {
		t.Errorf("PdftotextPath = %q", cfg.PdftotextPath)
	}
	if d, _ := cfg.Timeout(); d != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", d)
	}
	if cfg.ExtractRate != 2.5 {
		t.Errorf("ExtractRate = %v, want 2.5", cfg.ExtractRate)
	}
}

func TestLoadGlobalConfig_EnvOverrides(t *testing.T) {
	writeGlobalConfig(t, "db_path: /from/file.db\nlog_level: INFO\n")
	t.Setenv(EnvDB, "/from/env.db")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvPdftotext, "/env/pdftotext")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.DBPath != "/from/env.db" {
		t.Errorf("DBPath = %q, want /from/env.db", cfg.DBPath)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Errorf("LogLevel = %q, want DEBUG", cfg.LogLevel)
	}
	if cfg.PdftotextPath != "/env/pdftotext" {
		t.Errorf("PdftotextPath = %q", cfg.PdftotextPath)
	}

	// Flags win over everything.
	if got := cfg.ResolveDBPath("/from/flag.db"); got != "/from/flag.db" {
		t.Errorf("ResolveDBPath() = %q, want /from/flag.db", got)
	}
	if got := cfg.ResolveDBPath(""); got != "/from/env.db" {
		t.Errorf("ResolveDBPath(\"\") = %q, want /from/env.db", got)
	}
}

func TestLoadGlobalConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "db_path: [unterminated"},
		{"bad timeout", "extract_timeout: soon"},
		{"negative timeout", "extract_timeout: -5s"},
		{"negative rate", "extract_rate: -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeGlobalConfig(t, tt.content)
			if _, err := LoadGlobalConfig(); err == nil {
				t.Error("LoadGlobalConfig() should return error")
			}
		})
	}
}

func TestGetConfigValue(t *testing.T) {
	t.Setenv("PCAT_TEST_CONFIG_KEY", "from-env")
	if got := GetConfigValue("PCAT_TEST_CONFIG_KEY", "from-config"); got != "from-env" {
		t.Errorf("GetConfigValue() = %q, want from-env", got)
	}

	t.Setenv("PCAT_TEST_CONFIG_KEY", "")
	if got := GetConfigValue("PCAT_TEST_CONFIG_KEY", "from-config"); got != "from-config" {
		t.Errorf("GetConfigValue() = %q, want from-config", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/papers", filepath.Join(home, "papers")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

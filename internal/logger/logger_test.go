package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    zapcore.Level
		off     bool
		wantErr bool
	}{
		{"", zapcore.InfoLevel, true, false},
		{"OFF", zapcore.InfoLevel, true, false},
		{"trace", zapcore.DebugLevel, false, false},
		{"DEBUG", zapcore.DebugLevel, false, false},
		{"Info", zapcore.InfoLevel, false, false},
		{"WARN", zapcore.WarnLevel, false, false},
		{"ERROR", zapcore.ErrorLevel, false, false},
		{"LOUD", zapcore.InfoLevel, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, off, err := ParseLevel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if level != tt.want || off != tt.off {
				t.Errorf("ParseLevel(%q) = %v, %v, want %v, %v", tt.name, level, off, tt.want, tt.off)
			}
		})
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.log")
	log, err := New(Options{Level: "INFO", File: path, Format: "json"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Debug("hidden")
	log.Info("Imported group", "group", "DocumentGroup_1", "imported", 3)
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	text := string(data)
	if strings.Contains(text, "hidden") {
		t.Error("debug message written at INFO level")
	}
	if !strings.Contains(text, `"group":"DocumentGroup_1"`) || !strings.Contains(text, `"imported":3`) {
		t.Errorf("log = %s", text)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(Options{Level: "LOUD"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New(Options{Level: "INFO", Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNew_Off(t *testing.T) {
	log, err := New(Options{Level: "OFF"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if log.SugaredLogger.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("OFF logger should not be enabled")
	}
}

func TestWith(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core).With("sheet", "Papers")
	log.Warn("Abstract not found", "row", 2)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["sheet"] != "Papers" || fields["row"] != int64(2) {
		t.Errorf("fields = %v", fields)
	}
}

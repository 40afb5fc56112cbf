package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Analysis.QuietWindowMs != nil || cfg.Check.Jobs != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[analysis]
quiet-window-ms = 250
dictionary = "~/words.txt"

[check]
color = false
fail-below = 70
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Analysis.QuietWindowMs == nil || *cfg.Analysis.QuietWindowMs != 250 {
		t.Fatalf("unexpected quiet window %v", cfg.Analysis.QuietWindowMs)
	}
	if cfg.Analysis.HistoryCapacity != nil {
		t.Fatalf("expected unset history capacity")
	}
	if cfg.Check.Color == nil || *cfg.Check.Color {
		t.Fatalf("expected color=false")
	}
	if cfg.Check.FailBelow == nil || *cfg.Check.FailBelow != 70 {
		t.Fatalf("unexpected fail-below %v", cfg.Check.FailBelow)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[analysis]\nquiet = 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "quiet") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "quill", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "quill", "quill.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultDictionaryPath(); got != filepath.Join("/cfg", "quill", "dictionary.txt") {
		t.Fatalf("unexpected dictionary path %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/writer")
	if got := ExpandHome("~/words.txt"); got != filepath.Join("/home/writer", "words.txt") {
		t.Fatalf("unexpected expansion %q", got)
	}
	if got := ExpandHome("/abs/words.txt"); got != "/abs/words.txt" {
		t.Fatalf("expected absolute path unchanged, got %q", got)
	}
}

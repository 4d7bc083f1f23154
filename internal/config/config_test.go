package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WebBind != "127.0.0.1" {
		t.Errorf("WebBind = %q, want 127.0.0.1", cfg.WebBind)
	}
	if cfg.WebPort != 7600 {
		t.Errorf("WebPort = %d, want 7600", cfg.WebPort)
	}
	if cfg.DisablePresets {
		t.Error("DisablePresets = true, want false by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"disable_presets": true,
		"db_max_open_conns": 1,
		"disabled_tools": ["entry_purge", "activity_delete"],
		"web_port": 9000
	}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.DisablePresets {
		t.Error("DisablePresets = false, want true")
	}
	if cfg.DBMaxOpenConns != 1 {
		t.Errorf("DBMaxOpenConns = %d, want 1", cfg.DBMaxOpenConns)
	}
	if cfg.WebPort != 9000 {
		t.Errorf("WebPort = %d, want 9000", cfg.WebPort)
	}
	if cfg.WebBind != "127.0.0.1" {
		t.Errorf("WebBind = %q, want default retained", cfg.WebBind)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools = %v, want 2 entries", cfg.DisabledTools)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("Load() accepted invalid JSON")
	}
}

func TestMerge_ScalarOverlayWins(t *testing.T) {
	base := &Config{WebBind: "127.0.0.1", WebPort: 7600, DBMaxOpenConns: 4}
	overlay := &Config{WebPort: 8080}

	got := Merge(base, overlay)
	if got.WebPort != 8080 {
		t.Errorf("WebPort = %d, want overlay 8080", got.WebPort)
	}
	if got.WebBind != "127.0.0.1" {
		t.Errorf("WebBind = %q, want base value", got.WebBind)
	}
	if got.DBMaxOpenConns != 4 {
		t.Errorf("DBMaxOpenConns = %d, want base 4", got.DBMaxOpenConns)
	}
}

func TestMerge_DisabledToolsDeduplicated(t *testing.T) {
	base := &Config{DisabledTools: []string{"entry_purge", "comment_add"}}
	overlay := &Config{DisabledTools: []string{" entry_purge ", "track_stop"}}

	got := Merge(base, overlay)
	want := []string{"entry_purge", "comment_add", "track_stop"}
	if len(got.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", got.DisabledTools, want)
	}
	for i := range want {
		if got.DisabledTools[i] != want[i] {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, got.DisabledTools[i], want[i])
		}
	}
}

func TestMerge_BooleanOr(t *testing.T) {
	got := Merge(&Config{DisablePresets: true}, &Config{})
	if !got.DisablePresets {
		t.Error("DisablePresets lost during merge")
	}
}

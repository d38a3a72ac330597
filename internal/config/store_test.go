package config

import (
	"path/filepath"
	"testing"
)

func TestFileStoreWritesThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := LoadOrCreateAt(path)
	if err != nil {
		t.Fatalf("LoadOrCreateAt failed: %v", err)
	}
	store := NewFileStore(path, &cfg)

	if !store.Bool("lock_enabled", true) {
		t.Fatalf("expected fallback true for absent key")
	}
	if err := store.Set("lock_enabled", false); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set("command_lock", "slock"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	reloaded, err := LoadOrCreateAt(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	again := NewFileStore(path, &reloaded)
	if again.Bool("lock_enabled", true) {
		t.Fatalf("expected persisted lock_enabled=false")
	}
	if got := again.String("command_lock", ""); got != "slock" {
		t.Fatalf("expected persisted command_lock, got %q", got)
	}

	if err := again.Remove("command_lock"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	final, err := LoadOrCreateAt(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if _, ok := final.Commands["command_lock"]; ok {
		t.Fatalf("expected command_lock removed on disk")
	}
}

func TestFileStoreRejectsUnsupportedValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	store := NewFileStore(path, &cfg)
	if err := store.Set("lock_enabled", 1); err == nil {
		t.Fatalf("expected integer value to be rejected")
	}
	if _, ok := cfg.Commands["lock_enabled"]; ok {
		t.Fatalf("rejected value must not be kept")
	}
}

func TestStoreTypeMismatchUsesFallback(t *testing.T) {
	store := NewMemoryStore(map[string]any{
		"lock_enabled":   "no-idea",
		"title_lock":     true,
		"reboot_enabled": "false",
	})
	if !store.Bool("lock_enabled", true) {
		t.Fatalf("expected unparsable bool string to use fallback")
	}
	if store.Bool("reboot_enabled", true) {
		t.Fatalf("expected string false to parse")
	}
	if got := store.String("title_lock", "Lock"); got != "Lock" {
		t.Fatalf("expected non-string title to use fallback, got %q", got)
	}
}

func TestMemoryStoreDoesNotMutateSeed(t *testing.T) {
	seed := map[string]any{"title_lock": "Away"}
	store := NewMemoryStore(seed)
	if err := store.Remove("title_lock"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := seed["title_lock"]; !ok {
		t.Fatalf("expected seed to keep its value")
	}
}

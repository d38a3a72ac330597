package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ashwch/sessionctl/internal/appdirs"
	"github.com/ashwch/sessionctl/internal/i18n"
	"github.com/pelletier/go-toml/v2"
)

type UIConfig struct {
	Backend            string `toml:"backend" json:"backend"`
	ConfirmDestructive bool   `toml:"confirm_destructive" json:"confirm_destructive"`
}

type LogConfig struct {
	Level string `toml:"level" json:"level"`
}

type DesktopConfig struct {
	// Override replaces XDG_CURRENT_DESKTOP for command resolution.
	Override string `toml:"override" json:"override"`
}

type Config struct {
	Version  int            `toml:"version" json:"version"`
	Locale   string         `toml:"locale" json:"locale"`
	UI       UIConfig       `toml:"ui" json:"ui"`
	Log      LogConfig      `toml:"log" json:"log"`
	Desktop  DesktopConfig  `toml:"desktop" json:"desktop"`
	Commands map[string]any `toml:"commands" json:"commands"`
}

func Default() Config {
	return Config{
		Version: 1,
		Locale:  "auto",
		UI: UIConfig{
			Backend:            "auto",
			ConfirmDestructive: true,
		},
		Log: LogConfig{
			Level: "warn",
		},
		Commands: map[string]any{},
	}
}

func LoadOrCreate() (Config, string, error) {
	path, err := appdirs.ConfigFilePath()
	if err != nil {
		return Config{}, "", err
	}
	cfg, err := LoadOrCreateAt(path)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

// LoadOrCreateAt reads path, writing the defaults there first if it does not
// exist yet.
func LoadOrCreateAt(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(path, cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	} else if err != nil {
		return Config{}, fmt.Errorf("could not stat config path: %w", err)
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config file: %w", err)
	}

	if err := toml.Unmarshal(bytes, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config file: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func Save(path string, cfg Config) error {
	cfg.normalize()
	payload, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not serialize config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := appdirs.EnsurePrivateDir(dir); err != nil {
		return err
	}
	tempFile, err := os.CreateTemp(dir, ".sessionctl-config-*.toml")
	if err != nil {
		return fmt.Errorf("could not create temp config file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := func() {
		_ = os.Remove(tempPath)
	}

	if _, err := tempFile.Write(payload); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not write temp config file: %w", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not secure temp config file permissions: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return fmt.Errorf("could not close temp config file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		cleanup()
		return fmt.Errorf("could not atomically replace config file: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("could not secure config file permissions: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	defaults := Default()
	if c.Version == 0 {
		c.Version = defaults.Version
	}
	c.Locale = normalizeLocaleSetting(c.Locale, defaults.Locale)
	c.UI.Backend = normalizeUIBackend(c.UI.Backend, defaults.UI.Backend)
	c.Log.Level = normalizeLogLevel(c.Log.Level, defaults.Log.Level)
	c.Desktop.Override = strings.TrimSpace(c.Desktop.Override)
	if c.Commands == nil {
		c.Commands = map[string]any{}
	}
	for key, value := range c.Commands {
		switch value.(type) {
		case bool, string:
		default:
			// Only booleans and strings are meaningful command settings.
			delete(c.Commands, key)
		}
	}
}

func (c *Config) Set(key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	value = strings.TrimSpace(value)

	switch key {
	case "locale":
		c.Locale = normalizeLocaleSetting(value, "")
		if c.Locale == "" {
			return fmt.Errorf("locale must be 'auto' or a locale like en, en-US, de, de-DE")
		}
	case "ui.backend":
		c.UI.Backend = normalizeUIBackend(value, "")
		if c.UI.Backend == "" {
			return fmt.Errorf("ui.backend must be one of auto|bubbletea|huh|tview|plain")
		}
	case "ui.confirm_destructive":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("ui.confirm_destructive must be boolean")
		}
		c.UI.ConfirmDestructive = b
	case "log.level":
		level := normalizeLogLevel(value, "")
		if level == "" {
			return fmt.Errorf("log.level must be one of debug|info|warn|error")
		}
		c.Log.Level = level
	case "desktop.override":
		c.Desktop.Override = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	c.normalize()
	return nil
}

func (c Config) Get(key string) (string, error) {
	key = strings.TrimSpace(strings.ToLower(key))

	switch key {
	case "locale":
		return c.Locale, nil
	case "ui.backend":
		return c.UI.Backend, nil
	case "ui.confirm_destructive":
		return strconv.FormatBool(c.UI.ConfirmDestructive), nil
	case "log.level":
		return c.Log.Level, nil
	case "desktop.override":
		return c.Desktop.Override, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Keys lists the keys accepted by Set and Get.
func Keys() []string {
	keys := []string{"locale", "ui.backend", "ui.confirm_destructive", "log.level", "desktop.override"}
	sort.Strings(keys)
	return keys
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool: %s", value)
	}
}

func normalizeUIBackend(value string, fallback string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "auto", "bubbletea", "huh", "tview", "plain":
		return normalized
	default:
		return strings.ToLower(strings.TrimSpace(fallback))
	}
}

func normalizeLogLevel(value string, fallback string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "debug", "info", "warn", "error":
		return normalized
	case "warning":
		return "warn"
	default:
		return strings.ToLower(strings.TrimSpace(fallback))
	}
}

func normalizeLocaleSetting(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = strings.TrimSpace(fallback)
	}
	if strings.EqualFold(trimmed, "auto") {
		return "auto"
	}
	return i18n.NormalizeLocale(trimmed)
}

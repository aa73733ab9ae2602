// Package prefs handles patrol user preferences persistence.
// Preferences are stored in ~/.config/patrol/prefs.toml.
package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for patrol.
type Prefs struct {
	Theme        string `toml:"theme"`
	StatusFilter string `toml:"status_filter"` // initial status filter, "all" when empty
}

const (
	defaultPrefsPath    = "~/.config/patrol/prefs.toml"
	defaultTheme        = "Nightfox"
	defaultStatusFilter = "all"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns the preferences used when nothing is stored.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme, StatusFilter: defaultStatusFilter}
}

// Load reads preferences from the given path. Any problem reading or parsing
// the file degrades to defaults; preferences are never worth failing over.
func Load(path string) Prefs {
	p := Defaults()

	resolved, err := resolvePath(path)
	if err != nil {
		return p
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return p
	}
	var stored Prefs
	if err := toml.Unmarshal(data, &stored); err != nil {
		return p
	}

	if theme := strings.TrimSpace(stored.Theme); theme != "" {
		p.Theme = theme
	}
	if status := strings.ToLower(strings.TrimSpace(stored.StatusFilter)); status != "" {
		p.StatusFilter = status
	}
	return p
}

// Save writes preferences to the given path, creating directories as needed.
// The file is replaced atomically so a crash never leaves it half written.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := atomic.WriteFile(resolved, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

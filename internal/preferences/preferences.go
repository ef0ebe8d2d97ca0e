// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package preferences persists the user's display preferences between sessions. Weather data
// is never stored.
package preferences

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/wneessen/skycast/internal/weather"
)

// Theme is the color scheme used by the presentation layer.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme parses a theme name case-insensitively.
func ParseTheme(val string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(val))) {
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	default:
		return "", fmt.Errorf("invalid theme: %q", val)
	}
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Preferences holds the persisted display settings.
type Preferences struct {
	Unit  weather.Unit `toml:"unit"`
	Theme Theme        `toml:"theme"`
}

// Store reads and writes Preferences as a TOML file.
type Store struct {
	mu       sync.Mutex
	path     string
	defaults Preferences
}

// NewStore returns a Store for the given file. defaults are returned by Load as long as no
// file has been written.
func NewStore(path string, defaults Preferences) *Store {
	return &Store{path: path, defaults: defaults}
}

// Path returns the location of the preference file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored preferences. Missing or invalid values fall back to the defaults.
func (s *Store) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.defaults
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return prefs, fmt.Errorf("failed to read preferences: %w", err)
	}

	var stored Preferences
	if err = toml.Unmarshal(data, &stored); err != nil {
		return prefs, fmt.Errorf("failed to decode preferences: %w", err)
	}
	if unit, err := weather.ParseUnit(string(stored.Unit)); err == nil {
		prefs.Unit = unit
	}
	if theme, err := ParseTheme(string(stored.Theme)); err == nil {
		prefs.Theme = theme
	}
	return prefs, nil
}

// Save writes the preferences, creating the parent directory if needed.
func (s *Store) Save(prefs Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	if err = os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

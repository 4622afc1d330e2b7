// Package prefs persists lantern's user preferences: the theme and the
// query options last used. Preferences are stored in ~/.config/lantern/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/lantern/internal/research"
)

// Prefs holds user preferences. Option fields are pointers so a missing key
// leaves the configured default in place.
type Prefs struct {
	Theme            string `toml:"theme"`
	MaxResults       *int   `toml:"max_results,omitempty"`
	ExcludeWebSearch *bool  `toml:"exclude_web_search,omitempty"`
	DemoMode         *bool  `toml:"demo_mode,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/lantern/prefs.toml"
	defaultTheme     = "Dracula"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults if
// missing or unreadable. The error is always nil.
func Load(path string) (Prefs, error) {
	prefs := Prefs{Theme: defaultTheme}

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Prefs{Theme: defaultTheme}, nil // Graceful degradation
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	if prefs.MaxResults != nil {
		n := research.ClampResults(*prefs.MaxResults)
		prefs.MaxResults = &n
	}

	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

// Apply overlays stored option preferences onto opts.
func (p Prefs) Apply(opts research.QueryOptions) research.QueryOptions {
	if p.MaxResults != nil {
		opts.MaxResults = research.ClampResults(*p.MaxResults)
	}
	if p.ExcludeWebSearch != nil {
		opts.ExcludeWebSearch = *p.ExcludeWebSearch
	}
	if p.DemoMode != nil {
		opts.DemoMode = *p.DemoMode
	}
	return opts
}

// With returns p updated with the theme and option values to remember.
func With(theme string, opts research.QueryOptions) Prefs {
	maxResults := research.ClampResults(opts.MaxResults)
	noSearch := opts.ExcludeWebSearch
	demo := opts.DemoMode
	return Prefs{
		Theme:            theme,
		MaxResults:       &maxResults,
		ExcludeWebSearch: &noSearch,
		DemoMode:         &demo,
	}
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
		return "", fmt.Errorf("path is empty")
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

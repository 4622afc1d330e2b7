package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/lantern/internal/research"
)

// Config captures everything lantern reads from config.toml.
type Config struct {
	APIBase        string
	RequestTimeout time.Duration
	LogFile        string
	HistoryFile    string
	ExportDir      string

	// Defaults for the query options before prefs are applied.
	MaxResults       int
	ExcludeWebSearch bool
	DemoMode         bool
}

const (
	defaultConfigPath     = "~/.config/lantern/config.toml"
	defaultLogFile        = "~/.local/state/lantern/lantern.log"
	defaultHistoryFile    = "~/.local/state/lantern/history.jsonl"
	defaultExportDir      = "."
	defaultRequestTimeout = 120 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBase:        research.DefaultBaseURL,
		RequestTimeout: defaultRequestTimeout,
		LogFile:        mustExpand(defaultLogFile),
		HistoryFile:    mustExpand(defaultHistoryFile),
		ExportDir:      mustExpand(defaultExportDir),
		MaxResults:     research.DefaultMaxResults,
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase          string `toml:"api_base"`
		RequestTimeout   string `toml:"request_timeout"`
		LogFile          string `toml:"log_file"`
		HistoryFile      string `toml:"history_file"`
		ExportDir        string `toml:"export_dir"`
		MaxResults       int    `toml:"max_results"`
		ExcludeWebSearch bool   `toml:"exclude_web_search"`
		DemoMode         bool   `toml:"demo_mode"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if base := strings.TrimSpace(raw.APIBase); base != "" {
		cfg.APIBase = base
	}
	if timeout := strings.TrimSpace(raw.RequestTimeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: request_timeout %q: %w", timeout, err)
		}
		if d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if p := strings.TrimSpace(raw.LogFile); p != "" {
		cfg.LogFile = mustExpand(p)
	}
	if p := strings.TrimSpace(raw.HistoryFile); p != "" {
		cfg.HistoryFile = mustExpand(p)
	}
	if p := strings.TrimSpace(raw.ExportDir); p != "" {
		cfg.ExportDir = mustExpand(p)
	}
	if raw.MaxResults != 0 {
		cfg.MaxResults = research.ClampResults(raw.MaxResults)
	}
	cfg.ExcludeWebSearch = raw.ExcludeWebSearch
	cfg.DemoMode = raw.DemoMode

	return cfg, nil
}

// QueryDefaults returns the starting query options.
func (c Config) QueryDefaults() research.QueryOptions {
	return research.QueryOptions{
		MaxResults:       research.ClampResults(c.MaxResults),
		ExcludeWebSearch: c.ExcludeWebSearch,
		DemoMode:         c.DemoMode,
	}
}

// DefaultPath returns the config path used when none is given.
func DefaultPath() string {
	return defaultConfigPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
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

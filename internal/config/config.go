package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage backends for the persistence slot.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds application configuration.
type Config struct {
	// Backend selects where the notes slot lives: "sqlite" (default) or "file".
	Backend string `json:"backend,omitempty"`

	// SlotKey is the key of the persistence slot holding the notes collection.
	SlotKey string `json:"slot_key,omitempty"`

	// Locale selects date labels: "en" (default) or "tr".
	Locale string `json:"locale,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// SwipeThresholdPx is the drag distance (web board, CSS pixels) that arms a swipe.
	SwipeThresholdPx int `json:"swipe_threshold_px,omitempty"`

	// SwipeThresholdCells is the drag distance (terminal board, cells) that arms a swipe.
	SwipeThresholdCells int `json:"swipe_threshold_cells,omitempty"`

	// SwipeDelayMs is the visual feedback delay between a released swipe and its action.
	SwipeDelayMs int `json:"swipe_delay_ms,omitempty"`

	// WebBind and WebPort are the listen address of `stickies serve`.
	WebBind string `json:"web_bind,omitempty"`
	WebPort int    `json:"web_port,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default. Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// AllowedPaths is an allowlist of directories for export/import files.
	// Paths outside <base>/exports require either being in this list or AllowUnsafePaths=true.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for export/import.
	// Symlinks are still rejected.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:             BackendSQLite,
		SlotKey:             "notes",
		Locale:              "en",
		LogLevel:            "info",
		SwipeThresholdPx:    100,
		SwipeThresholdCells: 8,
		SwipeDelayMs:        300,
		WebBind:             "127.0.0.1",
		WebPort:             7420,
	}
}

// SwipeDelay returns SwipeDelayMs as a duration.
func (c *Config) SwipeDelay() time.Duration {
	return time.Duration(c.SwipeDelayMs) * time.Millisecond
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("backend must be one of: sqlite, file (got %q)", c.Backend)
	}
	switch c.Locale {
	case "en", "tr":
	default:
		return fmt.Errorf("locale must be one of: en, tr (got %q)", c.Locale)
	}
	if strings.TrimSpace(c.SlotKey) == "" {
		return errors.New("slot_key must not be empty")
	}
	return nil
}

// BaseDir returns the stickies home directory: $STICKIES_HOME, or ~/.stickies.
func BaseDir() (string, error) {
	if dir := os.Getenv("STICKIES_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".stickies"), nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both the global directory and the nearest
// .stickies/config.json found by walking upward from startDir.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	cfg := Merge(Merge(DefaultConfig(), global), repo)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindRepoConfig walks upward from startDir to find the nearest .stickies/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".stickies", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	merged := Merge(DefaultConfig(), cfg)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	return &Config{
		Backend:             firstString(overlay.Backend, base.Backend),
		SlotKey:             firstString(overlay.SlotKey, base.SlotKey),
		Locale:              firstString(overlay.Locale, base.Locale),
		LogLevel:            firstString(overlay.LogLevel, base.LogLevel),
		SwipeThresholdPx:    firstInt(overlay.SwipeThresholdPx, base.SwipeThresholdPx),
		SwipeThresholdCells: firstInt(overlay.SwipeThresholdCells, base.SwipeThresholdCells),
		SwipeDelayMs:        firstInt(overlay.SwipeDelayMs, base.SwipeDelayMs),
		WebBind:             firstString(overlay.WebBind, base.WebBind),
		WebPort:             firstInt(overlay.WebPort, base.WebPort),
		DBMaxOpenConns:      firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:      firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
		DisabledTools:       mergeStringSlice(base.DisabledTools, overlay.DisabledTools),
		AllowedPaths:        mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths),
		AllowUnsafePaths:    base.AllowUnsafePaths || overlay.AllowUnsafePaths,
	}
}

// firstString returns overlay if non-blank, else base.
func firstString(overlay, base string) string {
	if s := strings.TrimSpace(overlay); s != "" {
		return s
	}
	return base
}

// firstInt returns overlay if non-zero, else base.
func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

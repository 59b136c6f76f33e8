package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

// configValidator returns the shared validator instance
func configValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// Config represents the complete application configuration
type Config struct {
	Theme        ThemeConfig        `toml:"theme"`
	Presentation PresentationConfig `toml:"presentation"`
	Images       ImagesConfig       `toml:"images"`
	Keys         KeysConfig         `toml:"keys"`
	Watcher      WatcherConfig      `toml:"watcher"`
	Logging      LoggingConfig      `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Theme.Validate(); err != nil {
		return fmt.Errorf("theme config: %w", err)
	}

	if err := c.Presentation.Validate(); err != nil {
		return fmt.Errorf("presentation config: %w", err)
	}

	if err := c.Images.Validate(); err != nil {
		return fmt.Errorf("images config: %w", err)
	}

	if err := c.Keys.Validate(); err != nil {
		return fmt.Errorf("keys config: %w", err)
	}

	if err := c.Watcher.Validate(); err != nil {
		return fmt.Errorf("watcher config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ThemeConfig contains theme configuration
type ThemeConfig struct {
	Name      string `toml:"name" validate:"required"`
	Directory string `toml:"directory"`
}

// Validate validates theme configuration
func (t ThemeConfig) Validate() error {
	if t.Name == "" {
		return errors.New("theme name cannot be empty")
	}

	if t.Directory != "" {
		if !filepath.IsAbs(t.Directory) {
			return errors.New("theme directory must be absolute")
		}
	}

	return nil
}

// PresentationConfig controls how documents are compiled and laid out
type PresentationConfig struct {
	// Strict rejects unknown front matter keys and unknown directives
	Strict bool `toml:"strict"`

	// DashSeparator makes "---" a slide separator; unset means true
	DashSeparator *bool `toml:"dash_separator"`

	// SplitHeadingLevel starts a new slide on headings up to this level (0 disables)
	SplitHeadingLevel int `toml:"split_heading_level" validate:"gte=0,lte=6"`

	// ImageMaxHeight is the fraction of the terminal height an image may use
	ImageMaxHeight float64 `toml:"image_max_height" validate:"gte=0,lte=1"`
}

// Validate validates presentation configuration
func (p PresentationConfig) Validate() error {
	if err := configValidator().Struct(p); err != nil {
		return fmt.Errorf("invalid presentation settings: %w", err)
	}
	return nil
}

// UseDashSeparator reports whether "---" separates slides
func (p PresentationConfig) UseDashSeparator() bool {
	return p.DashSeparator == nil || *p.DashSeparator
}

// GetImageMaxHeight returns the image height fraction with default
func (p PresentationConfig) GetImageMaxHeight() float64 {
	if p.ImageMaxHeight <= 0 {
		return 0.6
	}
	return p.ImageMaxHeight
}

// ImagesConfig controls image transport selection
type ImagesConfig struct {
	Protocol       string `toml:"protocol" validate:"omitempty,oneof=auto kitty iterm2 blocks"`
	QueryTimeoutMs int    `toml:"query_timeout_ms" validate:"gte=0,lte=5000"`
	CellWidth      int    `toml:"cell_width" validate:"gte=0"`
	CellHeight     int    `toml:"cell_height" validate:"gte=0"`
}

// Validate validates images configuration
func (i ImagesConfig) Validate() error {
	if err := configValidator().Struct(i); err != nil {
		return fmt.Errorf("invalid image settings: %w", err)
	}
	return nil
}

// GetProtocol returns the configured protocol with default
func (i ImagesConfig) GetProtocol() ImageProtocol {
	if i.Protocol == "" {
		return ProtocolAuto
	}
	return ImageProtocol(i.Protocol)
}

// GetQueryTimeout returns the capability query timeout as a duration
func (i ImagesConfig) GetQueryTimeout() time.Duration {
	if i.QueryTimeoutMs <= 0 {
		return 250 * time.Millisecond
	}
	return time.Duration(i.QueryTimeoutMs) * time.Millisecond
}

// GetCellSize returns the fallback cell pixel size
func (i ImagesConfig) GetCellSize() (int, int) {
	w, h := i.CellWidth, i.CellHeight
	if w <= 0 {
		w = 10
	}
	if h <= 0 {
		h = 20
	}
	return w, h
}

// KeysConfig maps commands to key sequences
type KeysConfig struct {
	Next     []string `toml:"next"`
	Previous []string `toml:"previous"`
	First    []string `toml:"first"`
	Last     []string `toml:"last"`
	Jump     []string `toml:"jump"`
	Quit     []string `toml:"quit"`
	Redraw   []string `toml:"redraw"`
	Refresh  []string `toml:"refresh"`
	Reload   []string `toml:"reload"`
}

// Bindings returns the key to command table
func (k KeysConfig) Bindings() map[Command][]string {
	return map[Command][]string{
		CommandNext:                k.Next,
		CommandPrevious:            k.Previous,
		CommandFirst:               k.First,
		CommandLast:                k.Last,
		CommandJump:                k.Jump,
		CommandQuit:                k.Quit,
		CommandRedraw:              k.Redraw,
		CommandRefreshCapabilities: k.Refresh,
		CommandReload:              k.Reload,
	}
}

// Validate ensures no key sequence is bound to two commands
func (k KeysConfig) Validate() error {
	seen := make(map[string]Command)
	for command, keys := range k.Bindings() {
		for _, key := range keys {
			if strings.TrimSpace(key) == "" {
				return fmt.Errorf("empty key bound to %s", command)
			}
			if other, ok := seen[key]; ok && other != command {
				return fmt.Errorf("key %q bound to both %s and %s", key, other, command)
			}
			seen[key] = command
		}
	}
	if len(k.Quit) == 0 {
		return errors.New("at least one quit key is required")
	}
	return nil
}

// WatcherConfig contains file watcher configuration
type WatcherConfig struct {
	Enabled    bool   `toml:"enabled"`
	Mode       string `toml:"mode" validate:"omitempty,oneof=fsnotify poll"`
	IntervalMs int    `toml:"interval_ms"`
	DebounceMs int    `toml:"debounce_ms"`
}

// Validate validates watcher configuration
func (w WatcherConfig) Validate() error {
	if err := configValidator().Struct(w); err != nil {
		return fmt.Errorf("invalid watcher settings: %w", err)
	}

	if w.IntervalMs != 0 && w.IntervalMs < 50 {
		return errors.New("watcher interval must be at least 50ms")
	}

	if w.DebounceMs < 0 {
		return errors.New("debounce time must be non-negative")
	}

	return nil
}

// GetInterval returns the watcher interval as a duration
func (w WatcherConfig) GetInterval() time.Duration {
	if w.IntervalMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(w.IntervalMs) * time.Millisecond
}

// GetDebounce returns the debounce time as a duration
func (w WatcherConfig) GetDebounce() time.Duration {
	if w.DebounceMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`       // debug, info, warn, error
	JSONFormat bool   `toml:"json_format"` // Output logs in JSON format
	File       string `toml:"file"`        // Log file; logs are discarded when empty
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	// Validate log level
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// Valid levels
	case "":
		// Empty is okay, will use default
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}

	if l.File != "" {
		if !filepath.IsAbs(l.File) {
			return errors.New("log file path must be absolute")
		}

		// Check if parent directory exists
		dir := filepath.Dir(l.File)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("log file directory does not exist: %s", dir)
		}
	}

	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo // Default level
	}
	return LogLevel(l.Level)
}

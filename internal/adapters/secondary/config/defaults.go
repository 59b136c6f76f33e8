package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

// GetDefaultConfig returns the built-in configuration
func GetDefaultConfig() *entities.Config {
	dashSeparator := true
	return &entities.Config{
		Theme: entities.ThemeConfig{
			Name:      "dark",
			Directory: defaultThemeDir(),
		},
		Presentation: entities.PresentationConfig{
			Strict:            false,
			DashSeparator:     &dashSeparator,
			SplitHeadingLevel: 0,
			ImageMaxHeight:    0.6,
		},
		Images: entities.ImagesConfig{
			Protocol:       string(entities.ProtocolAuto),
			QueryTimeoutMs: 250,
			CellWidth:      10,
			CellHeight:     20,
		},
		Keys: DefaultKeys(),
		Watcher: entities.WatcherConfig{
			Enabled:    false,
			Mode:       "fsnotify",
			IntervalMs: 200,
			DebounceMs: 100,
		},
		Logging: entities.LoggingConfig{
			Level:      "info",
			JSONFormat: false,
			File:       "",
		},
	}
}

// DefaultKeys returns the default key bindings
func DefaultKeys() entities.KeysConfig {
	return entities.KeysConfig{
		Next:     []string{"l", "j", "right", "down", "pgdown", "space"},
		Previous: []string{"h", "k", "left", "up", "pgup", "backspace"},
		First:    []string{"gg"},
		Last:     []string{"G"},
		Jump:     []string{"enter"},
		Quit:     []string{"q", "ctrl+c"},
		Redraw:   []string{"ctrl+r"},
		Refresh:  []string{"ctrl+l"},
		Reload:   []string{"r"},
	}
}

func defaultThemeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return ""
	}
	return filepath.Join(homeDir, ".config", "slideterm", "themes")
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool returns an environment variable parsed as bool
func getEnvBool(key string) (bool, bool) {
	value := os.Getenv(key)
	if value == "" {
		return false, false
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false, false
	}
	return boolValue, true
}

// getEnvSliceOrDefault returns environment variable as slice or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

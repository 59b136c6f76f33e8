package config

import (
	"os"
	"strconv"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	// Start with first config as base
	result := deepCopy(configs[0])
	if result == nil {
		result = &entities.Config{}
	}

	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration. Only flags set on
// the command line are expected in the map.
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if theme, ok := flags["theme"].(string); ok && theme != "" {
		result.Theme.Name = theme
	}

	if strict, ok := flags["strict"].(bool); ok {
		result.Presentation.Strict = strict
	}

	if watch, ok := flags["watch"].(bool); ok {
		result.Watcher.Enabled = watch
	}

	if protocol, ok := flags["image-protocol"].(string); ok && protocol != "" {
		result.Images.Protocol = protocol
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Level = string(entities.LogLevelDebug)
	}

	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		result.Logging.File = logFile
	}

	return result
}

// ApplyEnvVars applies SLIDETERM_* environment variable overrides
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	// Theme configuration from environment
	if theme := os.Getenv("SLIDETERM_THEME"); theme != "" {
		result.Theme.Name = theme
	}

	if themeDir := os.Getenv("SLIDETERM_THEME_DIR"); themeDir != "" {
		result.Theme.Directory = themeDir
	}

	// Presentation configuration from environment
	if strict, ok := getEnvBool("SLIDETERM_STRICT"); ok {
		result.Presentation.Strict = strict
	}

	if dash, ok := getEnvBool("SLIDETERM_DASH_SEPARATOR"); ok {
		result.Presentation.DashSeparator = &dash
	}

	if level := getEnvIntOrDefault("SLIDETERM_SPLIT_HEADING_LEVEL", -1); level >= 0 {
		result.Presentation.SplitHeadingLevel = level
	}

	// Image configuration from environment
	if protocol := os.Getenv("SLIDETERM_IMAGE_PROTOCOL"); protocol != "" {
		result.Images.Protocol = protocol
	}

	if timeoutStr := os.Getenv("SLIDETERM_QUERY_TIMEOUT"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil && timeout > 0 {
			result.Images.QueryTimeoutMs = timeout
		}
	}

	// Watcher configuration from environment
	if enabled, ok := getEnvBool("SLIDETERM_WATCH"); ok {
		result.Watcher.Enabled = enabled
	}

	if mode := os.Getenv("SLIDETERM_WATCH_MODE"); mode != "" {
		result.Watcher.Mode = mode
	}

	if interval := getEnvIntOrDefault("SLIDETERM_WATCH_INTERVAL", 0); interval > 0 {
		result.Watcher.IntervalMs = interval
	}

	if debounce := getEnvIntOrDefault("SLIDETERM_WATCH_DEBOUNCE", -1); debounce >= 0 {
		result.Watcher.DebounceMs = debounce
	}

	// Logging configuration from environment
	if level := os.Getenv("SLIDETERM_LOG_LEVEL"); level != "" {
		result.Logging.Level = level
	}

	if file := os.Getenv("SLIDETERM_LOG_FILE"); file != "" {
		result.Logging.File = file
	}

	if jsonFormat, ok := getEnvBool("SLIDETERM_LOG_JSON"); ok {
		result.Logging.JSONFormat = jsonFormat
	}

	// Key bindings from environment
	result.Keys.Next = getEnvSliceOrDefault("SLIDETERM_KEYS_NEXT", result.Keys.Next)
	result.Keys.Previous = getEnvSliceOrDefault("SLIDETERM_KEYS_PREVIOUS", result.Keys.Previous)
	result.Keys.Quit = getEnvSliceOrDefault("SLIDETERM_KEYS_QUIT", result.Keys.Quit)

	return result
}

// mergeInto merges source configuration into target configuration. Boolean
// switches that default to false can only be turned on by a file.
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Theme config
	if source.Theme.Name != "" {
		target.Theme.Name = source.Theme.Name
	}
	if source.Theme.Directory != "" {
		target.Theme.Directory = source.Theme.Directory
	}

	// Presentation config
	if source.Presentation.Strict {
		target.Presentation.Strict = true
	}
	if source.Presentation.DashSeparator != nil {
		dash := *source.Presentation.DashSeparator
		target.Presentation.DashSeparator = &dash
	}
	if source.Presentation.SplitHeadingLevel != 0 {
		target.Presentation.SplitHeadingLevel = source.Presentation.SplitHeadingLevel
	}
	if source.Presentation.ImageMaxHeight != 0 {
		target.Presentation.ImageMaxHeight = source.Presentation.ImageMaxHeight
	}

	// Images config
	if source.Images.Protocol != "" {
		target.Images.Protocol = source.Images.Protocol
	}
	if source.Images.QueryTimeoutMs != 0 {
		target.Images.QueryTimeoutMs = source.Images.QueryTimeoutMs
	}
	if source.Images.CellWidth != 0 {
		target.Images.CellWidth = source.Images.CellWidth
	}
	if source.Images.CellHeight != 0 {
		target.Images.CellHeight = source.Images.CellHeight
	}

	// Keys config: a non-empty list replaces the inherited one
	mergeKeys(&target.Keys.Next, source.Keys.Next)
	mergeKeys(&target.Keys.Previous, source.Keys.Previous)
	mergeKeys(&target.Keys.First, source.Keys.First)
	mergeKeys(&target.Keys.Last, source.Keys.Last)
	mergeKeys(&target.Keys.Jump, source.Keys.Jump)
	mergeKeys(&target.Keys.Quit, source.Keys.Quit)
	mergeKeys(&target.Keys.Redraw, source.Keys.Redraw)
	mergeKeys(&target.Keys.Refresh, source.Keys.Refresh)
	mergeKeys(&target.Keys.Reload, source.Keys.Reload)

	// Watcher config
	if source.Watcher.Enabled {
		target.Watcher.Enabled = true
	}
	if source.Watcher.Mode != "" {
		target.Watcher.Mode = source.Watcher.Mode
	}
	if source.Watcher.IntervalMs != 0 {
		target.Watcher.IntervalMs = source.Watcher.IntervalMs
	}
	if source.Watcher.DebounceMs != 0 {
		target.Watcher.DebounceMs = source.Watcher.DebounceMs
	}

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.File != "" {
		target.Logging.File = source.Logging.File
	}
	if source.Logging.JSONFormat {
		target.Logging.JSONFormat = true
	}
}

func mergeKeys(target *[]string, source []string) {
	if len(source) > 0 {
		*target = copyStrings(source)
	}
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := *src
	if src.Presentation.DashSeparator != nil {
		dash := *src.Presentation.DashSeparator
		dst.Presentation.DashSeparator = &dash
	}
	dst.Keys = entities.KeysConfig{
		Next:     copyStrings(src.Keys.Next),
		Previous: copyStrings(src.Keys.Previous),
		First:    copyStrings(src.Keys.First),
		Last:     copyStrings(src.Keys.Last),
		Jump:     copyStrings(src.Keys.Jump),
		Quit:     copyStrings(src.Keys.Quit),
		Redraw:   copyStrings(src.Keys.Redraw),
		Refresh:  copyStrings(src.Keys.Refresh),
		Reload:   copyStrings(src.Keys.Reload),
	}

	return &dst
}

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)

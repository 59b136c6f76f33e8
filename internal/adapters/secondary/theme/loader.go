package theme

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

//go:embed builtin/*.toml
var builtinThemes embed.FS

const builtinDir = "builtin"

// ErrThemeNotFound is returned when no built-in or custom theme has the name
var ErrThemeNotFound = errors.New("theme not found")

// DirectoryLoader loads built-in themes and custom themes stored as
// <baseDir>/<name>.toml. A custom theme shadows a built-in of the same name.
type DirectoryLoader struct {
	baseDir string
	logger  *slog.Logger
}

// NewDirectoryLoader creates a new theme loader. An empty baseDir serves only
// the built-in themes.
func NewDirectoryLoader(baseDir string, logger *slog.Logger) *DirectoryLoader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DirectoryLoader{
		baseDir: baseDir,
		logger:  logger.With("component", "theme_loader"),
	}
}

// Load loads a theme by name
func (l *DirectoryLoader) Load(ctx context.Context, name string) (*entities.Theme, error) {
	return l.loadWithHistory(ctx, name, make(map[string]bool))
}

// LoadFile loads a theme from an explicit path. Without a name key the theme
// is named after the file.
func (l *DirectoryLoader) LoadFile(ctx context.Context, file string) (*entities.Theme, error) {
	data, err := os.ReadFile(file) // #nosec G304 - theme path chosen by the presentation author
	if err != nil {
		return nil, fmt.Errorf("reading theme file: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return l.decode(ctx, data, file, nameFromFile(stem), make(map[string]bool))
}

// loadWithHistory loads a theme while tracking visited themes to prevent circular references
func (l *DirectoryLoader) loadWithHistory(ctx context.Context, name string, visited map[string]bool) (*entities.Theme, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if visited[name] {
		return nil, fmt.Errorf("circular reference detected in theme hierarchy: %s", name)
	}
	visited[name] = true

	data, source, err := l.read(name)
	if err != nil {
		return nil, err
	}
	return l.decode(ctx, data, source, name, visited)
}

// decode decodes a theme file on top of its parent, so only the keys the
// file sets override inherited values
func (l *DirectoryLoader) decode(ctx context.Context, data []byte, source, fallbackName string, visited map[string]bool) (*entities.Theme, error) {
	var header struct {
		Extends string `toml:"extends"`
	}
	if _, err := toml.Decode(string(data), &header); err != nil {
		return nil, fmt.Errorf("parsing theme %s: %w", source, err)
	}

	theme := &entities.Theme{}
	if header.Extends != "" {
		parent, err := l.loadWithHistory(ctx, header.Extends, visited)
		if err != nil {
			return nil, fmt.Errorf("loading parent theme '%s': %w", header.Extends, err)
		}
		theme = parent.Clone()
	}

	meta, err := toml.Decode(string(data), theme)
	if err != nil {
		return nil, fmt.Errorf("parsing theme %s: %w", source, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("theme %s: unknown keys: %s", source, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("name") {
		theme.Name = fallbackName
	}

	l.logger.Debug("loaded theme",
		slog.String("theme", theme.Name),
		slog.String("source", source),
		slog.String("extends", header.Extends))
	return theme, nil
}

// read finds the theme source, custom directory first
func (l *DirectoryLoader) read(name string) ([]byte, string, error) {
	if !isSafeName(name) {
		return nil, "", fmt.Errorf("invalid theme name %q", name)
	}

	if l.baseDir != "" {
		file := filepath.Join(l.baseDir, name+".toml")
		data, err := os.ReadFile(file) // #nosec G304 - name validated above
		if err == nil {
			return data, file, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("reading theme %s: %w", file, err)
		}
	}

	data, err := builtinThemes.ReadFile(path.Join(builtinDir, name+".toml"))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrThemeNotFound, name)
	}
	return data, "builtin:" + name, nil
}

// List returns all available themes sorted by name
func (l *DirectoryLoader) List(ctx context.Context) ([]entities.ThemeInfo, error) {
	themes := make(map[string]entities.ThemeInfo)

	builtins, err := builtinThemes.ReadDir(builtinDir)
	if err != nil {
		return nil, fmt.Errorf("reading built-in themes: %w", err)
	}
	for _, entry := range builtins {
		name := strings.TrimSuffix(entry.Name(), ".toml")
		data, err := builtinThemes.ReadFile(path.Join(builtinDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading built-in theme %s: %w", name, err)
		}
		info, err := themeInfo(name, data)
		if err != nil {
			return nil, fmt.Errorf("parsing built-in theme %s: %w", name, err)
		}
		info.BuiltIn = true
		themes[name] = info
	}

	if l.baseDir != "" {
		entries, err := os.ReadDir(l.baseDir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading themes directory: %w", err)
		}
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ".toml")
			file := filepath.Join(l.baseDir, entry.Name())
			data, err := os.ReadFile(file) // #nosec G304 - file listed from the themes directory
			if err != nil {
				l.logger.Warn("skipping unreadable theme", slog.String("path", file), slog.String("error", err.Error()))
				continue
			}
			info, err := themeInfo(name, data)
			if err != nil {
				l.logger.Warn("skipping invalid theme", slog.String("path", file), slog.String("error", err.Error()))
				continue
			}
			info.Path = file
			themes[name] = info
		}
	}

	out := make([]entities.ThemeInfo, 0, len(themes))
	for _, info := range themes {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Exists checks if a theme exists
func (l *DirectoryLoader) Exists(ctx context.Context, name string) bool {
	_, _, err := l.read(name)
	return err == nil
}

func themeInfo(name string, data []byte) (entities.ThemeInfo, error) {
	var header struct {
		Extends string `toml:"extends"`
	}
	if _, err := toml.Decode(string(data), &header); err != nil {
		return entities.ThemeInfo{}, err
	}
	return entities.ThemeInfo{
		Name:        name,
		DisplayName: DisplayName(name),
		Extends:     header.Extends,
	}, nil
}

// DisplayName turns a theme name like "solarized-dark" into "Solarized Dark"
func DisplayName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}

func isSafeName(name string) bool {
	return name != "" && !strings.HasPrefix(name, ".") && !strings.ContainsAny(name, `/\`)
}

// nameFromFile maps a file stem to a valid theme name
func nameFromFile(stem string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(stem) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteByte('-')
		}
	}
	if name := strings.Trim(sb.String(), "-"); name != "" {
		return name
	}
	return "custom"
}

// Ensure DirectoryLoader implements ThemeLoader
var _ ports.ThemeLoader = (*DirectoryLoader)(nil)

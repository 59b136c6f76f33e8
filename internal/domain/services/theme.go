package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"dario.cat/mergo"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// DefaultThemeName is used when neither the document nor the configuration
// names a theme
const DefaultThemeName = "dark"

// ThemeService resolves presentation themes
type ThemeService struct {
	loader ports.ThemeLoader
	cache  ports.ThemeCache
	logger *slog.Logger
}

// NewThemeService creates a new theme service
func NewThemeService(loader ports.ThemeLoader, cache ports.ThemeCache, logger *slog.Logger) *ThemeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThemeService{
		loader: loader,
		cache:  cache,
		logger: logger,
	}
}

// GetTheme retrieves a theme by name
func (s *ThemeService) GetTheme(ctx context.Context, name string) (*entities.Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}

	// Check cache first
	if theme, found := s.cache.Get(name); found {
		return theme, nil
	}

	theme, err := s.loader.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading theme '%s': %w", name, err)
	}

	if err := theme.Validate(); err != nil {
		return nil, fmt.Errorf("invalid theme '%s': %w", name, err)
	}

	s.cache.Set(name, theme)

	return theme, nil
}

// Resolve picks the theme for a presentation: the document's theme path or
// name wins over the configured name. Overrides are merged into a copy, so
// cached themes are never modified.
func (s *ThemeService) Resolve(ctx context.Context, configured string, metadata entities.ThemeMetadata, baseDir string) (*entities.Theme, error) {
	var base *entities.Theme
	var err error

	switch {
	case metadata.Path != "":
		path := metadata.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		base, err = s.loader.LoadFile(ctx, path)
		if err == nil {
			err = base.Validate()
		}
		if err != nil {
			return nil, &entities.CompileError{
				Kind:    entities.UnresolvedReference,
				Message: fmt.Sprintf("theme file %q", metadata.Path),
				Err:     err,
			}
		}

	case metadata.Name != "":
		base, err = s.GetTheme(ctx, metadata.Name)
		if err != nil {
			return nil, &entities.CompileError{
				Kind:    entities.UnresolvedReference,
				Message: fmt.Sprintf("theme %q", metadata.Name),
				Err:     err,
			}
		}

	default:
		base, err = s.GetTheme(ctx, configured)
		if err != nil {
			return nil, err
		}
	}

	theme := base.Clone()
	if metadata.Override != nil {
		if err := mergo.Merge(theme, metadata.Override.Clone(), mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging theme override: %w", err)
		}
		theme.Name = base.Name
		if err := theme.Validate(); err != nil {
			return nil, &entities.CompileError{
				Kind:    entities.InvalidMetadata,
				Message: "theme override",
				Err:     err,
			}
		}
		s.logger.Debug("applied theme override", slog.String("theme", theme.Name))
	}

	return theme, nil
}

// ListThemes lists all available themes
func (s *ThemeService) ListThemes(ctx context.Context) ([]entities.ThemeInfo, error) {
	return s.loader.List(ctx)
}

// ValidateTheme validates a theme's structure and requirements
func (s *ThemeService) ValidateTheme(ctx context.Context, name string) error {
	if !s.loader.Exists(ctx, name) {
		return errors.New("theme not found: " + name)
	}

	theme, err := s.loader.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("loading theme for validation: %w", err)
	}

	return theme.Validate()
}

// ReloadTheme drops a theme from the cache so the next lookup reads it again
func (s *ThemeService) ReloadTheme(ctx context.Context, name string) (*entities.Theme, error) {
	s.cache.Remove(name)
	return s.GetTheme(ctx, name)
}

// CacheStats returns the theme cache statistics
func (s *ThemeService) CacheStats() entities.CacheStats {
	return s.cache.Stats()
}

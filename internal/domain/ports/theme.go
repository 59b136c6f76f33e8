package ports

import (
	"context"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

// ThemeLoader loads named themes (built-in or from a directory)
type ThemeLoader interface {
	// Load loads a theme by name, resolving its parents
	Load(ctx context.Context, name string) (*entities.Theme, error)

	// LoadFile loads a theme from an explicit file path
	LoadFile(ctx context.Context, path string) (*entities.Theme, error)

	// List returns information about all available themes
	List(ctx context.Context) ([]entities.ThemeInfo, error)

	// Exists checks if a theme exists
	Exists(ctx context.Context, name string) bool
}

// ThemeCache caches loaded themes
type ThemeCache interface {
	// Get retrieves a cached theme
	Get(name string) (*entities.Theme, bool)

	// Set stores a theme in the cache
	Set(name string, theme *entities.Theme)

	// Remove removes a theme from the cache
	Remove(name string)

	// Clear clears all cached themes
	Clear()

	// Stats returns cache statistics
	Stats() entities.CacheStats
}

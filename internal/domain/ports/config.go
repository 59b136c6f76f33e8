package ports

import (
	"context"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

// ConfigLoader reads the config files that layer over the built-in defaults.
// A missing file yields a nil config and no error.
type ConfigLoader interface {
	// LoadGlobal reads the per-user config file
	LoadGlobal(ctx context.Context) (*entities.Config, error)
	// LoadLocal reads slideterm.toml next to the presentation
	LoadLocal(ctx context.Context, dir string) (*entities.Config, error)
}

// ConfigMerger layers configs and applies environment and flag overrides
type ConfigMerger interface {
	// Merge layers configs over the defaults, later ones winning
	Merge(configs ...*entities.Config) *entities.Config
	// ApplyFlags applies command line flags that were set explicitly
	ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config
	// ApplyEnvVars applies SLIDETERM_* variables
	ApplyEnvVars(config *entities.Config) *entities.Config
}

// ConfigService resolves the effective configuration for a presentation
type ConfigService interface {
	LoadConfig(ctx context.Context, workingDir string, flags map[string]interface{}) (*entities.Config, error)
}

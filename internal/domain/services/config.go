package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// ConfigService resolves configuration in order of precedence: defaults,
// global file, local slideterm.toml, SLIDETERM_* variables, then flags
type ConfigService struct {
	loader ports.ConfigLoader
	merger ports.ConfigMerger
}

// NewConfigService creates a new configuration service
func NewConfigService(loader ports.ConfigLoader, merger ports.ConfigMerger) *ConfigService {
	return &ConfigService{
		loader: loader,
		merger: merger,
	}
}

// LoadConfig resolves the configuration for a presentation in workingDir.
// flags holds only the flags the user set.
func (s *ConfigService) LoadConfig(ctx context.Context, workingDir string, flags map[string]interface{}) (*entities.Config, error) {
	layers := []*entities.Config{s.GetDefaultConfig()}

	global, err := s.loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	if global != nil {
		layers = append(layers, global)
	}

	local, err := s.loader.LoadLocal(ctx, workingDir)
	if err != nil {
		return nil, fmt.Errorf("loading local config: %w", err)
	}
	if local != nil {
		layers = append(layers, local)
	}

	config := s.merger.Merge(layers...)
	config = s.merger.ApplyEnvVars(config)
	config = s.merger.ApplyFlags(config, flags)

	if err := s.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("final config validation: %w", err)
	}
	return config, nil
}

// GetDefaultConfig returns the built-in defaults
func (s *ConfigService) GetDefaultConfig() *entities.Config {
	return s.merger.Merge()
}

// ValidateConfig validates a resolved configuration
func (s *ConfigService) ValidateConfig(config *entities.Config) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	return config.Validate()
}

var _ ports.ConfigService = (*ConfigService)(nil)

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// PresentationService implements the business logic for presentations
type PresentationService struct {
	parser   ports.DocumentParser
	compiler *Compiler
	themes   *ThemeService
	theme    string
	logger   *slog.Logger

	mu     sync.Mutex
	loaded map[string]bool
}

// NewPresentationService creates a new presentation service instance.
// defaultTheme is used when the document does not name a theme.
func NewPresentationService(
	parser ports.DocumentParser,
	compiler *Compiler,
	themes *ThemeService,
	defaultTheme string,
	logger *slog.Logger,
) *PresentationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PresentationService{
		parser:   parser,
		compiler: compiler,
		themes:   themes,
		theme:    defaultTheme,
		logger:   logger,
		loaded:   make(map[string]bool),
	}
}

// Load reads, parses, resolves the theme of and compiles a presentation file
func (s *PresentationService) Load(ctx context.Context, path string) (*entities.Presentation, error) {
	if path == "" {
		return nil, errors.New("presentation path cannot be empty")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("presentation file not found: %s", path)
		}
		return nil, fmt.Errorf("reading presentation file: %w", err)
	}

	return s.Compile(ctx, path, content)
}

// Compile compiles presentation content. path is used to resolve relative
// theme files and is recorded on the result.
func (s *PresentationService) Compile(ctx context.Context, path string, content []byte) (*entities.Presentation, error) {
	start := time.Now()

	doc, err := s.parser.Parse(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("parsing presentation: %w", err)
	}

	metadata, err := s.compiler.ParseMetadata(doc)
	if err != nil {
		return nil, err
	}

	if s.reloading(path) && metadata.Theme.Name != "" {
		// named themes may have been edited alongside the document
		if _, err := s.themes.ReloadTheme(ctx, metadata.Theme.Name); err != nil {
			s.logger.Debug("theme reload failed", slog.String("theme", metadata.Theme.Name), slog.String("error", err.Error()))
		}
	}

	theme, err := s.themes.Resolve(ctx, s.theme, metadata.Theme, filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	slides, err := s.compiler.Compile(doc, theme)
	if err != nil {
		return nil, err
	}

	presentation := &entities.Presentation{
		Path:     path,
		Metadata: metadata,
		Theme:    theme,
		Slides:   slides,
	}
	if err := presentation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid presentation: %w", err)
	}

	s.logger.Info("presentation compiled",
		slog.String("path", path),
		slog.String("theme", theme.Name),
		slog.Int("slides", len(slides)),
		slog.Duration("duration", time.Since(start)))

	return presentation, nil
}

// reloading records path and reports whether it was compiled before
func (s *PresentationService) reloading(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := s.loaded[path]
	s.loaded[path] = true
	return seen
}

// Ensure PresentationService implements ports.PresentationLoader
var _ ports.PresentationLoader = (*PresentationService)(nil)

package main

import (
	"log/slog"
	"path/filepath"

	"github.com/fredcamaral/slideterm/internal/adapters/secondary/graphics"
	"github.com/fredcamaral/slideterm/internal/adapters/secondary/parser"
	"github.com/fredcamaral/slideterm/internal/adapters/secondary/theme"
	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/services"
)

const (
	themeCacheSize = 16
)

// application holds the services shared by the commands
type application struct {
	config       *entities.Config
	logger       *slog.Logger
	themes       *services.ThemeService
	images       *graphics.Store
	presentation *services.PresentationService
}

// newApplication wires the compile pipeline for a presentation file.
// Images are resolved relative to the presentation's directory.
func newApplication(cfg *entities.Config, presentationPath string, logger *slog.Logger) *application {
	themes := services.NewThemeService(
		theme.NewDirectoryLoader(cfg.Theme.Directory, logger),
		theme.NewMemoryCache(themeCacheSize, 0),
		logger,
	)

	app := &application{
		config: cfg,
		logger: logger,
		themes: themes,
	}
	if presentationPath == "" {
		return app
	}

	app.images = graphics.NewStore(filepath.Dir(presentationPath), logger)
	compiler := services.NewCompiler(app.images, services.CompilerOptions{
		Strict:            cfg.Presentation.Strict,
		SplitHeadingLevel: cfg.Presentation.SplitHeadingLevel,
	}, logger)
	documentParser := parser.NewGoldmarkParser(parser.Options{
		DashSeparator: cfg.Presentation.UseDashSeparator(),
	})
	app.presentation = services.NewPresentationService(documentParser, compiler, themes, cfg.Theme.Name, logger)
	return app
}

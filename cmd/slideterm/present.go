package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slideterm/internal/adapters/primary/input"
	"github.com/fredcamaral/slideterm/internal/adapters/secondary/graphics"
	"github.com/fredcamaral/slideterm/internal/adapters/secondary/highlight"
	"github.com/fredcamaral/slideterm/internal/adapters/secondary/logging"
	"github.com/fredcamaral/slideterm/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/slideterm/internal/adapters/secondary/terminal"
	"github.com/fredcamaral/slideterm/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
	"github.com/fredcamaral/slideterm/internal/domain/services"
)

var startSlide int

var presentCmd = &cobra.Command{
	Use:   "present <file.md>",
	Short: "Present a markdown file in the terminal",
	Long: `Present a markdown file as a slideshow. The file is compiled before the
terminal is taken over, so syntax errors are reported without clearing
the screen.`,
	Args: cobra.ExactArgs(1),
	RunE: runPresent,
}

func init() {
	presentCmd.Flags().StringP("theme", "t", "", "Theme to use when the presentation does not set one")
	presentCmd.Flags().BoolP("watch", "w", false, "Reload the presentation when the file changes")
	presentCmd.Flags().Bool("strict", false, "Reject unknown front matter keys and unknown directives")
	presentCmd.Flags().String("image-protocol", "", "Image protocol (auto, kitty, iterm2, blocks)")
	presentCmd.Flags().String("log-file", "", "Write logs to this file while presenting")
	presentCmd.Flags().IntVar(&startSlide, "slide", 1, "Slide to start on")

	rootCmd.AddCommand(presentCmd)
}

func runPresent(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving presentation path: %w", err)
	}

	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}

	// The terminal belongs to the slides; logs go to a file or nowhere.
	logs, err := logging.New(cfg.Logging, nil)
	if err != nil {
		return err
	}
	defer func() { _ = logs.Close() }()
	logger := logs.Logger

	app := newApplication(cfg, path, logger)

	term := terminal.New(os.Stdin, os.Stdout, logger)
	defer func() { _ = term.Close() }()

	chunks, err := term.Keys()
	if err != nil {
		return fmt.Errorf("reading terminal input: %w", err)
	}
	keymap, err := input.NewKeymap(cfg.Keys.Bindings())
	if err != nil {
		return fmt.Errorf("building key bindings: %w", err)
	}

	keys := input.NewKeySource(chunks, keymap, logger)
	defer func() { _ = keys.Close() }()
	resizes := input.NewResizeSource()
	defer func() { _ = resizes.Close() }()
	sources := []ports.EventSource{keys, resizes}

	if cfg.Watcher.Enabled {
		reload := services.NewLiveReloadService(watcher.New(cfg.Watcher, logger), logger)
		if err := reload.Start(ctx, path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		defer func() { _ = reload.Stop() }()
		sources = append(sources, reload)
	}

	cellWidth, cellHeight := cfg.Images.GetCellSize()
	layout := services.NewLayoutEngine(highlight.NewChromaHighlighter(logger), app.images, services.LayoutOptions{
		ImageMaxHeight: cfg.Presentation.ImageMaxHeight,
		CellWidth:      cellWidth,
		CellHeight:     cellHeight,
	}, logger)

	session := monitoring.NewSessionMonitor()
	defer session.LogSummary(logger)

	presenter := services.NewPresenter(term, app.presentation, layout, graphics.NewRenderer(app.images, logger), services.PresenterOptions{
		Protocol:     cfg.Images.GetProtocol(),
		QueryTimeout: cfg.Images.GetQueryTimeout(),
		StartSlide:   startSlide,
		Recorder:     session,
	}, logger)

	return presenter.Run(ctx, path, sources...)
}

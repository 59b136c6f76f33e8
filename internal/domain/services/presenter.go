package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// PresenterOptions configures the presentation driver
type PresenterOptions struct {
	// Protocol forces an image transport; ProtocolAuto queries the terminal
	Protocol entities.ImageProtocol

	// QueryTimeout bounds the capability query
	QueryTimeout time.Duration

	// StartSlide is the 1-based slide to open on; 0 opens the first slide
	StartSlide int

	// Recorder receives render and reload statistics; nil disables recording
	Recorder ports.SessionRecorder
}

// PresentationState is the mutable state of a running presentation. It is
// owned by the presenter loop and never shared.
type PresentationState struct {
	Presentation *entities.Presentation
	Index        int
	Size         entities.WindowSize
	Protocol     entities.ImageProtocol
	// Banner is an error shown over the slide until the next successful reload
	Banner string
}

// Presenter drives an interactive presentation: it owns the terminal for the
// duration of Run and repaints the current slide after every event
type Presenter struct {
	terminal ports.Terminal
	loader   ports.PresentationLoader
	layout   *LayoutEngine
	images   ports.ImageRenderer
	options  PresenterOptions
	logger   *slog.Logger

	state    PresentationState
	rendered map[int]*entities.RenderedSlide
}

// NewPresenter creates a new presenter
func NewPresenter(
	terminal ports.Terminal,
	loader ports.PresentationLoader,
	layout *LayoutEngine,
	images ports.ImageRenderer,
	options PresenterOptions,
	logger *slog.Logger,
) *Presenter {
	if options.Protocol == "" {
		options.Protocol = entities.ProtocolAuto
	}
	if options.QueryTimeout <= 0 {
		options.QueryTimeout = 250 * time.Millisecond
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Presenter{
		terminal: terminal,
		loader:   loader,
		layout:   layout,
		images:   images,
		options:  options,
		logger:   logger.With("service", "presenter"),
		rendered: make(map[int]*entities.RenderedSlide),
	}
}

// State returns a copy of the current state
func (p *Presenter) State() PresentationState {
	return p.state
}

// Run compiles the presentation at path and presents it until a quit command,
// a closed event stream, a fatal error or ctx cancellation. The terminal is
// restored on every exit path.
func (p *Presenter) Run(ctx context.Context, path string, sources ...ports.EventSource) (err error) {
	presentation, err := p.loader.Load(ctx, path)
	if err != nil {
		return err
	}
	p.state.Presentation = presentation
	p.state.Index = clampIndex(p.options.StartSlide-1, presentation.SlideCount())

	if err := p.terminal.SetRawMode(true); err != nil {
		return &entities.TerminalError{Op: "enable raw mode", Err: err}
	}
	defer func() {
		if restoreErr := p.restore(); restoreErr != nil && err == nil {
			err = restoreErr
		}
	}()
	p.terminal.SetAlternateScreen(true)
	p.terminal.SetCursorVisible(false)

	p.state.Size = p.querySize()
	p.state.Protocol = p.detectProtocol(ctx)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := mergeEvents(loopCtx, sources)

	if err := p.draw(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			quit, err := p.handle(ctx, path, event)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

// restore leaves the alternate screen and returns the terminal to its
// original mode
func (p *Presenter) restore() error {
	p.terminal.SetCursorVisible(true)
	p.terminal.SetAlternateScreen(false)
	flushErr := p.terminal.Flush()
	if err := p.terminal.SetRawMode(false); err != nil {
		return &entities.TerminalError{Op: "restore mode", Err: err}
	}
	if flushErr != nil {
		return &entities.TerminalError{Op: "flush", Err: flushErr}
	}
	return nil
}

// handle applies one event. It reports whether the loop should exit.
func (p *Presenter) handle(ctx context.Context, path string, event entities.Event) (bool, error) {
	if event.Err != nil {
		return true, fmt.Errorf("reading input: %w", event.Err)
	}

	count := p.state.Presentation.SlideCount()
	index := p.state.Index

	switch event.Command {
	case entities.CommandNext:
		index = clampIndex(index+1, count)
	case entities.CommandPrevious:
		index = clampIndex(index-1, count)
	case entities.CommandFirst:
		index = 0
	case entities.CommandLast:
		index = count - 1
	case entities.CommandJump:
		index = clampIndex(event.Slide-1, count)
	case entities.CommandResize:
		size := event.Size
		if size.Columns <= 0 || size.Rows <= 0 {
			size = p.querySize()
		}
		p.state.Size = size
		p.invalidate()
		return false, p.draw()
	case entities.CommandRedraw:
		p.invalidate()
		return false, p.draw()
	case entities.CommandRefreshCapabilities:
		p.state.Protocol = p.detectProtocol(ctx)
		p.state.Size = p.querySize()
		p.invalidate()
		return false, p.draw()
	case entities.CommandReload:
		p.reload(ctx, path)
		return false, p.draw()
	case entities.CommandQuit:
		return true, nil
	default:
		return false, nil
	}

	if index == p.state.Index {
		return false, nil
	}
	p.state.Index = index
	return false, p.draw()
}

// reload recompiles the document. On failure the current presentation stays
// and the error is shown on the banner row.
func (p *Presenter) reload(ctx context.Context, path string) {
	start := time.Now()
	presentation, err := p.loader.Load(ctx, path)
	if p.options.Recorder != nil {
		p.options.Recorder.RecordReload(time.Since(start), err)
	}
	if err != nil {
		p.logger.Warn("reload failed", slog.String("path", path), slog.String("error", err.Error()))
		p.state.Banner = err.Error()
		return
	}

	index := clampIndex(p.state.Index, presentation.SlideCount())
	if modified, changed := p.state.Presentation.FirstModifiedSlide(presentation); changed && modified < index {
		index = modified
	}

	p.logger.Info("presentation reloaded",
		slog.String("path", path),
		slog.Int("slides", presentation.SlideCount()),
		slog.Int("index", index))

	p.state.Presentation = presentation
	p.state.Index = index
	p.state.Banner = ""
	p.invalidate()
}

// detectProtocol picks the image transport. Query failures fall back to
// block characters.
func (p *Presenter) detectProtocol(ctx context.Context) entities.ImageProtocol {
	if p.options.Protocol != entities.ProtocolAuto {
		return p.options.Protocol
	}
	protocol, err := p.terminal.QueryImageCapability(ctx, p.options.QueryTimeout)
	if err != nil || protocol == "" || protocol == entities.ProtocolAuto {
		reason := "no answer"
		if err != nil {
			reason = err.Error()
		}
		p.logger.Debug("image capability unavailable, using blocks", slog.String("reason", reason))
		return entities.ProtocolBlocks
	}
	p.logger.Debug("image capability detected", slog.String("protocol", string(protocol)))
	return protocol
}

func (p *Presenter) querySize() entities.WindowSize {
	size, err := p.terminal.Size()
	if err != nil || size.Columns <= 0 || size.Rows <= 0 {
		p.logger.Debug("terminal size unavailable, assuming 80x24")
		return entities.WindowSize{Columns: 80, Rows: 24}
	}
	return size
}

func (p *Presenter) invalidate() {
	p.rendered = make(map[int]*entities.RenderedSlide)
}

// draw repaints the current slide
func (p *Presenter) draw() error {
	start := time.Now()
	presentation := p.state.Presentation
	slide := presentation.Slides[p.state.Index]

	rendered, ok := p.rendered[p.state.Index]
	if !ok {
		rendered = p.layout.Layout(slide, p.state.Size, presentation.Theme)
		p.rendered[p.state.Index] = rendered
	}

	p.terminal.Clear(rendered.Background)
	for _, line := range rendered.Lines {
		p.writeLine(line)
	}
	for _, img := range rendered.Images {
		p.paintImage(img, presentation.Theme)
	}
	if p.state.Banner != "" {
		p.writeLine(p.layout.Banner(p.state.Banner, p.state.Size, presentation.Theme))
	}

	if err := p.terminal.Flush(); err != nil {
		return &entities.TerminalError{Op: "write", Err: err}
	}
	if p.options.Recorder != nil {
		p.options.Recorder.RecordRender(time.Since(start), ok)
	}
	return nil
}

func (p *Presenter) writeLine(line entities.RenderedLine) {
	p.terminal.MoveCursor(line.Row, line.Col)
	for _, span := range line.Spans {
		p.terminal.WriteSpan(span)
	}
}

// paintImage paints an image into its region, or a placeholder when the
// image cannot be prepared
func (p *Presenter) paintImage(img entities.ImagePlacement, theme *entities.Theme) {
	region := img.Region
	err := errors.New("no image renderer")
	if p.images != nil {
		var encoded ports.EncodedImage
		encoded, err = p.images.Prepare(img.Handle, region.Columns, region.Rows, p.state.Protocol)
		if err == nil {
			err = p.images.Paint(encoded, p.terminal, region.Row, region.Col)
		}
	}
	if err == nil {
		return
	}

	if p.options.Recorder != nil {
		p.options.Recorder.RecordImageFallback()
	}
	p.logger.Debug("image unavailable",
		slog.String("source", img.Handle.Source),
		slog.String("error", err.Error()))

	label := img.Alt
	if label == "" {
		label = img.Handle.Source
	}
	text := entities.Plain("[image unavailable: "+label+"]", entities.RolePlaceholder)
	if text.Width() > region.Columns {
		text = truncateText(text, region.Columns)
	}
	for i := range text {
		text[i].Style = theme.Resolve(text[i])
	}
	p.writeLine(entities.RenderedLine{Row: region.Row, Col: region.Col, Spans: text})
}

// clampIndex clamps index to [0, count-1]
func clampIndex(index, count int) int {
	if index >= count {
		index = count - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}

// mergeEvents fans the sources into one channel, closed once every source
// is closed or ctx is done
func mergeEvents(ctx context.Context, sources []ports.EventSource) <-chan entities.Event {
	out := make(chan entities.Event)
	var wg sync.WaitGroup
	for _, source := range sources {
		if source == nil {
			continue
		}
		wg.Add(1)
		go func(events <-chan entities.Event) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case event, ok := <-events:
					if !ok {
						return
					}
					select {
					case out <- event:
					case <-ctx.Done():
						return
					}
				}
			}
		}(source.Events())
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

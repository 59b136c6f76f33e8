package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

var errNotTerminal = errors.New("not a terminal")

// Terminal implements the Terminal interface on top of a tty. Output is
// buffered until Flush; styles are rendered with lipgloss in the detected
// color profile.
type Terminal struct {
	in     *os.File
	out    *os.File
	writer *bufio.Writer
	output *termenv.Output
	styles *lipgloss.Renderer
	getenv func(string) string
	logger *slog.Logger

	state *term.State

	pumpOnce sync.Once
	pump     *inputPump
	pumpErr  error
}

// New creates a terminal reading keys from in and drawing on out
func New(in, out *os.File, logger *slog.Logger) *Terminal {
	t := newTerminal(out, logger)
	t.in = in
	t.out = out
	return t
}

func newTerminal(w io.Writer, logger *slog.Logger) *Terminal {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	writer := bufio.NewWriterSize(w, 64*1024)
	return &Terminal{
		writer: writer,
		output: termenv.NewOutput(writer),
		styles: lipgloss.NewRenderer(w),
		getenv: os.Getenv,
		logger: logger.With("adapter", "terminal"),
	}
}

// ColorProfile returns the color profile spans are rendered in
func (t *Terminal) ColorProfile() termenv.Profile {
	return t.styles.ColorProfile()
}

// SetColorProfile overrides the detected color profile
func (t *Terminal) SetColorProfile(profile termenv.Profile) {
	t.styles.SetColorProfile(profile)
}

// MoveCursor moves to a 0-based cell
func (t *Terminal) MoveCursor(row, col int) {
	t.output.MoveCursor(row+1, col+1)
}

// WriteSpan writes a styled span at the cursor
func (t *Terminal) WriteSpan(span entities.StyledSpan) {
	style := t.styles.NewStyle()
	if span.Style.Foreground != "" {
		style = style.Foreground(lipgloss.Color(string(span.Style.Foreground)))
	}
	if span.Style.Background != "" {
		style = style.Background(lipgloss.Color(string(span.Style.Background)))
	}
	attrs := span.Style.Attrs | span.Attrs
	if attrs.Has(entities.AttrBold) {
		style = style.Bold(true)
	}
	if attrs.Has(entities.AttrItalic) {
		style = style.Italic(true)
	}
	if attrs.Has(entities.AttrUnderline) {
		style = style.Underline(true)
	}
	if attrs.Has(entities.AttrStrikethrough) {
		style = style.Strikethrough(true)
	}
	if attrs.Has(entities.AttrDim) {
		style = style.Faint(true)
	}
	_, _ = t.writer.WriteString(style.Render(span.Text))
}

// WriteImageBytes writes a raw image escape sequence at the cursor
func (t *Terminal) WriteImageBytes(payload []byte) {
	_, _ = t.writer.Write(payload)
}

// Clear erases the screen, filling it with background when set
func (t *Terminal) Clear(background entities.Color) {
	var sequence string
	if background != "" {
		sequence = t.styles.ColorProfile().Color(string(background)).Sequence(true)
	}
	if sequence != "" {
		_, _ = t.writer.WriteString(termenv.CSI + sequence + "m")
	}
	t.output.ClearScreen()
	if sequence != "" {
		_, _ = t.writer.WriteString(termenv.CSI + termenv.ResetSeq + "m")
	}
}

// Flush writes buffered output to the terminal
func (t *Terminal) Flush() error {
	return t.writer.Flush()
}

// SetRawMode switches the input tty in or out of raw mode
func (t *Terminal) SetRawMode(enabled bool) error {
	if t.in == nil || !term.IsTerminal(int(t.in.Fd())) {
		if enabled {
			return errNotTerminal
		}
		return nil
	}
	if !enabled {
		if t.state == nil {
			return nil
		}
		err := term.Restore(int(t.in.Fd()), t.state)
		t.state = nil
		return err
	}
	state, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return err
	}
	t.state = state
	return nil
}

// SetAlternateScreen enters or leaves the alternate screen buffer
func (t *Terminal) SetAlternateScreen(enabled bool) {
	if enabled {
		t.output.AltScreen()
		return
	}
	t.output.ExitAltScreen()
}

// SetCursorVisible shows or hides the cursor
func (t *Terminal) SetCursorVisible(visible bool) {
	if visible {
		t.output.ShowCursor()
		return
	}
	t.output.HideCursor()
}

// Size reports the window size in cells and, when available, the cell size
// in pixels
func (t *Terminal) Size() (entities.WindowSize, error) {
	if t.out == nil {
		return entities.WindowSize{}, errNotTerminal
	}
	columns, rows, err := term.GetSize(int(t.out.Fd()))
	if err != nil {
		return entities.WindowSize{}, fmt.Errorf("querying window size: %w", err)
	}
	size := entities.WindowSize{Columns: columns, Rows: rows}
	if width, height, ok := cellPixels(t.out.Fd()); ok {
		size.CellWidth = width
		size.CellHeight = height
	}
	return size, nil
}

// QueryImageCapability detects the image transport, first from the
// environment and then by asking the terminal
func (t *Terminal) QueryImageCapability(ctx context.Context, timeout time.Duration) (entities.ImageProtocol, error) {
	if protocol := protocolFromEnv(t.getenv); protocol != "" {
		t.logger.Debug("image protocol from environment", slog.String("protocol", string(protocol)))
		return protocol, nil
	}

	pump, err := t.inputPump()
	if err != nil {
		return "", err
	}
	responses := pump.divert()
	defer pump.restore()

	write := func(query []byte) error {
		_, _ = t.writer.Write(query)
		return t.writer.Flush()
	}
	return queryCapability(ctx, write, responses, timeout)
}

// Keys returns the raw input stream
func (t *Terminal) Keys() (<-chan Chunk, error) {
	pump, err := t.inputPump()
	if err != nil {
		return nil, err
	}
	return pump.keys, nil
}

// Close stops reading input
func (t *Terminal) Close() error {
	if t.pump != nil {
		t.pump.cancel()
	}
	return nil
}

func (t *Terminal) inputPump() (*inputPump, error) {
	t.pumpOnce.Do(func() {
		if t.in == nil {
			t.pumpErr = errNotTerminal
			return
		}
		t.pump, t.pumpErr = startInputPump(t.in, t.logger)
	})
	return t.pump, t.pumpErr
}

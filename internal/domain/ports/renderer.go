package ports

import (
	"context"
	"image"
	"time"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

// Highlighter maps code to styled token lines
type Highlighter interface {
	// Highlight returns one span list per source line. Each span is a single
	// token with its style already resolved.
	Highlight(code, language, style string) (entities.HighlightedCode, error)
}

// ImageStore resolves image references and decodes them lazily
type ImageStore interface {
	// Resolve turns a document reference into a handle; it fails when the
	// reference cannot be found
	Resolve(reference string) (*entities.ImageHandle, error)

	// Decode decodes the handle's source at most once per content hash
	Decode(handle *entities.ImageHandle) (image.Image, error)
}

// ImageSizer reports decoded image dimensions to the layout engine
type ImageSizer interface {
	Dimensions(handle *entities.ImageHandle) (width, height int, err error)
}

// EncodedImage is an image encoded for one transport. The set of
// implementations is closed, so painting code cannot mix encodings.
type EncodedImage interface {
	Protocol() entities.ImageProtocol
	Cells() (columns, rows int)
}

// ImageRenderer prepares and paints images
type ImageRenderer interface {
	Prepare(handle *entities.ImageHandle, columns, rows int, protocol entities.ImageProtocol) (EncodedImage, error)
	Paint(encoded EncodedImage, writer TerminalWriter, row, col int) error
}

// TerminalWriter is the drawing surface
type TerminalWriter interface {
	MoveCursor(row, col int)
	WriteSpan(span entities.StyledSpan)
	WriteImageBytes(payload []byte)
	Clear(background entities.Color)
	Flush() error
}

// Terminal is the full terminal capability used by the presentation driver
type Terminal interface {
	TerminalWriter

	SetRawMode(enabled bool) error
	SetAlternateScreen(enabled bool)
	SetCursorVisible(visible bool)
	Size() (entities.WindowSize, error)
	QueryImageCapability(ctx context.Context, timeout time.Duration) (entities.ImageProtocol, error)
}

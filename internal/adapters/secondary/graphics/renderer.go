package graphics

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

type encodingKey struct {
	hash     string
	columns  int
	rows     int
	protocol entities.ImageProtocol
}

// Renderer scales decoded images to a cell region and encodes them for a
// transport. Encodings are cached per (content, region, transport); the
// decoded source is reused across rescales.
type Renderer struct {
	store  ports.ImageStore
	logger *slog.Logger

	mu      sync.Mutex
	encoded map[encodingKey]ports.EncodedImage
}

// NewRenderer creates a renderer decoding through store
func NewRenderer(store ports.ImageStore, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Renderer{
		store:   store,
		logger:  logger.With("adapter", "image_renderer"),
		encoded: make(map[encodingKey]ports.EncodedImage),
	}
}

// Prepare encodes the image to fill columns x rows cells
func (r *Renderer) Prepare(handle *entities.ImageHandle, columns, rows int, protocol entities.ImageProtocol) (ports.EncodedImage, error) {
	if columns <= 0 || rows <= 0 {
		return nil, fmt.Errorf("invalid image region %dx%d", columns, rows)
	}
	if protocol == "" || protocol == entities.ProtocolAuto {
		protocol = entities.ProtocolBlocks
	}

	img, err := r.store.Decode(handle)
	if err != nil {
		return nil, err
	}

	key := encodingKey{hash: handle.Hash(), columns: columns, rows: rows, protocol: protocol}
	r.mu.Lock()
	defer r.mu.Unlock()
	if encoded, ok := r.encoded[key]; ok {
		return encoded, nil
	}

	var encoded ports.EncodedImage
	switch protocol {
	case entities.ProtocolKitty:
		encoded, err = encodeKitty(img, columns, rows)
	case entities.ProtocolITerm2:
		encoded, err = encodeITerm(img, columns, rows)
	case entities.ProtocolBlocks:
		encoded = encodeBlocks(img, columns, rows)
	default:
		return nil, fmt.Errorf("unknown image protocol %q", protocol)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug("image encoded",
		slog.String("source", handle.Source),
		slog.String("protocol", string(protocol)),
		slog.Int("columns", columns),
		slog.Int("rows", rows))
	r.encoded[key] = encoded
	return encoded, nil
}

// Paint writes an encoded image with its top-left cell at (row, col)
func (r *Renderer) Paint(encoded ports.EncodedImage, writer ports.TerminalWriter, row, col int) error {
	switch img := encoded.(type) {
	case *kittyImage:
		writer.MoveCursor(row, col)
		writer.WriteImageBytes(img.payload)
	case *itermImage:
		writer.MoveCursor(row, col)
		writer.WriteImageBytes(img.payload)
	case *blockImage:
		for i, line := range img.lines {
			writer.MoveCursor(row+i, col)
			for _, span := range line {
				writer.WriteSpan(span)
			}
		}
	default:
		return fmt.Errorf("unsupported image encoding %T", encoded)
	}
	return nil
}

// CachedEncodings returns the number of cached encodings
func (r *Renderer) CachedEncodings() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.encoded)
}

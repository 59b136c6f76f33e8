package graphics

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	// Registered decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

// Store resolves image references relative to the presentation and decodes
// each distinct file content once
type Store struct {
	baseDir string
	logger  *slog.Logger

	mu      sync.Mutex
	decoded map[string]image.Image
}

// NewStore creates an image store resolving relative references against baseDir
func NewStore(baseDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		baseDir: baseDir,
		logger:  logger.With("adapter", "image_store"),
		decoded: make(map[string]image.Image),
	}
}

func isRemote(reference string) bool {
	return strings.HasPrefix(reference, "http://") || strings.HasPrefix(reference, "https://")
}

// Resolve turns a document reference into an undecoded handle
func (s *Store) Resolve(reference string) (*entities.ImageHandle, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, errors.New("empty image reference")
	}
	if isRemote(reference) {
		// Remote images resolve, then degrade to a placeholder when displayed
		return entities.NewImageHandle(reference), nil
	}

	path := reference
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("resolving image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("resolving image: %s is a directory", path)
	}
	return entities.NewImageHandle(path), nil
}

// Decode decodes the handle's source, at most once per content hash
func (s *Store) Decode(handle *entities.ImageHandle) (image.Image, error) {
	return handle.Decoded(s.decode)
}

// Dimensions returns the pixel size of the handle's image
func (s *Store) Dimensions(handle *entities.ImageHandle) (int, int, error) {
	img, err := s.Decode(handle)
	if err != nil {
		return 0, 0, err
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}

// DecodedCount returns the number of distinct decoded images
func (s *Store) DecodedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.decoded)
}

func (s *Store) decode(source string) (string, image.Image, error) {
	if isRemote(source) {
		return "", nil, fmt.Errorf("%w: remote image %s", entities.ErrUnsupportedImageFormat, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", entities.ErrImageDecode, err)
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	s.mu.Lock()
	defer s.mu.Unlock()
	if img, ok := s.decoded[hash]; ok {
		return hash, img, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return hash, nil, fmt.Errorf("%w: %s", entities.ErrUnsupportedImageFormat, source)
	}
	if err != nil {
		return hash, nil, fmt.Errorf("%w: %s: %w", entities.ErrImageDecode, source, err)
	}

	s.decoded[hash] = img
	s.logger.Debug("image decoded",
		slog.String("source", source),
		slog.String("format", format),
		slog.Int("width", img.Bounds().Dx()),
		slog.Int("height", img.Bounds().Dy()))
	return hash, img, nil
}

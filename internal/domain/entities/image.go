package entities

import (
	"image"
	"sync"
)

// ImageProtocol is the transport used to display raster images
type ImageProtocol string

const (
	ProtocolAuto   ImageProtocol = "auto"
	ProtocolKitty  ImageProtocol = "kitty"
	ProtocolITerm2 ImageProtocol = "iterm2"
	ProtocolBlocks ImageProtocol = "blocks"
)

// IsNative reports whether the protocol paints real pixels
func (p ImageProtocol) IsNative() bool {
	return p == ProtocolKitty || p == ProtocolITerm2
}

// ImageHandle owns the decoded pixels of one image source. Decoding is lazy
// and happens at most once per distinct content hash.
type ImageHandle struct {
	// Source is the resolved path (or URL) of the image
	Source string

	mu      sync.Mutex
	decoded bool
	hash    string
	img     image.Image
	err     error
}

// NewImageHandle creates an undecoded handle for a source
func NewImageHandle(source string) *ImageHandle {
	return &ImageHandle{Source: source}
}

// Decoded returns the decode result, running decode on first call
func (h *ImageHandle) Decoded(decode func(source string) (string, image.Image, error)) (image.Image, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.decoded {
		h.hash, h.img, h.err = decode(h.Source)
		h.decoded = true
	}
	return h.img, h.err
}

// IsDecoded reports whether decoding was attempted
func (h *ImageHandle) IsDecoded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.decoded
}

// Hash returns the content hash, empty before decoding
func (h *ImageHandle) Hash() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hash
}

// Dimensions returns the pixel size of a decoded image
func (h *ImageHandle) Dimensions() (int, int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.decoded || h.img == nil {
		return 0, 0, false
	}
	bounds := h.img.Bounds()
	return bounds.Dx(), bounds.Dy(), true
}

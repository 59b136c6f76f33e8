package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
)

// SlideOptions holds per-slide overrides set through directives
type SlideOptions struct {
	// HideFooter suppresses the footer on this slide
	HideFooter bool `json:"hide_footer,omitempty"`

	// VerticalCenter centers the content regardless of the theme
	VerticalCenter bool `json:"vertical_center,omitempty"`

	// ImageAlign overrides the alignment of images on this slide
	ImageAlign Alignment `json:"image_align,omitempty"`
}

// Footer is the footer content resolved at compile time
type Footer struct {
	Kind   FooterKind
	Left   string
	Center string
	Right  string
	// Progress is (index+1)/total, used by progress bar footers
	Progress float64
}

// Slide is an immutable, compiled slide
type Slide struct {
	// Index is the slide position in the presentation (0-based)
	Index int

	// Title is the first heading text, or "Slide N"
	Title string

	// Elements are the semantic content units, in order
	Elements []Element

	// Options are per-slide overrides
	Options SlideOptions

	// Footer is the resolved footer content
	Footer Footer

	highlights *HighlightCache
	digest     string
}

// NewSlide creates a slide and computes its fingerprint
func NewSlide(index int, elements []Element, options SlideOptions, footer Footer) *Slide {
	s := &Slide{
		Index:      index,
		Elements:   elements,
		Options:    options,
		Footer:     footer,
		highlights: NewHighlightCache(),
	}
	s.Title = s.extractTitle()
	s.digest = s.computeFingerprint()
	return s
}

// Highlights returns the per-slide highlight cache
func (s *Slide) Highlights() *HighlightCache {
	if s.highlights == nil {
		s.highlights = NewHighlightCache()
	}
	return s.highlights
}

// Fingerprint identifies the slide content; two slides with equal content have
// equal fingerprints
func (s *Slide) Fingerprint() string {
	return s.digest
}

// ElementCount returns the number of elements in the slide
func (s *Slide) ElementCount() int {
	return len(s.Elements)
}

// extractTitle returns the text of the first heading
func (s *Slide) extractTitle() string {
	for _, element := range s.Elements {
		if heading, ok := element.(Heading); ok {
			return heading.Text.String()
		}
	}
	return "Slide " + strconv.Itoa(s.Index+1)
}

func (s *Slide) computeFingerprint() string {
	hash := sha256.New()
	for _, element := range s.Elements {
		element.fingerprint(hash)
	}
	_, _ = hash.Write([]byte(strconv.FormatBool(s.Options.HideFooter)))
	_, _ = hash.Write([]byte(s.Options.ImageAlign))
	return hex.EncodeToString(hash.Sum(nil))
}

// HighlightedCode is the cached highlighter output: one span list per line
type HighlightedCode [][]StyledSpan

// HighlightCache caches highlighted code for the lifetime of a slide
type HighlightCache struct {
	mu      sync.Mutex
	entries map[string]HighlightedCode
}

// NewHighlightCache creates an empty cache
func NewHighlightCache() *HighlightCache {
	return &HighlightCache{entries: make(map[string]HighlightedCode)}
}

// HighlightKey derives the cache key for a (code, language, style) triple
func HighlightKey(code, language, style string) string {
	hash := sha256.New()
	_, _ = hash.Write([]byte(language))
	_, _ = hash.Write([]byte{0})
	_, _ = hash.Write([]byte(style))
	_, _ = hash.Write([]byte{0})
	_, _ = hash.Write([]byte(code))
	return hex.EncodeToString(hash.Sum(nil))
}

// Get retrieves a cached entry
func (c *HighlightCache) Get(key string) (HighlightedCode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	code, ok := c.entries[key]
	return code, ok
}

// Set stores an entry
func (c *HighlightCache) Set(key string, code HighlightedCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = code
}

// Len returns the number of cached entries
func (c *HighlightCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

package entities

import (
	"errors"
	"fmt"
)

// Metadata is the decoded front matter of a document
type Metadata struct {
	// Title is the presentation title
	Title string `yaml:"title" json:"title"`

	// SubTitle is shown under the title on the intro slide
	SubTitle string `yaml:"sub_title" json:"sub_title"`

	// Author is the presentation creator
	Author string `yaml:"author" json:"author"`

	// Date is free-form
	Date string `yaml:"date" json:"date"`

	// Theme selects and overrides the theme
	Theme ThemeMetadata `yaml:"theme" json:"theme"`

	// Footer overrides the center footer template; FooterDisabled turns it off
	Footer         string `yaml:"-" json:"footer,omitempty"`
	FooterDisabled bool   `yaml:"-" json:"footer_disabled,omitempty"`

	// ImageAlign is the default image alignment for every slide
	ImageAlign Alignment `yaml:"image_align" json:"image_align,omitempty"`
}

// HasIntro reports whether an intro slide should be generated
func (m *Metadata) HasIntro() bool {
	return m.Title != "" || m.SubTitle != "" || m.Author != ""
}

// ThemeMetadata is the theme selection found in front matter
type ThemeMetadata struct {
	Name     string `yaml:"name" json:"name,omitempty"`
	Path     string `yaml:"path" json:"path,omitempty"`
	Override *Theme `yaml:"override" json:"override,omitempty"`
}

// IsZero returns true if the front matter does not mention a theme
func (t ThemeMetadata) IsZero() bool {
	return t.Name == "" && t.Path == "" && t.Override == nil
}

// Presentation is a compiled presentation
type Presentation struct {
	// Path is the source file, if any
	Path string

	// Metadata is the decoded front matter
	Metadata Metadata

	// Theme is the resolved theme
	Theme *Theme

	// Slides contains all compiled slides in order
	Slides []*Slide
}

// Validate ensures the presentation can be presented
func (p *Presentation) Validate() error {
	if len(p.Slides) == 0 {
		return errors.New("presentation must have at least one slide")
	}
	for i, slide := range p.Slides {
		if slide.Index != i {
			return fmt.Errorf("slide %d has index %d", i, slide.Index)
		}
	}
	if p.Theme == nil {
		return errors.New("presentation has no theme")
	}
	return nil
}

// GetSlideByIndex returns a slide by its index (0-based)
func (p *Presentation) GetSlideByIndex(index int) (*Slide, error) {
	if index < 0 || index >= len(p.Slides) {
		return nil, fmt.Errorf("slide index %d out of range (0-%d)", index, len(p.Slides)-1)
	}
	return p.Slides[index], nil
}

// SlideCount returns the total number of slides
func (p *Presentation) SlideCount() int {
	return len(p.Slides)
}

// FirstModifiedSlide returns the index of the first slide whose content differs
// from other, or false if both presentations have identical slides
func (p *Presentation) FirstModifiedSlide(other *Presentation) (int, bool) {
	shared := len(p.Slides)
	if len(other.Slides) < shared {
		shared = len(other.Slides)
	}
	for i := 0; i < shared; i++ {
		if p.Slides[i].Fingerprint() != other.Slides[i].Fingerprint() {
			return i, true
		}
	}
	if len(p.Slides) != len(other.Slides) {
		// the first slide that exists in only one of them; clamp to the new size
		if shared >= len(other.Slides) {
			return len(other.Slides) - 1, true
		}
		return shared, true
	}
	return 0, false
}

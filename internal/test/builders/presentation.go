package builders

import (
	"strconv"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

// PresentationBuilder helps build Presentation entities for testing
type PresentationBuilder struct {
	presentation *entities.Presentation
	elements     [][]entities.Element
}

// NewPresentationBuilder creates a new presentation builder with sensible defaults
func NewPresentationBuilder() *PresentationBuilder {
	return &PresentationBuilder{
		presentation: &entities.Presentation{
			Path: "slides.md",
			Metadata: entities.Metadata{
				Title:  "Test Presentation",
				Author: "Test Author",
			},
			Theme: NewThemeBuilder().Build(),
		},
	}
}

// WithTitle sets the presentation title
func (b *PresentationBuilder) WithTitle(title string) *PresentationBuilder {
	b.presentation.Metadata.Title = title
	return b
}

// WithAuthor sets the presentation author
func (b *PresentationBuilder) WithAuthor(author string) *PresentationBuilder {
	b.presentation.Metadata.Author = author
	return b
}

// WithPath sets the presentation path
func (b *PresentationBuilder) WithPath(path string) *PresentationBuilder {
	b.presentation.Path = path
	return b
}

// WithTheme sets the presentation theme
func (b *PresentationBuilder) WithTheme(theme *entities.Theme) *PresentationBuilder {
	b.presentation.Theme = theme
	return b
}

// WithSlide adds a slide with the given elements
func (b *PresentationBuilder) WithSlide(elements ...entities.Element) *PresentationBuilder {
	b.elements = append(b.elements, elements)
	return b
}

// WithSlideCount adds the specified number of single heading slides
func (b *PresentationBuilder) WithSlideCount(count int) *PresentationBuilder {
	for i := 0; i < count; i++ {
		b.elements = append(b.elements, []entities.Element{Heading(1, "Slide "+strconv.Itoa(len(b.elements)+1))})
	}
	return b
}

// Build creates the final Presentation entity
func (b *PresentationBuilder) Build() *entities.Presentation {
	slides := make([]*entities.Slide, 0, len(b.elements))
	for i, elements := range b.elements {
		slides = append(slides, NewSlideBuilder().
			WithIndex(i).
			WithElements(elements...).
			WithFooter(entities.Footer{
				Kind:     entities.FooterTemplate,
				Right:    strconv.Itoa(i+1) + " / " + strconv.Itoa(len(b.elements)),
				Progress: float64(i+1) / float64(len(b.elements)),
			}).
			Build())
	}
	return &entities.Presentation{
		Path:     b.presentation.Path,
		Metadata: b.presentation.Metadata,
		Theme:    b.presentation.Theme,
		Slides:   slides,
	}
}

// SlideBuilder helps build Slide entities for testing
type SlideBuilder struct {
	index    int
	elements []entities.Element
	options  entities.SlideOptions
	footer   entities.Footer
}

// NewSlideBuilder creates a new slide builder with sensible defaults
func NewSlideBuilder() *SlideBuilder {
	return &SlideBuilder{
		footer: entities.Footer{Kind: entities.FooterEmpty},
	}
}

// WithIndex sets the slide index
func (b *SlideBuilder) WithIndex(index int) *SlideBuilder {
	b.index = index
	return b
}

// WithElements appends elements to the slide
func (b *SlideBuilder) WithElements(elements ...entities.Element) *SlideBuilder {
	b.elements = append(b.elements, elements...)
	return b
}

// WithParagraph appends a plain paragraph
func (b *SlideBuilder) WithParagraph(lines ...string) *SlideBuilder {
	b.elements = append(b.elements, Paragraph(lines...))
	return b
}

// WithOptions sets the slide options
func (b *SlideBuilder) WithOptions(options entities.SlideOptions) *SlideBuilder {
	b.options = options
	return b
}

// WithFooter sets the resolved footer
func (b *SlideBuilder) WithFooter(footer entities.Footer) *SlideBuilder {
	b.footer = footer
	return b
}

// Build creates the final Slide entity
func (b *SlideBuilder) Build() *entities.Slide {
	return entities.NewSlide(b.index, append([]entities.Element(nil), b.elements...), b.options, b.footer)
}

// Heading builds a heading element
func Heading(level int, text string) entities.Heading {
	return entities.Heading{
		Level: level,
		Text:  entities.Text{{Text: text, Role: entities.RoleHeading, Level: level}},
	}
}

// Paragraph builds a paragraph of plain lines
func Paragraph(lines ...string) entities.Paragraph {
	p := entities.Paragraph{}
	for _, line := range lines {
		p.Lines = append(p.Lines, entities.Plain(line, entities.RoleText))
	}
	return p
}

// Code builds a code block element
func Code(language, code string) entities.CodeBlock {
	return entities.CodeBlock{Language: language, Code: code}
}

// MinimalPresentation creates a minimal presentation for testing
func MinimalPresentation() *entities.Presentation {
	return NewPresentationBuilder().
		WithTitle("Minimal").
		WithSlideCount(1).
		Build()
}

// LargePresentation creates a presentation with many slides
func LargePresentation() *entities.Presentation {
	return NewPresentationBuilder().
		WithTitle("Large Presentation").
		WithSlideCount(50).
		Build()
}

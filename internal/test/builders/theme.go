package builders

import (
	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

// ThemeBuilder helps build Theme entities for testing
type ThemeBuilder struct {
	theme *entities.Theme
}

// NewThemeBuilder creates a theme with no margins, no top padding and a
// template footer, so layout tests can reason about exact rows and columns
func NewThemeBuilder() *ThemeBuilder {
	return &ThemeBuilder{
		theme: &entities.Theme{
			Name: "test",
			Palette: entities.Palette{
				Default: entities.Colors{Foreground: "#e6e6e6", Background: "#040312"},
				Heading: entities.Colors{Foreground: "#ee9322"},
				Code:    entities.Colors{Background: "#292e42"},
			},
			Layout: entities.LayoutStyle{
				Alignment:    entities.AlignLeft,
				BottomMargin: 3,
			},
			List: entities.ListStyle{Markers: []string{"•", "◦", "▪"}},
			Footer: entities.FooterStyle{
				Kind:  entities.FooterTemplate,
				Right: "{current_slide} / {total_slides}",
			},
		},
	}
}

// WithName sets the theme name
func (b *ThemeBuilder) WithName(name string) *ThemeBuilder {
	b.theme.Name = name
	return b
}

// WithAlignment sets the default alignment
func (b *ThemeBuilder) WithAlignment(align entities.Alignment) *ThemeBuilder {
	b.theme.Layout.Alignment = align
	return b
}

// WithVerticalCenter centers slide content vertically
func (b *ThemeBuilder) WithVerticalCenter() *ThemeBuilder {
	b.theme.Layout.VerticalAlign = entities.VerticalCenter
	return b
}

// WithMargin sets a fixed horizontal margin
func (b *ThemeBuilder) WithMargin(columns int) *ThemeBuilder {
	b.theme.Layout.Margin = entities.Margin{Fixed: columns}
	return b
}

// WithTopPadding sets the top padding
func (b *ThemeBuilder) WithTopPadding(rows int) *ThemeBuilder {
	b.theme.Layout.TopPadding = rows
	return b
}

// WithFooter sets the footer style
func (b *ThemeBuilder) WithFooter(footer entities.FooterStyle) *ThemeBuilder {
	b.theme.Footer = footer
	return b
}

// WithCodePadding sets the code block padding
func (b *ThemeBuilder) WithCodePadding(horizontal, vertical int) *ThemeBuilder {
	b.theme.Code.PaddingHorizontal = horizontal
	b.theme.Code.PaddingVertical = vertical
	return b
}

// Build creates the final Theme entity
func (b *ThemeBuilder) Build() *entities.Theme {
	return b.theme.Clone()
}

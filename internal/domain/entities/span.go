package entities

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Role identifies the semantic origin of a span so the theme can color it
type Role int

const (
	RoleText Role = iota
	RoleHeading
	RoleSlideTitle
	RoleEmphasis
	RoleStrong
	RoleInlineCode
	RoleLink
	RoleStrikethrough
	RoleCode
	RoleQuote
	RoleTable
	RoleListMarker
	RoleTitle
	RoleSubtitle
	RoleAuthor
	RoleFooter
	RoleRule
	RolePlaceholder
	RoleError
)

// Attr is a bit set of inline text attributes
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrItalic
	AttrUnderline
	AttrStrikethrough
	AttrDim
)

// Has reports whether all bits of other are set
func (a Attr) Has(other Attr) bool {
	return a&other == other
}

// Style is a fully resolved visual style
type Style struct {
	Foreground Color
	Background Color
	Attrs      Attr
}

// IsZero returns true if the style carries no colors and no attributes
func (s Style) IsZero() bool {
	return s.Foreground == "" && s.Background == "" && s.Attrs == 0
}

// StyledSpan is a run of text with a single style. It is the unit the layout
// engine wraps.
type StyledSpan struct {
	Text string
	Role Role
	// Level is the heading level for RoleHeading spans
	Level int
	Attrs Attr
	// Style is filled in by the layout engine (or by the highlighter for code tokens)
	Style Style
}

// Width returns the display width of the span in terminal columns
func (s StyledSpan) Width() int {
	return runewidth.StringWidth(s.Text)
}

// Text is a line of styled spans
type Text []StyledSpan

// Plain builds a single-span text
func Plain(text string, role Role) Text {
	return Text{{Text: text, Role: role}}
}

// Width returns the display width of the whole line
func (t Text) Width() int {
	width := 0
	for _, span := range t {
		width += span.Width()
	}
	return width
}

// String returns the unstyled text
func (t Text) String() string {
	var b strings.Builder
	for _, span := range t {
		b.WriteString(span.Text)
	}
	return b.String()
}

// IsEmpty returns true if the line carries no visible text
func (t Text) IsEmpty() bool {
	for _, span := range t {
		if span.Text != "" {
			return false
		}
	}
	return true
}

// WithRole returns a copy of the text with every span's role replaced
func (t Text) WithRole(role Role, level int) Text {
	out := make(Text, len(t))
	for i, span := range t {
		span.Role = role
		span.Level = level
		out[i] = span
	}
	return out
}

// WithAttrs returns a copy of the text with attrs added to every span
func (t Text) WithAttrs(attrs Attr) Text {
	out := make(Text, len(t))
	for i, span := range t {
		span.Attrs |= attrs
		out[i] = span
	}
	return out
}

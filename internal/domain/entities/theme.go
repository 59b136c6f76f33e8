package entities

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color is a terminal color: "#rrggbb", an ANSI index ("0".."255"), or empty
// for the terminal default
type Color string

// Validate checks the color syntax
func (c Color) Validate() error {
	s := string(c)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "#") {
		if len(s) != 7 {
			return fmt.Errorf("invalid color %q: expected #rrggbb", s)
		}
		for _, r := range s[1:] {
			if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
				return fmt.Errorf("invalid color %q: bad hex digit", s)
			}
		}
		return nil
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid color %q", s)
		}
		n = n*10 + int(r-'0')
		if n > 255 {
			return fmt.Errorf("invalid color %q: ANSI index out of range", s)
		}
	}
	return nil
}

// Alignment is a horizontal alignment
type Alignment string

const (
	AlignDefault Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
)

// Validate checks the alignment value
func (a Alignment) Validate() error {
	switch a {
	case AlignDefault, AlignLeft, AlignCenter, AlignRight:
		return nil
	default:
		return fmt.Errorf("invalid alignment %q (must be left, center or right)", string(a))
	}
}

// VerticalAlignment positions content on the slide
type VerticalAlignment string

const (
	VerticalTop    VerticalAlignment = "top"
	VerticalCenter VerticalAlignment = "center"
)

// FooterKind selects how the footer is drawn
type FooterKind string

const (
	FooterTemplate    FooterKind = "template"
	FooterProgressBar FooterKind = "progress_bar"
	FooterEmpty       FooterKind = "empty"
)

// Colors is a foreground/background pair
type Colors struct {
	Foreground Color `toml:"foreground" yaml:"foreground" json:"foreground,omitempty"`
	Background Color `toml:"background" yaml:"background" json:"background,omitempty"`
}

// Palette maps semantic roles to colors
type Palette struct {
	Default    Colors `toml:"default" yaml:"default"`
	Heading    Colors `toml:"heading" yaml:"heading"`
	Code       Colors `toml:"code" yaml:"code"`
	InlineCode Colors `toml:"inline_code" yaml:"inline_code"`
	Link       Colors `toml:"link" yaml:"link"`
	Emphasis   Colors `toml:"emphasis" yaml:"emphasis"`
	Strong     Colors `toml:"strong" yaml:"strong"`
	Quote      Colors `toml:"quote" yaml:"quote"`
	Table      Colors `toml:"table" yaml:"table"`
	ListMarker Colors `toml:"list_marker" yaml:"list_marker"`
	Rule       Colors `toml:"rule" yaml:"rule"`
	Footer     Colors `toml:"footer" yaml:"footer"`
	Error      Colors `toml:"error" yaml:"error"`
}

// Margin is a horizontal margin, either a fixed number of columns or a
// percentage of the terminal width
type Margin struct {
	Fixed   int `toml:"fixed" yaml:"fixed"`
	Percent int `toml:"percent" yaml:"percent"`
}

// Columns resolves the margin for a terminal width
func (m Margin) Columns(width int) int {
	if m.Percent > 0 {
		return width * m.Percent / 100
	}
	return m.Fixed
}

// LayoutStyle holds layout defaults
type LayoutStyle struct {
	Alignment     Alignment         `toml:"alignment" yaml:"alignment"`
	VerticalAlign VerticalAlignment `toml:"vertical_align" yaml:"vertical_align"`
	Margin        Margin            `toml:"margin" yaml:"margin"`
	TopPadding    int               `toml:"top_padding" yaml:"top_padding"`
	BottomMargin  int               `toml:"bottom_margin" yaml:"bottom_margin"`
}

// HeadingStyle styles one heading level
type HeadingStyle struct {
	Prefix    string    `toml:"prefix" yaml:"prefix"`
	Colors    Colors    `toml:"colors" yaml:"colors"`
	Alignment Alignment `toml:"alignment" yaml:"alignment"`
}

// HeadingStyles styles every heading level
type HeadingStyles struct {
	H1 HeadingStyle `toml:"h1" yaml:"h1"`
	H2 HeadingStyle `toml:"h2" yaml:"h2"`
	H3 HeadingStyle `toml:"h3" yaml:"h3"`
	H4 HeadingStyle `toml:"h4" yaml:"h4"`
	H5 HeadingStyle `toml:"h5" yaml:"h5"`
	H6 HeadingStyle `toml:"h6" yaml:"h6"`
}

// Level returns the style for a heading level (clamped to 1..6)
func (h HeadingStyles) Level(level int) HeadingStyle {
	switch {
	case level <= 1:
		return h.H1
	case level == 2:
		return h.H2
	case level == 3:
		return h.H3
	case level == 4:
		return h.H4
	case level == 5:
		return h.H5
	default:
		return h.H6
	}
}

// SlideTitleStyle styles setext slide titles
type SlideTitleStyle struct {
	Alignment     Alignment `toml:"alignment" yaml:"alignment"`
	PaddingTop    int       `toml:"padding_top" yaml:"padding_top"`
	PaddingBottom int       `toml:"padding_bottom" yaml:"padding_bottom"`
	Separator     *bool     `toml:"separator" yaml:"separator"`
	Colors        Colors    `toml:"colors" yaml:"colors"`
}

// HasSeparator reports whether a rule is drawn under slide titles
func (s SlideTitleStyle) HasSeparator() bool {
	return s.Separator != nil && *s.Separator
}

// CodeStyle styles code blocks
type CodeStyle struct {
	// Style is the syntax highlighting style name
	Style             string    `toml:"style" yaml:"style"`
	Alignment         Alignment `toml:"alignment" yaml:"alignment"`
	PaddingHorizontal int       `toml:"padding_horizontal" yaml:"padding_horizontal"`
	PaddingVertical   int       `toml:"padding_vertical" yaml:"padding_vertical"`
}

// QuoteStyle styles block quotes
type QuoteStyle struct {
	Prefix string `toml:"prefix" yaml:"prefix"`
}

// ListStyle styles lists
type ListStyle struct {
	Markers []string `toml:"markers" yaml:"markers"`
}

// Marker returns the bullet for a depth
func (l ListStyle) Marker(depth int) string {
	if len(l.Markers) == 0 {
		return "•"
	}
	if depth >= len(l.Markers) {
		return l.Markers[len(l.Markers)-1]
	}
	return l.Markers[depth]
}

// FooterStyle styles the footer
type FooterStyle struct {
	Kind      FooterKind `toml:"kind" yaml:"kind"`
	Left      string     `toml:"left" yaml:"left"`
	Center    string     `toml:"center" yaml:"center"`
	Right     string     `toml:"right" yaml:"right"`
	Character string     `toml:"character" yaml:"character"`
}

// IntroStyle styles the generated intro slide
type IntroStyle struct {
	Title          Colors `toml:"title" yaml:"title"`
	Subtitle       Colors `toml:"subtitle" yaml:"subtitle"`
	Author         Colors `toml:"author" yaml:"author"`
	AuthorPosition string `toml:"author_position" yaml:"author_position"`
}

// DefaultMaxColumnFraction is the share of a table row one column may take
const DefaultMaxColumnFraction = 0.6

// TableStyle styles tables
type TableStyle struct {
	// MaxColumnFraction caps a column's share of the row width. Zero means
	// DefaultMaxColumnFraction.
	MaxColumnFraction float64 `toml:"max_column_fraction" yaml:"max_column_fraction"`
}

// ColumnFraction returns the effective per-column cap
func (t TableStyle) ColumnFraction() float64 {
	if t.MaxColumnFraction == 0 {
		return DefaultMaxColumnFraction
	}
	return t.MaxColumnFraction
}

// ImageStyle styles images
type ImageStyle struct {
	Alignment Alignment `toml:"alignment" yaml:"alignment"`
}

// Theme is a resolved presentation theme. Values are treated as immutable once
// resolved; merging produces a new Theme.
type Theme struct {
	Name       string          `toml:"name" yaml:"name"`
	Extends    string          `toml:"extends" yaml:"extends"`
	Palette    Palette         `toml:"palette" yaml:"palette"`
	Layout     LayoutStyle     `toml:"layout" yaml:"layout"`
	Headings   HeadingStyles   `toml:"headings" yaml:"headings"`
	SlideTitle SlideTitleStyle `toml:"slide_title" yaml:"slide_title"`
	Code       CodeStyle       `toml:"code" yaml:"code"`
	Quote      QuoteStyle      `toml:"quote" yaml:"quote"`
	List       ListStyle       `toml:"list" yaml:"list"`
	Table      TableStyle      `toml:"table" yaml:"table"`
	Footer     FooterStyle     `toml:"footer" yaml:"footer"`
	Intro      IntroStyle      `toml:"intro" yaml:"intro"`
	Image      ImageStyle      `toml:"image" yaml:"image"`
}

// Validate ensures the theme has valid values
func (t *Theme) Validate() error {
	if t.Name == "" {
		return errors.New("theme name is required")
	}
	if !isValidThemeName(t.Name) {
		return errors.New("theme name must contain only lowercase letters, numbers, and hyphens")
	}

	colors := []Colors{
		t.Palette.Default, t.Palette.Heading, t.Palette.Code, t.Palette.InlineCode,
		t.Palette.Link, t.Palette.Emphasis, t.Palette.Strong, t.Palette.Quote,
		t.Palette.Table, t.Palette.ListMarker, t.Palette.Rule, t.Palette.Footer, t.Palette.Error,
		t.SlideTitle.Colors, t.Intro.Title, t.Intro.Subtitle, t.Intro.Author,
		t.Headings.H1.Colors, t.Headings.H2.Colors, t.Headings.H3.Colors,
		t.Headings.H4.Colors, t.Headings.H5.Colors, t.Headings.H6.Colors,
	}
	for _, c := range colors {
		if err := c.Foreground.Validate(); err != nil {
			return err
		}
		if err := c.Background.Validate(); err != nil {
			return err
		}
	}

	alignments := []Alignment{
		t.Layout.Alignment, t.SlideTitle.Alignment, t.Code.Alignment, t.Image.Alignment,
		t.Headings.H1.Alignment, t.Headings.H2.Alignment, t.Headings.H3.Alignment,
		t.Headings.H4.Alignment, t.Headings.H5.Alignment, t.Headings.H6.Alignment,
	}
	for _, a := range alignments {
		if err := a.Validate(); err != nil {
			return err
		}
	}

	switch t.Layout.VerticalAlign {
	case "", VerticalTop, VerticalCenter:
	default:
		return fmt.Errorf("invalid vertical alignment %q", t.Layout.VerticalAlign)
	}

	switch t.Footer.Kind {
	case "", FooterTemplate, FooterProgressBar, FooterEmpty:
	default:
		return fmt.Errorf("invalid footer kind %q", t.Footer.Kind)
	}

	switch t.Intro.AuthorPosition {
	case "", "below_title", "page_bottom":
	default:
		return fmt.Errorf("invalid author position %q", t.Intro.AuthorPosition)
	}

	if t.Layout.Margin.Percent < 0 || t.Layout.Margin.Percent >= 50 {
		return errors.New("margin percent must be between 0 and 49")
	}
	if t.Layout.Margin.Fixed < 0 {
		return errors.New("margin must be non-negative")
	}
	if t.Table.MaxColumnFraction < 0 || t.Table.MaxColumnFraction > 1 {
		return errors.New("table max column fraction must be between 0 and 1")
	}

	return nil
}

// Resolve computes the final style of a span
func (t *Theme) Resolve(span StyledSpan) Style {
	colors := t.Palette.Default
	attrs := span.Attrs
	if !span.Style.IsZero() {
		// Explicit token colors keep the role background when they carry none
		if span.Role == RoleCode {
			colors = overlay(colors, t.Palette.Code)
		}
		colors = overlay(colors, Colors{Foreground: span.Style.Foreground, Background: span.Style.Background})
		return Style{Foreground: colors.Foreground, Background: colors.Background, Attrs: attrs | span.Style.Attrs}
	}

	switch span.Role {
	case RoleHeading:
		colors = overlay(colors, t.Palette.Heading)
		colors = overlay(colors, t.Headings.Level(span.Level).Colors)
		attrs |= AttrBold
	case RoleSlideTitle:
		colors = overlay(colors, t.Palette.Heading)
		colors = overlay(colors, t.SlideTitle.Colors)
		attrs |= AttrBold
	case RoleEmphasis:
		colors = overlay(colors, t.Palette.Emphasis)
	case RoleStrong:
		colors = overlay(colors, t.Palette.Strong)
	case RoleInlineCode:
		colors = overlay(colors, t.Palette.InlineCode)
	case RoleLink:
		colors = overlay(colors, t.Palette.Link)
		attrs |= AttrUnderline
	case RoleCode:
		colors = overlay(colors, t.Palette.Code)
	case RoleQuote:
		colors = overlay(colors, t.Palette.Quote)
	case RoleTable:
		colors = overlay(colors, t.Palette.Table)
	case RoleListMarker:
		colors = overlay(colors, t.Palette.ListMarker)
	case RoleRule:
		colors = overlay(colors, t.Palette.Rule)
	case RoleFooter:
		colors = overlay(colors, t.Palette.Footer)
	case RoleTitle:
		colors = overlay(colors, t.Intro.Title)
		attrs |= AttrBold
	case RoleSubtitle:
		colors = overlay(colors, t.Intro.Subtitle)
	case RoleAuthor:
		colors = overlay(colors, t.Intro.Author)
	case RolePlaceholder:
		attrs |= AttrDim | AttrItalic
	case RoleError:
		colors = overlay(colors, t.Palette.Error)
		attrs |= AttrBold
	}
	return Style{Foreground: colors.Foreground, Background: colors.Background, Attrs: attrs}
}

// Background returns the slide background color
func (t *Theme) Background() Color {
	return t.Palette.Default.Background
}

// Clone returns a deep copy of the theme
func (t *Theme) Clone() *Theme {
	out := *t
	out.List.Markers = append([]string(nil), t.List.Markers...)
	if t.SlideTitle.Separator != nil {
		separator := *t.SlideTitle.Separator
		out.SlideTitle.Separator = &separator
	}
	return &out
}

func overlay(base, top Colors) Colors {
	if top.Foreground != "" {
		base.Foreground = top.Foreground
	}
	if top.Background != "" {
		base.Background = top.Background
	}
	return base
}

// UnmarshalYAML accepts either a bare theme name or a mapping
func (t *ThemeMetadata) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t.Name = node.Value
		return nil
	}
	type plain ThemeMetadata
	var out plain
	if err := node.Decode(&out); err != nil {
		return err
	}
	*t = ThemeMetadata(out)
	return nil
}

// ThemeInfo describes an available theme
type ThemeInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Extends     string `json:"extends,omitempty"`
	BuiltIn     bool   `json:"built_in"`
	Path        string `json:"path,omitempty"`
}

// isValidThemeName checks if a theme name is valid
func isValidThemeName(name string) bool {
	if name == "" {
		return false
	}

	for _, char := range name {
		isLowercase := char >= 'a' && char <= 'z'
		isDigit := char >= '0' && char <= '9'
		isHyphen := char == '-'

		if !isLowercase && !isDigit && !isHyphen {
			return false
		}
	}

	// Cannot start or end with hyphen
	return !strings.HasPrefix(name, "-") && !strings.HasSuffix(name, "-")
}

package entities

import (
	"fmt"
	"io"
)

// ElementKind tags the Element variants
type ElementKind int

const (
	KindHeading ElementKind = iota
	KindParagraph
	KindList
	KindTable
	KindCode
	KindImage
	KindThematicBreak
	KindBlockQuote
	KindColumns
	KindSpacer
)

// String returns the kind name
func (k ElementKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindList:
		return "list"
	case KindTable:
		return "table"
	case KindCode:
		return "code"
	case KindImage:
		return "image"
	case KindThematicBreak:
		return "thematic_break"
	case KindBlockQuote:
		return "block_quote"
	case KindColumns:
		return "columns"
	case KindSpacer:
		return "spacer"
	default:
		return "unknown"
	}
}

// Element is one semantic content unit of a slide. The set of implementations
// is closed: only types in this package satisfy it.
type Element interface {
	Kind() ElementKind
	fingerprint(w io.Writer)
}

// Heading is an ATX heading or, when SlideTitle is set, a setext slide title
type Heading struct {
	Level      int
	Text       Text
	SlideTitle bool
}

func (Heading) Kind() ElementKind { return KindHeading }

func (h Heading) fingerprint(w io.Writer) {
	fmt.Fprintf(w, "h%d:%t:%s\n", h.Level, h.SlideTitle, textFingerprint(h.Text))
}

// Paragraph is a run of lines separated by hard line breaks
type Paragraph struct {
	Lines []Text
	// Align overrides the theme alignment when set (used by the intro slide)
	Align Alignment
}

func (Paragraph) Kind() ElementKind { return KindParagraph }

func (p Paragraph) fingerprint(w io.Writer) {
	fmt.Fprintf(w, "p:%s\n", p.Align)
	for _, line := range p.Lines {
		fmt.Fprintf(w, " %s\n", textFingerprint(line))
	}
}

// ListMarker describes how a list item is introduced
type ListMarker int

const (
	MarkerBullet ListMarker = iota
	MarkerPeriod
	MarkerParen
	// MarkerNone continues the previous item without a marker
	MarkerNone
)

// ListItem is one flattened list entry
type ListItem struct {
	Depth  int
	Marker ListMarker
	Number int
	// Task is nil for regular items
	Task *bool
	Text Text
}

// List is a flattened, possibly nested list
type List struct {
	Items []ListItem
}

func (List) Kind() ElementKind { return KindList }

func (l List) fingerprint(w io.Writer) {
	for _, item := range l.Items {
		task := "-"
		if item.Task != nil {
			task = fmt.Sprint(*item.Task)
		}
		fmt.Fprintf(w, "li:%d:%d:%d:%s:%s\n", item.Depth, item.Marker, item.Number, task, textFingerprint(item.Text))
	}
}

// Table is a header row plus body rows of cells
type Table struct {
	Header []Text
	Rows   [][]Text
}

func (Table) Kind() ElementKind { return KindTable }

// Columns returns the number of columns in the widest row
func (t Table) Columns() int {
	count := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > count {
			count = len(row)
		}
	}
	return count
}

func (t Table) fingerprint(w io.Writer) {
	fmt.Fprint(w, "table:")
	for _, cell := range t.Header {
		fmt.Fprintf(w, "|%s", textFingerprint(cell))
	}
	fmt.Fprintln(w)
	for _, row := range t.Rows {
		for _, cell := range row {
			fmt.Fprintf(w, "|%s", textFingerprint(cell))
		}
		fmt.Fprintln(w)
	}
}

// CodeBlock holds raw code; highlighting happens at layout time
type CodeBlock struct {
	Language string
	Code     string
}

func (CodeBlock) Kind() ElementKind { return KindCode }

func (c CodeBlock) fingerprint(w io.Writer) {
	fmt.Fprintf(w, "code:%s:%q\n", c.Language, c.Code)
}

// Image references an image handle; decoding is deferred until first display
type Image struct {
	Handle *ImageHandle
	Alt    string
	Align  Alignment
}

func (Image) Kind() ElementKind { return KindImage }

func (i Image) fingerprint(w io.Writer) {
	source := ""
	if i.Handle != nil {
		source = i.Handle.Source
	}
	fmt.Fprintf(w, "img:%s:%s:%s\n", source, i.Alt, i.Align)
}

// ThematicBreak is a horizontal rule
type ThematicBreak struct{}

func (ThematicBreak) Kind() ElementKind { return KindThematicBreak }

func (ThematicBreak) fingerprint(w io.Writer) { fmt.Fprintln(w, "hr") }

// BlockQuote is a quoted block of lines
type BlockQuote struct {
	Lines []Text
}

func (BlockQuote) Kind() ElementKind { return KindBlockQuote }

func (q BlockQuote) fingerprint(w io.Writer) {
	for _, line := range q.Lines {
		fmt.Fprintf(w, "quote:%s\n", textFingerprint(line))
	}
}

// Columns is a column layout; Widths are relative weights
type Columns struct {
	Widths  []int
	Columns [][]Element
}

func (Columns) Kind() ElementKind { return KindColumns }

func (c Columns) fingerprint(w io.Writer) {
	fmt.Fprintf(w, "columns:%v\n", c.Widths)
	for i, column := range c.Columns {
		fmt.Fprintf(w, "column:%d\n", i)
		for _, element := range column {
			element.fingerprint(w)
		}
	}
}

// Clone copies the column slices so appends do not alias the original
func (c Columns) Clone() Columns {
	out := Columns{
		Widths:  append([]int(nil), c.Widths...),
		Columns: make([][]Element, len(c.Columns)),
	}
	for i, column := range c.Columns {
		out.Columns[i] = append([]Element(nil), column...)
	}
	return out
}

// Spacer reserves empty rows. Center pushes the following content to the
// vertical middle of the slide.
type Spacer struct {
	Rows   int
	Center bool
	Bottom bool
}

func (Spacer) Kind() ElementKind { return KindSpacer }

func (s Spacer) fingerprint(w io.Writer) {
	fmt.Fprintf(w, "spacer:%d:%t:%t\n", s.Rows, s.Center, s.Bottom)
}

func textFingerprint(t Text) string {
	out := ""
	for _, span := range t {
		out += fmt.Sprintf("[%d/%d/%d]%s", span.Role, span.Level, span.Attrs, span.Text)
	}
	return out
}

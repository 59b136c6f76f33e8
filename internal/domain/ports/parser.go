package ports

import (
	"context"
)

// DocumentParser turns markup text into a generic block/inline token stream
type DocumentParser interface {
	Parse(ctx context.Context, content []byte) (*Document, error)
}

// Document is the parser output: front matter plus top-level blocks
type Document struct {
	// FrontMatter is the raw metadata block, empty when absent
	FrontMatter string
	// FrontMatterLine is the line the front matter starts on
	FrontMatterLine int
	Blocks          []Block
}

// BlockKind tags a block node
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockList
	BlockListItem
	BlockTable
	BlockCode
	BlockImage
	BlockThematicBreak
	BlockSeparator
	BlockComment
	BlockHTML
	BlockQuote
)

// String returns the block kind name
func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockHeading:
		return "heading"
	case BlockList:
		return "list"
	case BlockListItem:
		return "list item"
	case BlockTable:
		return "table"
	case BlockCode:
		return "code block"
	case BlockImage:
		return "image"
	case BlockThematicBreak:
		return "thematic break"
	case BlockSeparator:
		return "slide separator"
	case BlockComment:
		return "comment"
	case BlockHTML:
		return "html"
	case BlockQuote:
		return "block quote"
	default:
		return "unknown"
	}
}

// Block is one block-level node
type Block struct {
	Kind BlockKind
	// Line is the 1-based source line
	Line int

	// Level is the heading level; Setext marks underlined headings
	Level  int
	Setext bool

	// Ordered lists start at Start and use Delimiter ('.' or ')')
	Ordered   bool
	Start     int
	Delimiter byte
	// Task is set on task list items
	Task *bool

	// Language is the code block info string
	Language string
	// Text is the raw content of code blocks, comments, html blocks and the
	// destination of images
	Text string

	Inlines  []Inline
	Children []Block

	// Table content
	Header [][]Inline
	Rows   [][][]Inline
}

// InlineKind tags an inline node
type InlineKind int

const (
	InlineText InlineKind = iota
	InlineEmphasis
	InlineStrong
	InlineCode
	InlineStrikethrough
	InlineLink
	InlineImage
	InlineSoftBreak
	InlineHardBreak
	InlineHTML
)

// Inline is one inline node
type Inline struct {
	Kind InlineKind
	Text string
	// Destination of links and images
	Destination string
	Children    []Inline
}

package builders

import (
	"strings"

	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// DocumentBuilder helps build parsed documents for compiler tests
type DocumentBuilder struct {
	doc  ports.Document
	line int
}

// NewDocumentBuilder creates an empty document builder
func NewDocumentBuilder() *DocumentBuilder {
	return &DocumentBuilder{line: 1}
}

// WithFrontMatter sets the raw front matter
func (b *DocumentBuilder) WithFrontMatter(lines ...string) *DocumentBuilder {
	b.doc.FrontMatter = strings.Join(lines, "\n") + "\n"
	b.doc.FrontMatterLine = 2
	b.line += len(lines) + 3
	return b
}

// WithBlock appends a block, assigning it the next line number when unset
func (b *DocumentBuilder) WithBlock(block ports.Block) *DocumentBuilder {
	if block.Line == 0 {
		block.Line = b.line
	}
	b.line = block.Line + 2
	b.doc.Blocks = append(b.doc.Blocks, block)
	return b
}

// Heading appends an ATX heading
func (b *DocumentBuilder) Heading(level int, text string) *DocumentBuilder {
	return b.WithBlock(HeadingBlock(level, text))
}

// SlideTitle appends a setext heading
func (b *DocumentBuilder) SlideTitle(text string) *DocumentBuilder {
	block := HeadingBlock(1, text)
	block.Setext = true
	return b.WithBlock(block)
}

// Paragraph appends a paragraph of plain text
func (b *DocumentBuilder) Paragraph(text string) *DocumentBuilder {
	return b.WithBlock(ports.Block{Kind: ports.BlockParagraph, Inlines: TextInlines(text)})
}

// Separator appends a slide separator
func (b *DocumentBuilder) Separator() *DocumentBuilder {
	return b.WithBlock(ports.Block{Kind: ports.BlockSeparator})
}

// Comment appends a comment, typically a directive
func (b *DocumentBuilder) Comment(text string) *DocumentBuilder {
	return b.WithBlock(ports.Block{Kind: ports.BlockComment, Text: text})
}

// Code appends a fenced code block
func (b *DocumentBuilder) Code(language, code string) *DocumentBuilder {
	return b.WithBlock(ports.Block{Kind: ports.BlockCode, Language: language, Text: code + "\n"})
}

// Image appends a standalone image
func (b *DocumentBuilder) Image(alt, destination string) *DocumentBuilder {
	return b.WithBlock(ports.Block{Kind: ports.BlockImage, Text: destination, Inlines: TextInlines(alt)})
}

// List appends a bullet list of plain items
func (b *DocumentBuilder) List(items ...string) *DocumentBuilder {
	return b.WithBlock(ListBlock(false, items...))
}

// Build returns the document
func (b *DocumentBuilder) Build() *ports.Document {
	doc := b.doc
	doc.Blocks = append([]ports.Block(nil), b.doc.Blocks...)
	return &doc
}

// TextInlines returns a single text inline
func TextInlines(text string) []ports.Inline {
	return []ports.Inline{{Kind: ports.InlineText, Text: text}}
}

// HeadingBlock builds a heading block
func HeadingBlock(level int, text string) ports.Block {
	return ports.Block{Kind: ports.BlockHeading, Level: level, Inlines: TextInlines(text)}
}

// ListBlock builds a list block with one item per entry
func ListBlock(ordered bool, items ...string) ports.Block {
	list := ports.Block{Kind: ports.BlockList, Ordered: ordered}
	if ordered {
		list.Start = 1
		list.Delimiter = '.'
	}
	for _, item := range items {
		list.Children = append(list.Children, ports.Block{Kind: ports.BlockListItem, Inlines: TextInlines(item)})
	}
	return list
}

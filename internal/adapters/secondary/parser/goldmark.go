package parser

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// Options configures the markdown parser
type Options struct {
	// DashSeparator turns "---" thematic breaks into slide separators
	DashSeparator bool
}

// GoldmarkParser implements the DocumentParser interface using Goldmark
type GoldmarkParser struct {
	md      goldmark.Markdown
	options Options
	policy  *bluemonday.Policy
}

// NewGoldmarkParser creates a new Goldmark-based markdown parser
func NewGoldmarkParser(options Options) *GoldmarkParser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,           // GitHub Flavored Markdown
			extension.Table,         // Tables
			extension.Strikethrough, // ~~strikethrough~~
			extension.TaskList,      // - [ ] task lists
		),
	)

	return &GoldmarkParser{
		md:      md,
		options: options,
		policy:  bluemonday.StrictPolicy(),
	}
}

// Parse parses markdown content into a block tree
func (p *GoldmarkParser) Parse(ctx context.Context, content []byte) (*ports.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	frontmatter, line, body := extractFrontmatter(source)

	root := p.md.Parser().Parse(text.NewReader(body))

	w := &walker{
		parser: p,
		source: body,
		starts: lineStarts(body),
	}
	doc := &ports.Document{
		FrontMatter:     frontmatter,
		FrontMatterLine: line,
		Blocks:          w.blocks(root),
	}
	return doc, nil
}

// extractFrontmatter splits a leading "---" delimited block from the body.
// The front matter lines are blanked in the returned body so that line
// numbers keep matching the source.
func extractFrontmatter(content []byte) (string, int, []byte) {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return "", 0, content
	}

	lines := strings.SplitAfter(string(content), "\n")
	for i := 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed != "---" && trimmed != "..." {
			continue
		}
		frontmatter := strings.Join(lines[1:i], "")
		body := strings.Repeat("\n", i+1) + strings.Join(lines[i+1:], "")
		return frontmatter, 2, []byte(body)
	}

	// Unterminated front matter is regular content
	return "", 0, content
}

func lineStarts(source []byte) []int {
	starts := []int{0}
	for i, c := range source {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// walker converts a goldmark AST into port blocks
type walker struct {
	parser *GoldmarkParser
	source []byte
	starts []int
}

// lineOf returns the 1-based line containing offset
func (w *walker) lineOf(offset int) int {
	return sort.Search(len(w.starts), func(i int) bool { return w.starts[i] > offset })
}

// lineText returns the source line with the given 1-based number
func (w *walker) lineText(line int) string {
	if line < 1 || line > len(w.starts) {
		return ""
	}
	start := w.starts[line-1]
	end := len(w.source)
	if line < len(w.starts) {
		end = w.starts[line] - 1
	}
	return string(w.source[start:end])
}

// firstOffset returns the first source offset covered by n, or -1
func firstOffset(n ast.Node) int {
	if t, ok := n.(*ast.Text); ok {
		return t.Segment.Start
	}
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(0).Start
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if offset := firstOffset(c); offset >= 0 {
			return offset
		}
	}
	return -1
}

// lastOffset returns the last source offset covered by n, or -1
func lastOffset(n ast.Node) int {
	last := -1
	if t, ok := n.(*ast.Text); ok {
		return t.Segment.Stop
	}
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		last = n.Lines().At(n.Lines().Len() - 1).Stop
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if offset := lastOffset(c); offset > last {
			last = offset
		}
	}
	return last
}

// gapStart returns the first line after the previous sibling of n, or the
// line of its parent when n comes first
func (w *walker) gapStart(n ast.Node) int {
	prev := n.PreviousSibling()
	for prev != nil {
		if offset := lastOffset(prev); offset >= 0 {
			line := w.lineOf(max(offset-1, 0)) + 1
			if h, ok := prev.(*ast.Heading); ok && w.setext(h) {
				line++
			}
			return line
		}
		prev = prev.PreviousSibling()
	}
	if parent := n.Parent(); parent != nil && parent.Kind() != ast.KindDocument {
		return w.line(parent)
	}
	return 1
}

// line returns the 1-based line a block starts on
func (w *walker) line(n ast.Node) int {
	switch node := n.(type) {
	case *ast.FencedCodeBlock:
		if node.Lines().Len() > 0 {
			return w.lineOf(node.Lines().At(0).Start) - 1
		}
	case *ast.ThematicBreak:
		line, _ := w.thematicBreak(node)
		return line
	default:
		if offset := firstOffset(n); offset >= 0 {
			return w.lineOf(offset)
		}
	}
	line := w.gapStart(n)
	for line < len(w.starts) && strings.TrimSpace(w.lineText(line)) == "" {
		line++
	}
	return line
}

// thematicBreak locates a thematic break and returns its line and marker
// character
func (w *walker) thematicBreak(n ast.Node) (int, byte) {
	for line := w.gapStart(n); line <= len(w.starts); line++ {
		if marker := breakMarker(w.lineText(line)); marker != 0 {
			return line, marker
		}
	}
	return w.gapStart(n), '*'
}

// breakMarker reports the character of a thematic break line, or 0
func breakMarker(line string) byte {
	line = strings.TrimLeft(line, " \t>")
	var marker byte
	count := 0
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			continue
		case c != '-' && c != '*' && c != '_':
			return 0
		case marker == 0:
			marker = c
		case c != marker:
			return 0
		}
		count++
	}
	if count < 3 {
		return 0
	}
	return marker
}

// setext reports whether a heading is underlined rather than prefixed
func (w *walker) setext(h *ast.Heading) bool {
	offset := firstOffset(h)
	if offset < 0 {
		return false
	}
	return !strings.HasPrefix(strings.TrimLeft(w.lineText(w.lineOf(offset)), " "), "#")
}

func (w *walker) blocks(parent ast.Node) []ports.Block {
	var blocks []ports.Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if block, ok := w.block(n); ok {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func (w *walker) block(n ast.Node) (ports.Block, bool) {
	block := ports.Block{Line: w.line(n)}

	switch node := n.(type) {
	case *ast.Heading:
		block.Kind = ports.BlockHeading
		block.Level = node.Level
		block.Setext = w.setext(node)
		block.Inlines = w.inlines(node)

	case *ast.Paragraph, *ast.TextBlock:
		if image, ok := soleImage(node); ok && n.Parent().Kind() == ast.KindDocument {
			block.Kind = ports.BlockImage
			block.Text = string(image.Destination)
			block.Inlines = w.inlines(image)
			return block, true
		}
		block.Kind = ports.BlockParagraph
		block.Inlines = w.inlines(node)

	case *ast.List:
		block.Kind = ports.BlockList
		block.Ordered = node.IsOrdered()
		if block.Ordered {
			block.Start = node.Start
			block.Delimiter = node.Marker
		}
		block.Children = w.blocks(node)

	case *ast.ListItem:
		block.Kind = ports.BlockListItem
		first := node.FirstChild()
		if first != nil && (first.Kind() == ast.KindParagraph || first.Kind() == ast.KindTextBlock) {
			block.Task = taskState(first)
			block.Inlines = w.inlines(first)
			first = first.NextSibling()
		}
		for c := first; c != nil; c = c.NextSibling() {
			if child, ok := w.block(c); ok {
				block.Children = append(block.Children, child)
			}
		}

	case *east.Table:
		block.Kind = ports.BlockTable
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			var cells [][]ports.Inline
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, w.inlines(cell))
			}
			if _, ok := row.(*east.TableHeader); ok {
				block.Header = cells
				continue
			}
			block.Rows = append(block.Rows, cells)
		}

	case *ast.FencedCodeBlock:
		block.Kind = ports.BlockCode
		block.Language = string(node.Language(w.source))
		block.Text = w.rawLines(node)

	case *ast.CodeBlock:
		block.Kind = ports.BlockCode
		block.Text = w.rawLines(node)

	case *ast.ThematicBreak:
		line, marker := w.thematicBreak(node)
		block.Line = line
		block.Kind = ports.BlockThematicBreak
		if marker == '-' && w.parser.options.DashSeparator {
			block.Kind = ports.BlockSeparator
		}

	case *ast.Blockquote:
		block.Kind = ports.BlockQuote
		block.Children = w.blocks(node)

	case *ast.HTMLBlock:
		raw := w.rawLines(node)
		if node.HasClosure() {
			raw += string(node.ClosureLine.Value(w.source))
		}
		if comment, ok := htmlComment(raw); ok {
			block.Kind = ports.BlockComment
			block.Text = comment
			return block, true
		}
		block.Kind = ports.BlockHTML
		block.Text = w.parser.sanitize(raw)

	default:
		return block, false
	}

	return block, true
}

// soleImage returns the image of a paragraph that holds nothing else
func soleImage(n ast.Node) (*ast.Image, bool) {
	var image *ast.Image
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Image:
			if image != nil {
				return nil, false
			}
			image = node
		case *ast.Text:
			if node.Segment.Len() > 0 {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return image, image != nil
}

func taskState(n ast.Node) *bool {
	if box, ok := n.FirstChild().(*east.TaskCheckBox); ok {
		checked := box.IsChecked
		return &checked
	}
	return nil
}

// htmlComment returns the body of a raw HTML comment block
func htmlComment(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "<!--") || !strings.HasSuffix(trimmed, "-->") {
		return "", false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(trimmed, "<!--"), "-->")
	if strings.Contains(body, "-->") {
		return "", false
	}
	if strings.Contains(body, "\n") {
		return body, true
	}
	return strings.TrimSpace(body), true
}

func (w *walker) rawLines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		sb.Write(segment.Value(w.source))
	}
	return sb.String()
}

// sanitize strips markup from raw HTML, keeping its text
func (p *GoldmarkParser) sanitize(raw string) string {
	return strings.TrimSpace(p.policy.Sanitize(raw))
}

func (w *walker) inlines(parent ast.Node) []ports.Inline {
	var out []ports.Inline
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, w.inline(n)...)
	}
	return out
}

func (w *walker) inline(n ast.Node) []ports.Inline {
	switch node := n.(type) {
	case *ast.Text:
		out := []ports.Inline{{Kind: ports.InlineText, Text: string(node.Segment.Value(w.source))}}
		if out[0].Text == "" {
			out = nil
		}
		switch {
		case node.HardLineBreak():
			out = append(out, ports.Inline{Kind: ports.InlineHardBreak})
		case node.SoftLineBreak():
			out = append(out, ports.Inline{Kind: ports.InlineSoftBreak})
		}
		return out

	case *ast.String:
		return []ports.Inline{{Kind: ports.InlineText, Text: string(node.Value)}}

	case *ast.CodeSpan:
		var sb strings.Builder
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				sb.Write(t.Segment.Value(w.source))
			case *ast.String:
				sb.Write(t.Value)
			}
		}
		return []ports.Inline{{Kind: ports.InlineCode, Text: sb.String()}}

	case *ast.Emphasis:
		kind := ports.InlineEmphasis
		if node.Level >= 2 {
			kind = ports.InlineStrong
		}
		return []ports.Inline{{Kind: kind, Children: w.inlines(node)}}

	case *east.Strikethrough:
		return []ports.Inline{{Kind: ports.InlineStrikethrough, Children: w.inlines(node)}}

	case *ast.Link:
		return []ports.Inline{{
			Kind:        ports.InlineLink,
			Destination: string(node.Destination),
			Children:    w.inlines(node),
		}}

	case *ast.AutoLink:
		return []ports.Inline{{
			Kind:        ports.InlineLink,
			Destination: string(node.URL(w.source)),
			Children:    []ports.Inline{{Kind: ports.InlineText, Text: string(node.Label(w.source))}},
		}}

	case *ast.Image:
		return []ports.Inline{{
			Kind:        ports.InlineImage,
			Destination: string(node.Destination),
			Children:    w.inlines(node),
		}}

	case *ast.RawHTML:
		var sb strings.Builder
		for i := 0; i < node.Segments.Len(); i++ {
			segment := node.Segments.At(i)
			sb.Write(segment.Value(w.source))
		}
		sanitized := w.parser.policy.Sanitize(sb.String())
		if sanitized == "" {
			return nil
		}
		return []ports.Inline{{Kind: ports.InlineHTML, Text: sanitized}}

	case *east.TaskCheckBox:
		return nil

	default:
		return w.inlines(n)
	}
}

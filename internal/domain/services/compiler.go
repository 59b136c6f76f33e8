package services

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// CompilerOptions controls slide splitting and metadata strictness
type CompilerOptions struct {
	// Strict rejects unknown front matter keys and unknown directives
	Strict bool

	// SplitHeadingLevel starts a new slide before headings up to this level (0 disables)
	SplitHeadingLevel int
}

// Compiler transforms a parsed document into immutable slides
type Compiler struct {
	images  ports.ImageStore
	options CompilerOptions
	logger  *slog.Logger
}

// NewCompiler creates a new compiler
func NewCompiler(images ports.ImageStore, options CompilerOptions, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Compiler{
		images:  images,
		options: options,
		logger:  logger,
	}
}

// rawMetadata mirrors the front matter keys before validation
type rawMetadata struct {
	Title      string                 `yaml:"title"`
	SubTitle   string                 `yaml:"sub_title"`
	Author     string                 `yaml:"author"`
	Date       string                 `yaml:"date"`
	Theme      entities.ThemeMetadata `yaml:"theme"`
	Footer     yaml.Node              `yaml:"footer"`
	ImageAlign entities.Alignment     `yaml:"image_align"`
}

// ParseMetadata decodes and validates the document front matter
func (c *Compiler) ParseMetadata(doc *ports.Document) (entities.Metadata, error) {
	var metadata entities.Metadata
	if strings.TrimSpace(doc.FrontMatter) == "" {
		return metadata, nil
	}

	decoder := yaml.NewDecoder(strings.NewReader(doc.FrontMatter))
	decoder.KnownFields(c.options.Strict)

	var raw rawMetadata
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return metadata, &entities.CompileError{
			Kind:    entities.InvalidMetadata,
			Line:    doc.FrontMatterLine,
			Message: "cannot decode front matter",
			Err:     err,
		}
	}

	metadata = entities.Metadata{
		Title:      raw.Title,
		SubTitle:   raw.SubTitle,
		Author:     raw.Author,
		Date:       raw.Date,
		Theme:      raw.Theme,
		ImageAlign: raw.ImageAlign,
	}

	if raw.Theme.Name != "" && raw.Theme.Path != "" {
		return metadata, &entities.CompileError{
			Kind:    entities.InvalidMetadata,
			Line:    doc.FrontMatterLine,
			Message: "cannot have both theme path and theme name",
		}
	}

	if err := raw.ImageAlign.Validate(); err != nil {
		return metadata, &entities.CompileError{
			Kind:    entities.InvalidMetadata,
			Line:    doc.FrontMatterLine,
			Message: "image_align",
			Err:     err,
		}
	}

	if raw.Footer.Kind != 0 {
		if raw.Footer.Kind != yaml.ScalarNode {
			return metadata, &entities.CompileError{
				Kind:    entities.InvalidMetadata,
				Line:    raw.Footer.Line + doc.FrontMatterLine - 1,
				Message: "footer must be a template string or false",
			}
		}
		if raw.Footer.Tag == "!!bool" {
			enabled, err := strconv.ParseBool(raw.Footer.Value)
			if err != nil {
				return metadata, &entities.CompileError{
					Kind:    entities.InvalidMetadata,
					Message: "footer",
					Err:     err,
				}
			}
			metadata.FooterDisabled = !enabled
		} else {
			metadata.Footer = raw.Footer.Value
		}
	}

	return metadata, nil
}

// Compile converts the document into slides. It never returns a partial result.
func (c *Compiler) Compile(doc *ports.Document, theme *entities.Theme) ([]*entities.Slide, error) {
	if doc == nil {
		return nil, errors.New("document cannot be nil")
	}
	if theme == nil {
		return nil, errors.New("theme cannot be nil")
	}

	metadata, err := c.ParseMetadata(doc)
	if err != nil {
		return nil, err
	}

	b := newSlideBuilder(c, metadata)

	if metadata.HasIntro() {
		b.pushIntro(metadata, theme)
	}

	for _, block := range doc.Blocks {
		if err := b.process(block); err != nil {
			return nil, err
		}
	}

	if len(doc.Blocks) > 0 || len(b.slides) == 0 {
		if err := b.terminate(); err != nil {
			return nil, err
		}
	}

	if len(doc.Blocks) == 0 && !metadata.HasIntro() {
		return nil, &entities.CompileError{
			Kind:    entities.MalformedStructure,
			Message: "document has no content",
			Err:     entities.ErrEmptyPresentation,
		}
	}

	slides := make([]*entities.Slide, 0, len(b.slides))
	for i, pending := range b.slides {
		footer := resolveFooter(theme, metadata, i, len(b.slides))
		slides = append(slides, entities.NewSlide(i, pending.elements, pending.options, footer))
	}

	c.logger.Debug("compiled document",
		slog.Int("slides", len(slides)),
		slog.Int("blocks", len(doc.Blocks)),
		slog.Bool("intro", metadata.HasIntro()))

	return slides, nil
}

// pendingSlide is a slide under construction
type pendingSlide struct {
	elements []entities.Element
	options  entities.SlideOptions
}

// slideBuilder carries the per-compilation state
type slideBuilder struct {
	compiler *Compiler
	metadata entities.Metadata

	slides   []pendingSlide
	elements []entities.Element
	options  entities.SlideOptions

	// columns is the active column layout, nil outside layouts
	columns *entities.Columns
	// column is the entered column, -1 before the first column directive
	column int
}

func newSlideBuilder(c *Compiler, metadata entities.Metadata) *slideBuilder {
	b := &slideBuilder{
		compiler: c,
		metadata: metadata,
		column:   -1,
	}
	b.resetOptions()
	return b
}

func (b *slideBuilder) resetOptions() {
	b.options = entities.SlideOptions{ImageAlign: b.metadata.ImageAlign}
}

func (b *slideBuilder) hasContent() bool {
	return len(b.elements) > 0 || b.columns != nil
}

// currentSlide is the 0-based index of the slide being built
func (b *slideBuilder) currentSlide() int {
	return len(b.slides)
}

func (b *slideBuilder) malformed(line int, format string, args ...interface{}) error {
	return &entities.CompileError{
		Kind:    entities.MalformedStructure,
		Slide:   b.currentSlide(),
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	}
}

func (b *slideBuilder) invalidMetadata(line int, message string, err error) error {
	return &entities.CompileError{
		Kind:    entities.InvalidMetadata,
		Slide:   b.currentSlide(),
		Line:    line,
		Message: message,
		Err:     err,
	}
}

// push appends an element to the current slide or the entered column
func (b *slideBuilder) push(line int, element entities.Element) error {
	if b.columns != nil {
		if b.column < 0 {
			return b.malformed(line, "need to enter layout column explicitly using `column` command")
		}
		b.columns.Columns[b.column] = append(b.columns.Columns[b.column], element)
		return nil
	}
	b.elements = append(b.elements, element)
	return nil
}

// closeLayout flushes the active column layout into the slide
func (b *slideBuilder) closeLayout() {
	if b.columns == nil {
		return
	}
	b.elements = append(b.elements, *b.columns)
	b.columns = nil
	b.column = -1
}

// snapshot returns the current content without aliasing builder state
func (b *slideBuilder) snapshot() []entities.Element {
	elements := append([]entities.Element(nil), b.elements...)
	if b.columns != nil {
		elements = append(elements, b.columns.Clone())
	}
	return elements
}

// terminate ends the current slide and resets all state
func (b *slideBuilder) terminate() error {
	b.closeLayout()
	b.slides = append(b.slides, pendingSlide{elements: b.elements, options: b.options})
	b.elements = nil
	b.resetOptions()
	return nil
}

// pause ends the current slide but starts the next one with the same content
func (b *slideBuilder) pause() {
	b.slides = append(b.slides, pendingSlide{elements: b.snapshot(), options: b.options})
	b.elements = append([]entities.Element(nil), b.elements...)
	if b.columns != nil {
		cloned := b.columns.Clone()
		b.columns = &cloned
	}
}

func (b *slideBuilder) pushIntro(metadata entities.Metadata, theme *entities.Theme) {
	var elements []entities.Element
	if metadata.Title != "" {
		elements = append(elements, entities.Paragraph{
			Lines: []entities.Text{entities.Plain(metadata.Title, entities.RoleTitle).WithAttrs(entities.AttrBold)},
			Align: entities.AlignCenter,
		})
	}
	if metadata.SubTitle != "" {
		elements = append(elements, entities.Paragraph{
			Lines: []entities.Text{entities.Plain(metadata.SubTitle, entities.RoleSubtitle)},
			Align: entities.AlignCenter,
		})
	}
	if metadata.Author != "" {
		if theme.Intro.AuthorPosition == "page_bottom" {
			elements = append(elements, entities.Spacer{Bottom: true})
		} else {
			elements = append(elements, entities.Spacer{Rows: 2})
		}
		elements = append(elements, entities.Paragraph{
			Lines: []entities.Text{entities.Plain(metadata.Author, entities.RoleAuthor)},
			Align: entities.AlignCenter,
		})
	}
	b.slides = append(b.slides, pendingSlide{
		elements: elements,
		options:  entities.SlideOptions{VerticalCenter: true, HideFooter: true},
	})
}

// process maps one top-level block to slide content
func (b *slideBuilder) process(block ports.Block) error {
	switch block.Kind {
	case ports.BlockSeparator:
		return b.terminate()

	case ports.BlockComment:
		return b.processComment(block)

	case ports.BlockHeading:
		level := b.compiler.options.SplitHeadingLevel
		if level > 0 && block.Level <= level && b.hasContent() {
			if err := b.terminate(); err != nil {
				return err
			}
		}
		return b.push(block.Line, b.heading(block))

	case ports.BlockParagraph:
		lines := convertInlines(block.Inlines, entities.RoleText)
		return b.push(block.Line, entities.Paragraph{Lines: lines})

	case ports.BlockHTML:
		if strings.TrimSpace(block.Text) == "" {
			return nil
		}
		var lines []entities.Text
		for _, line := range strings.Split(strings.TrimRight(block.Text, "\n"), "\n") {
			lines = append(lines, entities.Plain(line, entities.RoleText))
		}
		return b.push(block.Line, entities.Paragraph{Lines: lines})

	case ports.BlockList:
		list := entities.List{}
		if err := b.flattenList(block, 0, &list); err != nil {
			return err
		}
		return b.push(block.Line, list)

	case ports.BlockTable:
		return b.push(block.Line, convertTable(block))

	case ports.BlockCode:
		return b.push(block.Line, entities.CodeBlock{
			Language: block.Language,
			Code:     strings.TrimRight(block.Text, "\n"),
		})

	case ports.BlockImage:
		handle, err := b.compiler.images.Resolve(block.Text)
		if err != nil {
			return &entities.CompileError{
				Kind:    entities.UnresolvedReference,
				Slide:   b.currentSlide(),
				Line:    block.Line,
				Message: fmt.Sprintf("image %q", block.Text),
				Err:     err,
			}
		}
		return b.push(block.Line, entities.Image{Handle: handle, Alt: inlineText(block.Inlines)})

	case ports.BlockThematicBreak:
		return b.push(block.Line, entities.ThematicBreak{})

	case ports.BlockQuote:
		var lines []entities.Text
		if err := b.flattenQuote(block, &lines); err != nil {
			return err
		}
		return b.push(block.Line, entities.BlockQuote{Lines: lines})

	case ports.BlockListItem:
		return b.malformed(block.Line, "list item outside of a list")

	default:
		return b.malformed(block.Line, "unexpected %s", block.Kind)
	}
}

func (b *slideBuilder) heading(block ports.Block) entities.Heading {
	role := entities.RoleHeading
	if block.Setext {
		role = entities.RoleSlideTitle
	}
	lines := convertInlines(block.Inlines, role)
	text := joinLines(lines)
	for i := range text {
		text[i].Level = block.Level
	}
	return entities.Heading{Level: block.Level, Text: text, SlideTitle: block.Setext}
}

// flattenList appends the items of a (possibly nested) list
func (b *slideBuilder) flattenList(block ports.Block, depth int, list *entities.List) error {
	marker := entities.MarkerBullet
	if block.Ordered {
		marker = entities.MarkerPeriod
		if block.Delimiter == ')' {
			marker = entities.MarkerParen
		}
	}
	number := block.Start
	if block.Ordered && number == 0 && len(block.Children) > 0 {
		number = 1
	}

	for _, item := range block.Children {
		if item.Kind != ports.BlockListItem {
			if item.Kind == ports.BlockSeparator {
				return b.malformed(item.Line, "slide separator inside a list")
			}
			return b.malformed(item.Line, "unexpected %s inside a list", item.Kind)
		}

		list.Items = append(list.Items, entities.ListItem{
			Depth:  depth,
			Marker: marker,
			Number: number,
			Task:   item.Task,
			Text:   joinLines(convertInlines(item.Inlines, entities.RoleText)),
		})
		number++

		for _, child := range item.Children {
			switch child.Kind {
			case ports.BlockList:
				if err := b.flattenList(child, depth+1, list); err != nil {
					return err
				}
			case ports.BlockSeparator:
				return b.malformed(child.Line, "slide separator inside a list")
			case ports.BlockParagraph, ports.BlockHeading, ports.BlockHTML:
				text := joinLines(convertInlines(child.Inlines, entities.RoleText))
				if child.Kind == ports.BlockHTML {
					text = entities.Plain(strings.TrimSpace(child.Text), entities.RoleText)
				}
				list.Items = append(list.Items, entities.ListItem{Depth: depth, Marker: entities.MarkerNone, Text: text})
			case ports.BlockCode:
				for _, line := range strings.Split(strings.TrimRight(child.Text, "\n"), "\n") {
					list.Items = append(list.Items, entities.ListItem{
						Depth:  depth,
						Marker: entities.MarkerNone,
						Text:   entities.Plain(line, entities.RoleInlineCode),
					})
				}
			case ports.BlockComment, ports.BlockThematicBreak:
				// nothing to draw inside a list
			default:
				return b.malformed(child.Line, "unexpected %s inside a list", child.Kind)
			}
		}
	}
	return nil
}

// flattenQuote collects quote lines, including nested quotes
func (b *slideBuilder) flattenQuote(block ports.Block, lines *[]entities.Text) error {
	for _, child := range block.Children {
		switch child.Kind {
		case ports.BlockSeparator:
			return b.malformed(child.Line, "slide separator inside a block quote")
		case ports.BlockQuote:
			if err := b.flattenQuote(child, lines); err != nil {
				return err
			}
		case ports.BlockCode, ports.BlockHTML:
			for _, line := range strings.Split(strings.TrimRight(child.Text, "\n"), "\n") {
				*lines = append(*lines, entities.Plain(line, entities.RoleQuote))
			}
		case ports.BlockList:
			var list entities.List
			if err := b.flattenList(child, 0, &list); err != nil {
				return err
			}
			for _, item := range list.Items {
				prefix := strings.Repeat("  ", item.Depth) + "• "
				line := append(entities.Text{{Text: prefix, Role: entities.RoleQuote}}, item.Text.WithRole(entities.RoleQuote, 0)...)
				*lines = append(*lines, line)
			}
		default:
			for _, line := range convertInlines(child.Inlines, entities.RoleQuote) {
				*lines = append(*lines, line)
			}
		}
	}
	return nil
}

// convertTable converts a table block
func convertTable(block ports.Block) entities.Table {
	table := entities.Table{}
	for _, cell := range block.Header {
		table.Header = append(table.Header, joinLines(convertInlines(cell, entities.RoleTable)))
	}
	for _, row := range block.Rows {
		cells := make([]entities.Text, 0, len(row))
		for _, cell := range row {
			cells = append(cells, joinLines(convertInlines(cell, entities.RoleTable)))
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// convertInlines flattens inline nodes into lines of spans; hard breaks start
// a new line
func convertInlines(inlines []ports.Inline, role entities.Role) []entities.Text {
	lines := []entities.Text{nil}
	var walk func(nodes []ports.Inline, role entities.Role, attrs entities.Attr)
	walk = func(nodes []ports.Inline, role entities.Role, attrs entities.Attr) {
		for _, node := range nodes {
			current := &lines[len(lines)-1]
			switch node.Kind {
			case ports.InlineText, ports.InlineHTML:
				if node.Text != "" {
					*current = append(*current, entities.StyledSpan{Text: node.Text, Role: role, Attrs: attrs})
				}
			case ports.InlineSoftBreak:
				*current = append(*current, entities.StyledSpan{Text: " ", Role: role, Attrs: attrs})
			case ports.InlineHardBreak:
				lines = append(lines, nil)
			case ports.InlineEmphasis:
				walk(node.Children, childRole(role, entities.RoleEmphasis), attrs|entities.AttrItalic)
			case ports.InlineStrong:
				walk(node.Children, childRole(role, entities.RoleStrong), attrs|entities.AttrBold)
			case ports.InlineStrikethrough:
				walk(node.Children, role, attrs|entities.AttrStrikethrough)
			case ports.InlineCode:
				*current = append(*current, entities.StyledSpan{Text: node.Text, Role: entities.RoleInlineCode, Attrs: attrs})
			case ports.InlineLink:
				if len(node.Children) == 0 {
					*current = append(*current, entities.StyledSpan{Text: node.Destination, Role: entities.RoleLink, Attrs: attrs})
					continue
				}
				walk(node.Children, entities.RoleLink, attrs)
			case ports.InlineImage:
				alt := inlineText(node.Children)
				if alt == "" {
					alt = node.Destination
				}
				*current = append(*current, entities.StyledSpan{Text: "▣ " + alt, Role: entities.RolePlaceholder, Attrs: attrs})
			}
		}
	}
	walk(inlines, role, 0)
	return lines
}

// childRole keeps structural roles (headings, quotes, tables) for nested markup
func childRole(parent, child entities.Role) entities.Role {
	if parent == entities.RoleText {
		return child
	}
	return parent
}

// joinLines joins lines produced by hard breaks with spaces
func joinLines(lines []entities.Text) entities.Text {
	var out entities.Text
	for i, line := range lines {
		if i > 0 && len(out) > 0 {
			out = append(out, entities.StyledSpan{Text: " ", Role: out[len(out)-1].Role})
		}
		out = append(out, line...)
	}
	return out
}

// inlineText returns the plain text of inline nodes
func inlineText(inlines []ports.Inline) string {
	var sb strings.Builder
	for _, node := range inlines {
		switch node.Kind {
		case ports.InlineSoftBreak, ports.InlineHardBreak:
			sb.WriteString(" ")
		default:
			sb.WriteString(node.Text)
			sb.WriteString(inlineText(node.Children))
		}
	}
	return sb.String()
}

// resolveFooter expands the footer templates for one slide
func resolveFooter(theme *entities.Theme, metadata entities.Metadata, index, total int) entities.Footer {
	style := theme.Footer
	kind := style.Kind
	if kind == "" {
		kind = entities.FooterTemplate
	}
	if metadata.FooterDisabled {
		kind = entities.FooterEmpty
	}

	footer := entities.Footer{Kind: kind}
	if total > 0 {
		footer.Progress = float64(index+1) / float64(total)
	}
	if kind != entities.FooterTemplate {
		return footer
	}

	center := style.Center
	if metadata.Footer != "" {
		center = metadata.Footer
	}
	replacer := strings.NewReplacer(
		"{current_slide}", strconv.Itoa(index+1),
		"{total_slides}", strconv.Itoa(total),
		"{author}", metadata.Author,
		"{title}", metadata.Title,
	)
	footer.Left = replacer.Replace(style.Left)
	footer.Center = replacer.Replace(center)
	footer.Right = replacer.Replace(style.Right)
	return footer
}

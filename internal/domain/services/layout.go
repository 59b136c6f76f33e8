package services

import (
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

const (
	defaultBottomMargin = 3
	columnGap           = 2
	ellipsis            = "…"
)

// LayoutOptions holds the layout settings that do not come from the theme
type LayoutOptions struct {
	// ImageMaxHeight is the fraction of the terminal height an image may use
	ImageMaxHeight float64

	// CellWidth and CellHeight are used when the terminal does not report its
	// cell pixel size
	CellWidth  int
	CellHeight int
}

// LayoutEngine maps a slide, a terminal size and a theme to positioned lines.
// It is a pure function of its inputs; highlighting results are memoized in
// the slide's cache.
type LayoutEngine struct {
	highlighter ports.Highlighter
	images      ports.ImageSizer
	options     LayoutOptions
	logger      *slog.Logger
}

// NewLayoutEngine creates a new layout engine
func NewLayoutEngine(highlighter ports.Highlighter, images ports.ImageSizer, options LayoutOptions, logger *slog.Logger) *LayoutEngine {
	if options.ImageMaxHeight <= 0 || options.ImageMaxHeight > 1 {
		options.ImageMaxHeight = 0.6
	}
	if options.CellWidth <= 0 {
		options.CellWidth = 10
	}
	if options.CellHeight <= 0 {
		options.CellHeight = 20
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LayoutEngine{
		highlighter: highlighter,
		images:      images,
		options:     options,
		logger:      logger,
	}
}

// block is laid out content relative to its own top-left corner
type block struct {
	lines  []entities.RenderedLine
	images []entities.ImagePlacement
	height int
}

func (b *block) addLine(row, col int, spans entities.Text) {
	b.lines = append(b.lines, entities.RenderedLine{Row: row, Col: col, Spans: spans})
	if row+1 > b.height {
		b.height = row + 1
	}
}

// append places other below b, separated by gap rows
func (b *block) append(other block, gap int) {
	offset := b.height
	if offset > 0 {
		offset += gap
	}
	b.place(other, offset, 0)
	if other.height > 0 {
		b.height = offset + other.height
	}
}

// place copies other into b at the given offset without changing b's height
func (b *block) place(other block, row, col int) {
	for _, line := range other.lines {
		line.Row += row
		line.Col += col
		b.lines = append(b.lines, line)
	}
	for _, img := range other.images {
		img.Region.Row += row
		img.Region.Col += col
		b.images = append(b.images, img)
	}
}

// width returns the rightmost column used by the block
func (b *block) width() int {
	width := 0
	for _, line := range b.lines {
		if w := line.Col + line.Width(); w > width {
			width = w
		}
	}
	for _, img := range b.images {
		if w := img.Region.Col + img.Region.Columns; w > width {
			width = w
		}
	}
	return width
}

// shift moves every line and image right by cols
func (b *block) shift(cols int) {
	if cols <= 0 {
		return
	}
	for i := range b.lines {
		b.lines[i].Col += cols
	}
	for i := range b.images {
		b.images[i].Region.Col += cols
	}
}

// flow carries the per-call layout context
type flow struct {
	engine *LayoutEngine
	slide  *entities.Slide
	theme  *entities.Theme
	size   entities.WindowSize
}

// Layout lays out a slide for a terminal size
func (e *LayoutEngine) Layout(slide *entities.Slide, size entities.WindowSize, theme *entities.Theme) *entities.RenderedSlide {
	width := size.Columns
	if width < 1 {
		width = 1
	}
	height := size.Rows
	if height < 1 {
		height = 1
	}

	out := &entities.RenderedSlide{
		Index:      slide.Index,
		Size:       size,
		Background: theme.Background(),
	}

	bottomMargin := theme.Layout.BottomMargin
	if bottomMargin <= 0 {
		bottomMargin = defaultBottomMargin
	}
	showFooter := !slide.Options.HideFooter &&
		slide.Footer.Kind != entities.FooterEmpty &&
		height > bottomMargin+1
	reserve := 0
	if showFooter {
		reserve = bottomMargin
	}

	margin := theme.Layout.Margin.Columns(width)
	contentWidth := width - 2*margin
	if contentWidth < 1 {
		margin = 0
		contentWidth = width
	}

	top := theme.Layout.TopPadding
	if top < 0 || top+reserve >= height {
		top = 0
	}
	available := height - reserve - top
	if available < 1 {
		available = 1
	}

	f := &flow{engine: e, slide: slide, theme: theme, size: entities.WindowSize{
		Columns:    width,
		Rows:       height,
		CellWidth:  size.CellWidth,
		CellHeight: size.CellHeight,
	}}
	main, bottom := f.stack(slide.Elements, contentWidth, available)

	offset := top
	if slide.Options.VerticalCenter || theme.Layout.VerticalAlign == entities.VerticalCenter {
		if free := available - main.height - bottom.height; free > 0 {
			offset += free / 2
		}
	}
	limit := top + available

	var content block
	content.place(main, offset, margin)
	if bottom.height > 0 {
		row := limit - bottom.height
		if end := offset + main.height; row < end {
			row = end + 1
		}
		content.place(bottom, row, margin)
	}

	fit(&content, margin, contentWidth)
	out.Truncated = clip(&content, limit, margin, contentWidth)
	out.Lines = content.lines
	out.Images = content.images

	if showFooter {
		out.Lines = append(out.Lines, f.footer(slide.Footer, width, height-1, margin)...)
	}

	for i := range out.Lines {
		for j := range out.Lines[i].Spans {
			span := &out.Lines[i].Spans[j]
			span.Style = f.resolve(*span)
		}
	}

	sort.SliceStable(out.Lines, func(i, j int) bool {
		if out.Lines[i].Row != out.Lines[j].Row {
			return out.Lines[i].Row < out.Lines[j].Row
		}
		return out.Lines[i].Col < out.Lines[j].Col
	})

	if out.Truncated {
		e.logger.Debug("slide content truncated",
			slog.Int("slide", slide.Index),
			slog.Int("columns", width),
			slog.Int("rows", height))
	}

	return out
}

// Banner returns an error line drawn over the first row
func (e *LayoutEngine) Banner(message string, size entities.WindowSize, theme *entities.Theme) entities.RenderedLine {
	width := size.Columns
	if width < 1 {
		width = 1
	}
	text := truncate.StringWithTail(strings.ReplaceAll(message, "\n", " "), uint(width), ellipsis)
	if fill := width - runewidth.StringWidth(text); fill > 0 {
		text += strings.Repeat(" ", fill)
	}
	span := entities.StyledSpan{Text: text, Role: entities.RoleError}
	span.Style = theme.Resolve(span)
	return entities.RenderedLine{Row: 0, Col: 0, Spans: []entities.StyledSpan{span}}
}

// fit cuts lines and images that extend past the right edge of the content
// area. Only degenerate widths get here; regular layout wraps first.
func fit(content *block, margin, width int) {
	right := margin + width
	for i := range content.lines {
		line := &content.lines[i]
		if line.Col >= right {
			line.Col = right - 1
		}
		if room := right - line.Col; line.Width() > room {
			line.Spans = truncateText(line.Spans, room)
		}
	}
	for i := range content.images {
		region := &content.images[i].Region
		if region.Col+region.Columns > right {
			region.Columns = right - region.Col
			if region.Columns < 1 {
				region.Col = margin
				region.Columns = 1
			}
		}
	}
}

// clip drops content at or below limit. The last visible row gets an
// ellipsis when anything was dropped.
func clip(content *block, limit, margin, width int) bool {
	truncated := false

	lines := content.lines[:0]
	for _, line := range content.lines {
		if line.Row >= limit {
			truncated = true
			continue
		}
		lines = append(lines, line)
	}
	content.lines = lines

	images := content.images[:0]
	for _, img := range content.images {
		if img.Region.Row >= limit {
			truncated = true
			continue
		}
		if img.Region.Row+img.Region.Rows > limit {
			img.Region.Rows = limit - img.Region.Row
			truncated = true
		}
		images = append(images, img)
	}
	content.images = images

	if !truncated {
		return false
	}

	last := limit - 1
	index := -1
	for i, line := range content.lines {
		if line.Row == last && (index < 0 || line.Col > content.lines[index].Col) {
			index = i
		}
	}
	if index < 0 {
		content.lines = append(content.lines, entities.RenderedLine{
			Row:   last,
			Col:   margin,
			Spans: entities.Plain(ellipsis, entities.RoleText),
		})
		return true
	}

	line := &content.lines[index]
	room := margin + width - line.Col
	if room < 1 {
		room = 1
	}
	spans := entities.Text(line.Spans)
	if spans.Width()+runewidth.StringWidth(ellipsis) <= room {
		role := entities.RoleText
		if len(spans) > 0 {
			role = spans[len(spans)-1].Role
		}
		line.Spans = append(append(entities.Text(nil), spans...), entities.StyledSpan{Text: ellipsis, Role: role})
	} else {
		line.Spans = truncateText(spans, room)
	}
	return true
}

// stack lays out elements top to bottom. Content after a bottom spacer goes
// into the second block, which is anchored to the bottom of the slide.
func (f *flow) stack(elements []entities.Element, width, rows int) (block, block) {
	var main, bottom block
	target := &main
	glue := false

	for _, element := range elements {
		if spacer, ok := element.(entities.Spacer); ok {
			switch {
			case spacer.Bottom:
				target = &bottom
			case spacer.Center:
				if mid := rows / 2; target.height < mid {
					target.height = mid
				}
			default:
				target.height += spacer.Rows
			}
			glue = true
			continue
		}

		laid := f.element(element, width, rows)
		gap := 1
		if glue {
			gap = 0
		}
		target.append(laid, gap)
		glue = false
	}

	return main, bottom
}

func (f *flow) element(element entities.Element, width, rows int) block {
	switch e := element.(type) {
	case entities.Heading:
		return f.heading(e, width)
	case entities.Paragraph:
		return f.paragraph(e, width)
	case entities.List:
		return f.list(e, width)
	case entities.Table:
		return f.table(e, width)
	case entities.CodeBlock:
		return f.code(e, width)
	case entities.Image:
		return f.image(e, width)
	case entities.ThematicBreak:
		var b block
		b.addLine(0, 0, entities.Plain(strings.Repeat("─", width), entities.RoleRule))
		return b
	case entities.BlockQuote:
		return f.quote(e, width)
	case entities.Columns:
		return f.columns(e, width, rows)
	default:
		return block{}
	}
}

// columns lays out a column layout side by side
func (f *flow) columns(c entities.Columns, width, rows int) block {
	var out block
	if len(c.Widths) == 0 {
		return out
	}

	total := 0
	for _, w := range c.Widths {
		total += w
	}
	usable := width - columnGap*(len(c.Widths)-1)
	if usable < len(c.Widths) {
		usable = len(c.Widths)
	}

	col := 0
	assigned := 0
	for i, weight := range c.Widths {
		w := usable * weight / total
		if i == len(c.Widths)-1 {
			w = usable - assigned
		}
		if w < 1 {
			w = 1
		}

		var elements []entities.Element
		if i < len(c.Columns) {
			elements = c.Columns[i]
		}
		main, bottom := f.stack(elements, w, rows)
		main.append(bottom, 1)

		out.place(main, 0, col)
		if main.height > out.height {
			out.height = main.height
		}

		assigned += w
		col += w + columnGap
	}
	return out
}

// footer lays out the footer on the last row
func (f *flow) footer(footer entities.Footer, width, row, margin int) []entities.RenderedLine {
	switch footer.Kind {
	case entities.FooterProgressBar:
		character := f.theme.Footer.Character
		if character == "" {
			character = "█"
		}
		cw := runewidth.StringWidth(character)
		if cw < 1 {
			cw = 1
		}
		count := int(math.Ceil(float64(width/cw) * footer.Progress))
		if count <= 0 {
			return nil
		}
		return []entities.RenderedLine{{
			Row:   row,
			Col:   0,
			Spans: entities.Plain(strings.Repeat(character, count), entities.RoleFooter),
		}}

	case entities.FooterTemplate:
		inner := width - 2*margin
		if inner < 1 {
			margin = 0
			inner = width
		}
		var lines []entities.RenderedLine
		add := func(text string, align entities.Alignment) {
			if text == "" {
				return
			}
			text = truncate.StringWithTail(text, uint(inner), ellipsis)
			col := margin + alignCol(align, inner, runewidth.StringWidth(text))
			lines = append(lines, entities.RenderedLine{
				Row:   row,
				Col:   col,
				Spans: entities.Plain(text, entities.RoleFooter),
			})
		}
		add(footer.Left, entities.AlignLeft)
		add(footer.Center, entities.AlignCenter)
		add(footer.Right, entities.AlignRight)
		return lines

	default:
		return nil
	}
}

// resolve computes the final style of a span
func (f *flow) resolve(span entities.StyledSpan) entities.Style {
	style := f.theme.Resolve(span)
	if span.Role == entities.RoleCode && style.Background == "" {
		style.Background = f.theme.Palette.Code.Background
	}
	return style
}

// alignCol returns the column offset of content of the given width
func alignCol(align entities.Alignment, width, content int) int {
	free := width - content
	if free <= 0 {
		return 0
	}
	switch align {
	case entities.AlignCenter:
		return free / 2
	case entities.AlignRight:
		return free
	default:
		return 0
	}
}

// orDefault returns align, or fallback when align is unset
func orDefault(align, fallback entities.Alignment) entities.Alignment {
	if align == entities.AlignDefault {
		return fallback
	}
	return align
}

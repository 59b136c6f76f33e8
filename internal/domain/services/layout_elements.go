package services

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

func (f *flow) heading(h entities.Heading, width int) block {
	var b block

	if h.SlideTitle {
		style := f.theme.SlideTitle
		align := orDefault(style.Alignment, entities.AlignCenter)
		row := style.PaddingTop
		for _, line := range WrapText(h.Text, width) {
			b.addLine(row, alignCol(align, width, line.Width()), line)
			row++
		}
		row += style.PaddingBottom
		if style.HasSeparator() {
			b.addLine(row, 0, entities.Plain(strings.Repeat("─", width), entities.RoleRule))
			row++
		}
		b.height = row
		return b
	}

	style := f.theme.Headings.Level(h.Level)
	align := orDefault(style.Alignment, f.theme.Layout.Alignment)
	text := h.Text
	if style.Prefix != "" {
		prefix := entities.StyledSpan{Text: style.Prefix + " ", Role: entities.RoleHeading, Level: h.Level}
		text = append(entities.Text{prefix}, text...)
	}
	for i, line := range WrapText(text, width) {
		b.addLine(i, alignCol(align, width, line.Width()), line)
	}
	return b
}

func (f *flow) paragraph(p entities.Paragraph, width int) block {
	var b block
	align := orDefault(p.Align, f.theme.Layout.Alignment)
	row := 0
	for _, source := range p.Lines {
		for _, line := range WrapText(source, width) {
			if !line.IsEmpty() {
				b.addLine(row, alignCol(align, width, line.Width()), line)
			}
			row++
		}
	}
	b.height = row
	return b
}

// listMarker returns the marker text for an item, without trailing space
func (f *flow) listMarker(item entities.ListItem) string {
	switch item.Marker {
	case entities.MarkerPeriod:
		return fmt.Sprintf("%d.", item.Number)
	case entities.MarkerParen:
		return fmt.Sprintf("%d)", item.Number)
	case entities.MarkerNone:
		return ""
	default:
		return f.theme.List.Marker(item.Depth)
	}
}

func (f *flow) list(l entities.List, width int) block {
	var b block
	row := 0
	for _, item := range l.Items {
		indent := item.Depth * 2
		marker := f.listMarker(item)
		markerWidth := runewidth.StringWidth(marker)
		if item.Marker == entities.MarkerNone {
			markerWidth = runewidth.StringWidth(f.theme.List.Marker(item.Depth))
		}
		hang := indent + markerWidth + 1

		text := item.Text
		if item.Task != nil {
			box := "[ ] "
			if *item.Task {
				box = "[x] "
			}
			text = append(entities.Text{{Text: box, Role: entities.RoleListMarker}}, text...)
		}

		textWidth := width - hang
		if textWidth < 1 {
			textWidth = 1
			hang = width - 1
			if hang < 0 {
				hang = 0
			}
		}

		for i, line := range WrapText(text, textWidth) {
			if i == 0 && marker != "" {
				spans := entities.Text{{Text: marker + " ", Role: entities.RoleListMarker}}
				spans = append(spans, line...)
				col := hang - markerWidth - 1
				if col < 0 {
					col = 0
				}
				b.addLine(row, col, spans)
			} else if !line.IsEmpty() {
				b.addLine(row, hang, line)
			}
			row++
		}
	}
	b.height = row
	f.alignBlock(&b, width, f.theme.Layout.Alignment)
	return b
}

func (f *flow) quote(q entities.BlockQuote, width int) block {
	var b block
	prefix := f.theme.Quote.Prefix
	if prefix == "" {
		prefix = "▍ "
	}
	prefixWidth := runewidth.StringWidth(prefix)
	textWidth := width - prefixWidth
	if textWidth < 1 {
		textWidth = 1
	}

	row := 0
	for _, source := range q.Lines {
		for _, line := range WrapText(source.WithRole(entities.RoleQuote, 0), textWidth) {
			spans := entities.Text{{Text: prefix, Role: entities.RoleQuote}}
			b.addLine(row, 0, append(spans, line...))
			row++
		}
	}
	b.height = row
	f.alignBlock(&b, width, f.theme.Layout.Alignment)
	return b
}

// alignBlock aligns a block as a whole within width
func (f *flow) alignBlock(b *block, width int, align entities.Alignment) {
	b.shift(alignCol(align, width, b.width()))
}

// tableWidths distributes the row width across columns in proportion to
// their natural widths. A column never exceeds its natural width nor
// maxFraction of the row, unless it is the only column.
func tableWidths(natural []int, width int, maxFraction float64) []int {
	columns := len(natural)
	available := width - 3*(columns-1)
	if available < columns {
		available = columns
	}

	limits := make([]int, columns)
	total := 0
	for i, w := range natural {
		limits[i] = max(w, 1)
	}
	if columns > 1 && maxFraction > 0 && maxFraction < 1 {
		limit := max(int(float64(available)*maxFraction), 1)
		for i := range limits {
			limits[i] = min(limits[i], limit)
		}
	}
	for _, w := range limits {
		total += w
	}
	if total <= available {
		return limits
	}

	// Settle columns whose proportional share reaches their limit, then split
	// what remains among the others.
	widths := make([]int, columns)
	settled := make([]bool, columns)
	remaining := available
	for {
		weight := 0
		for i, w := range natural {
			if !settled[i] {
				weight += max(w, 1)
			}
		}
		changed := false
		for i, w := range natural {
			if settled[i] || remaining*max(w, 1) < limits[i]*weight {
				continue
			}
			widths[i] = limits[i]
			settled[i] = true
			remaining -= limits[i]
			changed = true
		}
		if !changed || weight == 0 {
			break
		}
	}

	weight := 0
	for i, w := range natural {
		if !settled[i] {
			weight += max(w, 1)
		}
	}
	fractions := make([]int, columns)
	used := 0
	for i, w := range natural {
		if settled[i] {
			continue
		}
		share := remaining * max(w, 1)
		widths[i] = max(share/weight, 1)
		fractions[i] = share % weight
		used += widths[i]
	}

	// hand out the rounding leftover by largest remainder
	for leftover := remaining - used; leftover > 0; leftover-- {
		best := -1
		for i := range widths {
			if settled[i] || widths[i] >= limits[i] {
				continue
			}
			if best < 0 || fractions[i] > fractions[best] {
				best = i
			}
		}
		if best < 0 {
			break
		}
		widths[best]++
		fractions[best] = -1
	}

	// minimum widths of one can still overflow a very narrow row
	sum := 0
	for _, w := range widths {
		sum += w
	}
	for sum > available {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 1 {
			break
		}
		widths[widest]--
		sum--
	}
	return widths
}

func (f *flow) table(t entities.Table, width int) block {
	var b block
	columns := t.Columns()
	if columns == 0 {
		return b
	}

	natural := make([]int, columns)
	measure := func(row []entities.Text) {
		for i, cell := range row {
			if w := cell.Width(); w > natural[i] {
				natural[i] = w
			}
		}
	}
	measure(t.Header)
	for _, row := range t.Rows {
		measure(row)
	}
	widths := tableWidths(natural, width, f.theme.Table.ColumnFraction())

	row := 0
	emit := func(cells []entities.Text, header bool) {
		wrapped := make([][]entities.Text, columns)
		height := 1
		for i := 0; i < columns; i++ {
			var cell entities.Text
			if i < len(cells) {
				cell = cells[i]
			}
			if header {
				cell = cell.WithAttrs(entities.AttrBold)
			}
			wrapped[i] = WrapText(cell, widths[i])
			if len(wrapped[i]) > height {
				height = len(wrapped[i])
			}
		}

		for r := 0; r < height; r++ {
			var spans entities.Text
			for i := 0; i < columns; i++ {
				if i > 0 {
					spans = append(spans, entities.StyledSpan{Text: " │ ", Role: entities.RoleTable})
				}
				var line entities.Text
				if r < len(wrapped[i]) {
					line = wrapped[i][r]
				}
				spans = append(spans, line...)
				if pad := widths[i] - line.Width(); pad > 0 && i < columns-1 {
					spans = append(spans, entities.StyledSpan{Text: strings.Repeat(" ", pad), Role: entities.RoleTable})
				}
			}
			b.addLine(row, 0, spans)
			row++
		}
	}

	emit(t.Header, true)

	var separator strings.Builder
	for i, w := range widths {
		switch {
		case columns == 1:
			separator.WriteString(strings.Repeat("─", w))
		case i == 0:
			separator.WriteString(strings.Repeat("─", w+1))
		case i == columns-1:
			separator.WriteString("┼" + strings.Repeat("─", w+1))
		default:
			separator.WriteString("┼" + strings.Repeat("─", w+2))
		}
	}
	b.addLine(row, 0, entities.Plain(separator.String(), entities.RoleTable))
	row++

	for _, cells := range t.Rows {
		emit(cells, false)
	}

	b.height = row
	f.alignBlock(&b, width, f.theme.Layout.Alignment)
	return b
}

// highlight returns the highlighted code, memoized in the slide cache
func (f *flow) highlight(code entities.CodeBlock) entities.HighlightedCode {
	style := f.theme.Code.Style
	key := entities.HighlightKey(code.Code, code.Language, style)
	cache := f.slide.Highlights()
	if cached, ok := cache.Get(key); ok {
		return cached
	}

	var highlighted entities.HighlightedCode
	if f.engine.highlighter != nil {
		var err error
		highlighted, err = f.engine.highlighter.Highlight(code.Code, code.Language, style)
		if err != nil {
			f.engine.logger.Debug("highlighting failed, using plain text",
				slog.String("language", code.Language),
				slog.String("error", err.Error()))
			highlighted = nil
		}
	}
	if highlighted == nil {
		for _, line := range strings.Split(code.Code, "\n") {
			highlighted = append(highlighted, []entities.StyledSpan{{Text: line, Role: entities.RoleCode}})
		}
	}

	for i, line := range highlighted {
		for j := range line {
			highlighted[i][j].Text = expandTabs(line[j].Text)
		}
	}

	cache.Set(key, highlighted)
	return highlighted
}

func (f *flow) code(c entities.CodeBlock, width int) block {
	var b block
	style := f.theme.Code
	highlighted := f.highlight(c)

	hpad := style.PaddingHorizontal
	if hpad < 0 {
		hpad = 0
	}
	vpad := style.PaddingVertical
	if vpad < 0 {
		vpad = 0
	}

	natural := 0
	for _, line := range highlighted {
		if w := entities.Text(line).Width(); w > natural {
			natural = w
		}
	}
	blockWidth := natural + 2*hpad
	if blockWidth > width {
		blockWidth = width
	}
	if blockWidth <= 2*hpad {
		hpad = 0
	}
	inner := blockWidth - 2*hpad
	if inner < 1 {
		inner = 1
		blockWidth = inner + 2*hpad
	}

	fill := func(n int) entities.StyledSpan {
		return entities.StyledSpan{Text: strings.Repeat(" ", n), Role: entities.RoleCode}
	}

	row := 0
	for i := 0; i < vpad; i++ {
		b.addLine(row, 0, entities.Text{fill(blockWidth)})
		row++
	}
	for _, source := range highlighted {
		for _, tokens := range WrapTokens(source, inner) {
			var spans entities.Text
			if hpad > 0 {
				spans = append(spans, fill(hpad))
			}
			spans = append(spans, tokens...)
			if rest := blockWidth - hpad - entities.Text(tokens).Width(); rest > 0 {
				spans = append(spans, fill(rest))
			}
			b.addLine(row, 0, spans)
			row++
		}
	}
	for i := 0; i < vpad; i++ {
		b.addLine(row, 0, entities.Text{fill(blockWidth)})
		row++
	}

	b.height = row
	f.alignBlock(&b, width, orDefault(style.Alignment, f.theme.Layout.Alignment))
	return b
}

// imageCellSize returns the cell pixel size, preferring what the terminal reports
func (f *flow) imageCellSize() (int, int) {
	if f.size.HasPixelSize() {
		return f.size.CellWidth, f.size.CellHeight
	}
	return f.engine.options.CellWidth, f.engine.options.CellHeight
}

// imageCells computes the cell footprint of an image scaled to fit width
// columns and the maximum image height, preserving aspect ratio and never
// scaling up
func (f *flow) imageCells(pixelWidth, pixelHeight, width int) (int, int) {
	cellWidth, cellHeight := f.imageCellSize()
	columns := float64(pixelWidth) / float64(cellWidth)
	rows := float64(pixelHeight) / float64(cellHeight)

	maxRows := math.Floor(float64(f.size.Rows) * f.engine.options.ImageMaxHeight)
	if maxRows < 1 {
		maxRows = 1
	}

	scale := 1.0
	if columns > float64(width) {
		scale = float64(width) / columns
	}
	if rows*scale > maxRows {
		scale = maxRows / rows
	}

	cols := int(math.Ceil(columns*scale - 1e-9))
	rws := int(math.Ceil(rows*scale - 1e-9))
	if cols > width {
		cols = width
	}
	if rws > int(maxRows) {
		rws = int(maxRows)
	}
	if cols < 1 {
		cols = 1
	}
	if rws < 1 {
		rws = 1
	}
	return cols, rws
}

func (f *flow) image(img entities.Image, width int) block {
	var b block

	if f.engine.images == nil || img.Handle == nil {
		return f.imagePlaceholder(img, width)
	}
	pixelWidth, pixelHeight, err := f.engine.images.Dimensions(img.Handle)
	if err != nil || pixelWidth <= 0 || pixelHeight <= 0 {
		reason := "empty image"
		if err != nil {
			reason = err.Error()
		}
		f.engine.logger.Debug("image unavailable",
			slog.String("source", img.Handle.Source),
			slog.String("reason", reason))
		return f.imagePlaceholder(img, width)
	}

	columns, rows := f.imageCells(pixelWidth, pixelHeight, width)
	align := orDefault(img.Align, orDefault(f.slide.Options.ImageAlign, orDefault(f.theme.Image.Alignment, entities.AlignCenter)))

	b.images = append(b.images, entities.ImagePlacement{
		Region: entities.CellRegion{
			Row:     0,
			Col:     alignCol(align, width, columns),
			Columns: columns,
			Rows:    rows,
		},
		Handle: img.Handle,
		Alt:    img.Alt,
	})
	b.height = rows
	return b
}

func (f *flow) imagePlaceholder(img entities.Image, width int) block {
	label := img.Alt
	if label == "" && img.Handle != nil {
		label = img.Handle.Source
	}
	text := entities.Plain(fmt.Sprintf("[image unavailable: %s]", label), entities.RolePlaceholder)

	var b block
	align := orDefault(img.Align, orDefault(f.slide.Options.ImageAlign, orDefault(f.theme.Image.Alignment, entities.AlignCenter)))
	for i, line := range WrapText(text, width) {
		b.addLine(i, alignCol(align, width, line.Width()), line)
	}
	return b
}

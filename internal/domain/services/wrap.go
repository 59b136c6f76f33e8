package services

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

// cell is one rune of a line together with the span it came from
type cell struct {
	r     rune
	width int
	span  int
}

func explode(text entities.Text) []cell {
	var cells []cell
	for i, span := range text {
		for _, r := range span.Text {
			cells = append(cells, cell{r: r, width: runewidth.RuneWidth(r), span: i})
		}
	}
	return cells
}

// rebuild groups consecutive cells of the same span back into spans
func rebuild(text entities.Text, cells []cell) entities.Text {
	var out entities.Text
	var sb strings.Builder
	current := -1
	flush := func() {
		if current >= 0 && sb.Len() > 0 {
			span := text[current]
			span.Text = sb.String()
			out = append(out, span)
		}
		sb.Reset()
	}
	for _, c := range cells {
		if c.span != current {
			flush()
			current = c.span
		}
		sb.WriteRune(c.r)
	}
	flush()
	return out
}

// WrapText breaks a line into lines no wider than width. It breaks at the last
// whitespace that fits and only splits a word that has no whitespace before
// it on the line. Spans are only split at wrap points.
func WrapText(text entities.Text, width int) []entities.Text {
	if width < 1 {
		width = 1
	}

	cells := explode(text)
	if len(cells) == 0 {
		return []entities.Text{nil}
	}

	var lines []entities.Text
	pos := 0
	for pos < len(cells) {
		used := 0
		end := pos
		for end < len(cells) && used+cells[end].width <= width {
			used += cells[end].width
			end++
		}

		if end == len(cells) {
			lines = append(lines, rebuild(text, cells[pos:end]))
			break
		}

		// a rune wider than the whole budget still has to go somewhere
		if end == pos {
			end = pos + 1
			lines = append(lines, rebuild(text, cells[pos:end]))
			pos = end
			continue
		}

		if brk := breakPoint(cells, pos, end); brk >= 0 {
			lines = append(lines, rebuild(text, cells[pos:brk]))
			pos = brk + 1
			continue
		}

		lines = append(lines, rebuild(text, cells[pos:end]))
		pos = end
	}
	return lines
}

// breakPoint returns the index of the last whitespace that ends the line,
// or -1 when the line has none
func breakPoint(cells []cell, pos, end int) int {
	for i := end; i > pos; i-- {
		if unicode.IsSpace(cells[i].r) {
			return i
		}
	}
	return -1
}

// WrapTokens wraps a highlighted code line without splitting tokens, unless a
// single token is wider than width
func WrapTokens(tokens []entities.StyledSpan, width int) [][]entities.StyledSpan {
	if width < 1 {
		width = 1
	}

	var lines [][]entities.StyledSpan
	var line []entities.StyledSpan
	used := 0

	for _, token := range tokens {
		w := token.Width()
		if used+w <= width {
			line = append(line, token)
			used += w
			continue
		}

		if used > 0 && w <= width {
			lines = append(lines, line)
			line = []entities.StyledSpan{token}
			used = w
			continue
		}

		// token wider than the remaining space of an empty line or the whole width
		for _, part := range WrapText(entities.Text{token}, width) {
			partWidth := part.Width()
			if used > 0 && used+partWidth > width {
				lines = append(lines, line)
				line = nil
				used = 0
			}
			line = append(line, part...)
			used += partWidth
		}
	}

	lines = append(lines, line)
	return lines
}

// truncateText cuts a line to width and ends it with an ellipsis
func truncateText(text entities.Text, width int) entities.Text {
	const ellipsis = "…"
	if width < 1 {
		return nil
	}

	var out entities.Text
	budget := width - runewidth.StringWidth(ellipsis)
	role := entities.RoleText
	for _, span := range text {
		role = span.Role
		if budget <= 0 {
			break
		}
		w := span.Width()
		if w > budget {
			span.Text = runewidth.Truncate(span.Text, budget, "")
			w = span.Width()
		}
		out = append(out, span)
		budget -= w
	}
	return append(out, entities.StyledSpan{Text: ellipsis, Role: role})
}

// expandTabs replaces tabs with four spaces so widths are predictable
func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

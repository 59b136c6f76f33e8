package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// Directive names recognized inside single-line comments
const (
	directivePause        = "pause"
	directiveEndSlide     = "end_slide"
	directiveColumnLayout = "column_layout"
	directiveColumn       = "column"
	directiveResetLayout  = "reset_layout"
	directiveHideFooter   = "hide_footer"
	directiveImageAlign   = "image_align"
	directiveJumpToMiddle = "jump_to_middle"
	directiveNewLines     = "new_lines"
)

var errNotDirective = errors.New("not a directive")

// parseDirective decodes a comment body as a directive: either a bare name or
// a single-key mapping
func parseDirective(text string) (string, *yaml.Node, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(text, "\n") {
		return "", nil, errNotDirective
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return "", nil, errNotDirective
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return "", nil, errNotDirective
	}

	node := doc.Content[0]
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value, nil, nil
	case yaml.MappingNode:
		if len(node.Content) != 2 || node.Content[0].Kind != yaml.ScalarNode {
			return "", nil, errNotDirective
		}
		return node.Content[0].Value, node.Content[1], nil
	default:
		return "", nil, errNotDirective
	}
}

// processComment applies a directive; other comments are ignored
func (b *slideBuilder) processComment(block ports.Block) error {
	if strings.Contains(block.Text, "\n") {
		return nil
	}

	name, value, err := parseDirective(block.Text)
	if err != nil {
		if b.compiler.options.Strict {
			return b.invalidMetadata(block.Line, fmt.Sprintf("unknown directive %q", strings.TrimSpace(block.Text)), nil)
		}
		return nil
	}

	switch name {
	case directivePause:
		b.pause()
		return nil

	case directiveEndSlide:
		return b.terminate()

	case directiveColumnLayout:
		var widths []int
		if value == nil || value.Decode(&widths) != nil {
			return b.invalidMetadata(block.Line, "column_layout expects a list of widths", nil)
		}
		if len(widths) == 0 {
			return b.malformed(block.Line, "invalid column layout: no columns")
		}
		for _, width := range widths {
			if width <= 0 {
				return b.malformed(block.Line, "invalid column layout: column widths must be positive")
			}
		}
		b.closeLayout()
		b.columns = &entities.Columns{
			Widths:  widths,
			Columns: make([][]entities.Element, len(widths)),
		}
		b.column = -1
		return nil

	case directiveColumn:
		var index int
		if value == nil || value.Decode(&index) != nil {
			return b.invalidMetadata(block.Line, "column expects a column index", nil)
		}
		if b.columns == nil {
			return b.malformed(block.Line, "no column layout defined")
		}
		if index == b.column {
			return b.malformed(block.Line, "already in column %d", index)
		}
		if index < 0 || index >= len(b.columns.Columns) {
			return b.malformed(block.Line, "column index %d too large for %d columns", index, len(b.columns.Columns))
		}
		b.column = index
		return nil

	case directiveResetLayout:
		b.closeLayout()
		return nil

	case directiveHideFooter:
		b.options.HideFooter = true
		return nil

	case directiveImageAlign:
		var align entities.Alignment
		if value == nil || value.Decode(&align) != nil {
			return b.invalidMetadata(block.Line, "image_align expects left, center or right", nil)
		}
		if err := align.Validate(); err != nil {
			return b.invalidMetadata(block.Line, "image_align", err)
		}
		b.options.ImageAlign = align
		return nil

	case directiveJumpToMiddle:
		return b.push(block.Line, entities.Spacer{Center: true})

	case directiveNewLines:
		var rows int
		if value == nil || value.Decode(&rows) != nil || rows < 0 {
			return b.invalidMetadata(block.Line, "new_lines expects a non-negative number", nil)
		}
		return b.push(block.Line, entities.Spacer{Rows: rows})

	default:
		if b.compiler.options.Strict {
			return b.invalidMetadata(block.Line, fmt.Sprintf("unknown directive %q", name), nil)
		}
		b.compiler.logger.Debug("ignoring unknown directive",
			slog.String("directive", name),
			slog.Int("line", block.Line))
		return nil
	}
}

package services

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/test/builders"
)

type MockHighlighter struct {
	mock.Mock
}

func (m *MockHighlighter) Highlight(code, language, style string) (entities.HighlightedCode, error) {
	args := m.Called(code, language, style)
	if highlighted := args.Get(0); highlighted != nil {
		return highlighted.(entities.HighlightedCode), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockImageSizer struct {
	mock.Mock
}

func (m *MockImageSizer) Dimensions(handle *entities.ImageHandle) (int, int, error) {
	args := m.Called(handle)
	return args.Int(0), args.Int(1), args.Error(2)
}

func newTestLayout() *LayoutEngine {
	return NewLayoutEngine(nil, nil, LayoutOptions{}, nil)
}

func size(columns, rows int) entities.WindowSize {
	return entities.WindowSize{Columns: columns, Rows: rows}
}

func noFooter() entities.Footer {
	return entities.Footer{Kind: entities.FooterEmpty}
}

func assertFits(t *testing.T, rendered *entities.RenderedSlide) {
	t.Helper()
	for _, line := range rendered.Lines {
		assert.GreaterOrEqual(t, line.Col, 0, "line %q", line.Text())
		assert.LessOrEqual(t, line.Col+line.Width(), rendered.Size.Columns, "line %q at col %d", line.Text(), line.Col)
		assert.Less(t, line.Row, rendered.Size.Rows, "line %q", line.Text())
	}
	for _, img := range rendered.Images {
		assert.LessOrEqual(t, img.Region.Col+img.Region.Columns, rendered.Size.Columns)
		assert.LessOrEqual(t, img.Region.Row+img.Region.Rows, rendered.Size.Rows)
	}
}

func richSlide() *entities.Slide {
	return builders.NewSlideBuilder().
		WithElements(
			builders.Heading(1, "A heading that is quite a bit longer than the terminal"),
			builders.Paragraph("Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore."),
			entities.List{Items: []entities.ListItem{
				{Depth: 0, Marker: entities.MarkerBullet, Text: entities.Plain("first item with enough words to wrap around", entities.RoleText)},
				{Depth: 1, Marker: entities.MarkerBullet, Text: entities.Plain("nested item that also wraps past the edge", entities.RoleText)},
				{Depth: 0, Marker: entities.MarkerPeriod, Number: 10, Text: entities.Plain("numbered", entities.RoleText)},
			}},
			entities.Table{
				Header: []entities.Text{entities.Plain("name", entities.RoleText), entities.Plain("description", entities.RoleText)},
				Rows: [][]entities.Text{{
					entities.Plain("x", entities.RoleText),
					entities.Plain("a very long description that does not fit anywhere near thirty columns", entities.RoleText),
				}},
			},
			builders.Code("go", "func main() { fmt.Println(\"a line of code that is far too long for the screen\") }"),
			entities.BlockQuote{Lines: []entities.Text{entities.Plain("quoted text that goes on and on and on", entities.RoleText)}},
			entities.ThematicBreak{},
		).
		WithFooter(entities.Footer{Kind: entities.FooterTemplate, Left: "left footer text", Right: "3 / 10"}).
		Build()
}

func TestLayoutEngine_LinesFitTheTerminal(t *testing.T) {
	engine := newTestLayout()
	slide := richSlide()

	for _, columns := range []int{1, 2, 5, 12, 30, 80} {
		for _, rows := range []int{1, 3, 10, 40} {
			rendered := engine.Layout(slide, size(columns, rows), builders.NewThemeBuilder().WithMargin(2).Build())
			assertFits(t, rendered)
		}
	}
}

func TestLayoutEngine_Deterministic(t *testing.T) {
	engine := newTestLayout()
	slide := richSlide()
	theme := builders.NewThemeBuilder().Build()

	first := engine.Layout(slide, size(30, 40), theme)
	second := engine.Layout(slide, size(30, 40), theme)
	assert.Equal(t, first, second)
}

func TestLayoutEngine_Footer(t *testing.T) {
	engine := newTestLayout()

	t.Run("template footer is on the last row", func(t *testing.T) {
		slide := builders.NewSlideBuilder().
			WithParagraph("hello").
			WithFooter(entities.Footer{Kind: entities.FooterTemplate, Right: "1 / 2"}).
			Build()

		rendered := engine.Layout(slide, size(40, 10), builders.NewThemeBuilder().Build())

		line, ok := rendered.LineAt(9)
		require.True(t, ok)
		assert.Equal(t, "1 / 2", line.Text())
		assert.Equal(t, 35, line.Col)
		assert.Equal(t, entities.RoleFooter, line.Spans[0].Role)
	})

	t.Run("content stops above the bottom margin", func(t *testing.T) {
		var lines []string
		for i := 0; i < 20; i++ {
			lines = append(lines, "line")
		}
		slide := builders.NewSlideBuilder().
			WithParagraph(lines...).
			WithFooter(entities.Footer{Kind: entities.FooterTemplate, Right: "1 / 1"}).
			Build()

		rendered := engine.Layout(slide, size(40, 10), builders.NewThemeBuilder().Build())
		for _, line := range rendered.Lines {
			if line.Row == 9 {
				continue
			}
			assert.Less(t, line.Row, 7, "content must leave the bottom margin free")
		}
		assert.True(t, rendered.Truncated)
	})

	t.Run("hidden footer", func(t *testing.T) {
		slide := builders.NewSlideBuilder().
			WithParagraph("hello").
			WithOptions(entities.SlideOptions{HideFooter: true}).
			WithFooter(entities.Footer{Kind: entities.FooterTemplate, Right: "1 / 2"}).
			Build()

		rendered := engine.Layout(slide, size(40, 10), builders.NewThemeBuilder().Build())
		assert.Equal(t, []string{"hello"}, rendered.Texts())
	})

	t.Run("progress bar", func(t *testing.T) {
		slide := builders.NewSlideBuilder().
			WithFooter(entities.Footer{Kind: entities.FooterProgressBar, Progress: 0.5}).
			Build()

		rendered := engine.Layout(slide, size(10, 10), builders.NewThemeBuilder().Build())
		line, ok := rendered.LineAt(9)
		require.True(t, ok)
		assert.Equal(t, "█████", line.Text())
	})

	t.Run("progress bar rounds up", func(t *testing.T) {
		slide := builders.NewSlideBuilder().
			WithFooter(entities.Footer{Kind: entities.FooterProgressBar, Progress: 1.0 / 3.0}).
			Build()

		rendered := engine.Layout(slide, size(10, 10), builders.NewThemeBuilder().Build())
		line, ok := rendered.LineAt(9)
		require.True(t, ok)
		assert.Equal(t, strings.Repeat("█", 4), line.Text())
	})
}

func TestLayoutEngine_VerticalCenter(t *testing.T) {
	engine := newTestLayout()

	tests := []struct {
		name   string
		rows   int
		footer entities.Footer
		want   int
	}{
		{name: "no footer", rows: 11, footer: noFooter(), want: 4},
		{name: "with footer", rows: 14, footer: entities.Footer{Kind: entities.FooterTemplate, Right: "x"}, want: 4},
		{name: "odd remainder rounds down", rows: 12, footer: noFooter(), want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slide := builders.NewSlideBuilder().
				WithParagraph("a", "b", "c").
				WithOptions(entities.SlideOptions{VerticalCenter: true}).
				WithFooter(tt.footer).
				Build()

			rendered := engine.Layout(slide, size(40, tt.rows), builders.NewThemeBuilder().Build())
			require.NotEmpty(t, rendered.Lines)
			assert.Equal(t, tt.want, rendered.Lines[0].Row)
			assert.Equal(t, "a", rendered.Lines[0].Text())
		})
	}

	t.Run("theme vertical alignment", func(t *testing.T) {
		slide := builders.NewSlideBuilder().WithParagraph("a").Build()
		rendered := engine.Layout(slide, size(40, 11), builders.NewThemeBuilder().WithVerticalCenter().Build())
		require.NotEmpty(t, rendered.Lines)
		assert.Equal(t, 5, rendered.Lines[0].Row)
	})
}

func TestLayoutEngine_Overflow(t *testing.T) {
	engine := newTestLayout()

	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, "line")
	}
	slide := builders.NewSlideBuilder().WithParagraph(lines...).Build()

	rendered := engine.Layout(slide, size(40, 10), builders.NewThemeBuilder().Build())

	assert.True(t, rendered.Truncated)
	for _, line := range rendered.Lines {
		assert.Less(t, line.Row, 10)
	}
	last, ok := rendered.LineAt(9)
	require.True(t, ok)
	assert.Equal(t, "line…", last.Text())
}

func TestLayoutEngine_TopPaddingAndMargin(t *testing.T) {
	engine := newTestLayout()
	slide := builders.NewSlideBuilder().WithParagraph("hello").Build()

	rendered := engine.Layout(slide, size(40, 20), builders.NewThemeBuilder().WithTopPadding(2).WithMargin(4).Build())
	require.Len(t, rendered.Lines, 1)
	assert.Equal(t, 2, rendered.Lines[0].Row)
	assert.Equal(t, 4, rendered.Lines[0].Col)
}

func TestLayoutEngine_Alignment(t *testing.T) {
	engine := newTestLayout()
	slide := builders.NewSlideBuilder().WithParagraph("abcd").Build()

	center := engine.Layout(slide, size(20, 10), builders.NewThemeBuilder().WithAlignment(entities.AlignCenter).Build())
	assert.Equal(t, 8, center.Lines[0].Col)

	right := engine.Layout(slide, size(20, 10), builders.NewThemeBuilder().WithAlignment(entities.AlignRight).Build())
	assert.Equal(t, 16, right.Lines[0].Col)
}

func TestLayoutEngine_Table(t *testing.T) {
	engine := newTestLayout()
	table := entities.Table{
		Header: []entities.Text{
			entities.Plain("key", entities.RoleText),
			entities.Plain("value", entities.RoleText),
			entities.Plain("other", entities.RoleText),
		},
		Rows: [][]entities.Text{{
			entities.Plain("a", entities.RoleText),
			entities.Plain("b", entities.RoleText),
			entities.Plain("c", entities.RoleText),
		}},
	}
	slide := builders.NewSlideBuilder().WithElements(table).Build()

	rendered := engine.Layout(slide, size(80, 20), builders.NewThemeBuilder().Build())
	assert.Equal(t, []string{
		"key │ value │ other",
		"────┼───────┼──────",
		"a   │ b     │ c",
	}, rendered.Texts())

	header, _ := rendered.LineAt(0)
	assert.True(t, header.Spans[0].Style.Attrs.Has(entities.AttrBold))
}

func TestTableWidths(t *testing.T) {
	tests := []struct {
		name     string
		natural  []int
		width    int
		fraction float64
		want     []int
	}{
		{name: "fits", natural: []int{3, 5}, width: 80, fraction: 0.6, want: []int{3, 5}},
		{name: "long column is capped", natural: []int{70, 5}, width: 80, fraction: 0.6, want: []int{46, 5}},
		{name: "proportional without a cap", natural: []int{60, 20}, width: 50, fraction: 1, want: []int{35, 12}},
		{name: "capped column frees space for the others", natural: []int{60, 20}, width: 50, fraction: 0.6, want: []int{28, 19}},
		{name: "capped below the available width", natural: []int{4, 70}, width: 30, fraction: 0.6, want: []int{4, 16}},
		{name: "equal columns split evenly", natural: []int{20, 20}, width: 23, fraction: 0.6, want: []int{10, 10}},
		{name: "single column ignores the cap", natural: []int{100}, width: 40, fraction: 0.6, want: []int{40}},
		{name: "never below one column", natural: []int{5, 5, 5}, width: 2, fraction: 0.6, want: []int{1, 1, 1}},
		{name: "empty cells count as one", natural: []int{0, 2}, width: 80, fraction: 0.6, want: []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			widths := tableWidths(tt.natural, tt.width, tt.fraction)
			assert.Equal(t, tt.want, widths)

			sum := 0
			for _, w := range widths {
				sum += w
			}
			if tt.width >= 4*len(widths)-3 {
				assert.LessOrEqual(t, sum+3*(len(widths)-1), tt.width)
			}
		})
	}
}

func TestLayoutEngine_TableColumnCap(t *testing.T) {
	engine := newTestLayout()
	table := entities.Table{
		Header: []entities.Text{entities.Plain("id", entities.RoleText), entities.Plain("notes", entities.RoleText)},
		Rows: [][]entities.Text{{
			entities.Plain("1", entities.RoleText),
			entities.Plain("one two three four five six seven eight nine ten", entities.RoleText),
		}},
	}
	slide := builders.NewSlideBuilder().WithElements(table).Build()
	theme := builders.NewThemeBuilder().Build()
	theme.Table.MaxColumnFraction = 0.5

	rendered := engine.Layout(slide, size(40, 20), theme)
	for _, line := range rendered.Texts() {
		assert.LessOrEqual(t, utf8.RuneCountInString(line), 2+3+18, line)
	}
	assert.Greater(t, len(rendered.Texts()), 3, "the capped column wraps")
}

func TestLayoutEngine_List(t *testing.T) {
	engine := newTestLayout()
	done := true
	list := entities.List{Items: []entities.ListItem{
		{Depth: 0, Marker: entities.MarkerBullet, Text: entities.Plain("one", entities.RoleText)},
		{Depth: 1, Marker: entities.MarkerBullet, Text: entities.Plain("two", entities.RoleText)},
		{Depth: 0, Marker: entities.MarkerParen, Number: 3, Text: entities.Plain("three", entities.RoleText)},
		{Depth: 0, Marker: entities.MarkerBullet, Task: &done, Text: entities.Plain("done", entities.RoleText)},
	}}
	slide := builders.NewSlideBuilder().WithElements(list).Build()

	rendered := engine.Layout(slide, size(40, 20), builders.NewThemeBuilder().Build())
	assert.Equal(t, []string{"• one", "◦ two", "3) three", "• [x] done"}, rendered.Texts())
	assert.Equal(t, 2, rendered.Lines[1].Col)
}

func TestLayoutEngine_CodeHighlighting(t *testing.T) {
	t.Run("highlighter runs once per slide", func(t *testing.T) {
		highlighter := &MockHighlighter{}
		highlighter.On("Highlight", "x := 1", "go", "").Return(entities.HighlightedCode{{
			{Text: "x", Role: entities.RoleCode, Style: entities.Style{Foreground: "#ffffff"}},
			{Text: " := ", Role: entities.RoleCode, Style: entities.Style{Foreground: "#ff0000"}},
			{Text: "1", Role: entities.RoleCode, Style: entities.Style{Foreground: "#00ff00"}},
		}}, nil).Once()

		engine := NewLayoutEngine(highlighter, nil, LayoutOptions{}, nil)
		slide := builders.NewSlideBuilder().WithElements(builders.Code("go", "x := 1")).Build()
		theme := builders.NewThemeBuilder().Build()

		first := engine.Layout(slide, size(40, 10), theme)
		second := engine.Layout(slide, size(20, 10), theme)

		assert.Equal(t, []string{"x := 1"}, first.Texts())
		assert.Equal(t, first.Texts(), second.Texts())
		assert.Equal(t, entities.Color("#ff0000"), first.Lines[0].Spans[1].Style.Foreground)
		highlighter.AssertNumberOfCalls(t, "Highlight", 1)
		assert.Equal(t, 1, slide.Highlights().Len())
	})

	t.Run("falls back to plain text", func(t *testing.T) {
		highlighter := &MockHighlighter{}
		highlighter.On("Highlight", "a\tb", "nope", "").Return(nil, errors.New("unknown language"))

		engine := NewLayoutEngine(highlighter, nil, LayoutOptions{}, nil)
		slide := builders.NewSlideBuilder().WithElements(builders.Code("nope", "a\tb")).Build()

		rendered := engine.Layout(slide, size(40, 10), builders.NewThemeBuilder().Build())
		assert.Equal(t, []string{"a    b"}, rendered.Texts())
		assert.Equal(t, entities.Color("#292e42"), rendered.Lines[0].Spans[0].Style.Background)
	})

	t.Run("padding fills the block", func(t *testing.T) {
		engine := newTestLayout()
		slide := builders.NewSlideBuilder().WithElements(builders.Code("", "ab\nabcd")).Build()

		rendered := engine.Layout(slide, size(40, 10), builders.NewThemeBuilder().WithCodePadding(1, 1).Build())
		assert.Equal(t, []string{"      ", " ab   ", " abcd ", "      "}, rendered.Texts())
	})
}

func TestLayoutEngine_ShrinkingRewrapsOnlyCode(t *testing.T) {
	engine := newTestLayout()
	code := "first := compute(alpha, beta, gamma, delta, epsilon)"
	slide := builders.NewSlideBuilder().
		WithParagraph("short text").
		WithElements(builders.Code("", code)).
		Build()
	theme := builders.NewThemeBuilder().Build()

	wide := engine.Layout(slide, size(80, 40), theme)
	narrow := engine.Layout(slide, size(30, 40), theme)

	paragraphRows := func(r *entities.RenderedSlide) int {
		count := 0
		for _, line := range r.Lines {
			if line.Spans[0].Role == entities.RoleText {
				count++
			}
		}
		return count
	}
	codeRows := func(r *entities.RenderedSlide) []string {
		var out []string
		for _, line := range r.Lines {
			if line.Spans[0].Role == entities.RoleCode {
				out = append(out, line.Text())
			}
		}
		return out
	}

	assert.Equal(t, 1, paragraphRows(wide))
	assert.Equal(t, paragraphRows(wide), paragraphRows(narrow))
	assert.Len(t, codeRows(wide), 1)
	assert.Greater(t, len(codeRows(narrow)), 1)
	for _, line := range codeRows(narrow) {
		assert.LessOrEqual(t, len([]rune(line)), 30)
	}
}

func TestLayoutEngine_Images(t *testing.T) {
	t.Run("scales down to the content width", func(t *testing.T) {
		sizer := &MockImageSizer{}
		handle := entities.NewImageHandle("/slides/wide.png")
		sizer.On("Dimensions", handle).Return(400, 200, nil)

		engine := NewLayoutEngine(nil, sizer, LayoutOptions{}, nil)
		slide := builders.NewSlideBuilder().WithElements(entities.Image{Handle: handle, Alt: "wide"}).Build()

		rendered := engine.Layout(slide, size(20, 40), builders.NewThemeBuilder().Build())
		require.Len(t, rendered.Images, 1)
		assert.Equal(t, entities.CellRegion{Row: 0, Col: 0, Columns: 20, Rows: 5}, rendered.Images[0].Region)
	})

	t.Run("never scales up", func(t *testing.T) {
		sizer := &MockImageSizer{}
		handle := entities.NewImageHandle("/slides/small.png")
		sizer.On("Dimensions", handle).Return(50, 20, nil)

		engine := NewLayoutEngine(nil, sizer, LayoutOptions{}, nil)
		slide := builders.NewSlideBuilder().WithElements(entities.Image{Handle: handle, Align: entities.AlignLeft}).Build()

		rendered := engine.Layout(slide, size(80, 40), builders.NewThemeBuilder().Build())
		require.Len(t, rendered.Images, 1)
		assert.Equal(t, entities.CellRegion{Row: 0, Col: 0, Columns: 5, Rows: 1}, rendered.Images[0].Region)
	})

	t.Run("respects the maximum height", func(t *testing.T) {
		sizer := &MockImageSizer{}
		handle := entities.NewImageHandle("/slides/tall.png")
		sizer.On("Dimensions", handle).Return(100, 2000, nil)

		engine := NewLayoutEngine(nil, sizer, LayoutOptions{ImageMaxHeight: 0.5}, nil)
		slide := builders.NewSlideBuilder().WithElements(entities.Image{Handle: handle}).Build()

		rendered := engine.Layout(slide, size(80, 20), builders.NewThemeBuilder().Build())
		require.Len(t, rendered.Images, 1)
		assert.Equal(t, 10, rendered.Images[0].Region.Rows)
		assert.Equal(t, 1, rendered.Images[0].Region.Columns)
	})

	t.Run("uses the reported cell size", func(t *testing.T) {
		sizer := &MockImageSizer{}
		handle := entities.NewImageHandle("/slides/a.png")
		sizer.On("Dimensions", handle).Return(100, 100, nil)

		engine := NewLayoutEngine(nil, sizer, LayoutOptions{}, nil)
		slide := builders.NewSlideBuilder().WithElements(entities.Image{Handle: handle}).Build()

		ws := entities.WindowSize{Columns: 80, Rows: 40, CellWidth: 5, CellHeight: 10}
		rendered := engine.Layout(slide, ws, builders.NewThemeBuilder().Build())
		require.Len(t, rendered.Images, 1)
		assert.Equal(t, 20, rendered.Images[0].Region.Columns)
		assert.Equal(t, 10, rendered.Images[0].Region.Rows)
		assert.Equal(t, 30, rendered.Images[0].Region.Col, "images are centered by default")
	})

	t.Run("undecodable image becomes a placeholder", func(t *testing.T) {
		sizer := &MockImageSizer{}
		handle := entities.NewImageHandle("/slides/broken.xyz")
		sizer.On("Dimensions", handle).Return(0, 0, entities.ErrUnsupportedImageFormat)

		engine := NewLayoutEngine(nil, sizer, LayoutOptions{}, nil)
		slide := builders.NewSlideBuilder().
			WithParagraph("before").
			WithElements(entities.Image{Handle: handle, Alt: "diagram", Align: entities.AlignLeft}).
			WithParagraph("after").
			Build()

		rendered := engine.Layout(slide, size(80, 40), builders.NewThemeBuilder().Build())
		assert.Empty(t, rendered.Images)
		assert.Equal(t, []string{"before", "[image unavailable: diagram]", "after"}, rendered.Texts())
	})
}

func TestLayoutEngine_Columns(t *testing.T) {
	engine := newTestLayout()
	columns := entities.Columns{
		Widths: []int{1, 1},
		Columns: [][]entities.Element{
			{builders.Paragraph("left")},
			{builders.Paragraph("right")},
		},
	}
	slide := builders.NewSlideBuilder().WithElements(columns).Build()

	rendered := engine.Layout(slide, size(42, 20), builders.NewThemeBuilder().Build())
	require.Len(t, rendered.Lines, 2)
	assert.Equal(t, "left", rendered.Lines[0].Text())
	assert.Equal(t, 0, rendered.Lines[0].Col)
	assert.Equal(t, "right", rendered.Lines[1].Text())
	assert.Equal(t, 22, rendered.Lines[1].Col)
	assert.Equal(t, 0, rendered.Lines[1].Row)
}

func TestLayoutEngine_Spacers(t *testing.T) {
	engine := newTestLayout()

	t.Run("rows", func(t *testing.T) {
		slide := builders.NewSlideBuilder().
			WithParagraph("a").
			WithElements(entities.Spacer{Rows: 2}).
			WithParagraph("b").
			Build()

		rendered := engine.Layout(slide, size(40, 20), builders.NewThemeBuilder().Build())
		require.Len(t, rendered.Lines, 2)
		assert.Equal(t, 3, rendered.Lines[1].Row)
	})

	t.Run("jump to middle", func(t *testing.T) {
		slide := builders.NewSlideBuilder().
			WithElements(entities.Spacer{Center: true}).
			WithParagraph("middle").
			Build()

		rendered := engine.Layout(slide, size(40, 20), builders.NewThemeBuilder().Build())
		require.Len(t, rendered.Lines, 1)
		assert.Equal(t, 10, rendered.Lines[0].Row)
	})

	t.Run("bottom anchored", func(t *testing.T) {
		slide := builders.NewSlideBuilder().
			WithParagraph("top").
			WithElements(entities.Spacer{Bottom: true}).
			WithParagraph("bottom").
			Build()

		rendered := engine.Layout(slide, size(40, 20), builders.NewThemeBuilder().Build())
		require.Len(t, rendered.Lines, 2)
		assert.Equal(t, 19, rendered.Lines[1].Row)
	})
}

func TestLayoutEngine_StylesResolved(t *testing.T) {
	engine := newTestLayout()
	slide := builders.NewSlideBuilder().WithElements(builders.Heading(1, "Title")).Build()

	rendered := engine.Layout(slide, size(40, 10), builders.NewThemeBuilder().Build())
	require.Len(t, rendered.Lines, 1)
	style := rendered.Lines[0].Spans[0].Style
	assert.Equal(t, entities.Color("#ee9322"), style.Foreground)
	assert.True(t, style.Attrs.Has(entities.AttrBold))
	assert.Equal(t, entities.Color("#040312"), rendered.Background)
}

func TestLayoutEngine_Banner(t *testing.T) {
	engine := newTestLayout()
	theme := builders.NewThemeBuilder().Build()

	line := engine.Banner("reload failed:\nbad yaml", size(20, 10), theme)
	assert.Equal(t, 0, line.Row)
	assert.Equal(t, 20, line.Width())
	assert.True(t, strings.HasPrefix(line.Text(), "reload failed: bad"))
	assert.Equal(t, entities.RoleError, line.Spans[0].Role)

	short := engine.Banner("a much longer message than the terminal is wide", size(10, 10), theme)
	assert.Equal(t, 10, short.Width())
	assert.True(t, strings.HasSuffix(short.Text(), "…"))
}

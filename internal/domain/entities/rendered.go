package entities

// WindowSize is the terminal size in cells, plus the cell size in pixels when
// the terminal reports it
type WindowSize struct {
	Columns    int
	Rows       int
	CellWidth  int
	CellHeight int
}

// HasPixelSize reports whether the cell pixel size is known
func (w WindowSize) HasPixelSize() bool {
	return w.CellWidth > 0 && w.CellHeight > 0
}

// RenderedLine is a positioned line of resolved spans
type RenderedLine struct {
	Row   int
	Col   int
	Spans []StyledSpan
}

// Text returns the unstyled text of the line
func (l RenderedLine) Text() string {
	return Text(l.Spans).String()
}

// Width returns the display width of the line
func (l RenderedLine) Width() int {
	return Text(l.Spans).Width()
}

// CellRegion is a rectangle in terminal cells
type CellRegion struct {
	Row     int
	Col     int
	Columns int
	Rows    int
}

// ImagePlacement reserves a region of the slide for an image. Painting is
// done by the image renderer at draw time.
type ImagePlacement struct {
	Region CellRegion
	Handle *ImageHandle
	Alt    string
}

// RenderedSlide is the width/height specific, ready to paint form of a slide
type RenderedSlide struct {
	Index      int
	Size       WindowSize
	Background Color
	Lines      []RenderedLine
	Images     []ImagePlacement
	// Truncated is set when content did not fit and was cut with an ellipsis
	Truncated bool
}

// LineAt returns the line painted at a row, if any
func (r *RenderedSlide) LineAt(row int) (RenderedLine, bool) {
	for _, line := range r.Lines {
		if line.Row == row {
			return line, true
		}
	}
	return RenderedLine{}, false
}

// Texts returns the unstyled text of every line in paint order
func (r *RenderedSlide) Texts() []string {
	out := make([]string, 0, len(r.Lines))
	for _, line := range r.Lines {
		out = append(out, line.Text())
	}
	return out
}

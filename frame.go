package tuiengine

// Frame wraps a buffer borrow plus a grapheme pool borrow for the duration
// of one view call. Widgets draw through the frame and never hold onto it.
type Frame struct {
	buf  *Buffer
	pool *GraphemePool
}

// NewFrame wraps a buffer and pool.
func NewFrame(buf *Buffer, pool *GraphemePool) *Frame {
	return &Frame{buf: buf, pool: pool}
}

// Buffer exposes the underlying buffer.
func (f *Frame) Buffer() *Buffer {
	return f.buf
}

// Pool exposes the grapheme pool.
func (f *Frame) Pool() *GraphemePool {
	return f.pool
}

// Size returns the frame dimensions.
func (f *Frame) Size() Size {
	return Size{W: f.buf.Cols(), H: f.buf.Rows()}
}

// Area returns the frame's full rectangle.
func (f *Frame) Area() Rect {
	return Rect{W: f.buf.Cols(), H: f.buf.Rows()}
}

// SetCell writes one cell at (x, y).
func (f *Frame) SetCell(x, y int, cell Cell) {
	f.buf.SetCell(y, x, cell)
}

// Fill fills a rectangle with a styled space.
func (f *Frame) Fill(area Rect, style Style) {
	cell := NewCell()
	style.ApplyTo(&cell)
	f.buf.FillRect(area, cell)
}

// Clear resets a rectangle to blank default cells.
func (f *Frame) Clear(area Rect) {
	f.buf.FillRect(area, NewCell())
}

// WriteString draws a string starting at (x, y) with the given style,
// clipped to the clip rectangle. Grapheme clusters are interned in the pool
// and wide characters occupy two cells with a continuation spacer. Returns
// the number of columns consumed.
func (f *Frame) WriteString(x, y int, s string, style Style, clip Rect) int {
	clip = clip.Intersect(f.Area())
	if clip.IsEmpty() || y < clip.Y || y >= clip.Bottom() {
		return 0
	}

	col := x
	for _, g := range Graphemes(s) {
		if g.Width == 0 {
			continue
		}
		if col+g.Width > clip.Right() {
			break
		}
		if col < clip.X {
			col += g.Width
			continue
		}

		cell := NewCell()
		style.ApplyTo(&cell)

		runes := []rune(g.Cluster)
		if len(runes) == 1 {
			cell.Char = runes[0]
		} else if f.pool != nil {
			cell.Char = 0
			cell.Grapheme = f.pool.Intern(g.Cluster)
		} else {
			cell.Char = runes[0]
		}
		if g.Width == 2 {
			cell.SetFlag(CellFlagWideChar)
		}
		f.buf.SetCell(y, col, cell)

		if g.Width == 2 {
			spacer := NewCell()
			spacer.Char = 0
			style.ApplyTo(&spacer)
			spacer.SetFlag(CellFlagWideCharSpacer)
			f.buf.SetCell(y, col+1, spacer)
		}

		col += g.Width
	}
	return col - x
}

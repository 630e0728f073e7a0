package tuiengine

import "testing"

// Golden scenario: a 2x2 grid with gaps; a full span covers tracks plus gaps.
func TestGridSpanWithGaps(t *testing.T) {
	g := NewGrid().
		Rows(Fixed(10), Fixed(10)).
		Columns(Fixed(20), Fixed(20)).
		RowGap(2).
		ColGap(5)

	layout := g.Split(NewRect(0, 0, 60, 30))

	span := layout.Span(0, 0, 2, 2)
	if span.W != 45 || span.H != 22 {
		t.Errorf("expected span 45x22, got %dx%d", span.W, span.H)
	}
}

func TestGridCellPlacement(t *testing.T) {
	g := NewGrid().
		Rows(Fixed(10), Fixed(10)).
		Columns(Fixed(20), Fixed(20)).
		RowGap(2).
		ColGap(5)

	layout := g.Split(NewRect(1, 1, 60, 30))

	c00 := layout.Cell(0, 0)
	if c00 != (Rect{X: 1, Y: 1, W: 20, H: 10}) {
		t.Errorf("unexpected cell (0,0): %+v", c00)
	}
	c11 := layout.Cell(1, 1)
	if c11 != (Rect{X: 1 + 20 + 5, Y: 1 + 10 + 2, W: 20, H: 10}) {
		t.Errorf("unexpected cell (1,1): %+v", c11)
	}
}

func TestGridOutOfBoundsCellIsEmpty(t *testing.T) {
	layout := NewGrid().Rows(Fixed(5)).Columns(Fixed(5)).Split(NewRect(0, 0, 20, 20))

	if !layout.Cell(3, 0).IsEmpty() || !layout.Cell(0, 3).IsEmpty() || !layout.Cell(-1, 0).IsEmpty() {
		t.Errorf("expected empty rect for out-of-bounds references")
	}
}

func TestGridSpanClamped(t *testing.T) {
	layout := NewGrid().
		Rows(Fixed(5), Fixed(5)).
		Columns(Fixed(5), Fixed(5)).
		Split(NewRect(0, 0, 20, 20))

	full := layout.Span(0, 0, 2, 2)
	over := layout.Span(0, 0, 99, 99)
	if over != full {
		t.Errorf("expected oversized span clamped: %+v vs %+v", over, full)
	}

	if got := layout.Span(1, 1, 5, 5); got != layout.Cell(1, 1) {
		t.Errorf("expected clamp to single remaining cell, got %+v", got)
	}
}

func TestGridNamedAreas(t *testing.T) {
	g := NewGrid().
		Rows(Fixed(5), Fixed(5)).
		Columns(Fixed(10), Fixed(10)).
		Area("header", GridSpan(0, 0, 1, 2)).
		Area("side", GridCell(1, 0))

	layout := g.Split(NewRect(0, 0, 20, 10))

	header, ok := layout.AreaRect("header")
	if !ok || header.W != 20 || header.H != 5 {
		t.Errorf("unexpected header: %+v (ok=%v)", header, ok)
	}
	side, ok := layout.AreaRect("side")
	if !ok || side != (Rect{X: 0, Y: 5, W: 10, H: 5}) {
		t.Errorf("unexpected side: %+v", side)
	}
	if _, ok := layout.AreaRect("missing"); ok {
		t.Errorf("expected unknown area to report false")
	}
}

func TestGridCellsContainedInParent(t *testing.T) {
	parent := NewRect(3, 4, 33, 21)
	layout := NewGrid().
		Rows(Percentage(50), Fill(), Fixed(4)).
		Columns(Ratio(1, 3), Fill()).
		Gap(1).
		Split(parent)

	layout.Cells(func(row, col int, area Rect) {
		if area.Intersect(parent) != area {
			t.Errorf("cell (%d,%d) %+v escapes parent %+v", row, col, area, parent)
		}
	})
}

func TestGridIterCells(t *testing.T) {
	layout := NewGrid().
		Rows(Fixed(5), Fixed(5)).
		Columns(Fixed(5)).
		Split(NewRect(0, 0, 10, 10))

	count := 0
	layout.Cells(func(row, col int, area Rect) { count++ })
	if count != 2 {
		t.Errorf("expected 2 cells visited, got %d", count)
	}
}

package tuiengine

// CellUpdate is one changed cell in a Patch.
type CellUpdate struct {
	Row  int
	Col  int
	Cell Cell
}

// Patch is an ordered list of cell updates in strictly row-major order,
// tagged with the grid dimensions it applies to.
type Patch struct {
	Cols    int
	Rows    int
	Updates []CellUpdate
}

// IsEmpty returns true if the patch carries no updates.
func (p Patch) IsEmpty() bool {
	return len(p.Updates) == 0
}

// DiffBuffers compares two equally-sized buffers and returns the cells that
// differ by value, in row-major order. Wide characters are never split: when
// a wide pair moves or changes, both halves differ and both are emitted.
// Buffers of mismatched dimensions produce an empty patch; the caller is
// responsible for presenting a full repaint in that case.
func DiffBuffers(prev, next *Buffer) Patch {
	patch := Patch{Cols: next.Cols(), Rows: next.Rows()}
	if prev.Rows() != next.Rows() || prev.Cols() != next.Cols() {
		return patch
	}

	for row := 0; row < next.Rows(); row++ {
		for col := 0; col < next.Cols(); col++ {
			a := prev.Cell(row, col)
			b := next.Cell(row, col)
			if !a.Equal(b) {
				patch.Updates = append(patch.Updates, CellUpdate{
					Row:  row,
					Col:  col,
					Cell: *b,
				})
			}
		}
	}
	return patch
}

// ApplyPatch writes the patch's updates into the buffer. Updates outside the
// buffer bounds are ignored.
func ApplyPatch(buf *Buffer, patch Patch) {
	for _, u := range patch.Updates {
		if cell := buf.Cell(u.Row, u.Col); cell != nil {
			*cell = u.Cell
		}
	}
}

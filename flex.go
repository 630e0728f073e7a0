package tuiengine

// Direction selects the main axis of a Flex container.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
)

// Alignment positions tracks inside leftover main-axis space.
type Alignment int

const (
	AlignStart Alignment = iota
	AlignCenter
	AlignEnd
	AlignSpaceBetween
	AlignSpaceAround
)

// FlowDirection orders tracks along the main axis.
type FlowDirection int

const (
	FlowLTR FlowDirection = iota
	FlowRTL
)

// Flex is a 1-D layout container: it splits a rectangle into one sub-rect
// per constraint along its direction, honoring gap, margin, alignment, and
// flow direction. Vertical and horizontal layouts are structurally symmetric.
type Flex struct {
	Direction   Direction
	Constraints []Constraint
	Align       Alignment
	Gap         int
	Margin      Sides
	Flow        FlowDirection
}

// NewFlex creates a start-aligned container along dir with the given constraints.
func NewFlex(dir Direction, constraints ...Constraint) Flex {
	return Flex{Direction: dir, Constraints: constraints}
}

// WithAlign returns a copy with the alignment set.
func (f Flex) WithAlign(a Alignment) Flex {
	f.Align = a
	return f
}

// WithGap returns a copy with the inter-track gap set.
func (f Flex) WithGap(gap int) Flex {
	if gap < 0 {
		gap = 0
	}
	f.Gap = gap
	return f
}

// WithMargin returns a copy with the margin set.
func (f Flex) WithMargin(m Sides) Flex {
	f.Margin = m
	return f
}

// WithFlow returns a copy with the flow direction set.
func (f Flex) WithFlow(flow FlowDirection) Flex {
	f.Flow = flow
	return f
}

// Split applies the margin, solves the constraints over the inner main axis
// minus total gap, and returns one rectangle per constraint. Rectangle i
// always corresponds to constraint i regardless of flow direction.
func (f Flex) Split(area Rect) []Rect {
	n := len(f.Constraints)
	out := make([]Rect, n)
	if n == 0 {
		return out
	}

	inner := area.Inner(f.Margin)

	mainLen := inner.W
	if f.Direction == Vertical {
		mainLen = inner.H
	}

	totalGap := f.Gap * (n - 1)
	avail := mainLen - totalGap
	if avail < 0 {
		avail = 0
	}

	sizes := Solve(f.Constraints, avail)

	used := totalGap
	for _, s := range sizes {
		used += s
	}
	free := mainLen - used
	if free < 0 {
		free = 0
	}

	lead, between := f.alignSpacing(free, n)

	offset := lead
	for i := 0; i < n; i++ {
		idx := i
		if f.Flow == FlowRTL && f.Direction == Horizontal {
			idx = n - 1 - i
		}

		if f.Direction == Horizontal {
			out[idx] = Rect{X: inner.X + offset, Y: inner.Y, W: sizes[idx], H: inner.H}
		} else {
			out[idx] = Rect{X: inner.X, Y: inner.Y + offset, W: inner.W, H: sizes[idx]}
		}

		offset += sizes[idx] + f.Gap
		if i < n-1 {
			offset += between[i]
		}
	}

	return out
}

// alignSpacing converts leftover main-axis space into a leading offset plus
// per-slot extra spacing between tracks, deterministically.
func (f Flex) alignSpacing(free, n int) (int, []int) {
	between := make([]int, max(n-1, 0))

	switch f.Align {
	case AlignEnd:
		return free, between
	case AlignCenter:
		return free / 2, between
	case AlignSpaceBetween:
		if n > 1 && free > 0 {
			targets := make([]float64, n-1)
			share := float64(free) / float64(n-1)
			for i := range targets {
				targets[i] = share
			}
			between = RoundStable(targets, free)
		}
		return 0, between
	case AlignSpaceAround:
		if free > 0 {
			slots := n + 1
			targets := make([]float64, slots)
			share := float64(free) / float64(slots)
			for i := range targets {
				targets[i] = share
			}
			spread := RoundStable(targets, free)
			copy(between, spread[1:n])
			return spread[0], between
		}
		return 0, between
	default: // AlignStart
		return 0, between
	}
}

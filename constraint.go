package tuiengine

// ConstraintKind selects how a layout track claims space.
type ConstraintKind int

const (
	ConstraintFixed ConstraintKind = iota
	ConstraintPercentage
	ConstraintMin
	ConstraintMax
	ConstraintRatio
	ConstraintFill
)

// Constraint describes one track of a 1-D split.
type Constraint struct {
	Kind   ConstraintKind
	Amount int
	Num    int
	Den    int
}

// Fixed claims exactly n cells when space allows.
func Fixed(n int) Constraint {
	return Constraint{Kind: ConstraintFixed, Amount: n}
}

// Percentage claims floor(p% of the available length); p is clamped to [0, 100].
func Percentage(p int) Constraint {
	return Constraint{Kind: ConstraintPercentage, Amount: clamp(p, 0, 100)}
}

// Min claims at least n cells, growing into leftover space.
func Min(n int) Constraint {
	return Constraint{Kind: ConstraintMin, Amount: n}
}

// Max claims leftover space but never more than n cells.
func Max(n int) Constraint {
	return Constraint{Kind: ConstraintMax, Amount: n}
}

// Ratio claims floor(num/den of the available length). A non-positive den is
// normalized to 1.
func Ratio(num, den int) Constraint {
	if den <= 0 {
		den = 1
	}
	return Constraint{Kind: ConstraintRatio, Num: num, Den: den}
}

// Fill claims an equal share of whatever space remains.
func Fill() Constraint {
	return Constraint{Kind: ConstraintFill}
}

// Solve splits an available length across the constraints and returns one
// integer length per constraint. The output sum never exceeds the available
// length, identical inputs yield identical outputs, and every length is
// non-negative. Allocation runs in phases with an index-ascending tie-break:
// Fixed, then Percentage and Ratio, then Min floors, then leftover space
// split among Fill, Max, and Min tracks, then Max clamps downward.
func Solve(constraints []Constraint, length int) []int {
	out := make([]int, len(constraints))
	if len(constraints) == 0 || length <= 0 {
		return out
	}

	remaining := length

	take := func(n int) int {
		if n < 0 {
			n = 0
		}
		if n > remaining {
			n = remaining
		}
		remaining -= n
		return n
	}

	// Phase 1: Fixed tracks take their declared value, clamped to what is left.
	for i, c := range constraints {
		if c.Kind == ConstraintFixed {
			out[i] = take(c.Amount)
		}
	}

	// Phase 2: Percentage and Ratio tracks take their floor share of the
	// whole length.
	for i, c := range constraints {
		switch c.Kind {
		case ConstraintPercentage:
			out[i] = take(c.Amount * length / 100)
		case ConstraintRatio:
			out[i] = take(c.Num * length / c.Den)
		}
	}

	// Phase 3: Min tracks reserve their floor.
	for i, c := range constraints {
		if c.Kind == ConstraintMin {
			out[i] = take(c.Amount)
		}
	}

	// Phase 4: leftover space is split evenly among Fill, Max, and Min
	// tracks by a stable largest-remainder rule.
	var growers []int
	for i, c := range constraints {
		switch c.Kind {
		case ConstraintFill, ConstraintMax, ConstraintMin:
			growers = append(growers, i)
		}
	}
	if len(growers) > 0 && remaining > 0 {
		targets := make([]float64, len(growers))
		share := float64(remaining) / float64(len(growers))
		for i := range targets {
			targets[i] = share
		}
		extra := RoundStable(targets, remaining)
		for j, idx := range growers {
			out[idx] += extra[j]
		}
		remaining = 0
	}

	// Phase 5: Max clamps downward.
	for i, c := range constraints {
		if c.Kind == ConstraintMax && out[i] > c.Amount {
			out[i] = c.Amount
		}
		if out[i] < 0 {
			out[i] = 0
		}
	}

	return out
}

// RoundStable rounds fractional targets to integers summing exactly to
// total, using the largest-remainder rule with an index-ascending tie-break.
// Each component differs from its target by less than one.
func RoundStable(targets []float64, total int) []int {
	out := make([]int, len(targets))
	if len(targets) == 0 {
		return out
	}
	if total < 0 {
		total = 0
	}

	floorSum := 0
	remainders := make([]float64, len(targets))
	for i, t := range targets {
		if t < 0 {
			t = 0
		}
		f := int(t)
		out[i] = f
		remainders[i] = t - float64(f)
		floorSum += f
	}

	leftover := total - floorSum
	if leftover <= 0 {
		// Floors already meet or exceed the total: trim from the end,
		// never below zero.
		for i := len(out) - 1; i >= 0 && leftover < 0; i-- {
			trim := min(out[i], -leftover)
			out[i] -= trim
			leftover += trim
		}
		return out
	}

	// Hand out the leftover units to the largest remainders, wrapping
	// around in index order if every remainder has been served.
	for leftover > 0 {
		best := -1
		for i, r := range remainders {
			if r <= 0 {
				continue
			}
			if best < 0 || r > remainders[best] {
				best = i
			}
		}
		if best < 0 {
			for i := 0; leftover > 0 && i < len(out); i++ {
				out[i]++
				leftover--
			}
			break
		}
		out[best]++
		remainders[best] = 0
		leftover--
	}

	return out
}

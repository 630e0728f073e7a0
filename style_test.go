package tuiengine

import "testing"

func TestStyleMergeIdentities(t *testing.T) {
	red := RGB(255, 0, 0)
	child := NewStyle().WithFg(red).Bold()
	empty := NewStyle()

	// child.Merge(empty) == child
	merged := child.Merge(empty)
	if merged.Fg == nil || *merged.Fg != red || merged.Attrs != CellFlagBold {
		t.Errorf("merge with empty must be identity: %+v", merged)
	}

	// empty.Merge(parent) == parent
	parent := NewStyle().WithBg(RGB(0, 0, 255)).Italic()
	merged = empty.Merge(parent)
	if merged.Bg == nil || *merged.Bg != RGB(0, 0, 255) || merged.Attrs != CellFlagItalic {
		t.Errorf("empty merged with parent must equal parent: %+v", merged)
	}
}

func TestStyleMergeChildWins(t *testing.T) {
	red := RGB(255, 0, 0)
	blue := RGB(0, 0, 255)

	child := NewStyle().WithFg(red)
	parent := NewStyle().WithFg(blue).WithBg(RGB(1, 1, 1))

	merged := child.Merge(parent)
	if *merged.Fg != red {
		t.Errorf("child fg must win, got %08x", uint32(*merged.Fg))
	}
	if merged.Bg == nil || *merged.Bg != RGB(1, 1, 1) {
		t.Errorf("parent must fill unset bg")
	}
}

func TestStyleAttrsUnion(t *testing.T) {
	child := NewStyle().Bold()
	parent := NewStyle().Italic().Underline()

	merged := child.Merge(parent)
	want := CellFlagBold | CellFlagItalic | CellFlagUnderline
	if merged.Attrs != want {
		t.Errorf("expected union %b, got %b", want, merged.Attrs)
	}
}

func TestStylePatch(t *testing.T) {
	base := NewStyle().WithFg(RGB(1, 1, 1))
	patch := NewStyle().WithFg(RGB(2, 2, 2))

	got := base.Patch(patch)
	if *got.Fg != RGB(2, 2, 2) {
		t.Errorf("patch must prefer the child's fields")
	}
}

func TestStyleUnderlineCollapse(t *testing.T) {
	s := NewStyle().WithAttrs(CellFlagCurlyUnderline | CellFlagBold)

	attrs := s.CellAttrs()
	if attrs&CellFlagCurlyUnderline != 0 {
		t.Errorf("curly underline must collapse at cell level")
	}
	if attrs&CellFlagUnderline == 0 || attrs&CellFlagBold == 0 {
		t.Errorf("expected basic underline and bold, got %b", attrs)
	}
}

func TestStyleApplyTo(t *testing.T) {
	cell := NewCell()
	NewStyle().WithFg(RGB(9, 9, 9)).Reverse().ApplyTo(&cell)

	if cell.Fg != RGB(9, 9, 9) || !cell.HasFlag(CellFlagReverse) {
		t.Errorf("unexpected cell after apply: %+v", cell)
	}
	if cell.Bg != DefaultBackground {
		t.Errorf("unset bg must keep cell background")
	}
}

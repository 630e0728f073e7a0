package tuiengine

// Style is a cascading set of optional cell attributes. Nil fields inherit
// from the parent on merge; the attribute bitset combines by union.
type Style struct {
	Fg             *Color
	Bg             *Color
	UnderlineColor *Color
	Attrs          CellFlags
}

// NewStyle creates an empty style (every field unset).
func NewStyle() Style {
	return Style{}
}

// WithFg returns a copy with the foreground set.
func (s Style) WithFg(c Color) Style {
	s.Fg = &c
	return s
}

// WithBg returns a copy with the background set.
func (s Style) WithBg(c Color) Style {
	s.Bg = &c
	return s
}

// WithUnderlineColor returns a copy with the underline color set.
func (s Style) WithUnderlineColor(c Color) Style {
	s.UnderlineColor = &c
	return s
}

// WithAttrs returns a copy with the given attributes added.
func (s Style) WithAttrs(attrs CellFlags) Style {
	s.Attrs |= attrs
	return s
}

// Bold returns a copy with the bold attribute added.
func (s Style) Bold() Style { return s.WithAttrs(CellFlagBold) }

// Italic returns a copy with the italic attribute added.
func (s Style) Italic() Style { return s.WithAttrs(CellFlagItalic) }

// Underline returns a copy with the underline attribute added.
func (s Style) Underline() Style { return s.WithAttrs(CellFlagUnderline) }

// Reverse returns a copy with the reverse attribute added.
func (s Style) Reverse() Style { return s.WithAttrs(CellFlagReverse) }

// IsEmpty returns true if no field is set.
func (s Style) IsEmpty() bool {
	return s.Fg == nil && s.Bg == nil && s.UnderlineColor == nil && s.Attrs == 0
}

// Merge resolves the cascade: this style's set fields take precedence and
// the parent fills unset fields. Attribute bitsets combine by union.
// Merging with an empty style is an identity.
func (s Style) Merge(parent Style) Style {
	out := s
	if out.Fg == nil {
		out.Fg = parent.Fg
	}
	if out.Bg == nil {
		out.Bg = parent.Bg
	}
	if out.UnderlineColor == nil {
		out.UnderlineColor = parent.UnderlineColor
	}
	out.Attrs |= parent.Attrs
	return out
}

// Patch layers child over this style: child's set fields win.
func (s Style) Patch(child Style) Style {
	return child.Merge(s)
}

// CellAttrs converts the style to cell-level attributes, collapsing the
// extended underline variants (double, curly) to basic underline.
func (s Style) CellAttrs() CellFlags {
	attrs := s.Attrs
	if attrs&(CellFlagDoubleUnderline|CellFlagCurlyUnderline) != 0 {
		attrs &^= CellFlagDoubleUnderline | CellFlagCurlyUnderline
		attrs |= CellFlagUnderline
	}
	return attrs
}

// ApplyTo overlays the style onto an existing cell.
func (s Style) ApplyTo(cell *Cell) {
	if s.Fg != nil {
		cell.Fg = *s.Fg
	}
	if s.Bg != nil {
		cell.Bg = *s.Bg
	}
	if s.UnderlineColor != nil {
		cell.UnderlineColor = *s.UnderlineColor
	}
	cell.Flags |= s.CellAttrs()
}

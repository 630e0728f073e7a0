package tuiengine

// Cursor tracks the current position and rendering state (0-based
// coordinates). Position is always clamped inside the viewport; the
// transient "one past the right edge" state is modeled by PendingWrap.
type Cursor struct {
	Row         int
	Col         int
	Shape       CursorShape
	Visible     bool
	PendingWrap bool
}

// NewCursor creates a visible cursor at (0, 0) with the default shape.
func NewCursor() *Cursor {
	return &Cursor{
		Shape:   CursorShapeDefault,
		Visible: true,
	}
}

// SavedCursor stores cursor position, cell attributes, charset state, and
// origin mode for restoration. Used by DECSC/DECRC and when switching
// between primary and alternate screens.
type SavedCursor struct {
	Row          int
	Col          int
	Attrs        CellTemplate
	OriginMode   bool
	CharsetIndex int
	Charsets     [4]Charset
}

// CellTemplate defines default attributes applied to newly written
// characters. Modified by SGR (Select Graphic Rendition) escape sequences.
type CellTemplate struct {
	Cell
}

// NewCellTemplate creates a template with default attributes (default colors, no flags).
func NewCellTemplate() CellTemplate {
	return CellTemplate{
		Cell: NewCell(),
	}
}

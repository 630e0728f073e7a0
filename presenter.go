package tuiengine

import (
	"bytes"
	"fmt"
	"io"

	"github.com/lucasb-eyer/go-colorful"
)

// syncUpdateThreshold is the fraction of grid cells a patch must cover
// before the presenter brackets the output with BSU/ESU.
const syncUpdateThreshold = 0.25

// renderStyle is the style state the presenter believes the terminal holds.
type renderStyle struct {
	Fg             Color
	Bg             Color
	UnderlineColor Color
	Flags          CellFlags
	Link           *Hyperlink
}

func defaultRenderStyle() renderStyle {
	return renderStyle{
		Fg: DefaultForeground,
		Bg: DefaultBackground,
	}
}

// Presenter turns patches into a minimal ANSI byte stream honoring a
// declared capability set. It tracks the cursor position and style it last
// emitted so consecutive updates cost as few bytes as possible. Given the
// same (target, patch, capabilities) the emitted bytes are identical.
type Presenter struct {
	out  io.Writer
	caps TerminalCapabilities
	pool *GraphemePool

	// Known terminal state. Row/col are -1 when unknown.
	knownRow   int
	knownCol   int
	style      renderStyle
	styleKnown bool

	nearest256 map[Color]int
	nearest16  map[Color]int
}

// NewPresenter creates a presenter writing to the given sink.
func NewPresenter(out io.Writer, caps TerminalCapabilities) *Presenter {
	return &Presenter{
		out:        out,
		caps:       caps,
		knownRow:   -1,
		knownCol:   -1,
		nearest256: make(map[Color]int),
		nearest16:  make(map[Color]int),
	}
}

// SetPool installs the grapheme pool used to resolve cluster handles.
// Without a pool, cells referencing clusters render their inline rune.
func (p *Presenter) SetPool(pool *GraphemePool) {
	p.pool = pool
}

// Capabilities returns the capability record the presenter honors.
func (p *Presenter) Capabilities() TerminalCapabilities {
	return p.caps
}

// Forget discards the known cursor and style state, forcing absolute
// positioning and a full style set on the next emission.
func (p *Presenter) Forget() {
	p.knownRow = -1
	p.knownCol = -1
	p.styleKnown = false
}

// Present writes the ANSI bytes that transform the previously presented
// state into the target buffer, following the patch's row-major updates.
// On a write error nothing about the known state is assumed and the caller
// should retry with a full repaint.
func (p *Presenter) Present(target *Buffer, patch Patch) error {
	if patch.IsEmpty() {
		return nil
	}

	var buf bytes.Buffer

	covered := len(patch.Updates)
	total := patch.Cols * patch.Rows
	sync := p.caps.SupportsSynchronizedUpdate && total > 0 &&
		float64(covered) >= syncUpdateThreshold*float64(total)

	p.bracketSync(&buf, sync, func() {
		for _, u := range patch.Updates {
			p.emitUpdate(&buf, u, patch.Cols)
		}
	})

	return p.flush(buf.Bytes())
}

// FullRepaint emits a cursor home, a clear-screen, and a row-major stream of
// every non-blank cell, resetting styles as needed. Used when no previous
// buffer exists to diff against.
func (p *Presenter) FullRepaint(target *Buffer) error {
	var buf bytes.Buffer

	p.bracketSync(&buf, p.caps.SupportsSynchronizedUpdate, func() {
		buf.WriteString("\x1b[0m")
		buf.WriteString("\x1b[H")
		buf.WriteString("\x1b[2J")
		p.style = defaultRenderStyle()
		p.styleKnown = true
		p.knownRow = 0
		p.knownCol = 0

		blank := NewCell()
		for row := 0; row < target.Rows(); row++ {
			for col := 0; col < target.Cols(); col++ {
				cell := target.Cell(row, col)
				if cell.Equal(&blank) || cell.IsWideSpacer() {
					continue
				}
				p.emitUpdate(&buf, CellUpdate{Row: row, Col: col, Cell: *cell}, target.Cols())
			}
		}
	})

	return p.flush(buf.Bytes())
}

// bracketSync wraps the emission in BSU/ESU when active. The closing ESU is
// appended on every exit path out of emit, including panics, so a
// synchronized bracket is never left open.
func (p *Presenter) bracketSync(buf *bytes.Buffer, active bool, emit func()) {
	if !active {
		emit()
		return
	}
	buf.WriteString("\x1b[?2026h")
	defer buf.WriteString("\x1b[?2026l")
	emit()
}

func (p *Presenter) flush(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if _, err := p.out.Write(data); err != nil {
		// The terminal state is unknown after a failed write
		p.Forget()
		return fmt.Errorf("presenter: %w", err)
	}
	return nil
}

func (p *Presenter) emitUpdate(buf *bytes.Buffer, u CellUpdate, cols int) {
	// Spacer halves are written implicitly by their wide partner
	if u.Cell.IsWideSpacer() {
		return
	}

	if p.knownRow != u.Row || p.knownCol != u.Col {
		fmt.Fprintf(buf, "\x1b[%d;%dH", u.Row+1, u.Col+1)
		p.knownRow = u.Row
		p.knownCol = u.Col
	}

	p.emitStyle(buf, &u.Cell)
	p.emitContent(buf, &u.Cell)

	width := 1
	if u.Cell.IsWide() {
		width = 2
	}
	p.knownCol += width
	if p.knownCol >= cols {
		// The cursor position at the right edge is pending-wrap territory;
		// force absolute positioning for the next update.
		p.knownRow = -1
		p.knownCol = -1
	}
}

func (p *Presenter) emitContent(buf *bytes.Buffer, cell *Cell) {
	switch {
	case cell.Grapheme != 0 && p.pool != nil:
		if s := p.pool.Lookup(cell.Grapheme); s != "" {
			buf.WriteString(s)
			return
		}
		buf.WriteByte(' ')
	case cell.Char == 0:
		buf.WriteByte(' ')
	default:
		buf.WriteRune(cell.Char)
	}
}

// emitStyle writes the minimal SGR transition from the known style to the
// cell's style. Removing attributes falls back to a reset followed by a full
// set; additions and color changes are emitted individually.
func (p *Presenter) emitStyle(buf *bytes.Buffer, cell *Cell) {
	want := renderStyle{
		Fg:             cell.Fg,
		Bg:             cell.Bg,
		UnderlineColor: cell.UnderlineColor,
		Flags:          cell.Flags &^ (CellFlagWideChar | CellFlagWideCharSpacer),
		Link:           cell.Hyperlink,
	}
	if !p.caps.SupportsUnderlineVariants {
		// Collapse extended underline variants to the basic form
		if want.Flags&(CellFlagDoubleUnderline|CellFlagCurlyUnderline) != 0 {
			want.Flags &^= CellFlagDoubleUnderline | CellFlagCurlyUnderline
			want.Flags |= CellFlagUnderline
		}
		want.UnderlineColor = ColorTransparent
	}
	if p.caps.ColorDepth == ColorAscii {
		want.Fg = DefaultForeground
		want.Bg = DefaultBackground
		want.UnderlineColor = ColorTransparent
	}

	var params []string

	removed := p.style.Flags &^ want.Flags
	fullSet := !p.styleKnown || removed != 0

	if fullSet {
		params = append(params, "0")
		params = append(params, p.flagParams(want.Flags)...)
		if want.Fg != DefaultForeground {
			params = append(params, p.fgParams(want.Fg)...)
		}
		if want.Bg != DefaultBackground {
			params = append(params, p.bgParams(want.Bg)...)
		}
		if want.UnderlineColor != ColorTransparent && p.caps.SupportsUnderlineVariants {
			params = append(params, p.underlineColorParams(want.UnderlineColor)...)
		}
	} else {
		added := want.Flags &^ p.style.Flags
		params = append(params, p.flagParams(added)...)
		if want.Fg != p.style.Fg {
			if want.Fg == DefaultForeground {
				params = append(params, "39")
			} else {
				params = append(params, p.fgParams(want.Fg)...)
			}
		}
		if want.Bg != p.style.Bg {
			if want.Bg == DefaultBackground {
				params = append(params, "49")
			} else {
				params = append(params, p.bgParams(want.Bg)...)
			}
		}
		if want.UnderlineColor != p.style.UnderlineColor && p.caps.SupportsUnderlineVariants {
			if want.UnderlineColor == ColorTransparent {
				params = append(params, "59")
			} else {
				params = append(params, p.underlineColorParams(want.UnderlineColor)...)
			}
		}
	}

	if len(params) > 0 {
		buf.WriteString("\x1b[")
		for i, param := range params {
			if i > 0 {
				buf.WriteByte(';')
			}
			buf.WriteString(param)
		}
		buf.WriteByte('m')
	}

	if p.caps.SupportsHyperlinks && !hyperlinkEqual(p.style.Link, want.Link) {
		p.emitHyperlink(buf, want.Link)
	} else if !p.caps.SupportsHyperlinks {
		want.Link = nil
	}

	p.style = want
	p.styleKnown = true
}

func (p *Presenter) emitHyperlink(buf *bytes.Buffer, link *Hyperlink) {
	if link == nil {
		buf.WriteString("\x1b]8;;\x1b\\")
		return
	}
	buf.WriteString("\x1b]8;")
	if link.ID != "" {
		buf.WriteString("id=")
		buf.WriteString(link.ID)
	}
	buf.WriteByte(';')
	buf.WriteString(link.URI)
	buf.WriteString("\x1b\\")
}

func (p *Presenter) flagParams(flags CellFlags) []string {
	var params []string
	if flags&CellFlagBold != 0 {
		params = append(params, "1")
	}
	if flags&CellFlagDim != 0 {
		params = append(params, "2")
	}
	if flags&CellFlagItalic != 0 {
		params = append(params, "3")
	}
	if flags&CellFlagUnderline != 0 {
		params = append(params, "4")
	}
	if flags&CellFlagDoubleUnderline != 0 {
		params = append(params, "4:2")
	}
	if flags&CellFlagCurlyUnderline != 0 {
		params = append(params, "4:3")
	}
	if flags&CellFlagBlink != 0 {
		params = append(params, "5")
	}
	if flags&CellFlagReverse != 0 {
		params = append(params, "7")
	}
	if flags&CellFlagHidden != 0 {
		params = append(params, "8")
	}
	if flags&CellFlagStrike != 0 {
		params = append(params, "9")
	}
	return params
}

func (p *Presenter) fgParams(c Color) []string {
	switch p.caps.ColorDepth {
	case ColorTrueColor:
		return []string{fmt.Sprintf("38;2;%d;%d;%d", c.R(), c.G(), c.B())}
	case ColorIndexed256:
		return []string{fmt.Sprintf("38;5;%d", p.nearestIndexed(c))}
	case ColorAnsi16:
		n := p.nearestAnsi(c)
		if n < 8 {
			return []string{fmt.Sprintf("%d", 30+n)}
		}
		return []string{fmt.Sprintf("%d", 90+n-8)}
	default:
		return nil
	}
}

func (p *Presenter) bgParams(c Color) []string {
	switch p.caps.ColorDepth {
	case ColorTrueColor:
		return []string{fmt.Sprintf("48;2;%d;%d;%d", c.R(), c.G(), c.B())}
	case ColorIndexed256:
		return []string{fmt.Sprintf("48;5;%d", p.nearestIndexed(c))}
	case ColorAnsi16:
		n := p.nearestAnsi(c)
		if n < 8 {
			return []string{fmt.Sprintf("%d", 40+n)}
		}
		return []string{fmt.Sprintf("%d", 100+n-8)}
	default:
		return nil
	}
}

func (p *Presenter) underlineColorParams(c Color) []string {
	switch p.caps.ColorDepth {
	case ColorTrueColor:
		return []string{fmt.Sprintf("58;2;%d;%d;%d", c.R(), c.G(), c.B())}
	case ColorIndexed256:
		return []string{fmt.Sprintf("58;5;%d", p.nearestIndexed(c))}
	default:
		return nil
	}
}

// nearestIndexed maps a color to its closest 256-palette entry by Lab
// distance. Results are cached per presenter.
func (p *Presenter) nearestIndexed(c Color) int {
	if n, ok := p.nearest256[c]; ok {
		return n
	}
	n := nearestPaletteEntry(c, DefaultPalette[:])
	p.nearest256[c] = n
	return n
}

// nearestAnsi maps a color to its closest entry among the 16 base colors.
func (p *Presenter) nearestAnsi(c Color) int {
	if n, ok := p.nearest16[c]; ok {
		return n
	}
	n := nearestPaletteEntry(c, DefaultPalette[:16])
	p.nearest16[c] = n
	return n
}

func nearestPaletteEntry(c Color, palette []Color) int {
	target := toColorful(c)
	best := 0
	bestDist := -1.0
	for i, entry := range palette {
		d := target.DistanceLab(toColorful(entry))
		if bestDist < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func toColorful(c Color) colorful.Color {
	return colorful.Color{
		R: float64(c.R()) / 255,
		G: float64(c.G()) / 255,
		B: float64(c.B()) / 255,
	}
}

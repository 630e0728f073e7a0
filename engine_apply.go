package tuiengine

// apply mutates engine state for a single action. The switch is exhaustive
// over the action alphabet; genuinely unknown sequences arrive as
// ActionEscape and are ignored at this layer.
func (e *Engine) apply(action Action) {
	switch act := action.(type) {
	case ActionPrint:
		e.print(act.Rune)
	case ActionBell:
		// No audible surface in a headless engine
	case ActionBackspace:
		if e.cursor.Col > 0 {
			e.cursor.Col--
		}
		e.cursor.PendingWrap = false
	case ActionTab:
		for i := 0; i < act.N; i++ {
			e.cursor.Col = e.activeBuffer.NextTabStop(e.cursor.Col)
		}
		e.cursor.PendingWrap = false
	case ActionLineFeed:
		e.lineFeed()
	case ActionCarriageReturn:
		e.cursor.Col = 0
		e.cursor.PendingWrap = false

	case ActionCursorUp:
		e.cursor.Row = clamp(e.cursor.Row-act.N, 0, e.rows-1)
		e.cursor.PendingWrap = false
	case ActionCursorDown:
		e.cursor.Row = clamp(e.cursor.Row+act.N, 0, e.rows-1)
		e.cursor.PendingWrap = false
	case ActionCursorForward:
		e.cursor.Col = clamp(e.cursor.Col+act.N, 0, e.cols-1)
		e.cursor.PendingWrap = false
	case ActionCursorBack:
		e.cursor.Col = clamp(e.cursor.Col-act.N, 0, e.cols-1)
		e.cursor.PendingWrap = false
	case ActionCursorNextLine:
		e.cursor.Row = clamp(e.cursor.Row+act.N, 0, e.rows-1)
		e.cursor.Col = 0
		e.cursor.PendingWrap = false
	case ActionCursorPrevLine:
		e.cursor.Row = clamp(e.cursor.Row-act.N, 0, e.rows-1)
		e.cursor.Col = 0
		e.cursor.PendingWrap = false
	case ActionCursorRow:
		e.cursor.Row = e.clampRow(e.effectiveRow(act.Row))
		e.cursor.PendingWrap = false
	case ActionCursorColumn:
		e.cursor.Col = clamp(act.Col, 0, e.cols-1)
		e.cursor.PendingWrap = false
	case ActionCursorPosition:
		e.cursor.Row = e.clampRow(e.effectiveRow(act.Row))
		e.cursor.Col = clamp(act.Col, 0, e.cols-1)
		e.cursor.PendingWrap = false

	case ActionSetScrollRegion:
		e.setScrollRegion(act.Top, act.Bottom)
	case ActionScrollUp:
		e.activeBuffer.ScrollUp(e.scrollTop, e.scrollBottom, act.N, e.template.Bg)
	case ActionScrollDown:
		e.activeBuffer.ScrollDown(e.scrollTop, e.scrollBottom, act.N, e.template.Bg)
	case ActionIndex:
		e.index()
	case ActionReverseIndex:
		e.reverseIndex()
	case ActionNextLine:
		e.index()
		e.cursor.Col = 0

	case ActionInsertLines:
		if e.cursor.Row >= e.scrollTop && e.cursor.Row < e.scrollBottom {
			e.activeBuffer.InsertLines(e.cursor.Row, act.N, e.scrollBottom, e.template.Bg)
		}
	case ActionDeleteLines:
		if e.cursor.Row >= e.scrollTop && e.cursor.Row < e.scrollBottom {
			e.activeBuffer.DeleteLines(e.cursor.Row, act.N, e.scrollBottom, e.template.Bg)
		}
	case ActionInsertChars:
		e.activeBuffer.InsertBlanks(e.cursor.Row, e.cursor.Col, act.N, e.template.Bg)
	case ActionDeleteChars:
		e.activeBuffer.DeleteChars(e.cursor.Row, e.cursor.Col, act.N, e.template.Bg)
	case ActionEraseChars:
		e.activeBuffer.ClearRowRange(e.cursor.Row, e.cursor.Col, e.cursor.Col+act.N, e.template.Bg)
	case ActionEraseInDisplay:
		e.eraseInDisplay(act.Mode)
	case ActionEraseInLine:
		e.eraseInLine(act.Mode)
	case ActionRepeatChar:
		if e.lastPrinted != 0 {
			for i := 0; i < act.N; i++ {
				e.print(e.lastPrinted)
			}
		}

	case ActionSGR:
		e.applySGR(act.Params)
	case ActionDECSet:
		e.setDECMode(act.Mode, true)
	case ActionDECReset:
		e.setDECMode(act.Mode, false)
	case ActionANSISet:
		if flag, ok := ansiModeFlag(act.Mode); ok {
			e.modes |= flag
		}
	case ActionANSIReset:
		if flag, ok := ansiModeFlag(act.Mode); ok {
			e.modes &^= flag
		}
	case ActionRequestMode:
		// Reply-only; handled by the reply engine

	case ActionSaveCursor:
		e.saveCursor()
	case ActionRestoreCursor:
		e.restoreCursor()
	case ActionSetCursorShape:
		e.cursor.Shape = act.Shape

	case ActionFullReset:
		e.fullReset()
	case ActionSoftReset:
		e.softReset()

	case ActionSetTitle:
		e.title = act.Title
	case ActionSetHyperlink:
		if act.URI == "" {
			e.currentHyperlink = nil
		} else {
			e.currentHyperlink = &Hyperlink{ID: act.ID, URI: act.URI}
		}

	case ActionTabSet:
		e.activeBuffer.SetTabStop(e.cursor.Col)
	case ActionTabClear:
		switch act.Mode {
		case TabClearCurrent:
			e.activeBuffer.ClearTabStop(e.cursor.Col)
		case TabClearAll:
			e.activeBuffer.ClearAllTabStops()
		}
	case ActionBackTab:
		for i := 0; i < act.N; i++ {
			e.cursor.Col = e.activeBuffer.PrevTabStop(e.cursor.Col)
		}
		e.cursor.PendingWrap = false

	case ActionDeviceAttributes, ActionDeviceStatus:
		// Reply-only; handled by the reply engine

	case ActionDesignateCharset:
		if act.Slot >= 0 && act.Slot < 4 {
			e.charsets[act.Slot] = act.Charset
		}
	case ActionSingleShift:
		switch act.Slot {
		case 2, 3:
			e.singleShift = act.Slot
		case -1: // SO invokes G1
			e.activeCharset = 1
		case -2: // SI invokes G0
			e.activeCharset = 0
		}

	case ActionScreenAlignment:
		e.activeBuffer.FillWithE()
		e.cursor.Row = 0
		e.cursor.Col = 0
		e.cursor.PendingWrap = false
	case ActionKeypadMode:
		if act.Application {
			e.modes |= ModeKeypadApplication
		} else {
			e.modes &^= ModeKeypadApplication
		}

	case ActionMouse, ActionPasteStart, ActionPasteEnd, ActionFocus:
		// Input-side sequences; meaningless on the output path

	case ActionEscape:
		// Unrecognized escape sequence; embedders may log via the parser
	}
}

// effectiveRow returns the effective row considering origin mode.
func (e *Engine) effectiveRow(row int) int {
	if e.modes&ModeOrigin != 0 {
		return row + e.scrollTop
	}
	return row
}

// clampRow clamps a row to the viewport, or to the scroll region under
// origin mode.
func (e *Engine) clampRow(row int) int {
	if e.modes&ModeOrigin != 0 {
		return clamp(row, e.scrollTop, e.scrollBottom-1)
	}
	return clamp(row, 0, e.rows-1)
}

// print writes a rune at the cursor, honoring the width policy, autowrap,
// pending wrap, insert mode, and charset translation.
func (e *Engine) print(r rune) {
	// Handle line drawing charset, honoring a pending single shift
	charset := e.charsets[e.activeCharset]
	if e.singleShift >= 0 {
		charset = e.charsets[e.singleShift]
		e.singleShift = -1
	}
	if charset == CharsetLineDrawing {
		r = translateLineDrawing(r)
	}

	width := e.widthPolicy(r)

	// Zero-width characters (combining marks) are not given their own cell
	if width == 0 {
		return
	}

	// A pending wrap from a previous write resolves first
	if e.cursor.PendingWrap {
		if e.modes&ModeLineWrap != 0 {
			e.wrapLine()
		}
		e.cursor.PendingWrap = false
	}

	// A wide character that does not fit in the remaining columns wraps
	// first when autowrap is on, otherwise the write is a no-op.
	if width == 2 && e.cursor.Col+width > e.cols {
		if e.modes&ModeLineWrap == 0 {
			return
		}
		e.wrapLine()
	}

	// Insert mode: shift characters to the right
	if e.modes&ModeInsert != 0 {
		e.activeBuffer.InsertBlanks(e.cursor.Row, e.cursor.Col, width, e.template.Bg)
	}

	cell := Cell{
		Char:           r,
		Fg:             e.template.Fg,
		Bg:             e.template.Bg,
		UnderlineColor: e.template.UnderlineColor,
		Flags:          e.template.Flags,
		Hyperlink:      e.currentHyperlink,
	}
	if width == 2 {
		cell.SetFlag(CellFlagWideChar)
	}
	e.activeBuffer.SetCell(e.cursor.Row, e.cursor.Col, cell)

	if width == 2 {
		spacer := NewCell()
		spacer.Char = 0
		spacer.Fg = e.template.Fg
		spacer.Bg = e.template.Bg
		spacer.SetFlag(CellFlagWideCharSpacer)
		e.activeBuffer.SetCell(e.cursor.Row, e.cursor.Col+1, spacer)
	}

	e.lastPrinted = r

	e.cursor.Col += width
	if e.cursor.Col >= e.cols {
		// One past the right edge: the cursor stays on the last column and
		// the overflow is modeled by the pending-wrap flag.
		e.cursor.Col = e.cols - 1
		e.cursor.PendingWrap = true
	}
}

// wrapLine moves the cursor to the start of the next row, scrolling when the
// cursor leaves the scroll region.
func (e *Engine) wrapLine() {
	e.activeBuffer.SetWrapped(e.cursor.Row, true)
	e.cursor.Col = 0
	e.cursor.Row++
	e.scrollIfNeeded()
}

// scrollIfNeeded performs scrolling if the cursor moved outside the scroll region.
func (e *Engine) scrollIfNeeded() {
	if e.cursor.Row >= e.scrollBottom {
		linesToScroll := e.cursor.Row - e.scrollBottom + 1
		e.activeBuffer.ScrollUp(e.scrollTop, e.scrollBottom, linesToScroll, e.template.Bg)
		e.cursor.Row = e.scrollBottom - 1
	} else if e.cursor.Row < e.scrollTop {
		linesToScroll := e.scrollTop - e.cursor.Row
		e.activeBuffer.ScrollDown(e.scrollTop, e.scrollBottom, linesToScroll, e.template.Bg)
		e.cursor.Row = e.scrollTop
	}
}

func (e *Engine) lineFeed() {
	// Explicit newline clears the wrapped flag for this line
	e.activeBuffer.SetWrapped(e.cursor.Row, false)

	if e.modes&ModeLineFeedNewLine != 0 {
		e.cursor.Col = 0
	}
	e.cursor.PendingWrap = false

	e.cursor.Row++
	e.scrollIfNeeded()
}

// index moves the cursor down one row, scrolling at the bottom of the scroll
// region and depositing the overflow row into scrollback.
func (e *Engine) index() {
	e.cursor.PendingWrap = false
	if e.cursor.Row == e.scrollBottom-1 {
		e.activeBuffer.ScrollUp(e.scrollTop, e.scrollBottom, 1, e.template.Bg)
		return
	}
	if e.cursor.Row < e.rows-1 {
		e.cursor.Row++
	}
}

// reverseIndex moves the cursor up one row, scrolling down at the top of the
// scroll region.
func (e *Engine) reverseIndex() {
	e.cursor.PendingWrap = false
	if e.cursor.Row == e.scrollTop {
		e.activeBuffer.ScrollDown(e.scrollTop, e.scrollBottom, 1, e.template.Bg)
		return
	}
	if e.cursor.Row > 0 {
		e.cursor.Row--
	}
}

// setScrollRegion installs a new scroll region (0-based top, exclusive
// bottom; bottom 0 means the full height) and homes the cursor.
func (e *Engine) setScrollRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom <= 0 || bottom > e.rows {
		bottom = e.rows
	}
	if top >= bottom {
		return
	}

	e.scrollTop = top
	e.scrollBottom = bottom

	// Move cursor to home position (considering origin mode)
	if e.modes&ModeOrigin != 0 {
		e.cursor.Row = e.scrollTop
	} else {
		e.cursor.Row = 0
	}
	e.cursor.Col = 0
	e.cursor.PendingWrap = false
}

func (e *Engine) eraseInDisplay(mode EraseMode) {
	bg := e.template.Bg
	switch mode {
	case EraseBelow:
		e.activeBuffer.ClearRowRange(e.cursor.Row, e.cursor.Col, e.cols, bg)
		for row := e.cursor.Row + 1; row < e.rows; row++ {
			e.activeBuffer.ClearRow(row, bg)
		}
	case EraseAbove:
		for row := 0; row < e.cursor.Row; row++ {
			e.activeBuffer.ClearRow(row, bg)
		}
		e.activeBuffer.ClearRowRange(e.cursor.Row, 0, e.cursor.Col+1, bg)
	case EraseAll:
		e.activeBuffer.ClearAll(bg)
	case EraseSaved:
		e.activeBuffer.ClearScrollback()
	}
}

func (e *Engine) eraseInLine(mode EraseMode) {
	bg := e.template.Bg
	switch mode {
	case EraseBelow:
		e.activeBuffer.ClearRowRange(e.cursor.Row, e.cursor.Col, e.cols, bg)
	case EraseAbove:
		e.activeBuffer.ClearRowRange(e.cursor.Row, 0, e.cursor.Col+1, bg)
	default:
		e.activeBuffer.ClearRow(e.cursor.Row, bg)
	}
}

func (e *Engine) saveCursor() {
	e.savedCursor = &SavedCursor{
		Row:          e.cursor.Row,
		Col:          e.cursor.Col,
		Attrs:        e.template,
		OriginMode:   e.modes&ModeOrigin != 0,
		CharsetIndex: e.activeCharset,
		Charsets:     e.charsets,
	}
}

// restoreCursor restores the saved cursor. A saved row outside the current
// scroll region (after the region shrank) is clamped into valid range.
func (e *Engine) restoreCursor() {
	if e.savedCursor == nil {
		return
	}

	e.template = e.savedCursor.Attrs
	if e.savedCursor.OriginMode {
		e.modes |= ModeOrigin
	} else {
		e.modes &^= ModeOrigin
	}
	e.activeCharset = e.savedCursor.CharsetIndex
	e.charsets = e.savedCursor.Charsets

	e.cursor.Row = clamp(e.savedCursor.Row, e.scrollTop, e.scrollBottom-1)
	e.cursor.Col = clamp(e.savedCursor.Col, 0, e.cols-1)
	e.cursor.PendingWrap = false
}

// setDECMode applies a DEC private mode change and its side effects.
func (e *Engine) setDECMode(mode int, set bool) {
	flag, ok := decModeFlag(mode)
	if !ok {
		// Alt-screen variants without the full save/restore semantics
		switch mode {
		case 47, 1047:
			e.swapScreen(set, false)
		case 1048:
			if set {
				e.saveCursor()
			} else {
				e.restoreCursor()
			}
		}
		return
	}

	switch flag {
	case ModeShowCursor:
		e.cursor.Visible = set
	case ModeOrigin:
		if set {
			e.modes |= ModeOrigin
			e.cursor.Row = e.scrollTop
			e.cursor.Col = 0
			e.cursor.PendingWrap = false
		} else {
			e.modes &^= ModeOrigin
			e.cursor.Row = 0
			e.cursor.Col = 0
			e.cursor.PendingWrap = false
		}
		return
	case ModeSwapScreenAndSetRestoreCursor:
		e.swapScreen(set, true)
	}

	if set {
		e.modes |= flag
	} else {
		e.modes &^= flag
	}
}

// swapScreen switches between primary and alternate buffers. With
// saveCursor, entering saves the cursor and leaving restores it (DECSET
// 1049 semantics).
func (e *Engine) swapScreen(toAlternate, withCursor bool) {
	if toAlternate {
		if withCursor {
			e.saveCursor()
		}
		e.activeBuffer = e.alternateBuffer
		e.activeBuffer.ClearAll(e.template.Bg)
	} else {
		e.activeBuffer = e.primaryBuffer
		if withCursor {
			e.restoreCursor()
		}
	}
}

// softReset (DECSTR) keeps the grid and resets modes, attributes, charsets,
// and the scroll region.
func (e *Engine) softReset() {
	e.template = NewCellTemplate()
	e.modes = defaultModes
	e.scrollTop = 0
	e.scrollBottom = e.rows
	e.charsets = [4]Charset{}
	e.activeCharset = 0
	e.singleShift = -1
	e.cursor.Visible = true
	e.cursor.PendingWrap = false
	e.savedCursor = nil
	e.currentHyperlink = nil
}

// fullReset (RIS) reinitializes grid, cursor, scrollback, and modes.
func (e *Engine) fullReset() {
	e.softReset()
	e.activeBuffer = e.primaryBuffer
	e.primaryBuffer.ClearAll(DefaultBackground)
	e.alternateBuffer.ClearAll(DefaultBackground)
	e.primaryBuffer.ClearScrollback()
	e.cursor.Row = 0
	e.cursor.Col = 0
	e.cursor.Shape = CursorShapeDefault
	e.title = ""
	e.titleStack = nil
	e.lastPrinted = 0
}

// translateLineDrawing translates characters for the DEC line drawing charset.
func translateLineDrawing(r rune) rune {
	switch r {
	case 'j':
		return '┘'
	case 'k':
		return '┐'
	case 'l':
		return '┌'
	case 'm':
		return '└'
	case 'n':
		return '┼'
	case 'q':
		return '─'
	case 't':
		return '├'
	case 'u':
		return '┤'
	case 'v':
		return '┴'
	case 'w':
		return '┬'
	case 'x':
		return '│'
	default:
		return r
	}
}

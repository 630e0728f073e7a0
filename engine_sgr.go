package tuiengine

// applySGR sequentially applies SGR parameters to the cell template,
// including 256-color and truecolor specifiers in both semicolon and
// colon-separated forms.
func (e *Engine) applySGR(params []SGRParam) {
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch p.Value {
		case 0:
			e.template = NewCellTemplate()
		case 1:
			e.template.SetFlag(CellFlagBold)
		case 2:
			e.template.SetFlag(CellFlagDim)
		case 3:
			e.template.SetFlag(CellFlagItalic)
		case 4:
			e.applyUnderlineStyle(p.Subs)
		case 5, 6:
			e.template.SetFlag(CellFlagBlink)
		case 7:
			e.template.SetFlag(CellFlagReverse)
		case 8:
			e.template.SetFlag(CellFlagHidden)
		case 9:
			e.template.SetFlag(CellFlagStrike)
		case 21:
			e.template.ClearFlag(underlineFlags)
			e.template.SetFlag(CellFlagDoubleUnderline)
		case 22:
			e.template.ClearFlag(CellFlagBold | CellFlagDim)
		case 23:
			e.template.ClearFlag(CellFlagItalic)
		case 24:
			e.template.ClearFlag(underlineFlags)
		case 25:
			e.template.ClearFlag(CellFlagBlink)
		case 27:
			e.template.ClearFlag(CellFlagReverse)
		case 28:
			e.template.ClearFlag(CellFlagHidden)
		case 29:
			e.template.ClearFlag(CellFlagStrike)

		case 30, 31, 32, 33, 34, 35, 36, 37:
			e.template.Fg = PaletteColor(p.Value - 30)
		case 38:
			c, consumed, ok := extendedColor(params, i)
			if ok {
				e.template.Fg = c
			}
			i += consumed
		case 39:
			e.template.Fg = DefaultForeground
		case 40, 41, 42, 43, 44, 45, 46, 47:
			e.template.Bg = PaletteColor(p.Value - 40)
		case 48:
			c, consumed, ok := extendedColor(params, i)
			if ok {
				e.template.Bg = c
			}
			i += consumed
		case 49:
			e.template.Bg = DefaultBackground
		case 58:
			c, consumed, ok := extendedColor(params, i)
			if ok {
				e.template.UnderlineColor = c
			}
			i += consumed
		case 59:
			e.template.UnderlineColor = ColorTransparent

		case 90, 91, 92, 93, 94, 95, 96, 97:
			e.template.Fg = PaletteColor(p.Value - 90 + 8)
		case 100, 101, 102, 103, 104, 105, 106, 107:
			e.template.Bg = PaletteColor(p.Value - 100 + 8)
		}
	}
}

// applyUnderlineStyle handles SGR 4 with its colon sub-parameter variants:
// 4:0 off, 4:1 single, 4:2 double, 4:3 curly.
func (e *Engine) applyUnderlineStyle(subs []int) {
	e.template.ClearFlag(underlineFlags)
	if len(subs) == 0 {
		e.template.SetFlag(CellFlagUnderline)
		return
	}
	switch subs[0] {
	case 0:
		// Already cleared
	case 2:
		e.template.SetFlag(CellFlagDoubleUnderline)
	case 3:
		e.template.SetFlag(CellFlagCurlyUnderline)
	default:
		e.template.SetFlag(CellFlagUnderline)
	}
}

// extendedColor decodes a 38/48/58 extended color. It supports the
// colon-separated form (sub-parameters on the introducer) and the legacy
// semicolon form (following parameters, which are consumed). Returns the
// color, how many following parameters were consumed, and whether a valid
// color was found.
func extendedColor(params []SGRParam, i int) (Color, int, bool) {
	p := params[i]

	if len(p.Subs) > 0 {
		switch p.Subs[0] {
		case 5:
			if len(p.Subs) >= 2 {
				return PaletteColor(p.Subs[1] & 0xff), 0, true
			}
		case 2:
			if len(p.Subs) >= 4 {
				return RGB(uint8(p.Subs[1]), uint8(p.Subs[2]), uint8(p.Subs[3])), 0, true
			}
		}
		return 0, 0, false
	}

	at := func(j int) int {
		if i+j < len(params) {
			return params[i+j].Value
		}
		return 0
	}

	switch at(1) {
	case 5:
		if i+2 < len(params) {
			return PaletteColor(at(2) & 0xff), 2, true
		}
	case 2:
		if i+4 < len(params) {
			return RGB(uint8(at(2)), uint8(at(3)), uint8(at(4))), 4, true
		}
	}
	return 0, 0, false
}

package tuiengine

import "unicode/utf8"

// parserState is one state of the VT500 parser DFA.
type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateCSIEntry
	stateCSIParam
	stateCSIIntermediate
	stateCSIIgnore
	stateOSC
	stateDCS
	stateSosPmApc
	stateMouseX10
)

const (
	// maxStringLen bounds OSC/DCS/SOS payloads. Longer sequences are
	// dropped and the parser returns to ground without emitting anything.
	maxStringLen = 4096
	// maxParams bounds CSI parameter lists; extra parameters are ignored.
	maxParams = 32
	// maxParamValue saturates parameter accumulation (16-bit).
	maxParamValue = 65535
)

// csiParam is one CSI parameter with optional colon sub-parameters.
type csiParam struct {
	value    int
	hasValue bool
	subs     []int
}

// Parser is a deterministic VT/ANSI byte-stream parser. Bytes can arrive in
// arbitrary chunks: all state (including partial UTF-8 sequences and partial
// OSC payloads) is carried across Feed calls, so the concatenated output of
// chunked feeds equals the output of one whole-sequence feed.
type Parser struct {
	state   parserState
	actions []Action

	utf8buf []byte

	params        []csiParam
	cur           csiParam
	curStarted    bool
	private       byte
	intermediates []byte

	strBuf      []byte // OSC / DCS / SOS-PM-APC payload
	strOverflow bool
	strEsc      bool // saw ESC inside a string, awaiting '\'

	raw []byte // raw bytes of the in-flight escape sequence

	mouseBytes []byte
}

// NewParser creates a parser in the ground state.
func NewParser() *Parser {
	return &Parser{}
}

// Reset returns the parser to the ground state, discarding partial input.
func (p *Parser) Reset() {
	p.state = stateGround
	p.actions = nil
	p.utf8buf = nil
	p.clearSeq()
}

// Feed consumes a chunk of bytes and returns the actions it completed.
// Partial escape sequences and partial UTF-8 runes are held until the
// next call.
func (p *Parser) Feed(data []byte) []Action {
	for _, b := range data {
		p.advance(b)
	}
	actions := p.actions
	p.actions = nil
	return actions
}

func (p *Parser) emit(a Action) {
	p.actions = append(p.actions, a)
}

func (p *Parser) clearSeq() {
	p.params = nil
	p.cur = csiParam{}
	p.curStarted = false
	p.private = 0
	p.intermediates = nil
	p.strBuf = nil
	p.strOverflow = false
	p.strEsc = false
	p.raw = nil
	p.mouseBytes = nil
}

func (p *Parser) toGround() {
	p.state = stateGround
	p.clearSeq()
}

func (p *Parser) advance(b byte) {
	// ESC restarts sequence recognition from any non-string state. String
	// states handle ESC themselves because it may begin their terminator.
	if b == 0x1b {
		switch p.state {
		case stateOSC, stateDCS, stateSosPmApc:
		default:
			p.clearSeq()
			p.raw = []byte{0x1b}
			p.state = stateEscape
			return
		}
	}

	switch p.state {
	case stateGround:
		p.advanceGround(b)
	case stateEscape:
		p.raw = append(p.raw, b)
		p.advanceEscape(b)
	case stateCSIEntry, stateCSIParam, stateCSIIntermediate:
		p.raw = append(p.raw, b)
		p.advanceCSI(b)
	case stateCSIIgnore:
		p.raw = append(p.raw, b)
		if b >= 0x40 && b <= 0x7e {
			p.toGround()
		}
	case stateOSC:
		p.advanceString(b, p.dispatchOSC)
	case stateDCS:
		p.advanceString(b, p.dispatchDCS)
	case stateSosPmApc:
		p.advanceString(b, func() { p.toGround() })
	case stateMouseX10:
		p.raw = append(p.raw, b)
		p.mouseBytes = append(p.mouseBytes, b)
		if len(p.mouseBytes) == 3 {
			p.dispatchX10Mouse()
		}
	}
}

func (p *Parser) advanceGround(b byte) {
	switch {
	case b == 0x07:
		p.emit(ActionBell{})
	case b == 0x08:
		p.emit(ActionBackspace{})
	case b == 0x09:
		p.emit(ActionTab{N: 1})
	case b == 0x0a || b == 0x0b || b == 0x0c:
		p.emit(ActionLineFeed{})
	case b == 0x0d:
		p.emit(ActionCarriageReturn{})
	case b == 0x0e:
		// SO: invoke G1
		p.emit(ActionSingleShift{Slot: -1})
	case b == 0x0f:
		// SI: invoke G0
		p.emit(ActionSingleShift{Slot: -2})
	case b < 0x20 || b == 0x7f:
		// Remaining C0 controls and DEL are ignored
	case b < 0x80:
		if len(p.utf8buf) > 0 {
			// ASCII aborts a malformed multi-byte sequence
			p.utf8buf = nil
		}
		p.emit(ActionPrint{Rune: rune(b)})
	default:
		p.utf8buf = append(p.utf8buf, b)
		if utf8.FullRune(p.utf8buf) {
			r, _ := utf8.DecodeRune(p.utf8buf)
			p.utf8buf = nil
			p.emit(ActionPrint{Rune: r})
		} else if len(p.utf8buf) >= utf8.UTFMax {
			p.utf8buf = nil
		}
	}
}

func (p *Parser) advanceEscape(b byte) {
	switch {
	case b == '[':
		p.state = stateCSIEntry
	case b == ']':
		p.state = stateOSC
	case b == 'P':
		p.state = stateDCS
	case b == 'X' || b == '^' || b == '_':
		p.state = stateSosPmApc
	case b >= 0x20 && b <= 0x2f:
		p.intermediates = append(p.intermediates, b)
	case b >= 0x30 && b <= 0x7e:
		p.dispatchEscape(b)
	default:
		// C0 inside an escape executes in ground semantics
		p.advanceGround(b)
	}
}

func (p *Parser) dispatchEscape(final byte) {
	defer p.toGround()

	if len(p.intermediates) > 0 {
		switch p.intermediates[0] {
		case '(', ')', '*', '+':
			slot := int(p.intermediates[0] - '(')
			cs := CharsetASCII
			if final == '0' {
				cs = CharsetLineDrawing
			}
			p.emit(ActionDesignateCharset{Slot: slot, Charset: cs})
			return
		case '#':
			if final == '8' {
				p.emit(ActionScreenAlignment{})
				return
			}
		}
		p.emit(ActionEscape{Raw: p.takeRaw()})
		return
	}

	switch final {
	case '7':
		p.emit(ActionSaveCursor{})
	case '8':
		p.emit(ActionRestoreCursor{})
	case 'D':
		p.emit(ActionIndex{})
	case 'E':
		p.emit(ActionNextLine{})
	case 'M':
		p.emit(ActionReverseIndex{})
	case 'H':
		p.emit(ActionTabSet{})
	case 'c':
		p.emit(ActionFullReset{})
	case '=':
		p.emit(ActionKeypadMode{Application: true})
	case '>':
		p.emit(ActionKeypadMode{Application: false})
	case 'N':
		p.emit(ActionSingleShift{Slot: 2})
	case 'O':
		p.emit(ActionSingleShift{Slot: 3})
	case '\\':
		// Stray string terminator
	default:
		p.emit(ActionEscape{Raw: p.takeRaw()})
	}
}

func (p *Parser) advanceCSI(b byte) {
	switch {
	case b >= '0' && b <= '9':
		d := int(b - '0')
		if len(p.cur.subs) > 0 {
			last := &p.cur.subs[len(p.cur.subs)-1]
			*last = saturate(*last*10 + d)
		} else {
			p.cur.value = saturate(p.cur.value*10 + d)
			p.cur.hasValue = true
		}
		p.curStarted = true
		p.state = stateCSIParam
	case b == ';':
		p.pushParam()
		p.state = stateCSIParam
	case b == ':':
		p.cur.subs = append(p.cur.subs, 0)
		p.curStarted = true
		p.state = stateCSIParam
	case b >= 0x3c && b <= 0x3f: // < = > ?
		if p.state == stateCSIEntry {
			p.private = b
		} else {
			p.state = stateCSIIgnore
		}
	case b >= 0x20 && b <= 0x2f:
		p.intermediates = append(p.intermediates, b)
		p.state = stateCSIIntermediate
	case b >= 0x40 && b <= 0x7e:
		if p.curStarted {
			p.pushParam()
		}
		p.dispatchCSI(b)
	default:
		// C0 inside a CSI executes in ground semantics
		p.advanceGround(b)
	}
}

func saturate(v int) int {
	if v > maxParamValue {
		return maxParamValue
	}
	return v
}

func (p *Parser) pushParam() {
	if len(p.params) < maxParams {
		p.params = append(p.params, p.cur)
	}
	p.cur = csiParam{}
	p.curStarted = false
}

// paramAt returns the i-th parameter value or def when missing or empty.
func (p *Parser) paramAt(i, def int) int {
	if i >= len(p.params) || !p.params[i].hasValue {
		return def
	}
	return p.params[i].value
}

func (p *Parser) takeRaw() []byte {
	raw := make([]byte, len(p.raw))
	copy(raw, p.raw)
	return raw
}

func (p *Parser) dispatchCSI(final byte) {
	if len(p.intermediates) > 0 {
		p.dispatchCSIIntermediate(final)
		return
	}

	if p.private != 0 {
		p.dispatchCSIPrivate(final)
		return
	}

	if final == 'M' && len(p.params) == 0 {
		// Bare CSI M is an X10 mouse report; three payload bytes follow.
		p.state = stateMouseX10
		p.mouseBytes = nil
		return
	}

	defer p.toGround()

	switch final {
	case 'A':
		p.emit(ActionCursorUp{N: p.paramAt(0, 1)})
	case 'B':
		p.emit(ActionCursorDown{N: p.paramAt(0, 1)})
	case 'C':
		p.emit(ActionCursorForward{N: p.paramAt(0, 1)})
	case 'D':
		p.emit(ActionCursorBack{N: p.paramAt(0, 1)})
	case 'E':
		p.emit(ActionCursorNextLine{N: p.paramAt(0, 1)})
	case 'F':
		p.emit(ActionCursorPrevLine{N: p.paramAt(0, 1)})
	case 'G', '`':
		p.emit(ActionCursorColumn{Col: p.paramAt(0, 1) - 1})
	case 'd':
		p.emit(ActionCursorRow{Row: p.paramAt(0, 1) - 1})
	case 'H', 'f':
		p.emit(ActionCursorPosition{
			Row: p.paramAt(0, 1) - 1,
			Col: p.paramAt(1, 1) - 1,
		})
	case 'J':
		p.emit(ActionEraseInDisplay{Mode: eraseMode(p.paramAt(0, 0))})
	case 'K':
		p.emit(ActionEraseInLine{Mode: eraseMode(p.paramAt(0, 0))})
	case 'L':
		p.emit(ActionInsertLines{N: p.paramAt(0, 1)})
	case 'M':
		p.emit(ActionDeleteLines{N: p.paramAt(0, 1)})
	case 'P':
		p.emit(ActionDeleteChars{N: p.paramAt(0, 1)})
	case '@':
		p.emit(ActionInsertChars{N: p.paramAt(0, 1)})
	case 'X':
		p.emit(ActionEraseChars{N: p.paramAt(0, 1)})
	case 'S':
		p.emit(ActionScrollUp{N: p.paramAt(0, 1)})
	case 'T':
		p.emit(ActionScrollDown{N: p.paramAt(0, 1)})
	case 'r':
		p.emit(ActionSetScrollRegion{
			Top:    p.paramAt(0, 1) - 1,
			Bottom: p.paramAt(1, 0),
		})
	case 's':
		p.emit(ActionSaveCursor{})
	case 'u':
		p.emit(ActionRestoreCursor{})
	case 'h':
		for i := range p.params {
			p.emit(ActionANSISet{Mode: p.paramAt(i, 0)})
		}
	case 'l':
		for i := range p.params {
			p.emit(ActionANSIReset{Mode: p.paramAt(i, 0)})
		}
	case 'm':
		p.emit(ActionSGR{Params: p.sgrParams()})
	case 'n':
		p.emit(ActionDeviceStatus{N: p.paramAt(0, 0)})
	case 'c':
		p.emit(ActionDeviceAttributes{})
	case 'Z':
		p.emit(ActionBackTab{N: p.paramAt(0, 1)})
	case 'g':
		if p.paramAt(0, 0) == 3 {
			p.emit(ActionTabClear{Mode: TabClearAll})
		} else {
			p.emit(ActionTabClear{Mode: TabClearCurrent})
		}
	case 'b':
		p.emit(ActionRepeatChar{N: p.paramAt(0, 1)})
	case 'I':
		p.emit(ActionFocus{Gained: true})
	case 'O':
		p.emit(ActionFocus{Gained: false})
	case '~':
		switch p.paramAt(0, 0) {
		case 200:
			p.emit(ActionPasteStart{})
		case 201:
			p.emit(ActionPasteEnd{})
		default:
			p.emit(ActionEscape{Raw: p.takeRaw()})
		}
	default:
		p.emit(ActionEscape{Raw: p.takeRaw()})
	}
}

func (p *Parser) dispatchCSIPrivate(final byte) {
	defer p.toGround()

	switch p.private {
	case '?':
		switch final {
		case 'h':
			for i := range p.params {
				p.emit(ActionDECSet{Mode: p.paramAt(i, 0)})
			}
			return
		case 'l':
			for i := range p.params {
				p.emit(ActionDECReset{Mode: p.paramAt(i, 0)})
			}
			return
		}
	case '>':
		if final == 'c' {
			p.emit(ActionDeviceAttributes{Secondary: true})
			return
		}
	case '<':
		if final == 'M' || final == 'm' {
			p.dispatchSGRMouse(final == 'M')
			return
		}
	}
	p.emit(ActionEscape{Raw: p.takeRaw()})
}

func (p *Parser) dispatchCSIIntermediate(final byte) {
	defer p.toGround()

	switch p.intermediates[0] {
	case ' ':
		if final == 'q' {
			shape := p.paramAt(0, 0)
			if shape >= 0 && shape <= 6 {
				p.emit(ActionSetCursorShape{Shape: CursorShape(shape)})
				return
			}
		}
	case '$':
		if final == 'p' {
			p.emit(ActionRequestMode{
				Mode: p.paramAt(0, 0),
				DEC:  p.private == '?',
			})
			return
		}
	case '!':
		if final == 'p' {
			p.emit(ActionSoftReset{})
			return
		}
	}
	p.emit(ActionEscape{Raw: p.takeRaw()})
}

// sgrParams converts the accumulated CSI parameters to SGR parameters,
// preserving colon sub-parameters. An empty list means a single reset.
func (p *Parser) sgrParams() []SGRParam {
	if len(p.params) == 0 {
		return []SGRParam{{Value: 0}}
	}
	out := make([]SGRParam, len(p.params))
	for i, param := range p.params {
		out[i] = SGRParam{Value: param.value, Subs: param.subs}
	}
	return out
}

func eraseMode(n int) EraseMode {
	switch n {
	case 1:
		return EraseAbove
	case 2:
		return EraseAll
	case 3:
		return EraseSaved
	default:
		return EraseBelow
	}
}

// --- Mouse decoding ---

func (p *Parser) dispatchX10Mouse() {
	defer p.toGround()

	btn := int(p.mouseBytes[0]) - 32
	x := int(p.mouseBytes[1]) - 33
	y := int(p.mouseBytes[2]) - 33
	kind, mods := decodeMouseButton(btn, false)
	p.emit(ActionMouse{Kind: kind, X: x, Y: y, Modifiers: mods})
}

func (p *Parser) dispatchSGRMouse(press bool) {
	btn := p.paramAt(0, 0)
	x := p.paramAt(1, 1) - 1
	y := p.paramAt(2, 1) - 1
	kind, mods := decodeMouseButton(btn, !press)
	p.emit(ActionMouse{Kind: kind, X: x, Y: y, Modifiers: mods})
}

// decodeMouseButton translates an X10/SGR button code to an event kind and
// modifier set. Release reports in SGR mode use the final byte, not code 3.
func decodeMouseButton(btn int, release bool) (MouseEventKind, Modifiers) {
	var mods Modifiers
	if btn&4 != 0 {
		mods |= ModShift
	}
	if btn&8 != 0 {
		mods |= ModAlt
	}
	if btn&16 != 0 {
		mods |= ModCtrl
	}

	if btn&64 != 0 {
		if btn&1 != 0 {
			return MouseWheelDown, mods
		}
		return MouseWheelUp, mods
	}
	if btn&32 != 0 {
		return MouseMove, mods
	}
	if release {
		return MouseRelease, mods
	}
	switch btn & 3 {
	case 0:
		return MousePress, mods
	case 1:
		return MousePressMiddle, mods
	case 2:
		return MousePressRight, mods
	default:
		return MouseRelease, mods
	}
}

// --- String (OSC / DCS / SOS-PM-APC) handling ---

func (p *Parser) advanceString(b byte, dispatch func()) {
	if p.strEsc {
		p.strEsc = false
		if b == '\\' {
			dispatch()
			return
		}
		// ESC not followed by '\' aborts the string and restarts escape
		// recognition with the new byte.
		p.clearSeq()
		p.raw = []byte{0x1b}
		p.state = stateEscape
		p.advance(b)
		return
	}

	switch b {
	case 0x07:
		dispatch()
	case 0x1b:
		p.strEsc = true
	case 0x18, 0x1a: // CAN / SUB abort
		p.toGround()
	default:
		if p.strOverflow {
			return
		}
		if len(p.strBuf) >= maxStringLen {
			// Heuristic bound exceeded: drop the whole string
			p.strOverflow = true
			return
		}
		p.strBuf = append(p.strBuf, b)
	}
}

func (p *Parser) dispatchOSC() {
	defer p.toGround()

	if p.strOverflow {
		return
	}

	payload := string(p.strBuf)
	code, rest := splitOSC(payload)
	switch code {
	case "0", "2":
		p.emit(ActionSetTitle{Title: rest})
	case "8":
		id, uri := splitHyperlink(rest)
		p.emit(ActionSetHyperlink{ID: id, URI: uri})
	default:
		raw := append([]byte("\x1b]"), p.strBuf...)
		p.emit(ActionEscape{Raw: raw})
	}
}

func (p *Parser) dispatchDCS() {
	defer p.toGround()

	if p.strOverflow {
		return
	}
	// DCS is passthrough: surface the payload for the embedder.
	raw := append([]byte("\x1bP"), p.strBuf...)
	p.emit(ActionEscape{Raw: raw})
}

func splitOSC(s string) (code, rest string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ';' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

// splitHyperlink parses the "params;uri" form of OSC 8, extracting the
// optional id=... parameter.
func splitHyperlink(s string) (id, uri string) {
	params := s
	for i := 0; i < len(s); i++ {
		if s[i] == ';' {
			params, uri = s[:i], s[i+1:]
			break
		}
	}

	for len(params) > 0 {
		var kv string
		if j := indexByte(params, ':'); j >= 0 {
			kv, params = params[:j], params[j+1:]
		} else {
			kv, params = params, ""
		}
		if len(kv) > 3 && kv[:3] == "id=" {
			id = kv[3:]
		}
	}
	return id, uri
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

package tuiengine

import "unicode/utf8"

// InputDecoder turns the byte stream a terminal sends an application into
// Events: UTF-8 keys, C0 controls, CSI key and function-key sequences,
// SGR-1006 and X10 mouse reports, bracketed paste, and focus events.
// Partial sequences at the end of a chunk are held until the next feed.
type InputDecoder struct {
	buf      []byte
	inPaste  bool
	pasteBuf []byte
}

// NewInputDecoder creates a decoder in its initial state.
func NewInputDecoder() *InputDecoder {
	return &InputDecoder{}
}

// Feed consumes a chunk of input bytes and returns the completed events.
func (d *InputDecoder) Feed(data []byte) []Event {
	d.buf = append(d.buf, data...)

	var events []Event
	for len(d.buf) > 0 {
		event, consumed := d.next()
		if consumed == 0 {
			break // incomplete sequence, wait for more bytes
		}
		d.buf = d.buf[consumed:]
		if event != nil {
			events = append(events, event)
		}
	}
	return events
}

// Flush resolves a held lone ESC into an Escape key press and returns any
// resulting events. Call after an input timeout.
func (d *InputDecoder) Flush() []Event {
	if len(d.buf) == 1 && d.buf[0] == 0x1b {
		d.buf = nil
		return []Event{KeyEvent{Code: KeyEscape, Kind: KeyPress}}
	}
	return nil
}

// next decodes one event from the head of the buffer. Returns consumed == 0
// when the buffer holds an incomplete sequence.
func (d *InputDecoder) next() (Event, int) {
	b := d.buf[0]

	if d.inPaste {
		return d.nextPaste()
	}

	if b == 0x1b {
		return d.nextEscape()
	}

	// C0 controls
	switch b {
	case '\r', '\n':
		return KeyEvent{Code: KeyEnter, Kind: KeyPress}, 1
	case '\t':
		return KeyEvent{Code: KeyTab, Kind: KeyPress}, 1
	case 0x7f, 0x08:
		return KeyEvent{Code: KeyBackspace, Kind: KeyPress}, 1
	}
	if b < 0x20 {
		// Ctrl+letter
		return KeyEvent{
			Code:      KeyChar,
			Rune:      rune(b) + 'a' - 1,
			Modifiers: ModCtrl,
			Kind:      KeyPress,
		}, 1
	}

	// UTF-8 scalar
	if !utf8.FullRune(d.buf) {
		if len(d.buf) >= utf8.UTFMax {
			return nil, 1 // undecodable, drop a byte
		}
		return nil, 0
	}
	r, size := utf8.DecodeRune(d.buf)
	return KeyEvent{Code: KeyChar, Rune: r, Kind: KeyPress}, size
}

func (d *InputDecoder) nextPaste() (Event, int) {
	// Look for the paste terminator ESC [ 2 0 1 ~
	const terminator = "\x1b[201~"
	for i := 0; i+len(terminator) <= len(d.buf); i++ {
		if string(d.buf[i:i+len(terminator)]) == terminator {
			d.pasteBuf = append(d.pasteBuf, d.buf[:i]...)
			text := string(d.pasteBuf)
			d.pasteBuf = nil
			d.inPaste = false
			return PasteEvent{Text: text, Bracketed: true}, i + len(terminator)
		}
	}
	// Consume everything that cannot start the terminator
	keep := len(terminator) - 1
	if len(d.buf) > keep {
		n := len(d.buf) - keep
		d.pasteBuf = append(d.pasteBuf, d.buf[:n]...)
		return nil, n
	}
	return nil, 0
}

func (d *InputDecoder) nextEscape() (Event, int) {
	if len(d.buf) < 2 {
		return nil, 0 // possibly a lone Escape; resolved by Flush
	}

	switch d.buf[1] {
	case '[':
		return d.nextCSI()
	case 'O':
		if len(d.buf) < 3 {
			return nil, 0
		}
		// SS3 function keys
		switch d.buf[2] {
		case 'P', 'Q', 'R', 'S':
			return KeyEvent{Code: KeyF(int(d.buf[2]-'P') + 1), Kind: KeyPress}, 3
		case 'H':
			return KeyEvent{Code: KeyHome, Kind: KeyPress}, 3
		case 'F':
			return KeyEvent{Code: KeyEnd, Kind: KeyPress}, 3
		}
		return nil, 3
	default:
		// Alt+key
		if d.buf[1] >= 0x20 && d.buf[1] < 0x7f {
			return KeyEvent{
				Code:      KeyChar,
				Rune:      rune(d.buf[1]),
				Modifiers: ModAlt,
				Kind:      KeyPress,
			}, 2
		}
		return KeyEvent{Code: KeyEscape, Kind: KeyPress}, 1
	}
}

func (d *InputDecoder) nextCSI() (Event, int) {
	// X10 mouse: ESC [ M followed by three payload bytes
	if len(d.buf) >= 3 && d.buf[2] == 'M' {
		if len(d.buf) < 6 {
			return nil, 0
		}
		btn := int(d.buf[3]) - 32
		x := int(d.buf[4]) - 33
		y := int(d.buf[5]) - 33
		kind, mods := decodeMouseButton(btn, false)
		return MouseEvent{Kind: kind, X: x, Y: y, Modifiers: mods}, 6
	}

	// Find the final byte
	var params []int
	cur := 0
	hasCur := false
	private := byte(0)
	i := 2
	for ; i < len(d.buf); i++ {
		b := d.buf[i]
		switch {
		case b >= '0' && b <= '9':
			cur = cur*10 + int(b-'0')
			hasCur = true
		case b == ';':
			params = append(params, cur)
			cur = 0
			hasCur = false
		case b == '<' || b == '?' || b == '>':
			private = b
		case b >= 0x40 && b <= 0x7e:
			if hasCur {
				params = append(params, cur)
			}
			return d.dispatchCSIKey(d.buf[i], params, private), i + 1
		default:
			// Unknown byte inside a CSI: drop the sequence
			return nil, i + 1
		}
	}
	return nil, 0 // incomplete
}

func (d *InputDecoder) dispatchCSIKey(final byte, params []int, private byte) Event {
	at := func(i, def int) int {
		if i >= len(params) || params[i] == 0 {
			return def
		}
		return params[i]
	}

	mods := csiModifiers(at(1, 1))

	if private == '<' {
		// SGR mouse
		btn := at(0, 0)
		x := at(1, 1) - 1
		y := at(2, 1) - 1
		kind, btnMods := decodeMouseButton(btn, final == 'm')
		return MouseEvent{Kind: kind, X: x, Y: y, Modifiers: btnMods}
	}

	switch final {
	case 'A':
		return KeyEvent{Code: KeyUp, Modifiers: mods, Kind: KeyPress}
	case 'B':
		return KeyEvent{Code: KeyDown, Modifiers: mods, Kind: KeyPress}
	case 'C':
		return KeyEvent{Code: KeyRight, Modifiers: mods, Kind: KeyPress}
	case 'D':
		return KeyEvent{Code: KeyLeft, Modifiers: mods, Kind: KeyPress}
	case 'H':
		return KeyEvent{Code: KeyHome, Modifiers: mods, Kind: KeyPress}
	case 'F':
		return KeyEvent{Code: KeyEnd, Modifiers: mods, Kind: KeyPress}
	case 'Z':
		return KeyEvent{Code: KeyBackTab, Modifiers: ModShift, Kind: KeyPress}
	case 'I':
		return FocusEvent{Gained: true}
	case 'O':
		return FocusEvent{Gained: false}
	case '~':
		return d.dispatchTildeKey(at(0, 0), mods)
	}
	return nil
}

func (d *InputDecoder) dispatchTildeKey(code int, mods Modifiers) Event {
	switch code {
	case 1, 7:
		return KeyEvent{Code: KeyHome, Modifiers: mods, Kind: KeyPress}
	case 2:
		return KeyEvent{Code: KeyInsert, Modifiers: mods, Kind: KeyPress}
	case 3:
		return KeyEvent{Code: KeyDelete, Modifiers: mods, Kind: KeyPress}
	case 4, 8:
		return KeyEvent{Code: KeyEnd, Modifiers: mods, Kind: KeyPress}
	case 5:
		return KeyEvent{Code: KeyPageUp, Modifiers: mods, Kind: KeyPress}
	case 6:
		return KeyEvent{Code: KeyPageDown, Modifiers: mods, Kind: KeyPress}
	case 11, 12, 13, 14, 15:
		return KeyEvent{Code: KeyF(code - 10), Modifiers: mods, Kind: KeyPress}
	case 17, 18, 19, 20, 21:
		return KeyEvent{Code: KeyF(code - 11), Modifiers: mods, Kind: KeyPress}
	case 23, 24:
		return KeyEvent{Code: KeyF(code - 12), Modifiers: mods, Kind: KeyPress}
	case 200:
		d.inPaste = true
		d.pasteBuf = nil
		return nil
	}
	return nil
}

// csiModifiers decodes the xterm modifier parameter (1 + bitmask).
func csiModifiers(param int) Modifiers {
	if param <= 1 {
		return 0
	}
	return Modifiers(param - 1)
}

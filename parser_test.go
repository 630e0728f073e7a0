package tuiengine

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestParserPrint(t *testing.T) {
	p := NewParser()
	actions := p.Feed([]byte("ab"))

	want := []Action{ActionPrint{Rune: 'a'}, ActionPrint{Rune: 'b'}}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("expected %v, got %v", want, actions)
	}
}

func TestParserControls(t *testing.T) {
	p := NewParser()
	actions := p.Feed([]byte("\x07\x08\x09\x0a\x0d"))

	want := []Action{
		ActionBell{},
		ActionBackspace{},
		ActionTab{N: 1},
		ActionLineFeed{},
		ActionCarriageReturn{},
	}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("expected %v, got %v", want, actions)
	}
}

func TestParserCursorMoves(t *testing.T) {
	p := NewParser()

	tests := []struct {
		input string
		want  Action
	}{
		{"\x1b[A", ActionCursorUp{N: 1}},
		{"\x1b[3A", ActionCursorUp{N: 3}},
		{"\x1b[2B", ActionCursorDown{N: 2}},
		{"\x1b[C", ActionCursorForward{N: 1}},
		{"\x1b[4D", ActionCursorBack{N: 4}},
		{"\x1b[2;3H", ActionCursorPosition{Row: 1, Col: 2}},
		{"\x1b[H", ActionCursorPosition{Row: 0, Col: 0}},
		{"\x1b[5G", ActionCursorColumn{Col: 4}},
		{"\x1b[7d", ActionCursorRow{Row: 6}},
	}

	for _, tt := range tests {
		actions := p.Feed([]byte(tt.input))
		if len(actions) != 1 || !reflect.DeepEqual(actions[0], tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.want, actions)
		}
	}
}

func TestParserScrollRegionDefaults(t *testing.T) {
	p := NewParser()

	actions := p.Feed([]byte("\x1b[2;10r"))
	want := ActionSetScrollRegion{Top: 1, Bottom: 10}
	if len(actions) != 1 || actions[0] != want {
		t.Errorf("expected %v, got %v", want, actions)
	}

	// Missing bottom defaults to 0, meaning full height
	actions = p.Feed([]byte("\x1b[r"))
	want = ActionSetScrollRegion{Top: 0, Bottom: 0}
	if len(actions) != 1 || actions[0] != want {
		t.Errorf("expected %v, got %v", want, actions)
	}
}

func TestParserSGRSubParams(t *testing.T) {
	p := NewParser()
	actions := p.Feed([]byte("\x1b[38:2:10:20:30;4:3m"))

	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
	sgr, ok := actions[0].(ActionSGR)
	if !ok {
		t.Fatalf("expected ActionSGR, got %T", actions[0])
	}
	if len(sgr.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(sgr.Params))
	}
	if sgr.Params[0].Value != 38 || !reflect.DeepEqual(sgr.Params[0].Subs, []int{2, 10, 20, 30}) {
		t.Errorf("unexpected first param: %+v", sgr.Params[0])
	}
	if sgr.Params[1].Value != 4 || !reflect.DeepEqual(sgr.Params[1].Subs, []int{3}) {
		t.Errorf("unexpected second param: %+v", sgr.Params[1])
	}
}

func TestParserEmptySGRIsReset(t *testing.T) {
	p := NewParser()
	actions := p.Feed([]byte("\x1b[m"))

	sgr, ok := actions[0].(ActionSGR)
	if !ok || len(sgr.Params) != 1 || sgr.Params[0].Value != 0 {
		t.Errorf("expected single reset param, got %v", actions)
	}
}

func TestParserParamSaturation(t *testing.T) {
	p := NewParser()
	actions := p.Feed([]byte("\x1b[99999999999A"))

	want := ActionCursorUp{N: maxParamValue}
	if len(actions) != 1 || actions[0] != want {
		t.Errorf("expected %v, got %v", want, actions)
	}
}

func TestParserOSCTitle(t *testing.T) {
	p := NewParser()

	// BEL terminator
	actions := p.Feed([]byte("\x1b]0;hello\x07"))
	if len(actions) != 1 || actions[0] != (ActionSetTitle{Title: "hello"}) {
		t.Errorf("expected title action, got %v", actions)
	}

	// ST terminator
	actions = p.Feed([]byte("\x1b]2;world\x1b\\"))
	if len(actions) != 1 || actions[0] != (ActionSetTitle{Title: "world"}) {
		t.Errorf("expected title action, got %v", actions)
	}
}

func TestParserOSCAcrossChunks(t *testing.T) {
	p := NewParser()

	if actions := p.Feed([]byte("\x1b]0;par")); len(actions) != 0 {
		t.Errorf("expected no actions mid-OSC, got %v", actions)
	}
	actions := p.Feed([]byte("tial\x07"))
	if len(actions) != 1 || actions[0] != (ActionSetTitle{Title: "partial"}) {
		t.Errorf("expected buffered title, got %v", actions)
	}
}

func TestParserHyperlink(t *testing.T) {
	p := NewParser()

	actions := p.Feed([]byte("\x1b]8;id=foo;http://example.com\x1b\\"))
	want := ActionSetHyperlink{ID: "foo", URI: "http://example.com"}
	if len(actions) != 1 || actions[0] != want {
		t.Errorf("expected %v, got %v", want, actions)
	}

	actions = p.Feed([]byte("\x1b]8;;\x07"))
	if len(actions) != 1 || actions[0] != (ActionSetHyperlink{}) {
		t.Errorf("expected clearing hyperlink, got %v", actions)
	}
}

func TestParserUTF8AcrossChunks(t *testing.T) {
	p := NewParser()

	raw := []byte("日") // 3 bytes
	var actions []Action
	actions = append(actions, p.Feed(raw[:1])...)
	actions = append(actions, p.Feed(raw[1:2])...)
	actions = append(actions, p.Feed(raw[2:])...)

	want := []Action{ActionPrint{Rune: '日'}}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("expected %v, got %v", want, actions)
	}
}

func TestParserUnknownCSIPassthrough(t *testing.T) {
	p := NewParser()
	actions := p.Feed([]byte("\x1b[99y"))

	esc, ok := actions[0].(ActionEscape)
	if !ok {
		t.Fatalf("expected ActionEscape, got %T", actions[0])
	}
	if string(esc.Raw) != "\x1b[99y" {
		t.Errorf("expected raw bytes preserved, got %q", esc.Raw)
	}
}

func TestParserDECModes(t *testing.T) {
	p := NewParser()

	actions := p.Feed([]byte("\x1b[?25l\x1b[?1049h\x1b[?7;6h"))
	want := []Action{
		ActionDECReset{Mode: 25},
		ActionDECSet{Mode: 1049},
		ActionDECSet{Mode: 7},
		ActionDECSet{Mode: 6},
	}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("expected %v, got %v", want, actions)
	}
}

func TestParserQueries(t *testing.T) {
	p := NewParser()

	actions := p.Feed([]byte("\x1b[5n\x1b[6n\x1b[c\x1b[>c\x1b[?7$p"))
	want := []Action{
		ActionDeviceStatus{N: 5},
		ActionDeviceStatus{N: 6},
		ActionDeviceAttributes{},
		ActionDeviceAttributes{Secondary: true},
		ActionRequestMode{Mode: 7, DEC: true},
	}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("expected %v, got %v", want, actions)
	}
}

func TestParserEscapeDispatch(t *testing.T) {
	p := NewParser()

	actions := p.Feed([]byte("\x1b7\x1b8\x1bD\x1bM\x1bE\x1bc\x1b#8\x1b(0"))
	want := []Action{
		ActionSaveCursor{},
		ActionRestoreCursor{},
		ActionIndex{},
		ActionReverseIndex{},
		ActionNextLine{},
		ActionFullReset{},
		ActionScreenAlignment{},
		ActionDesignateCharset{Slot: 0, Charset: CharsetLineDrawing},
	}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("expected %v, got %v", want, actions)
	}
}

func TestParserSGRMouse(t *testing.T) {
	p := NewParser()

	actions := p.Feed([]byte("\x1b[<0;10;5M"))
	want := ActionMouse{Kind: MousePress, X: 9, Y: 4}
	if len(actions) != 1 || actions[0] != want {
		t.Errorf("expected %v, got %v", want, actions)
	}

	actions = p.Feed([]byte("\x1b[<0;10;5m"))
	want = ActionMouse{Kind: MouseRelease, X: 9, Y: 4}
	if len(actions) != 1 || actions[0] != want {
		t.Errorf("expected %v, got %v", want, actions)
	}
}

func TestParserPasteAndFocus(t *testing.T) {
	p := NewParser()

	actions := p.Feed([]byte("\x1b[200~\x1b[201~\x1b[I\x1b[O"))
	want := []Action{
		ActionPasteStart{},
		ActionPasteEnd{},
		ActionFocus{Gained: true},
		ActionFocus{Gained: false},
	}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("expected %v, got %v", want, actions)
	}
}

func TestParserOSCOverflowDropped(t *testing.T) {
	p := NewParser()

	payload := make([]byte, maxStringLen+100)
	for i := range payload {
		payload[i] = 'x'
	}
	p.Feed([]byte("\x1b]0;"))
	p.Feed(payload)
	actions := p.Feed([]byte("\x07a"))

	// The oversized OSC is dropped; only the print survives
	want := []Action{ActionPrint{Rune: 'a'}}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("expected dropped OSC, got %v", actions)
	}
}

// TestParserChunkInvariance asserts the central parser property: for any
// split of a byte sequence into chunks, concatenating per-call outputs
// equals feeding the whole sequence at once.
func TestParserChunkInvariance(t *testing.T) {
	inputs := []string{
		"plain text only",
		"ab\x1b[2;3HZ\x1b[5n",
		"\x1b[1;31mred\x1b[0m normal \x1b]0;title\x07",
		"日本語 \x1b[38:2:1:2:3m wide \x1b[?1049h\x1b[?1049l",
		"\x1b]8;id=x;http://e.com\x1b\\link\x1b]8;;\x1b\\",
		"\x1b[<32;4;5M\x1b[200~pasted\x1b[201~",
		"\x1bP+q544e\x1b\\\x1b[99{",
	}

	rng := rand.New(rand.NewSource(42))

	for _, input := range inputs {
		whole := NewParser().Feed([]byte(input))

		for trial := 0; trial < 20; trial++ {
			p := NewParser()
			var chunked []Action
			rest := []byte(input)
			for len(rest) > 0 {
				n := 1 + rng.Intn(len(rest))
				chunked = append(chunked, p.Feed(rest[:n])...)
				rest = rest[n:]
			}
			if !reflect.DeepEqual(whole, chunked) {
				t.Fatalf("input %q: chunked output diverged\nwhole:   %v\nchunked: %v",
					input, whole, chunked)
			}
		}
	}
}

func TestParserResetReturnsToGround(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("\x1b[2;"))
	p.Reset()

	actions := p.Feed([]byte("x"))
	want := []Action{ActionPrint{Rune: 'x'}}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("expected clean ground state after reset, got %v", actions)
	}
}

package tuiengine

import "fmt"

// HeadlessTerm wraps an Engine as a test fixture: feed it the bytes a
// presenter (or any program) emits and inspect the resulting screen as
// plain text.
type HeadlessTerm struct {
	engine    *Engine
	recording *MemoryRecording
}

// NewHeadlessTerm creates a headless terminal with the given dimensions.
func NewHeadlessTerm(cols, rows int) (*HeadlessTerm, error) {
	recording := &MemoryRecording{}
	engine, err := NewEngine(cols, rows, WithRecording(recording))
	if err != nil {
		return nil, err
	}
	return &HeadlessTerm{engine: engine, recording: recording}, nil
}

// Engine returns the underlying engine for detailed state inspection.
func (h *HeadlessTerm) Engine() *Engine {
	return h.engine
}

// Process feeds raw bytes through the parser and engine.
func (h *HeadlessTerm) Process(data []byte) {
	h.engine.FeedBytes(data)
}

// Write implements io.Writer so a Presenter can emit straight into the
// fixture. It never fails.
func (h *HeadlessTerm) Write(data []byte) (int, error) {
	h.engine.FeedBytes(data)
	return len(data), nil
}

// ProcessString feeds a string through the parser and engine.
func (h *HeadlessTerm) ProcessString(s string) {
	h.engine.FeedString(s)
}

// CursorPos returns the cursor position (0-based).
func (h *HeadlessTerm) CursorPos() (row, col int) {
	return h.engine.CursorPos()
}

// RowText returns the text of one row with trailing blanks trimmed.
func (h *HeadlessTerm) RowText(row int) string {
	return h.engine.RowText(row)
}

// ScreenText returns every row's text, one string per row.
func (h *HeadlessTerm) ScreenText() []string {
	rows := make([]string, h.engine.Rows())
	for i := range rows {
		rows[i] = h.engine.RowText(i)
	}
	return rows
}

// ScreenString returns the visible screen joined by newlines, with trailing
// empty rows omitted.
func (h *HeadlessTerm) ScreenString() string {
	return h.engine.String()
}

// CapturedInput returns every byte fed so far.
func (h *HeadlessTerm) CapturedInput() []byte {
	return h.recording.Data()
}

// Reset reinitializes the terminal to its power-on state and clears the
// captured input.
func (h *HeadlessTerm) Reset() {
	h.engine.FeedBytes([]byte("\x1bc"))
	h.recording.Clear()
}

// LineDiff reports one row where the screen differs from an expectation.
type LineDiff struct {
	Row      int
	Expected string
	Actual   string
}

// Diff compares the screen against expected row texts and returns one entry
// per mismatching row. Missing expectations compare as empty rows. A nil
// result means the screen matches.
func (h *HeadlessTerm) Diff(expected []string) []LineDiff {
	var diffs []LineDiff
	rows := h.engine.Rows()
	for row := 0; row < rows; row++ {
		want := ""
		if row < len(expected) {
			want = expected[row]
		}
		got := h.engine.RowText(row)
		if got != want {
			diffs = append(diffs, LineDiff{Row: row, Expected: want, Actual: got})
		}
	}
	return diffs
}

// DiffString formats the output of Diff for test failure messages.
func (h *HeadlessTerm) DiffString(expected []string) string {
	diffs := h.Diff(expected)
	if diffs == nil {
		return ""
	}
	out := ""
	for _, d := range diffs {
		out += fmt.Sprintf("row %d:\n  expected %q\n  actual   %q\n", d.Row, d.Expected, d.Actual)
	}
	return out
}

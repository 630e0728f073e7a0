package tuiengine

import (
	"fmt"
	"sync"
)

const (
	// DefaultRows is the default number of terminal rows.
	DefaultRows = 24
	// DefaultCols is the default number of terminal columns.
	DefaultCols = 80
)

// WidthPolicy decides how many columns a rune occupies (0, 1, or 2).
type WidthPolicy func(r rune) int

// Engine applies parsed actions to a cell grid, cursor, and mode set, and
// queues reply bytes for queries. It maintains two buffers: primary (with
// scrollback) and alternate (no scrollback); the active buffer switches when
// entering/exiting alternate screen mode. A presented-grid snapshot supports
// incremental patch extraction. All operations are total: out-of-range
// coordinates are clamped, unrecognized actions are ignored.
type Engine struct {
	mu sync.RWMutex

	rows int
	cols int

	parser *Parser

	primaryBuffer   *Buffer
	alternateBuffer *Buffer
	activeBuffer    *Buffer
	presented       *Buffer

	cursor      *Cursor
	savedCursor *SavedCursor

	// Current cell attributes
	template CellTemplate

	// Charsets
	charsets      [4]Charset
	activeCharset int
	singleShift   int // slot for the next printed character, -1 when none

	// Scrolling region
	scrollTop    int
	scrollBottom int

	modes TerminalMode

	title      string
	titleStack []string

	currentHyperlink *Hyperlink
	lastPrinted      rune

	replies [][]byte

	replyEngine       ReplyEngine
	recordingProvider RecordingProvider
	scrollbackStorage ScrollbackProvider
	widthPolicy       WidthPolicy
}

// EngineOption configures an Engine during construction.
type EngineOption func(*Engine)

// WithScrollback sets the storage for scrollback lines.
// Lines scrolled off the top are pushed here. Defaults to a no-op if not set.
func WithScrollback(storage ScrollbackProvider) EngineOption {
	return func(e *Engine) {
		e.scrollbackStorage = storage
	}
}

// WithReplyEngine sets the reply engine consulted before each action.
// Defaults to DefaultReplyEngine.
func WithReplyEngine(re ReplyEngine) EngineOption {
	return func(e *Engine) {
		e.replyEngine = re
	}
}

// WithRecording sets the handler for capturing raw input bytes before
// parsing. Useful for replay, debugging, or regression testing.
func WithRecording(p RecordingProvider) EngineOption {
	return func(e *Engine) {
		e.recordingProvider = p
	}
}

// WithWidthPolicy overrides the rune width measurement.
// Defaults to East-Asian-Width measurement via runeWidth.
func WithWidthPolicy(policy WidthPolicy) EngineOption {
	return func(e *Engine) {
		e.widthPolicy = policy
	}
}

// NewEngine creates an engine with the given viewport dimensions.
// Zero or negative dimensions are rejected.
func NewEngine(cols, rows int, opts ...EngineOption) (*Engine, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("engine: invalid dimensions %dx%d", cols, rows)
	}

	e := &Engine{
		rows:              rows,
		cols:              cols,
		parser:            NewParser(),
		cursor:            NewCursor(),
		template:          NewCellTemplate(),
		singleShift:       -1,
		scrollBottom:      rows,
		modes:             defaultModes,
		replyEngine:       DefaultReplyEngine{},
		recordingProvider: NoopRecording{},
		widthPolicy:       runeWidth,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.scrollbackStorage == nil {
		e.scrollbackStorage = NoopScrollback{}
	}
	e.primaryBuffer = NewBufferWithStorage(rows, cols, e.scrollbackStorage)
	e.alternateBuffer = NewBuffer(rows, cols) // Alternate buffer has no scrollback
	e.activeBuffer = e.primaryBuffer
	e.presented = NewBuffer(rows, cols)

	return e, nil
}

// Rows returns the viewport height in character rows.
func (e *Engine) Rows() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rows
}

// Cols returns the viewport width in character columns.
func (e *Engine) Cols() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cols
}

// Cell returns the cell at (row, col) in the active buffer.
// Returns nil if coordinates are out of bounds.
func (e *Engine) Cell(row, col int) *Cell {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeBuffer.Cell(row, col)
}

// Buffer returns the active cell buffer.
func (e *Engine) Buffer() *Buffer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeBuffer
}

// Parser returns the engine's parser.
func (e *Engine) Parser() *Parser {
	return e.parser
}

// CursorPos returns the current cursor position (0-based).
func (e *Engine) CursorPos() (row, col int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursor.Row, e.cursor.Col
}

// Cursor returns a copy of the cursor state.
func (e *Engine) Cursor() Cursor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return *e.cursor
}

// Modes returns the current mode set.
func (e *Engine) Modes() TerminalMode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.modes
}

// HasMode returns true if the specified mode flag is enabled.
func (e *Engine) HasMode(mode TerminalMode) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.modes&mode != 0
}

// Title returns the current window title string.
func (e *Engine) Title() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.title
}

// ScrollRegion returns the current scrolling boundaries (0-based, exclusive bottom).
func (e *Engine) ScrollRegion() (top, bottom int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scrollTop, e.scrollBottom
}

// IsAlternateScreen returns true if the alternate buffer is currently active.
func (e *Engine) IsAlternateScreen() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeBuffer == e.alternateBuffer
}

// WidthPolicy returns the rune width measurement in use.
func (e *Engine) WidthPolicy() WidthPolicy {
	return e.widthPolicy
}

// ScrollbackLen returns the number of lines stored in scrollback (primary buffer only).
func (e *Engine) ScrollbackLen() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.primaryBuffer.ScrollbackLen()
}

// ScrollbackLine returns a line from scrollback, where 0 is the oldest line.
// Returns nil if index is out of range.
func (e *Engine) ScrollbackLine(index int) []Cell {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.primaryBuffer.ScrollbackLine(index)
}

// ClearScrollback removes all stored scrollback lines.
func (e *Engine) ClearScrollback() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.primaryBuffer.ClearScrollback()
}

// FeedBytes parses a chunk of bytes and applies all resulting actions in
// order. Returns the number of actions applied. For each action the reply
// engine is consulted first; produced replies are queued in FIFO order.
func (e *Engine) FeedBytes(data []byte) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.recordingProvider.Record(data)

	actions := e.parser.Feed(data)
	for _, action := range actions {
		if e.replyEngine != nil {
			ctx := ReplyContext{
				Row:   e.cursor.Row,
				Col:   e.cursor.Col,
				Rows:  e.rows,
				Cols:  e.cols,
				Modes: e.modes,
			}
			if reply := e.replyEngine.Reply(action, ctx); len(reply) > 0 {
				e.replies = append(e.replies, reply)
			}
		}
		e.apply(action)
	}
	return len(actions)
}

// FeedString is a convenience wrapper converting the string to bytes.
func (e *Engine) FeedString(s string) int {
	return e.FeedBytes([]byte(s))
}

// DrainReplies returns pending reply byte chunks in FIFO order and clears
// the queue. A second drain with no intervening queries returns nil.
func (e *Engine) DrainReplies() [][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	replies := e.replies
	e.replies = nil
	return replies
}

// SnapshotPatches diffs the current grid against the last-presented snapshot
// in row-major order, then rotates the snapshot. Repeated calls with no
// intervening mutation return empty patches.
func (e *Engine) SnapshotPatches() Patch {
	e.mu.Lock()
	defer e.mu.Unlock()

	patch := DiffBuffers(e.presented, e.activeBuffer)
	e.presented.CopyFrom(e.activeBuffer)
	e.activeBuffer.ClearDirty()
	return patch
}

// Resize changes the viewport dimensions. When the grid shrinks, rows above
// the cursor reflow into scrollback so content near the cursor survives;
// when it grows, lines are reclaimed from scrollback. The cursor row follows
// its content and columns are clamped. Zero or negative dimensions are
// rejected.
func (e *Engine) Resize(cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("engine: invalid dimensions %dx%d", cols, rows)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	oldRows := e.rows

	// When shrinking rows on the primary buffer, scroll lines into
	// scrollback to preserve content near the cursor.
	if rows < oldRows && e.activeBuffer == e.primaryBuffer {
		linesToScroll := oldRows - rows
		if e.cursor.Row >= rows {
			e.primaryBuffer.PushTopRows(linesToScroll, e.template.Bg)
			e.cursor.Row -= linesToScroll
			if e.cursor.Row < 0 {
				e.cursor.Row = 0
			}
		}
	}

	e.rows = rows
	e.cols = cols
	e.primaryBuffer.Resize(rows, cols)
	e.alternateBuffer.Resize(rows, cols)

	// When growing rows on the primary buffer, pull content back out of
	// scrollback. The cursor follows its content downward.
	if rows > oldRows && e.activeBuffer == e.primaryBuffer {
		reclaimed := e.primaryBuffer.ReclaimRows(rows-oldRows, e.template.Bg)
		e.cursor.Row += reclaimed
	}

	e.cursor.Row = clamp(e.cursor.Row, 0, rows-1)
	e.cursor.Col = clamp(e.cursor.Col, 0, cols-1)
	e.cursor.PendingWrap = false

	// The scroll region resets to the full viewport; a saved cursor outside
	// the new bounds is clamped on restore.
	e.scrollTop = 0
	e.scrollBottom = rows

	// Drop the presented snapshot so the next patch is a full repaint.
	e.presented = NewBuffer(rows, cols)

	return nil
}

// RowText returns the text content of a row, trimming trailing spaces.
func (e *Engine) RowText(row int) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeBuffer.LineText(row, nil)
}

// String returns the visible screen content as a newline-separated string.
// Trailing empty lines are omitted. Implements fmt.Stringer.
func (e *Engine) String() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var lines []string
	lastNonEmpty := -1

	for row := 0; row < e.rows; row++ {
		line := e.activeBuffer.LineText(row, nil)
		lines = append(lines, line)
		if line != "" {
			lastNonEmpty = row
		}
	}

	if lastNonEmpty < 0 {
		return ""
	}

	result := ""
	for i, line := range lines[:lastNonEmpty+1] {
		if i > 0 {
			result += "\n"
		}
		result += line
	}

	return result
}

// Search finds all occurrences of pattern in the visible screen content.
// Returns positions of the first character of each match.
func (e *Engine) Search(pattern string) []Position {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if pattern == "" {
		return nil
	}

	var matches []Position
	patternRunes := []rune(pattern)

	for row := 0; row < e.rows; row++ {
		lineRunes := []rune(e.activeBuffer.LineText(row, nil))

		for col := 0; col <= len(lineRunes)-len(patternRunes); col++ {
			found := true
			for i, pr := range patternRunes {
				if lineRunes[col+i] != pr {
					found = false
					break
				}
			}
			if found {
				matches = append(matches, Position{Row: row, Col: col})
			}
		}
	}

	return matches
}

// PushTitle saves the current title to the stack.
func (e *Engine) PushTitle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.titleStack = append(e.titleStack, e.title)
}

// PopTitle restores the previous title from the stack.
func (e *Engine) PopTitle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.titleStack) > 0 {
		e.title = e.titleStack[len(e.titleStack)-1]
		e.titleStack = e.titleStack[:len(e.titleStack)-1]
	}
}

// RecordedData returns all raw input bytes captured since the last ClearRecording call.
func (e *Engine) RecordedData() []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.recordingProvider.Data()
}

// ClearRecording discards all captured input data.
func (e *Engine) ClearRecording() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recordingProvider.Clear()
}

// clamp ensures the value is within the given range.
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

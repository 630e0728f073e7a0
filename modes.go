package tuiengine

// TerminalMode is a bitmask of terminal behavior flags.
// Multiple modes can be active simultaneously.
type TerminalMode uint32

const (
	// ModeCursorKeys enables cursor key mode (DECCKM).
	ModeCursorKeys TerminalMode = 1 << iota
	// ModeInsert enables insert mode (characters shift right instead of overwrite).
	ModeInsert
	// ModeOrigin enables origin mode (cursor positioning relative to scroll region).
	ModeOrigin
	// ModeLineWrap enables automatic line wrapping at column boundaries.
	ModeLineWrap
	// ModeBlinkingCursor enables blinking cursor.
	ModeBlinkingCursor
	// ModeLineFeedNewLine makes line feed also move to column 0.
	ModeLineFeedNewLine
	// ModeShowCursor makes the cursor visible.
	ModeShowCursor
	// ModeReportMouseClicks enables mouse click reporting.
	ModeReportMouseClicks
	// ModeReportCellMouseMotion enables mouse motion reporting (cell-based).
	ModeReportCellMouseMotion
	// ModeReportAllMouseMotion enables reporting of all mouse motion events.
	ModeReportAllMouseMotion
	// ModeReportFocusInOut enables focus in/out event reporting.
	ModeReportFocusInOut
	// ModeUTF8Mouse enables UTF-8 mouse encoding.
	ModeUTF8Mouse
	// ModeSGRMouse enables SGR mouse encoding.
	ModeSGRMouse
	// ModeAlternateScroll enables alternate scroll mode.
	ModeAlternateScroll
	// ModeSwapScreenAndSetRestoreCursor swaps to alternate screen and saves cursor.
	// When unset, restores primary screen and cursor position.
	ModeSwapScreenAndSetRestoreCursor
	// ModeBracketedPaste enables bracketed paste mode.
	ModeBracketedPaste
	// ModeKeypadApplication enables application keypad mode.
	ModeKeypadApplication
	// ModeSynchronizedUpdate defers rendering until the batch ends (DECSET 2026).
	ModeSynchronizedUpdate
)

// defaultModes is the mode set after construction and full reset.
const defaultModes = ModeLineWrap | ModeShowCursor

// decModeFlag maps a DEC private mode number to its flag.
// Returns false for unrecognized numbers.
func decModeFlag(n int) (TerminalMode, bool) {
	switch n {
	case 1:
		return ModeCursorKeys, true
	case 6:
		return ModeOrigin, true
	case 7:
		return ModeLineWrap, true
	case 12:
		return ModeBlinkingCursor, true
	case 25:
		return ModeShowCursor, true
	case 1000:
		return ModeReportMouseClicks, true
	case 1002:
		return ModeReportCellMouseMotion, true
	case 1003:
		return ModeReportAllMouseMotion, true
	case 1004:
		return ModeReportFocusInOut, true
	case 1005:
		return ModeUTF8Mouse, true
	case 1006:
		return ModeSGRMouse, true
	case 1007:
		return ModeAlternateScroll, true
	case 1049:
		return ModeSwapScreenAndSetRestoreCursor, true
	case 2004:
		return ModeBracketedPaste, true
	case 2026:
		return ModeSynchronizedUpdate, true
	default:
		return 0, false
	}
}

// ansiModeFlag maps an ANSI mode number to its flag.
// Returns false for unrecognized numbers.
func ansiModeFlag(n int) (TerminalMode, bool) {
	switch n {
	case 4:
		return ModeInsert, true
	case 20:
		return ModeLineFeedNewLine, true
	default:
		return 0, false
	}
}

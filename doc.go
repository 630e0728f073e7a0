// Package tuiengine is the core rendering engine of a terminal UI stack: it
// turns a retained widget description into a minimal ANSI byte stream, and
// it interprets ANSI byte streams back into terminal state so programs can
// test themselves against an in-process terminal.
//
// The package is a strictly layered set of components; each layer depends
// only on lower ones:
//
//   - Cell, Color, Rect: the attributed cell grid data model.
//   - Buffer, ScrollbackProvider, GraphemePool: the addressable screen with
//     damage tracking, a bounded scrollback ring, and interned grapheme
//     clusters.
//   - Parser, Action: a deterministic VT/ANSI state machine producing a
//     stream of actions, independent of chunk boundaries.
//   - Engine: applies actions to grid, cursor, and modes, and queues reply
//     bytes for DA/DSR/CPR/DECRPM queries.
//   - DiffBuffers, Presenter, HeadlessTerm: minimal cell deltas, optimal
//     ANSI emission under a declared capability set, and a test fixture.
//   - Constraint, Flex, Grid, Breakpoints: the constraint-based layout
//     solver and its 1-D/2-D containers.
//   - Style, Frame, Widget: the cascading style and the drawing surface
//     handed to widgets.
//   - Model, Cmd, Runner, StepRunner, FramePlayer: the program contract and
//     the three runner variants (native, host-driven, snapshot replay).
//
// # Terminal emulation
//
// Feed bytes to an Engine and inspect the resulting screen:
//
//	engine, _ := tuiengine.NewEngine(80, 24)
//	engine.FeedString("Hello \x1b[1mworld\x1b[0m")
//	fmt.Println(engine.RowText(0)) // "Hello world"
//
// A HeadlessTerm wraps an Engine as an io.Writer so a Presenter can emit
// straight into it, which is how the presenter round-trip property is
// tested: presenting a buffer into a fresh terminal reproduces the buffer.
//
// # Programs
//
// A program implements Model. The native Runner drives it against a real
// terminal; the StepRunner offers the same semantics without threads for
// hosts that own the event loop (wasm, tests); the FramePlayer records and
// replays full frames deterministically.
//
//	type counter struct{ n int }
//
//	func (c *counter) Init() tuiengine.Cmd { return nil }
//	func (c *counter) Update(msg tuiengine.Msg) tuiengine.Cmd {
//		if key, ok := msg.(tuiengine.KeyEvent); ok && key.Code == tuiengine.KeyEscape {
//			return tuiengine.Quit()
//		}
//		c.n++
//		return nil
//	}
//	func (c *counter) View(f *tuiengine.Frame) {
//		f.WriteString(0, 0, fmt.Sprintf("count: %d", c.n), tuiengine.NewStyle(), f.Area())
//	}
//
// Nothing in the package reads wall-clock time directly: the native runner
// takes a Clock, the step runner takes now on each call, and the replay
// player advances only through its own ticks.
package tuiengine

//go:build js && wasm

package main

import (
	"syscall/js"

	tuiengine "github.com/danielgatis/go-tui-engine"
)

// Global terminal registry
var engines = make(map[int]*tuiengine.Engine)
var nextEngineID = 1

func main() {
	js.Global().Set("TuiEngine", js.ValueOf(map[string]interface{}{
		// Engine lifecycle
		"create":  js.FuncOf(createEngine),
		"destroy": js.FuncOf(destroyEngine),

		// Input processing
		"write":       js.FuncOf(write),
		"writeString": js.FuncOf(writeString),

		// Dimensions
		"resize": js.FuncOf(resize),
		"rows":   js.FuncOf(rows),
		"cols":   js.FuncOf(cols),

		// Cursor
		"cursorPos": js.FuncOf(cursorPos),

		// Content
		"getString": js.FuncOf(getString),
		"rowText":   js.FuncOf(rowText),

		// Incremental rendering
		"snapshotPatches": js.FuncOf(snapshotPatches),
		"drainReplies":    js.FuncOf(drainReplies),

		// State inspection
		"title":             js.FuncOf(title),
		"isAlternateScreen": js.FuncOf(isAlternateScreen),
		"scrollRegion":      js.FuncOf(scrollRegion),
	}))

	// Keep the Go runtime alive
	select {}
}

func engineAt(args []js.Value) *tuiengine.Engine {
	if len(args) < 1 {
		return nil
	}
	return engines[args[0].Int()]
}

func createEngine(this js.Value, args []js.Value) interface{} {
	colsArg, rowsArg := tuiengine.DefaultCols, tuiengine.DefaultRows
	if len(args) >= 2 {
		colsArg = args[0].Int()
		rowsArg = args[1].Int()
	}

	engine, err := tuiengine.NewEngine(colsArg, rowsArg,
		tuiengine.WithScrollback(tuiengine.NewRingScrollback(1000)))
	if err != nil {
		return -1
	}

	id := nextEngineID
	nextEngineID++
	engines[id] = engine
	return id
}

func destroyEngine(this js.Value, args []js.Value) interface{} {
	if len(args) >= 1 {
		delete(engines, args[0].Int())
	}
	return nil
}

func write(this js.Value, args []js.Value) interface{} {
	engine := engineAt(args)
	if engine == nil || len(args) < 2 {
		return 0
	}
	data := make([]byte, args[1].Get("length").Int())
	js.CopyBytesToGo(data, args[1])
	return engine.FeedBytes(data)
}

func writeString(this js.Value, args []js.Value) interface{} {
	engine := engineAt(args)
	if engine == nil || len(args) < 2 {
		return 0
	}
	return engine.FeedString(args[1].String())
}

func resize(this js.Value, args []js.Value) interface{} {
	engine := engineAt(args)
	if engine == nil || len(args) < 3 {
		return false
	}
	return engine.Resize(args[1].Int(), args[2].Int()) == nil
}

func rows(this js.Value, args []js.Value) interface{} {
	if engine := engineAt(args); engine != nil {
		return engine.Rows()
	}
	return 0
}

func cols(this js.Value, args []js.Value) interface{} {
	if engine := engineAt(args); engine != nil {
		return engine.Cols()
	}
	return 0
}

func cursorPos(this js.Value, args []js.Value) interface{} {
	if engine := engineAt(args); engine != nil {
		row, col := engine.CursorPos()
		return map[string]interface{}{"row": row, "col": col}
	}
	return nil
}

func getString(this js.Value, args []js.Value) interface{} {
	if engine := engineAt(args); engine != nil {
		return engine.String()
	}
	return ""
}

func rowText(this js.Value, args []js.Value) interface{} {
	engine := engineAt(args)
	if engine == nil || len(args) < 2 {
		return ""
	}
	return engine.RowText(args[1].Int())
}

func snapshotPatches(this js.Value, args []js.Value) interface{} {
	engine := engineAt(args)
	if engine == nil {
		return nil
	}

	patch := engine.SnapshotPatches()
	updates := make([]interface{}, 0, len(patch.Updates))
	for _, u := range patch.Updates {
		char := ""
		if u.Cell.Char != 0 {
			char = string(u.Cell.Char)
		}
		updates = append(updates, map[string]interface{}{
			"row":   u.Row,
			"col":   u.Col,
			"char":  char,
			"fg":    int(u.Cell.Fg),
			"bg":    int(u.Cell.Bg),
			"flags": int(u.Cell.Flags),
		})
	}
	return map[string]interface{}{
		"cols":    patch.Cols,
		"rows":    patch.Rows,
		"updates": updates,
	}
}

func drainReplies(this js.Value, args []js.Value) interface{} {
	engine := engineAt(args)
	if engine == nil {
		return nil
	}
	replies := engine.DrainReplies()
	out := make([]interface{}, 0, len(replies))
	for _, r := range replies {
		out = append(out, string(r))
	}
	return out
}

func title(this js.Value, args []js.Value) interface{} {
	if engine := engineAt(args); engine != nil {
		return engine.Title()
	}
	return ""
}

func isAlternateScreen(this js.Value, args []js.Value) interface{} {
	if engine := engineAt(args); engine != nil {
		return engine.IsAlternateScreen()
	}
	return false
}

func scrollRegion(this js.Value, args []js.Value) interface{} {
	if engine := engineAt(args); engine != nil {
		top, bottom := engine.ScrollRegion()
		return map[string]interface{}{"top": top, "bottom": bottom}
	}
	return nil
}

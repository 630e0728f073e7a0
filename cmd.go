package tuiengine

import "time"

// Msg is a message delivered to a model's Update. Input events are delivered
// as their Event values; tasks and Msg commands deliver whatever they carry.
type Msg = any

// Cmd is an effect requested by a model update. A nil Cmd means no effect.
type Cmd interface {
	isCmd()
}

type quitCmd struct{}

type msgCmd struct{ msg Msg }

type batchCmd struct{ cmds []Cmd }

type sequenceCmd struct{ cmds []Cmd }

type tickCmd struct{ interval time.Duration }

type logCmd struct{ text string }

type taskCmd struct {
	label string
	fn    func() Msg
}

type mouseCaptureCmd struct{ enable bool }

type saveStateCmd struct{}

type restoreStateCmd struct{}

func (quitCmd) isCmd()         {}
func (msgCmd) isCmd()          {}
func (batchCmd) isCmd()        {}
func (sequenceCmd) isCmd()     {}
func (tickCmd) isCmd()         {}
func (logCmd) isCmd()          {}
func (taskCmd) isCmd()         {}
func (mouseCaptureCmd) isCmd() {}
func (saveStateCmd) isCmd()    {}
func (restoreStateCmd) isCmd() {}

// Quit terminates the program after the current message is handled.
func Quit() Cmd { return quitCmd{} }

// Message feeds a message straight back into Update.
func Message(msg Msg) Cmd { return msgCmd{msg: msg} }

// Batch runs commands concurrently in unspecified order.
// Nil commands are dropped; an empty batch is a no-op.
func Batch(cmds ...Cmd) Cmd {
	filtered := filterCmds(cmds)
	if len(filtered) == 0 {
		return nil
	}
	return batchCmd{cmds: filtered}
}

// Sequence runs commands in order, stopping early on Quit.
func Sequence(cmds ...Cmd) Cmd {
	filtered := filterCmds(cmds)
	if len(filtered) == 0 {
		return nil
	}
	return sequenceCmd{cmds: filtered}
}

// Tick installs or updates the tick rate. A zero or negative interval
// disables ticking.
func Tick(interval time.Duration) Cmd { return tickCmd{interval: interval} }

// Log appends a line to the runner's log buffer.
func Log(text string) Cmd { return logCmd{text: text} }

// Task runs fn (in a worker or inline depending on the runner) and delivers
// its result as a message when ready.
func Task(label string, fn func() Msg) Cmd { return taskCmd{label: label, fn: fn} }

// SetMouseCapture asks the host to enable or disable mouse reporting.
func SetMouseCapture(enable bool) Cmd { return mouseCaptureCmd{enable: enable} }

// SaveState asks the host to persist application state.
func SaveState() Cmd { return saveStateCmd{} }

// RestoreState asks the host to restore persisted application state.
func RestoreState() Cmd { return restoreStateCmd{} }

func filterCmds(cmds []Cmd) []Cmd {
	var out []Cmd
	for _, c := range cmds {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Model is a retained program: Init runs once, Update folds messages into
// state and returns effects, View draws the current state into a frame.
type Model interface {
	Init() Cmd
	Update(msg Msg) Cmd
	View(frame *Frame)
}

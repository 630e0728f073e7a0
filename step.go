package tuiengine

import "time"

// StepResult summarizes what one step of a host-driven runner did.
type StepResult struct {
	EventsProcessed int
	TickFired       bool
	Dirty           bool
	Quit            bool
}

// RenderedFrame is the output of one render: the drawn buffer, the patch
// against the previous frame (nil on the first render and after a resize,
// meaning a full repaint is required), and a sequential frame index.
type RenderedFrame struct {
	Buffer   *Buffer
	Patch    *Patch
	FrameIdx uint64
}

// StepRunner drives a model without threads or blocking: the host pushes
// events, calls Step with its own notion of now, and renders when dirty.
// Tasks run synchronously, so given the same initial model and the same
// event and tick sequence, the produced frame sequence is byte-identical.
type StepRunner struct {
	model Model

	w, h int

	events []Event

	dirty       bool
	initialized bool
	quit        bool

	tickRate time.Duration
	lastTick time.Duration
	hasTick  bool

	prev     *Buffer
	pool     *GraphemePool
	frameIdx uint64

	logs []string
}

// NewStepRunner creates a step runner with the given viewport size.
func NewStepRunner(model Model, w, h int) *StepRunner {
	if w <= 0 {
		w = DefaultCols
	}
	if h <= 0 {
		h = DefaultRows
	}
	return &StepRunner{
		model: model,
		w:     w,
		h:     h,
		pool:  NewGraphemePool(),
	}
}

// Init runs the model's Init command. Must be called once before Step.
func (r *StepRunner) Init() StepResult {
	if r.initialized {
		return StepResult{Dirty: r.dirty, Quit: r.quit}
	}
	r.initialized = true
	r.execCmd(r.model.Init())
	r.dirty = true
	return StepResult{Dirty: r.dirty, Quit: r.quit}
}

// PushEvent queues one event for the next Step.
func (r *StepRunner) PushEvent(e Event) {
	r.events = append(r.events, e)
}

// PushEvents queues a batch of events in order.
func (r *StepRunner) PushEvents(events []Event) {
	r.events = append(r.events, events...)
}

// Step drains the event queue (each event becomes a message; Update runs;
// commands execute; a Quit terminates the drain), then delivers a tick when
// the tick rate elapsed relative to now.
func (r *StepRunner) Step(now time.Duration) StepResult {
	result := StepResult{}

	for len(r.events) > 0 && !r.quit {
		e := r.events[0]
		r.events = r.events[1:]

		if resize, ok := e.(ResizeEvent); ok {
			r.Resize(resize.W, resize.H)
		}

		r.deliver(e)
		result.EventsProcessed++
	}

	if !r.quit && r.hasTick && now-r.lastTick >= r.tickRate {
		r.lastTick = now
		r.deliver(TickEvent{})
		result.TickFired = true
	}

	result.Dirty = r.dirty
	result.Quit = r.quit
	return result
}

// StepEvent delivers a single event immediately, bypassing the queue.
func (r *StepRunner) StepEvent(e Event) StepResult {
	if resize, ok := e.(ResizeEvent); ok {
		r.Resize(resize.W, resize.H)
	}
	r.deliver(e)
	return StepResult{EventsProcessed: 1, Dirty: r.dirty, Quit: r.quit}
}

func (r *StepRunner) deliver(msg Msg) {
	if r.quit {
		return
	}
	r.execCmd(r.model.Update(msg))
	r.dirty = true
}

// execCmd executes a command synchronously. Batch children run in order
// (the deterministic interpretation of "unspecified order" without threads).
func (r *StepRunner) execCmd(cmd Cmd) {
	if cmd == nil || r.quit {
		return
	}
	switch c := cmd.(type) {
	case quitCmd:
		r.quit = true
	case msgCmd:
		r.deliver(c.msg)
	case batchCmd:
		for _, child := range c.cmds {
			r.execCmd(child)
		}
	case sequenceCmd:
		for _, child := range c.cmds {
			r.execCmd(child)
			if r.quit {
				break
			}
		}
	case tickCmd:
		if c.interval > 0 {
			r.tickRate = c.interval
			r.hasTick = true
		} else {
			r.hasTick = false
		}
	case logCmd:
		r.logs = append(r.logs, c.text)
	case taskCmd:
		// Synchronous: the result message is delivered immediately
		r.deliver(c.fn())
	case mouseCaptureCmd, saveStateCmd, restoreStateCmd:
		// Delegated to the host
	}
}

// Render draws a frame when dirty. Returns nil when nothing changed since
// the last render.
func (r *StepRunner) Render() *RenderedFrame {
	if !r.dirty {
		return nil
	}
	frame := r.ForceRender()
	return &frame
}

// ForceRender draws a frame regardless of the dirty flag, diffs it against
// the retained previous buffer, rotates buffers, and increments the frame
// index.
func (r *StepRunner) ForceRender() RenderedFrame {
	buf := NewBuffer(r.h, r.w)
	frame := NewFrame(buf, r.pool)
	r.model.View(frame)

	var patch *Patch
	if r.prev != nil && r.prev.Rows() == buf.Rows() && r.prev.Cols() == buf.Cols() {
		p := DiffBuffers(r.prev, buf)
		patch = &p
	}

	r.prev = buf
	r.dirty = false
	idx := r.frameIdx
	r.frameIdx++

	return RenderedFrame{Buffer: buf, Patch: patch, FrameIdx: idx}
}

// Resize updates the viewport size and invalidates the diff baseline, so the
// next render reports a full repaint.
func (r *StepRunner) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	if w == r.w && h == r.h {
		return
	}
	r.w = w
	r.h = h
	r.prev = nil
	r.dirty = true
}

// Size returns the current viewport dimensions.
func (r *StepRunner) Size() (w, h int) {
	return r.w, r.h
}

// IsRunning returns false once a Quit command executed.
func (r *StepRunner) IsRunning() bool { return !r.quit }

// IsDirty returns true when a render is pending.
func (r *StepRunner) IsDirty() bool { return r.dirty }

// IsInitialized returns true once Init ran.
func (r *StepRunner) IsInitialized() bool { return r.initialized }

// FrameIdx returns the index the next rendered frame will get.
func (r *StepRunner) FrameIdx() uint64 { return r.frameIdx }

// TickRate returns the installed tick interval and whether one is set.
func (r *StepRunner) TickRate() (time.Duration, bool) { return r.tickRate, r.hasTick }

// PendingEvents returns the number of queued events.
func (r *StepRunner) PendingEvents() int { return len(r.events) }

// Model returns the wrapped model.
func (r *StepRunner) Model() Model { return r.model }

// Pool returns the runner's grapheme pool.
func (r *StepRunner) Pool() *GraphemePool { return r.pool }

// Logs returns the accumulated log lines.
func (r *StepRunner) Logs() []string { return r.logs }

// DrainLogs returns and clears the accumulated log lines.
func (r *StepRunner) DrainLogs() []string {
	logs := r.logs
	r.logs = nil
	return logs
}

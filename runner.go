package tuiengine

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/muesli/cancelreader"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner drives a model against a real terminal: an input pump translates
// device bytes into events on a bounded queue, a worker pool executes task
// commands, and the main loop owns every piece of mutable state (model,
// buffers, presenter). Only the main loop runs Update, View, diff, and
// present.
type Runner struct {
	model Model

	input  io.Reader
	output io.Writer
	caps   TerminalCapabilities
	clock  Clock
	logger *zap.Logger

	w, h      int
	altScreen bool

	queue   *eventQueue
	taskCh  chan Msg
	done    chan struct{}
	workers *errgroup.Group

	presenter *Presenter
	pool      *GraphemePool
	prev      *Buffer

	dirty bool
	quit  bool

	tickRate time.Duration
	hasTick  bool

	logs []string

	onMouseCapture func(bool)
	onSaveState    func()
	onRestoreState func()
}

// RunnerOption configures a Runner during construction.
type RunnerOption func(*Runner)

// WithInput sets the byte source the input pump reads from.
// Without one, the runner is driven by ticks and tasks only.
func WithInput(r io.Reader) RunnerOption {
	return func(run *Runner) { run.input = r }
}

// WithOutput sets the sink presented frames are written to.
func WithOutput(w io.Writer) RunnerOption {
	return func(run *Runner) { run.output = w }
}

// WithCapabilities sets the terminal capability record.
// Defaults to DefaultCapabilities.
func WithCapabilities(caps TerminalCapabilities) RunnerOption {
	return func(run *Runner) { run.caps = caps }
}

// WithClock injects the time source. Defaults to the system clock.
func WithClock(c Clock) RunnerOption {
	return func(run *Runner) { run.clock = c }
}

// WithLogger installs a structured logger for runner diagnostics.
// Defaults to a no-op logger.
func WithLogger(l *zap.Logger) RunnerOption {
	return func(run *Runner) { run.logger = l }
}

// WithSize sets the initial viewport dimensions.
func WithSize(w, h int) RunnerOption {
	return func(run *Runner) {
		if w > 0 && h > 0 {
			run.w, run.h = w, h
		}
	}
}

// WithAltScreen controls whether the runner switches to the alternate screen
// on startup and back on shutdown. Default is on.
func WithAltScreen(enabled bool) RunnerOption {
	return func(run *Runner) { run.altScreen = enabled }
}

// WithQueueCapacity bounds the input event queue.
func WithQueueCapacity(n int) RunnerOption {
	return func(run *Runner) { run.queue = newEventQueue(n) }
}

// WithMouseCaptureHook installs the host callback for SetMouseCapture commands.
func WithMouseCaptureHook(fn func(bool)) RunnerOption {
	return func(run *Runner) { run.onMouseCapture = fn }
}

// WithStateHooks installs the host callbacks for SaveState and RestoreState.
func WithStateHooks(save, restore func()) RunnerOption {
	return func(run *Runner) { run.onSaveState = save; run.onRestoreState = restore }
}

// NewRunner creates a native runner for the model.
func NewRunner(model Model, opts ...RunnerOption) *Runner {
	r := &Runner{
		model:     model,
		output:    io.Discard,
		caps:      DefaultCapabilities(),
		clock:     SystemClock(),
		logger:    zap.NewNop(),
		w:         DefaultCols,
		h:         DefaultRows,
		altScreen: true,
		taskCh:    make(chan Msg, 64),
		done:      make(chan struct{}),
		pool:      NewGraphemePool(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.queue == nil {
		r.queue = newEventQueue(256)
	}
	r.presenter = NewPresenter(r.output, r.caps)
	r.presenter.SetPool(r.pool)
	r.workers = &errgroup.Group{}
	return r
}

// Logs returns the log lines accumulated by Log commands.
func (r *Runner) Logs() []string {
	return r.logs
}

// Run executes the main loop until a Quit command or a context
// cancellation. An error opening the input reader is returned before the
// loop starts; a read error or end of input stops only the input pump. It
// is the only goroutine that touches the model and buffers.
func (r *Runner) Run(ctx context.Context) error {
	if r.altScreen {
		fmt.Fprint(r.output, "\x1b[?1049h")
		defer fmt.Fprint(r.output, "\x1b[?1049l")
	}

	stopInput, err := r.startInputPump()
	if err != nil {
		return err
	}
	defer stopInput()
	defer close(r.done)

	r.execCmd(r.model.Init())
	r.dirty = true

	lastTick := r.clock.Now()

	for !r.quit {
		if r.dirty {
			r.render()
		}

		var tickCh <-chan time.Time
		if r.hasTick {
			elapsed := r.clock.Now().Sub(lastTick)
			wait := r.tickRate - elapsed
			if wait < 0 {
				wait = 0
			}
			tickCh = r.clock.After(wait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.queue.wait():
			for {
				e, ok := r.queue.pop()
				if !ok {
					break
				}
				r.handleEvent(e)
				if r.quit {
					break
				}
			}
		case msg := <-r.taskCh:
			r.deliver(msg)
		case <-tickCh:
			lastTick = r.clock.Now()
			r.deliver(TickEvent{})
		}
	}

	if r.dirty {
		r.render()
	}
	return nil
}

// startInputPump launches the goroutine translating input bytes to events.
// The returned stop function cancels the blocked read.
func (r *Runner) startInputPump() (func(), error) {
	if r.input == nil {
		return func() {}, nil
	}

	reader, err := cancelreader.NewReader(r.input)
	if err != nil {
		return nil, fmt.Errorf("runner: input: %w", err)
	}

	go func() {
		decoder := NewInputDecoder()
		buf := make([]byte, 4096)
		for {
			n, err := reader.Read(buf)
			if n > 0 {
				for _, e := range decoder.Feed(buf[:n]) {
					if !r.queue.push(e) {
						r.logger.Warn("input queue full, dropping event")
					}
				}
			}
			if err != nil {
				for _, e := range decoder.Flush() {
					r.queue.push(e)
				}
				return
			}
		}
	}()

	return func() { reader.Cancel() }, nil
}

func (r *Runner) handleEvent(e Event) {
	if resize, ok := e.(ResizeEvent); ok && resize.W > 0 && resize.H > 0 {
		r.w, r.h = resize.W, resize.H
		// The old buffer no longer matches; the next render repaints fully
		r.prev = nil
		r.presenter.Forget()
	}
	r.deliver(e)
}

func (r *Runner) deliver(msg Msg) {
	if r.quit {
		return
	}
	r.execCmd(r.model.Update(msg))
	r.dirty = true
}

// render draws a frame and presents the delta. On a write error the frame
// is aborted without buffer rotation and retried on the next tick.
func (r *Runner) render() {
	buf := NewBuffer(r.h, r.w)
	frame := NewFrame(buf, r.pool)
	r.model.View(frame)

	var err error
	if r.prev == nil || r.prev.Rows() != buf.Rows() || r.prev.Cols() != buf.Cols() {
		err = r.presenter.FullRepaint(buf)
	} else {
		err = r.presenter.Present(buf, DiffBuffers(r.prev, buf))
	}
	if err != nil {
		r.logger.Warn("present failed, frame aborted", zap.Error(err))
		return
	}

	r.prev = buf
	r.dirty = false
}

// execCmd interprets a command. Task thunks run on the worker pool; their
// results come back through the task channel. Batch children execute
// concurrently where they are effectful and inline otherwise; Sequence
// executes in order and stops on Quit.
func (r *Runner) execCmd(cmd Cmd) {
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
		r.logger.Info(c.text)
	case taskCmd:
		r.spawnTask(c)
	case mouseCaptureCmd:
		r.setMouseCapture(c.enable)
	case saveStateCmd:
		if r.onSaveState != nil {
			r.onSaveState()
		}
	case restoreStateCmd:
		if r.onRestoreState != nil {
			r.onRestoreState()
		}
	}
}

// spawnTask runs the thunk on a worker. A panicking task is logged and its
// message dropped; the main loop continues. Results posted after Quit are
// discarded.
func (r *Runner) spawnTask(c taskCmd) {
	r.workers.Go(func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("task panicked",
					zap.String("label", c.label),
					zap.Any("panic", rec))
			}
		}()

		msg := c.fn()
		select {
		case r.taskCh <- msg:
		case <-r.done:
		}
		return nil
	})
}

func (r *Runner) setMouseCapture(enable bool) {
	if r.onMouseCapture != nil {
		r.onMouseCapture(enable)
	}
	if !r.caps.SupportsMouse {
		return
	}
	if enable {
		fmt.Fprint(r.output, "\x1b[?1000h\x1b[?1002h\x1b[?1006h")
	} else {
		fmt.Fprint(r.output, "\x1b[?1006l\x1b[?1002l\x1b[?1000l")
	}
}

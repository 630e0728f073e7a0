package tuiengine

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a goroutine-safe output sink for runner tests.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunnerQuitsOnKey(t *testing.T) {
	out := &syncBuffer{}
	model := &stepModel{quitOn: 'q'}

	runner := NewRunner(model,
		WithInput(strings.NewReader("aq")),
		WithOutput(out),
		WithSize(20, 4),
		WithAltScreen(false),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := runner.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if model.keys != 1 {
		t.Errorf("expected one counted key before quit, got %d", model.keys)
	}
	if !strings.Contains(out.String(), "keys=") {
		t.Errorf("expected at least one presented frame, got %q", out.String())
	}
}

func TestRunnerAltScreenBrackets(t *testing.T) {
	out := &syncBuffer{}
	runner := NewRunner(&stepModel{quitOn: 'q'},
		WithInput(strings.NewReader("q")),
		WithOutput(out),
		WithSize(20, 4),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := out.String()
	if !strings.HasPrefix(s, "\x1b[?1049h") {
		t.Errorf("expected alt-screen enter at startup, got %q", s[:min(len(s), 20)])
	}
	if !strings.HasSuffix(s, "\x1b[?1049l") {
		t.Errorf("expected alt-screen leave at shutdown")
	}
}

func TestRunnerContextCancellation(t *testing.T) {
	runner := NewRunner(&stepModel{quitOn: 'q'},
		WithOutput(&syncBuffer{}),
		WithSize(20, 4),
		WithAltScreen(false),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("runner did not stop on cancellation")
	}
}

// quitTaskModel quits once its background task result arrives.
type quitTaskModel struct {
	results []string
}

func (m *quitTaskModel) Init() Cmd {
	return Task("work", func() Msg { return "task-done" })
}

func (m *quitTaskModel) Update(msg Msg) Cmd {
	if s, ok := msg.(string); ok {
		m.results = append(m.results, s)
		return Quit()
	}
	return nil
}

func (m *quitTaskModel) View(f *Frame) {}

func TestRunnerTaskDeliversResult(t *testing.T) {
	model := &quitTaskModel{}
	runner := NewRunner(model,
		WithOutput(&syncBuffer{}),
		WithSize(10, 2),
		WithAltScreen(false),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(model.results) != 1 || model.results[0] != "task-done" {
		t.Errorf("expected task result delivered, got %v", model.results)
	}
}

// panicTaskModel proves a panicking task does not take down the runner.
type panicTaskModel struct {
	sawTick bool
}

func (m *panicTaskModel) Init() Cmd {
	return Batch(
		Task("boom", func() Msg { panic("worker exploded") }),
		Tick(10*time.Millisecond),
	)
}

func (m *panicTaskModel) Update(msg Msg) Cmd {
	if _, ok := msg.(TickEvent); ok {
		m.sawTick = true
		return Quit()
	}
	return nil
}

func (m *panicTaskModel) View(f *Frame) {}

func TestRunnerSurvivesTaskPanic(t *testing.T) {
	model := &panicTaskModel{}
	runner := NewRunner(model,
		WithOutput(&syncBuffer{}),
		WithSize(10, 2),
		WithAltScreen(false),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !model.sawTick {
		t.Errorf("expected main loop to keep ticking after task panic")
	}
}

func TestRunnerLogCommand(t *testing.T) {
	model := &taskModel{}
	runner := NewRunner(model,
		WithOutput(&syncBuffer{}),
		WithSize(10, 2),
		WithAltScreen(false),
	)

	runner.execCmd(Log("hello"))
	if logs := runner.Logs(); len(logs) != 1 || logs[0] != "hello" {
		t.Errorf("expected log buffered, got %v", logs)
	}
}

func TestRunnerMouseCaptureEmitsModes(t *testing.T) {
	out := &syncBuffer{}
	var captured []bool
	runner := NewRunner(&taskModel{},
		WithOutput(out),
		WithSize(10, 2),
		WithAltScreen(false),
		WithMouseCaptureHook(func(enable bool) { captured = append(captured, enable) }),
	)

	runner.execCmd(SetMouseCapture(true))
	runner.execCmd(SetMouseCapture(false))

	s := out.String()
	if !strings.Contains(s, "\x1b[?1000h") || !strings.Contains(s, "\x1b[?1000l") {
		t.Errorf("expected mouse mode sequences, got %q", s)
	}
	if len(captured) != 2 || !captured[0] || captured[1] {
		t.Errorf("expected hook calls [true false], got %v", captured)
	}
}

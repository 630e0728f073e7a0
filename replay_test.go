package tuiengine

import (
	"testing"
	"time"
)

func frameWith(t *testing.T, text string) *Buffer {
	t.Helper()
	buf := NewBuffer(3, 10)
	for i, r := range text {
		cell := NewCell()
		cell.Char = r
		buf.SetCell(0, i, cell)
	}
	return buf
}

func TestFramePlayerRecordAndNavigate(t *testing.T) {
	p := NewFramePlayer(10)

	p.RecordFrame(frameWith(t, "one"))
	p.RecordFrame(frameWith(t, "two"))
	p.RecordFrame(frameWith(t, "three"))

	if p.FrameCount() != 3 {
		t.Fatalf("expected 3 frames, got %d", p.FrameCount())
	}

	p.GoToEnd()
	if p.CurrentIndex() != 2 {
		t.Errorf("expected index 2, got %d", p.CurrentIndex())
	}
	frame, ok := p.CurrentFrame()
	if !ok || frame.Buffer.LineText(0, nil) != "three" {
		t.Errorf("unexpected current frame")
	}

	p.StepBackward()
	if p.CurrentIndex() != 1 {
		t.Errorf("expected index 1, got %d", p.CurrentIndex())
	}
	p.GoToStart()
	p.StepBackward() // clamps at 0
	if p.CurrentIndex() != 0 {
		t.Errorf("expected clamp at 0, got %d", p.CurrentIndex())
	}
	p.GoToEnd()
	p.StepForward() // clamps at last
	if p.CurrentIndex() != 2 {
		t.Errorf("expected clamp at last, got %d", p.CurrentIndex())
	}
}

func TestFramePlayerEmptySafety(t *testing.T) {
	p := NewFramePlayer(10)

	p.StepForward()
	p.StepBackward()
	p.GoToStart()
	p.GoToEnd()
	p.ToggleMarker()
	p.Tick(time.Second)

	if p.CurrentIndex() != 0 || p.FrameCount() != 0 {
		t.Errorf("empty player must stay at zero")
	}
	if _, ok := p.CurrentFrame(); ok {
		t.Errorf("expected no current frame when empty")
	}
}

func TestFramePlayerStateMachine(t *testing.T) {
	p := NewFramePlayer(10)
	p.RecordFrame(frameWith(t, "a"))
	p.RecordFrame(frameWith(t, "b"))

	if p.State() != PlaybackPaused {
		t.Fatalf("expected initial Paused")
	}

	p.TogglePlayback()
	if p.State() != PlaybackPlaying {
		t.Errorf("expected Playing")
	}
	p.TogglePlayback()
	if p.State() != PlaybackPaused {
		t.Errorf("expected Paused")
	}

	p.ToggleRecording()
	if p.State() != PlaybackRecording || !p.IsRecording() {
		t.Errorf("expected Recording")
	}
	p.ToggleRecording()
	if p.State() != PlaybackPaused {
		t.Errorf("expected Paused after recording toggle")
	}

	// Manual navigation forces Paused
	p.TogglePlayback()
	p.StepForward()
	if p.State() != PlaybackPaused {
		t.Errorf("manual navigation must pause playback")
	}
}

func TestFramePlayerTickAdvancesAndLoops(t *testing.T) {
	p := NewFramePlayer(10)
	p.RecordFrame(frameWith(t, "a"))
	p.RecordFrame(frameWith(t, "b"))
	p.SetFrameInterval(100 * time.Millisecond)

	p.TogglePlayback()

	p.Tick(0) // first tick establishes the cadence and advances
	if p.CurrentIndex() != 1 {
		t.Errorf("expected advance to 1, got %d", p.CurrentIndex())
	}

	p.Tick(50 * time.Millisecond) // too soon
	if p.CurrentIndex() != 1 {
		t.Errorf("expected no advance before interval, got %d", p.CurrentIndex())
	}

	p.Tick(100 * time.Millisecond) // loops back past the last frame
	if p.CurrentIndex() != 0 {
		t.Errorf("expected loop to 0, got %d", p.CurrentIndex())
	}
}

func TestFramePlayerMarkersSurviveNavigation(t *testing.T) {
	p := NewFramePlayer(10)
	p.RecordFrame(frameWith(t, "a"))
	p.RecordFrame(frameWith(t, "b"))

	p.ToggleMarker()
	p.StepForward()
	p.StepBackward()

	if marked := p.MarkedFrames(); len(marked) != 1 || marked[0] != 0 {
		t.Errorf("expected marker on frame 0, got %v", marked)
	}

	p.Reset()
	if p.FrameCount() != 0 || len(p.MarkedFrames()) != 0 {
		t.Errorf("expected reset to clear frames and markers")
	}
}

func TestFramePlayerEviction(t *testing.T) {
	p := NewFramePlayer(2)
	p.RecordFrame(frameWith(t, "a"))
	p.RecordFrame(frameWith(t, "b"))
	p.GoToEnd()
	p.RecordFrame(frameWith(t, "c"))

	if p.FrameCount() != 2 {
		t.Fatalf("expected cap enforced, got %d", p.FrameCount())
	}
	// The current frame followed its entry after re-indexing
	frame, _ := p.CurrentFrame()
	if frame.Buffer.LineText(0, nil) != "b" {
		t.Errorf("expected current to follow its frame, got %q", frame.Buffer.LineText(0, nil))
	}
	if p.CurrentIndex() >= p.FrameCount() {
		t.Errorf("index out of range after eviction")
	}
}

func TestFramePlayerRecordSnapshotsBuffer(t *testing.T) {
	p := NewFramePlayer(4)
	buf := frameWith(t, "live")
	p.RecordFrame(buf)

	// Mutating the source after recording must not affect the capture
	cell := NewCell()
	cell.Char = 'X'
	buf.SetCell(0, 0, cell)

	frame, _ := p.CurrentFrame()
	if frame.Buffer.LineText(0, nil) != "live" {
		t.Errorf("expected deep copy, got %q", frame.Buffer.LineText(0, nil))
	}
	if frame.Checksum == 0 {
		t.Errorf("expected non-zero checksum")
	}
}

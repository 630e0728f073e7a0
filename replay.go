package tuiengine

import "time"

// PlaybackState is the snapshot player's mode. Transitions form the machine
// Paused ↔ Playing and Paused ↔ Recording; manual navigation forces Paused.
type PlaybackState int

const (
	PlaybackPaused PlaybackState = iota
	PlaybackPlaying
	PlaybackRecording
)

// CapturedFrame is one recorded full-screen buffer with its stable checksum
// and a user-toggleable marker.
type CapturedFrame struct {
	Buffer   *Buffer
	Checksum uint64
	Marker   bool
}

// defaultFrameInterval is the playback cadence before speed scaling.
const defaultFrameInterval = 100 * time.Millisecond

// FramePlayer owns an ordered buffer of captured frames and replays them
// deterministically. The current index is always within [0, frame count);
// an empty player handles every navigation safely.
type FramePlayer struct {
	frames    []CapturedFrame
	current   int
	state     PlaybackState
	maxFrames int

	interval    time.Duration
	speed       float64
	lastAdvance time.Duration
	hasAdvanced bool
}

// NewFramePlayer creates an empty player holding at most maxFrames frames.
// A non-positive cap defaults to 1024.
func NewFramePlayer(maxFrames int) *FramePlayer {
	if maxFrames <= 0 {
		maxFrames = 1024
	}
	return &FramePlayer{
		maxFrames: maxFrames,
		interval:  defaultFrameInterval,
		speed:     1,
	}
}

// RecordFrame appends a snapshot of the buffer. When the cap is reached the
// oldest frame is evicted and the remaining entries re-index; the current
// frame follows its entry.
func (p *FramePlayer) RecordFrame(buf *Buffer) {
	frame := CapturedFrame{
		Buffer:   buf.Clone(),
		Checksum: bufferChecksum(buf),
	}

	if len(p.frames) >= p.maxFrames {
		p.frames = p.frames[1:]
		if p.current > 0 {
			p.current--
		}
	}
	p.frames = append(p.frames, frame)
}

// FrameCount returns the number of captured frames.
func (p *FramePlayer) FrameCount() int { return len(p.frames) }

// CurrentIndex returns the current frame index (0 when empty).
func (p *FramePlayer) CurrentIndex() int { return p.current }

// CurrentFrame returns the current frame, or false when the player is empty.
func (p *FramePlayer) CurrentFrame() (CapturedFrame, bool) {
	if len(p.frames) == 0 {
		return CapturedFrame{}, false
	}
	return p.frames[p.current], true
}

// State returns the playback state.
func (p *FramePlayer) State() PlaybackState { return p.state }

// StepForward advances one frame and forces Paused. Navigation clamps at
// the last frame.
func (p *FramePlayer) StepForward() {
	p.state = PlaybackPaused
	if p.current < len(p.frames)-1 {
		p.current++
	}
}

// StepBackward goes back one frame and forces Paused. Navigation clamps at
// frame zero.
func (p *FramePlayer) StepBackward() {
	p.state = PlaybackPaused
	if p.current > 0 {
		p.current--
	}
}

// GoToStart jumps to frame zero and forces Paused.
func (p *FramePlayer) GoToStart() {
	p.state = PlaybackPaused
	p.current = 0
}

// GoToEnd jumps to the last frame and forces Paused.
func (p *FramePlayer) GoToEnd() {
	p.state = PlaybackPaused
	if len(p.frames) > 0 {
		p.current = len(p.frames) - 1
	}
}

// TogglePlayback switches Paused ↔ Playing. Toggling while recording stops
// the recording first.
func (p *FramePlayer) TogglePlayback() {
	if p.state == PlaybackPlaying {
		p.state = PlaybackPaused
	} else {
		p.state = PlaybackPlaying
		p.hasAdvanced = false
	}
}

// ToggleRecording switches Paused ↔ Recording.
func (p *FramePlayer) ToggleRecording() {
	if p.state == PlaybackRecording {
		p.state = PlaybackPaused
	} else {
		p.state = PlaybackRecording
	}
}

// IsRecording returns true while the player accepts live frames.
func (p *FramePlayer) IsRecording() bool { return p.state == PlaybackRecording }

// ToggleMarker flips the marker on the current frame. Markers survive
// navigation and are cleared only by Reset.
func (p *FramePlayer) ToggleMarker() {
	if len(p.frames) == 0 {
		return
	}
	p.frames[p.current].Marker = !p.frames[p.current].Marker
}

// MarkedFrames returns the indexes of marked frames.
func (p *FramePlayer) MarkedFrames() []int {
	var out []int
	for i, f := range p.frames {
		if f.Marker {
			out = append(out, i)
		}
	}
	return out
}

// SetSpeed sets the playback speed multiplier. Non-positive values reset
// to 1.
func (p *FramePlayer) SetSpeed(speed float64) {
	if speed <= 0 {
		speed = 1
	}
	p.speed = speed
}

// SetFrameInterval sets the base playback cadence.
func (p *FramePlayer) SetFrameInterval(d time.Duration) {
	if d > 0 {
		p.interval = d
	}
}

// Tick advances playback by at most one frame per call. When playing past
// the last frame, playback loops back to frame zero.
func (p *FramePlayer) Tick(now time.Duration) {
	if p.state != PlaybackPlaying || len(p.frames) == 0 {
		return
	}

	step := time.Duration(float64(p.interval) / p.speed)
	if p.hasAdvanced && now-p.lastAdvance < step {
		return
	}
	p.lastAdvance = now
	p.hasAdvanced = true

	p.current++
	if p.current >= len(p.frames) {
		p.current = 0
	}
}

// Reset drops every frame and marker and returns to Paused.
func (p *FramePlayer) Reset() {
	p.frames = nil
	p.current = 0
	p.state = PlaybackPaused
	p.hasAdvanced = false
}

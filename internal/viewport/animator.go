package viewport

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const frameInterval = time.Second / 60

// FrameMsg advances the animation with the matching generation.
type FrameMsg struct {
	Gen int
}

// Animator tweens between two transforms over a fixed duration.
// Its last frame is the completion signal; there is no separate timer.
type Animator struct {
	duration time.Duration
	frames   int

	from, to Transform
	frame    int
	gen      int
	running  bool
}

func NewAnimator(d time.Duration) *Animator {
	n := int(d / frameInterval)
	if n < 1 {
		n = 1
	}
	return &Animator{duration: d, frames: n}
}

// Start begins a new tween, superseding any running one, and returns the first frame command.
func (a *Animator) Start(from, to Transform) tea.Cmd {
	a.gen++
	a.from, a.to = from, to
	a.frame = 0
	a.running = true
	return a.tick()
}

// Step consumes a frame message. ok is false for stale frames.
// On the last frame t is exactly the target and done is true.
func (a *Animator) Step(msg FrameMsg) (t Transform, done bool, cmd tea.Cmd, ok bool) {
	if !a.running || msg.Gen != a.gen {
		return Transform{}, false, nil, false
	}
	a.frame++
	if a.frame >= a.frames {
		a.running = false
		return a.to, true, nil, true
	}
	f := easeCubicInOut(float64(a.frame) / float64(a.frames))
	return Lerp(a.from, a.to, f), false, a.tick(), true
}

func (a *Animator) Running() bool           { return a.running }
func (a *Animator) Duration() time.Duration { return a.duration }
func (a *Animator) Target() Transform       { return a.to }

func (a *Animator) tick() tea.Cmd {
	gen := a.gen
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return FrameMsg{Gen: gen}
	})
}

func easeCubicInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

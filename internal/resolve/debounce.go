package resolve

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ResolveMsg fires when the pointer has rested for the debounce window.
type ResolveMsg struct {
	Seq      int
	Col, Row int
}

// Debouncer coalesces pointer moves. Each Schedule supersedes any pending one,
// so at most one resolution runs per quiet window.
type Debouncer struct {
	delay time.Duration
	seq   int
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule returns a command delivering ResolveMsg after the delay.
func (d *Debouncer) Schedule(col, row int) tea.Cmd {
	d.seq++
	seq := d.seq
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return ResolveMsg{Seq: seq, Col: col, Row: row}
	})
}

// Cancel makes any pending resolution stale.
func (d *Debouncer) Cancel() { d.seq++ }

// Accept reports whether msg is the latest scheduled resolution.
func (d *Debouncer) Accept(msg ResolveMsg) bool { return msg.Seq == d.seq }

func (d *Debouncer) Delay() time.Duration { return d.delay }

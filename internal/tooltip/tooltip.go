// Package tooltip is the single hover overlay of the map.
package tooltip

import (
	"strings"

	"github.com/biter777/countries"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"covermap/internal/catalog"
)

// Unavailable is shown for countries without a service location.
const Unavailable = "Service not available in this country"

// Content is what a tooltip shows.
type Content struct {
	Country string
	Flag    string // empty when no flag could be resolved
	Service *catalog.ServiceLocation
}

// NewContent builds tooltip content; ok says whether the country has a service.
func NewContent(country string, loc catalog.ServiceLocation, ok bool) Content {
	c := Content{Country: country, Flag: Flag(country, loc.Code)}
	if ok {
		l := loc
		c.Service = &l
	}
	return c
}

// Flag returns the emoji flag for an ISO code or, failing that, a country name.
// Unknown countries get no flag rather than a guessed one.
func Flag(name, code string) string {
	for _, q := range []string{code, name} {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if cc := countries.ByName(q); cc.IsValid() {
			return cc.Emoji()
		}
	}
	return ""
}

func (c Content) HasMetrics() bool { return c.Service != nil }

// Lines returns the text rows of the tooltip body.
func (c Content) Lines() []string {
	title := c.Country
	if c.Flag != "" {
		title = c.Flag + " " + title
	}
	if c.Service == nil {
		return []string{title, Unavailable}
	}
	return []string{
		title,
		"Tax:       " + c.Service.Tax,
		"Duties:    " + c.Service.Duties,
		"Lead time: " + c.Service.LeadTime,
	}
}

// Node is the one live tooltip. X, Y is the pointer cell it follows.
type Node struct {
	Key     string
	Content Content
	X, Y    int
}

// Lift is how many rows above the pointer the tooltip sits.
func (n *Node) Lift() int {
	if n.Content.HasMetrics() {
		return 4
	}
	return 2
}

// Render draws the node in a box.
func (n *Node) Render(box lipgloss.Style) string {
	return box.Render(strings.Join(n.Content.Lines(), "\n"))
}

// Overlay owns at most one Node. The tracking key is the hovered element the
// node follows; moves for any other key are ignored.
type Overlay struct {
	node *Node
}

// Show replaces any existing node. While locked nothing is created and false is returned.
func (o *Overlay) Show(key string, c Content, x, y int, locked bool) bool {
	if locked {
		return false
	}
	o.node = &Node{Key: key, Content: c, X: x, Y: y}
	return true
}

// Move repositions the node if it is tracking key.
func (o *Overlay) Move(key string, x, y int) bool {
	if o.node == nil || o.node.Key != key {
		return false
	}
	o.node.X, o.node.Y = x, y
	return true
}

// Hide removes the node and stops tracking.
func (o *Overlay) Hide() { o.node = nil }

func (o *Overlay) Node() *Node { return o.node }

// Tracking returns the key of the hovered element, or "".
func (o *Overlay) Tracking() string {
	if o.node == nil {
		return ""
	}
	return o.node.Key
}

func (o *Overlay) Count() int {
	if o.node == nil {
		return 0
	}
	return 1
}

// Composite draws the rendered node over lines (each width cells wide),
// lifted above the pointer and clamped into the area.
func Composite(lines []string, n *Node, box lipgloss.Style, width int) []string {
	if n == nil || len(lines) == 0 || width <= 0 {
		return lines
	}
	rendered := strings.Split(n.Render(box), "\n")
	bw := lipgloss.Width(n.Render(box))
	bh := len(rendered)

	x := n.X - bw/2
	y := n.Y - n.Lift() - bh + 1
	x = clamp(x, 0, max(0, width-bw))
	y = clamp(y, 0, max(0, len(lines)-bh))

	out := append([]string(nil), lines...)
	for i, row := range rendered {
		if w := ansi.StringWidth(row); w < bw {
			row += strings.Repeat(" ", bw-w)
		}
		ly := y + i
		if ly >= len(out) {
			break
		}
		base := out[ly]
		if w := ansi.StringWidth(base); w < width {
			base += strings.Repeat(" ", width-w)
		}
		left := ansi.Truncate(base, x, "")
		right := ansi.TruncateLeft(base, x+bw, "")
		out[ly] = left + ansi.ResetStyle + row + ansi.ResetStyle + right
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

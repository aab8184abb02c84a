package viewport

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"covermap/internal/projection"
)

// Controller owns the current transform and keeps its scale inside [min, max].
// The render pass only reads Current.
type Controller struct {
	min, max float64
	initial  Transform
	current  Transform
	strategy Strategy
}

// New returns a controller starting at initial. The initial scale is clamped too.
func New(initial Transform, min, max float64, strategy Strategy) *Controller {
	if min <= 0 {
		min = 1
	}
	if max < min {
		max = min
	}
	c := &Controller{min: min, max: max, strategy: strategy}
	c.initial = c.Clamp(initial)
	c.current = c.initial
	return c
}

func (c *Controller) Current() Transform { return c.current }
func (c *Controller) Initial() Transform { return c.initial }

func (c *Controller) Range() (min, max float64) { return c.min, c.max }

// SetStrategy swaps the continent zoom strategy.
func (c *Controller) SetStrategy(s Strategy) { c.strategy = s }

// Set replaces the current transform, clamping its scale.
func (c *Controller) Set(t Transform) {
	c.current = c.Clamp(t)
}

// Clamp brings a transform's scale into range, keeping the canvas centre fixed.
func (c *Controller) Clamp(t Transform) Transform {
	if t.Scale >= c.min && t.Scale <= c.max {
		return t
	}
	if t.Scale <= 0 || math.IsNaN(t.Scale) {
		return Transform{TranslateX: t.TranslateX, TranslateY: t.TranslateY, Scale: c.min}
	}
	s := math.Max(c.min, math.Min(c.max, t.Scale))
	mid := t.Invert(orb.Point{projection.Width / 2, projection.Height / 2})
	return centerPoint(mid, s)
}

// Pan moves the view by (dx, dy) logical canvas units.
func (c *Controller) Pan(dx, dy float64) {
	c.current.TranslateX += dx
	c.current.TranslateY += dy
}

// ZoomAt multiplies the scale by factor keeping the view point (px, py) fixed.
func (c *Controller) ZoomAt(factor, px, py float64) {
	if factor <= 0 {
		return
	}
	p := orb.Point{px, py}
	q := c.current.Invert(p)
	s := math.Max(c.min, math.Min(c.max, c.current.Scale*factor))
	c.current = Transform{
		TranslateX: px - s*q[0],
		TranslateY: py - s*q[1],
		Scale:      s,
	}
}

// ZoomToContinent returns the clamped target transform for a continent.
// It does not change Current; callers animate towards the target and Set each frame.
func (c *Controller) ZoomToContinent(name string) (Transform, error) {
	if c.strategy == nil {
		return Transform{}, fmt.Errorf("zoom to %q: no strategy configured", name)
	}
	t, err := c.strategy.Target(name)
	if err != nil {
		return Transform{}, err
	}
	return c.Clamp(t), nil
}

// Reset restores the startup transform and returns it.
func (c *Controller) Reset() Transform {
	c.current = c.initial
	return c.current
}

// MarkerRadius returns the logical radius whose on-screen size stays base.
func (c *Controller) MarkerRadius(base float64) float64 {
	return base / c.current.Scale
}

// StrokeWidth returns the logical stroke width whose on-screen size stays base.
func (c *Controller) StrokeWidth(base float64) float64 {
	return base / c.current.Scale
}

// Package viewport owns the pan/zoom transform applied on top of the projection.
package viewport

import (
	"errors"

	"github.com/paulmach/orb"

	"covermap/internal/projection"
)

// ErrUnknownContinent is returned when a zoom strategy has no target for a continent.
var ErrUnknownContinent = errors.New("unknown continent")

// Transform is p' = p*Scale + (TranslateX, TranslateY) in logical canvas units.
type Transform struct {
	TranslateX float64 `yaml:"translate_x"`
	TranslateY float64 `yaml:"translate_y"`
	Scale      float64 `yaml:"scale"`
}

// Identity is the unzoomed, unpanned transform.
var Identity = Transform{Scale: 1}

// Apply maps a projected point into view space.
func (t Transform) Apply(p orb.Point) orb.Point {
	return orb.Point{p[0]*t.Scale + t.TranslateX, p[1]*t.Scale + t.TranslateY}
}

// Invert maps a view-space point back to projected canvas coordinates.
func (t Transform) Invert(p orb.Point) orb.Point {
	return orb.Point{(p[0] - t.TranslateX) / t.Scale, (p[1] - t.TranslateY) / t.Scale}
}

// CenteredOn returns the transform at zoom that puts (lat, lng) in the middle of the canvas.
func CenteredOn(lat, lng, zoom float64) Transform {
	return centerPoint(projection.Project(lat, lng), zoom)
}

func centerPoint(p orb.Point, scale float64) Transform {
	return Transform{
		TranslateX: projection.Width/2 - scale*p[0],
		TranslateY: projection.Height/2 - scale*p[1],
		Scale:      scale,
	}
}

// Lerp interpolates between two transforms, f in [0, 1].
func Lerp(a, b Transform, f float64) Transform {
	return Transform{
		TranslateX: a.TranslateX + (b.TranslateX-a.TranslateX)*f,
		TranslateY: a.TranslateY + (b.TranslateY-a.TranslateY)*f,
		Scale:      a.Scale + (b.Scale-a.Scale)*f,
	}
}

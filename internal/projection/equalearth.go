// Package projection maps geographic coordinates onto the fixed logical canvas
// with the Equal Earth projection (Šavrič, Patterson, Jenny 2018).
package projection

import (
	"math"

	"github.com/paulmach/orb"
)

// Logical canvas size. Zoom and pan are applied on top of this, never inside it.
const (
	Width  = 960.0
	Height = 500.0
)

const (
	a1 = 1.340264
	a2 = -0.081106
	a3 = 0.000893
	a4 = 0.003796
)

var (
	m = math.Sqrt(3) / 2

	// unit-sphere extents of the projection
	maxX = math.Pi / (m * a1)
	maxY = yOf(math.Asin(m))

	k = math.Min(Width/(2*maxX), Height/(2*maxY))
)

func yOf(theta float64) float64 {
	t2 := theta * theta
	t6 := t2 * t2 * t2
	return theta * (a1 + a2*t2 + t6*(a3+a4*t2))
}

// dy is the derivative of yOf.
func dy(theta float64) float64 {
	t2 := theta * theta
	t6 := t2 * t2 * t2
	return a1 + 3*a2*t2 + t6*(7*a3+9*a4*t2)
}

// Project maps (lat, lng) in degrees to canvas coordinates, y growing downward.
func Project(lat, lng float64) orb.Point {
	phi := clamp(lat, -90, 90) * math.Pi / 180
	lam := clamp(lng, -180, 180) * math.Pi / 180

	theta := math.Asin(m * math.Sin(phi))
	x := lam * math.Cos(theta) / (m * dy(theta))
	y := yOf(theta)
	return orb.Point{Width/2 + k*x, Height/2 - k*y}
}

// ProjectPoint projects an orb point stored as (lng, lat).
func ProjectPoint(p orb.Point) orb.Point {
	return Project(p.Lat(), p.Lon())
}

// Invert maps a canvas point back to (lat, lng). ok is false off the map outline.
func Invert(x, y float64) (lat, lng float64, ok bool) {
	ex := (x - Width/2) / k
	ey := (Height/2 - y) / k
	if math.Abs(ey) > maxY {
		return 0, 0, false
	}

	theta := ey
	for i := 0; i < 12; i++ {
		delta := (yOf(theta) - ey) / dy(theta)
		theta -= delta
		if math.Abs(delta) < 1e-12 {
			break
		}
	}
	lam := m * ex * dy(theta) / math.Cos(theta)
	if math.Abs(lam) > math.Pi+1e-9 {
		return 0, 0, false
	}
	s := math.Sin(theta) / m
	phi := math.Asin(clamp(s, -1, 1))
	return phi * 180 / math.Pi, lam * 180 / math.Pi, true
}

// ProjectBound returns the canvas bound of a geographic (lng, lat) bound.
// Meridians are curved, so the edges are sampled rather than only the corners.
func ProjectBound(b orb.Bound) orb.Bound {
	const steps = 16
	out := orb.Bound{Min: ProjectPoint(b.Min), Max: ProjectPoint(b.Min)}
	for i := 0; i <= steps; i++ {
		f := float64(i) / steps
		lng := b.Min.Lon() + f*(b.Max.Lon()-b.Min.Lon())
		lat := b.Min.Lat() + f*(b.Max.Lat()-b.Min.Lat())
		out = out.Extend(Project(b.Min.Lat(), lng))
		out = out.Extend(Project(b.Max.Lat(), lng))
		out = out.Extend(Project(lat, b.Min.Lon()))
		out = out.Extend(Project(lat, b.Max.Lon()))
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package render draws the coverage map into a braille frame with a hit buffer.
package render

import (
	"math"

	"github.com/paulmach/orb"

	"covermap/internal/catalog"
	"covermap/internal/continent"
	"covermap/internal/drill"
	"covermap/internal/projection"
	"covermap/internal/viewport"
)

// Role decides how a feature or cell is coloured.
type Role uint8

const (
	RoleNone       Role = iota
	RoleNeutral         // overview, no hover
	RoleHighlight       // overview, in the hovered continent
	RoleDim             // overview, outside the hovered continent
	RoleActive          // drilldown, country with a service
	RoleInactive        // drilldown, country without a service
	RoleHover           // drilldown, country under the pointer
	RoleBackground      // drilldown, outside the selected continent: not drawn
	RoleMarker
)

// Interactive reports whether a feature with this role responds to hover.
func (r Role) Interactive() bool {
	return r == RoleActive || r == RoleInactive || r == RoleHover
}

// Input is everything one render pass reads. Nothing in it is mutated.
type Input struct {
	Scene     *Scene
	Table     *continent.Table
	State     drill.State
	Services  *catalog.Index
	Locations []catalog.ServiceLocation
	Transform viewport.Transform
	Screen    viewport.Screen

	HoverContinent string // overview highlight
	HoverCountry   string // drilldown highlight

	// Logical sizes, already divided by the transform scale.
	StrokeWidth  float64
	MarkerRadius float64
}

// Pass renders one frame.
func Pass(in Input) *Frame {
	g := newGrid(in.Screen.Cols, in.Screen.Rows)
	f := &Frame{grid: g}
	if in.Scene == nil || in.Table == nil || in.Screen.Cols <= 0 || in.Screen.Rows <= 0 {
		return f
	}
	k := in.Screen.PixelsPerUnit()
	view := orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{float64(g.cols*2 + 1), float64(g.rows*4 + 1)}}

	toMicro := func(p orb.Point) [2]float64 {
		x, y := in.Screen.ToMicro(in.Transform.Apply(p))
		return [2]float64{x, y}
	}

	// on-screen stroke in micro-pixels; at least one dot
	stroke := int(math.Max(1, math.Round(in.StrokeWidth*in.Transform.Scale*k)))

	f.Roles = make([]Role, len(in.Scene.Features))
	for i, sf := range in.Scene.Features {
		role := featureRole(in, sf.Name)
		f.Roles[i] = role

		mn, mx := toMicro(sf.Bound.Min), toMicro(sf.Bound.Max)
		sb := orb.Bound{Min: orb.Point{mn[0], mn[1]}, Max: orb.Point{mx[0], mx[1]}}
		if !sb.Intersects(view) {
			continue
		}
		for _, poly := range sf.Polygons {
			rings := make([][][2]float64, len(poly))
			for ri, ring := range poly {
				pts := make([][2]float64, len(ring))
				for j, p := range ring {
					pts[j] = toMicro(p)
				}
				rings[ri] = pts
			}
			g.fillPolygon(rings, role, i)
			if role == RoleBackground {
				continue
			}
			for _, r := range rings {
				for j := 0; j+1 < len(r); j++ {
					a, b := r[j], r[j+1]
					for o := 0; o < stroke; o++ {
						g.drawLine(int(a[0])+o, int(a[1]), int(b[0])+o, int(b[1]), role, i)
					}
				}
			}
		}
	}

	if in.State.Mode == drill.Drilldown {
		radius := in.MarkerRadius * in.Transform.Scale * k
		for _, loc := range in.Locations {
			if !loc.Located || !in.Table.IsCountryInContinent(loc.Country, in.State.Continent) {
				continue
			}
			p := toMicro(projection.Project(loc.Lat, loc.Lng))
			f.Markers = append(f.Markers, loc)
			g.fillDisc(p[0], p[1], radius, len(f.Markers)-1)
		}
	}
	return f
}

func featureRole(in Input, name string) Role {
	switch in.State.Mode {
	case drill.Drilldown:
		if !in.Table.IsCountryInContinent(name, in.State.Continent) {
			return RoleBackground
		}
		if in.HoverCountry != "" && name == in.HoverCountry {
			return RoleHover
		}
		if _, ok := in.Services.Lookup(name); ok {
			return RoleActive
		}
		return RoleInactive
	default:
		if in.HoverContinent == "" {
			return RoleNeutral
		}
		if in.Table.IsCountryInContinent(name, in.HoverContinent) {
			return RoleHighlight
		}
		return RoleDim
	}
}

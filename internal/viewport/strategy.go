package viewport

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"covermap/internal/continent"
	"covermap/internal/geom"
	"covermap/internal/projection"
)

// Strategy picks the transform that frames a continent.
type Strategy interface {
	Target(continent string) (Transform, error)
}

// Computed fits the projected bound of a continent's features into the canvas
// and centres their combined centroid.
type Computed struct {
	Dataset *geom.Dataset
	Table   *continent.Table
	Padding float64 // fraction of the canvas the bound may fill
	Min     float64
	Max     float64
}

// Target implements Strategy. The result only depends on the dataset, table and name.
func (c Computed) Target(name string) (Transform, error) {
	if c.Dataset == nil || c.Table == nil {
		return Transform{}, fmt.Errorf("zoom to %q: dataset not loaded", name)
	}
	var (
		sum   r3.Vector
		total float64
		bound orb.Bound
		found bool
	)
	for i := range c.Dataset.Features {
		f := &c.Dataset.Features[i]
		if !c.Table.IsCountryInContinent(f.Name, name) {
			continue
		}
		for _, poly := range f.Geometry {
			centroid, area := planar.CentroidArea(poly)
			area = math.Abs(area)
			if area == 0 || math.IsNaN(centroid[0]) {
				continue
			}
			p := s2.PointFromLatLng(s2.LatLngFromDegrees(centroid.Lat(), centroid.Lon()))
			sum = sum.Add(p.Vector.Mul(area))
			total += area
		}
		if !found {
			bound = f.Bound
			found = true
		} else {
			bound = bound.Union(f.Bound)
		}
	}
	if !found || total == 0 {
		return Transform{}, fmt.Errorf("zoom to %q: %w", name, ErrUnknownContinent)
	}

	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	center := projection.Project(ll.Lat.Degrees(), ll.Lng.Degrees())

	pb := projection.ProjectBound(bound)
	bw := math.Max(pb.Max[0]-pb.Min[0], 1e-9)
	bh := math.Max(pb.Max[1]-pb.Min[1], 1e-9)

	padding := c.Padding
	if padding <= 0 {
		padding = 0.6
	}
	scale := padding * math.Min(projection.Width/bw, projection.Height/bh)
	if c.Min > 0 && scale < c.Min {
		scale = c.Min
	}
	if c.Max > 0 && scale > c.Max {
		scale = c.Max
	}
	return centerPoint(center, scale), nil
}

// Fixed looks continents up in a hand-tuned table.
type Fixed struct {
	Table map[string]Transform
}

// Target implements Strategy.
func (f Fixed) Target(name string) (Transform, error) {
	t, ok := f.Table[name]
	if !ok {
		return Transform{}, fmt.Errorf("zoom to %q: %w", name, ErrUnknownContinent)
	}
	return t, nil
}

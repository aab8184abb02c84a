package resolve

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"covermap/internal/geom"
	"covermap/internal/projection"
)

// ErrMalformedRing marks a ring that cannot be ray-cast.
var ErrMalformedRing = errors.New("malformed ring")

// RayCaster resolves by point-in-polygon tests against the raw dataset.
type RayCaster struct {
	dataset *geom.Dataset
	tree    *node
	log     *zap.Logger
}

func NewRayCaster(ds *geom.Dataset, log *zap.Logger) *RayCaster {
	if log == nil {
		log = zap.NewNop()
	}
	rc := &RayCaster{dataset: ds, log: log}
	if ds == nil {
		return rc
	}
	var entries []entry
	for fi, f := range ds.Features {
		for pi, poly := range f.Geometry {
			if len(poly) == 0 || len(poly[0]) == 0 {
				continue
			}
			entries = append(entries, entry{bound: poly.Bound(), feature: fi, polygon: pi})
		}
	}
	rc.tree = buildTree(entries, 16)
	return rc
}

func (*RayCaster) Deferred() bool { return true }

// Geo turns a map cell into (lat, lng). ok is false off the projection outline.
func Geo(v View, col, row int) (lat, lng float64, ok bool) {
	if v.Screen.PixelsPerUnit() == 0 || v.Transform.Scale == 0 {
		return 0, 0, false
	}
	p := v.Transform.Invert(v.Screen.FromCell(col, row))
	return projection.Invert(p[0], p[1])
}

// MaybeLand runs the point-in-polygon test at once, so water inside a
// country's bound (bays, inland seas) is ocean without waiting for the debounce.
func (rc *RayCaster) MaybeLand(v View, col, row int) bool {
	lat, lng, ok := Geo(v, col, row)
	return ok && rc.At(lat, lng) != ""
}

func (rc *RayCaster) Resolve(v View, col, row int) (string, error) {
	lat, lng, ok := Geo(v, col, row)
	if !ok {
		return "", nil
	}
	return rc.At(lat, lng), nil
}

// Candidates returns the feature indexes whose polygon bounds contain the point,
// in dataset order without duplicates.
func (rc *RayCaster) Candidates(lat, lng float64) []int {
	hits := rc.tree.search(orb.Point{lng, lat}, nil)
	seen := make(map[int]bool, len(hits))
	var out []int
	for _, e := range hits {
		if !seen[e.feature] {
			seen[e.feature] = true
			out = append(out, e.feature)
		}
	}
	sort.Ints(out)
	return out
}

// At returns the country containing (lat, lng), or "" for none.
// A feature with a malformed ring is logged and skipped for this point only.
func (rc *RayCaster) At(lat, lng float64) string {
	pt := orb.Point{lng, lat}
	for _, fi := range rc.Candidates(lat, lng) {
		f := &rc.dataset.Features[fi]
		in, err := MultiPolygonContains(f.Geometry, pt)
		if err != nil {
			rc.log.Debug("ray-cast failed",
				zap.String("country", f.Name),
				zap.Float64("lat", lat),
				zap.Float64("lng", lng),
				zap.Error(err))
			continue
		}
		if in {
			return f.Name
		}
	}
	return ""
}

// MultiPolygonContains tests polygon by polygon until one contains pt.
func MultiPolygonContains(mp orb.MultiPolygon, pt orb.Point) (bool, error) {
	for i, poly := range mp {
		if !poly.Bound().Contains(pt) {
			continue
		}
		in, err := PolygonContains(poly, pt)
		if err != nil {
			return false, fmt.Errorf("polygon %d: %w", i, err)
		}
		if in {
			return true, nil
		}
	}
	return false, nil
}

// PolygonContains reports whether pt is inside the outer ring and outside every hole.
func PolygonContains(poly orb.Polygon, pt orb.Point) (bool, error) {
	if len(poly) == 0 {
		return false, fmt.Errorf("empty polygon: %w", ErrMalformedRing)
	}
	in, err := RingContains(poly[0], pt)
	if err != nil || !in {
		return false, err
	}
	for _, hole := range poly[1:] {
		inHole, err := RingContains(hole, pt)
		if err != nil {
			return false, err
		}
		if inHole {
			return false, nil
		}
	}
	return true, nil
}

// RingContains casts a horizontal ray from pt and counts edge crossings; odd is inside.
// A point on an edge counts as inside.
func RingContains(r orb.Ring, pt orb.Point) (bool, error) {
	if len(r) < 3 {
		return false, fmt.Errorf("%d points: %w", len(r), ErrMalformedRing)
	}
	lng, lat := pt[0], pt[1]
	inside := false
	j := len(r) - 1
	for i := 0; i < len(r); i++ {
		pi, pj := r[i], r[j]
		if math.IsNaN(pi[0]) || math.IsNaN(pi[1]) || math.IsInf(pi[0], 0) || math.IsInf(pi[1], 0) {
			return false, fmt.Errorf("non-finite vertex %d: %w", i, ErrMalformedRing)
		}
		if onSegment(pi, pj, pt) {
			return true, nil
		}
		if (pi[1] > lat) != (pj[1] > lat) {
			cross := (pj[0]-pi[0])*(lat-pi[1])/(pj[1]-pi[1]) + pi[0]
			if lng < cross {
				inside = !inside
			}
		}
		j = i
	}
	return inside, nil
}

func onSegment(a, b, p orb.Point) bool {
	const eps = 1e-9
	cross := (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
	if math.Abs(cross) > eps {
		return false
	}
	return p[0] >= math.Min(a[0], b[0])-eps && p[0] <= math.Max(a[0], b[0])+eps &&
		p[1] >= math.Min(a[1], b[1])-eps && p[1] <= math.Max(a[1], b[1])+eps
}

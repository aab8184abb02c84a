package render

import (
	"github.com/paulmach/orb"

	"covermap/internal/geom"
	"covermap/internal/projection"
)

// Scene caches the projected geometry of a dataset. Projection does not depend
// on zoom or pan, so this is computed once per dataset.
type Scene struct {
	Dataset  *geom.Dataset
	Features []SceneFeature
}

type SceneFeature struct {
	Name     string
	Polygons [][]orb.Ring // logical canvas coordinates
	Bound    orb.Bound
}

// NewScene projects every feature of ds onto the logical canvas.
func NewScene(ds *geom.Dataset) *Scene {
	s := &Scene{Dataset: ds}
	if ds == nil {
		return s
	}
	s.Features = make([]SceneFeature, len(ds.Features))
	for i, f := range ds.Features {
		sf := SceneFeature{Name: f.Name}
		first := true
		for _, poly := range f.Geometry {
			rings := make([]orb.Ring, 0, len(poly))
			for _, ring := range poly {
				pr := make(orb.Ring, len(ring))
				for j, p := range ring {
					pr[j] = projection.ProjectPoint(p)
					if first {
						sf.Bound = orb.Bound{Min: pr[j], Max: pr[j]}
						first = false
					} else {
						sf.Bound = sf.Bound.Extend(pr[j])
					}
				}
				rings = append(rings, pr)
			}
			sf.Polygons = append(sf.Polygons, rings)
		}
		s.Features[i] = sf
	}
	return s
}

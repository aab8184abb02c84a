package geom

import "github.com/paulmach/orb"

// Feature is one named country shape. A Polygon is stored as a one-element MultiPolygon.
type Feature struct {
	Name       string
	Properties map[string]any
	Geometry   orb.MultiPolygon
	Bound      orb.Bound
}

// Dataset is the loaded world boundary collection, shared read-only by render passes
type Dataset struct {
	Features []Feature
	Bound    orb.Bound
	Skipped  int // features dropped for missing or unexpected geometry

	byName map[string]int
}

// Lookup returns the feature with exactly this name.
func (d *Dataset) Lookup(name string) (*Feature, bool) {
	if d == nil {
		return nil, false
	}
	i, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return &d.Features[i], true
}

// Names returns feature names in dataset order.
func (d *Dataset) Names() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.Features))
	for i, f := range d.Features {
		out[i] = f.Name
	}
	return out
}

// NewDataset indexes features by name. A repeated name keeps its first feature in the index.
func NewDataset(features []Feature, skipped int) *Dataset {
	d := &Dataset{Features: features, Skipped: skipped, byName: make(map[string]int, len(features))}
	for i, f := range features {
		if i == 0 {
			d.Bound = f.Bound
		} else {
			d.Bound = d.Bound.Union(f.Bound)
		}
		if _, dup := d.byName[f.Name]; !dup {
			d.byName[f.Name] = i
		}
	}
	return d
}

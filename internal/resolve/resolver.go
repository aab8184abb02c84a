// Package resolve turns a pointer cell into the country under it.
//
// Two backends share one interface: Shapes reads the hit buffer of the
// rendered frame, RayCaster inverse-projects the pointer and ray-casts the
// raw boundary polygons for surfaces that carry no shape identity.
package resolve

import (
	"covermap/internal/render"
	"covermap/internal/viewport"
)

// View is what a resolver needs to know about the current screen.
type View struct {
	Frame     *render.Frame
	Scene     *render.Scene
	Transform viewport.Transform
	Screen    viewport.Screen
}

// Resolver resolves a map cell to a country name; "" means no country (ocean).
type Resolver interface {
	Resolve(v View, col, row int) (string, error)

	// MaybeLand is checked on every move. False means no country is under the pointer.
	MaybeLand(v View, col, row int) bool

	// Deferred reports whether Resolve is costly enough to be debounced.
	Deferred() bool
}

// Shapes resolves through the per-cell hit buffer of the last render pass.
type Shapes struct{}

func (Shapes) Resolve(v View, col, row int) (string, error) {
	if v.Frame == nil || v.Scene == nil {
		return "", nil
	}
	i, ok := v.Frame.FeatureAt(col, row)
	if !ok || i >= len(v.Scene.Features) {
		return "", nil
	}
	return v.Scene.Features[i].Name, nil
}

func (Shapes) MaybeLand(v View, col, row int) bool {
	if v.Frame == nil {
		return false
	}
	_, ok := v.Frame.FeatureAt(col, row)
	return ok
}

func (Shapes) Deferred() bool { return false }

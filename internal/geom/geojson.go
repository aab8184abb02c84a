package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrNoFeatures is returned when a payload holds no usable country shapes.
var ErrNoFeatures = errors.New("malformed payload: no usable boundary features")

// DefaultNameKeys are the property keys tried, in order, for a feature's country name.
var DefaultNameKeys = []string{"name", "NAME", "ADMIN", "name_long"}

type rawCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

// Decode parses a GeoJSON FeatureCollection of country shapes.
// Each feature is decoded on its own so one bad geometry only drops that feature.
func Decode(data []byte, nameKeys []string) (*Dataset, error) {
	if len(nameKeys) == 0 {
		nameKeys = DefaultNameKeys
	}
	var raw rawCollection
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}
	if raw.Type != "FeatureCollection" {
		return nil, fmt.Errorf("malformed payload: expected FeatureCollection, got %q", raw.Type)
	}

	features := make([]Feature, 0, len(raw.Features))
	skipped := 0
	for _, rf := range raw.Features {
		f, ok := decodeFeature(rf, nameKeys)
		if !ok {
			skipped++
			continue
		}
		features = append(features, f)
	}
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}
	return NewDataset(features, skipped), nil
}

func decodeFeature(data json.RawMessage, nameKeys []string) (Feature, bool) {
	gf, err := geojson.UnmarshalFeature(data)
	if err != nil || gf.Geometry == nil {
		return Feature{}, false
	}
	var mp orb.MultiPolygon
	switch g := gf.Geometry.(type) {
	case orb.Polygon:
		mp = orb.MultiPolygon{g}
	case orb.MultiPolygon:
		mp = g
	default:
		return Feature{}, false
	}
	if len(mp) == 0 {
		return Feature{}, false
	}
	name := featureName(gf.Properties, nameKeys)
	if name == "" {
		return Feature{}, false
	}
	return Feature{
		Name:       name,
		Properties: map[string]any(gf.Properties),
		Geometry:   mp,
		Bound:      mp.Bound(),
	}, true
}

func featureName(props geojson.Properties, keys []string) string {
	for _, k := range keys {
		// MustString panics on non-string values; some datasets carry numeric NAME fields.
		s, _ := props[k].(string)
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

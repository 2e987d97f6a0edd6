package filter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/rcanales/brewscout/internal/model"
)

// Region is the service area legitimate results must fall inside. The
// bounding box is always checked; when a polygon is present it refines the
// box (a coastal metro box includes a lot of ocean).
type Region struct {
	Bounds model.Bounds
	Area   orb.MultiPolygon
}

// Contains reports whether the coordinate is inside the service region.
func (r Region) Contains(lat, lng float64) bool {
	if !r.Bounds.Contains(lat, lng) {
		return false
	}
	if len(r.Area) == 0 {
		return true
	}
	return planar.MultiPolygonContains(r.Area, orb.Point{lng, lat})
}

// LoadArea reads a GeoJSON file holding the service-area polygon and attaches
// it to the region. Accepts a Feature, FeatureCollection, or bare geometry.
func (r *Region) LoadArea(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading service area: %w", err)
	}

	if fc := (&geojson.FeatureCollection{}); json.Unmarshal(data, fc) == nil && len(fc.Features) > 0 {
		return r.setArea(fc.Features[0].Geometry)
	}
	f, err := geojson.UnmarshalFeature(data)
	if err == nil {
		return r.setArea(f.Geometry)
	}
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return fmt.Errorf("parsing service area geojson: %w", err)
	}
	return r.setArea(g.Geometry())
}

func (r *Region) setArea(g orb.Geometry) error {
	switch geom := g.(type) {
	case orb.MultiPolygon:
		r.Area = geom
	case orb.Polygon:
		r.Area = orb.MultiPolygon{geom}
	default:
		return fmt.Errorf("unexpected service area geometry type %T", g)
	}
	return nil
}

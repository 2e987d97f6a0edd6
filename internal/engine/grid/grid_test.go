package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcanales/brewscout/internal/model"
)

func testConfig() Config {
	return Config{
		Bounds:              model.Bounds{MinLat: 32.53, MinLng: -117.29, MaxLat: 33.11, MaxLng: -116.82},
		Rows:                4,
		Cols:                5,
		TestCenterLat:       32.7157,
		TestCenterLng:       -117.1611,
		TestSpacingKm:       1.2,
		TestRows:            3,
		TestCols:            3,
		DefaultRadiusMeters: 1500,
	}
}

func TestGenerateTestModeDeterministic(t *testing.T) {
	cfg := testConfig()
	first := Generate(ModeTest, cfg)
	second := Generate(ModeTest, cfg)
	require.Equal(t, first, second)
	require.Len(t, first, 9)

	for _, p := range first {
		assert.Equal(t, 0, p.Level)
		assert.Equal(t, 1500, p.RadiusMeters)
	}

	// Center cell of a 3x3 lattice is the reference point itself.
	center := first[4]
	assert.Equal(t, "t-1-1", center.ID)
	assert.InDelta(t, cfg.TestCenterLat, center.Lat, 1e-9)
	assert.InDelta(t, cfg.TestCenterLng, center.Lng, 1e-9)
}

func TestGenerateProductionCoversBoundsInclusive(t *testing.T) {
	cfg := testConfig()
	points := Generate(ModeProduction, cfg)
	require.Len(t, points, cfg.Rows*cfg.Cols)

	first := points[0]
	last := points[len(points)-1]
	assert.Equal(t, "p-0-0", first.ID)
	assert.InDelta(t, cfg.Bounds.MinLat, first.Lat, 1e-9)
	assert.InDelta(t, cfg.Bounds.MinLng, first.Lng, 1e-9)
	assert.InDelta(t, cfg.Bounds.MaxLat, last.Lat, 1e-9)
	assert.InDelta(t, cfg.Bounds.MaxLng, last.Lng, 1e-9)

	for _, p := range points {
		assert.True(t, cfg.Bounds.Contains(p.Lat, p.Lng), "point %s outside bounds", p.ID)
	}
}

func TestSubdivideGeometry(t *testing.T) {
	parent := model.GridPoint{ID: "p-2-3", Lat: 32.8, Lng: -117.1, RadiusMeters: 1500, Level: 1}
	children := Subdivide(parent, 0.75, 750)

	wantIDs := []string{"p-2-3-sub-NE", "p-2-3-sub-NW", "p-2-3-sub-SE", "p-2-3-sub-SW"}
	wantSigns := [][2]float64{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

	for i, c := range children {
		assert.Equal(t, wantIDs[i], c.ID)
		assert.Equal(t, parent.Level+1, c.Level)
		assert.Equal(t, 750, c.RadiusMeters)

		latSign, lngSign := wantSigns[i][0], wantSigns[i][1]
		assert.Equal(t, latSign > 0, c.Lat > parent.Lat, "child %s latitude side", c.ID)
		assert.Equal(t, lngSign > 0, c.Lng > parent.Lng, "child %s longitude side", c.ID)
	}
}

func TestSubdivideOffsetsShrinkWithOffsetKm(t *testing.T) {
	parent := model.GridPoint{ID: "p-0-0", Lat: 32.8, Lng: -117.1, RadiusMeters: 1500}

	wide := Subdivide(parent, 1.0, 750)
	narrow := Subdivide(parent, 0.5, 750)

	for i := range wide {
		wideLat := wide[i].Lat - parent.Lat
		narrowLat := narrow[i].Lat - parent.Lat
		assert.Greater(t, abs(wideLat), abs(narrowLat))

		wideLng := wide[i].Lng - parent.Lng
		narrowLng := narrow[i].Lng - parent.Lng
		assert.Greater(t, abs(wideLng), abs(narrowLng))
	}
}

func TestSubdivideIDsAccumulateAncestry(t *testing.T) {
	parent := model.GridPoint{ID: "p-0-0", Lat: 32.8, Lng: -117.1, RadiusMeters: 1500}
	children := Subdivide(parent, 0.75, 750)
	grandchildren := Subdivide(children[0], 0.4, 400)

	assert.Equal(t, "p-0-0-sub-NE-sub-SW", grandchildren[3].ID)
	assert.Equal(t, 2, grandchildren[3].Level)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

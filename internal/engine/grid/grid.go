package grid

import (
	"fmt"
	"math"

	"github.com/rcanales/brewscout/internal/model"
)

// kmPerLatDegree is the approximate north-south distance of one degree of
// latitude. Longitude spacing is corrected by 1/cos(lat) for meridian
// convergence.
const kmPerLatDegree = 111.0

// Mode selects which primary lattice Generate produces.
type Mode string

const (
	ModeTest       Mode = "test"
	ModeProduction Mode = "production"
)

// Config holds the lattice geometry. Zero values are filled from Default in
// the config package; tests inject small fixtures directly.
type Config struct {
	// Production lattice: fills Bounds edge to edge, corners included.
	Bounds model.Bounds
	Rows   int
	Cols   int

	// Test lattice: a small fixed-spacing grid centered on a reference point.
	TestCenterLat float64
	TestCenterLng float64
	TestSpacingKm float64
	TestRows      int
	TestCols      int

	// Every primary point starts with this search radius.
	DefaultRadiusMeters int
}

// Generate produces the deterministic primary search points for a mode.
// Same mode and config always yield the identical list: ids, coordinates,
// and ordering included.
func Generate(mode Mode, cfg Config) []model.GridPoint {
	if mode == ModeTest {
		return generateTest(cfg)
	}
	return generateProduction(cfg)
}

func generateTest(cfg Config) []model.GridPoint {
	latStep := cfg.TestSpacingKm / kmPerLatDegree
	lngStep := cfg.TestSpacingKm / (kmPerLatDegree * math.Cos(cfg.TestCenterLat*math.Pi/180.0))

	points := make([]model.GridPoint, 0, cfg.TestRows*cfg.TestCols)
	rowOff := float64(cfg.TestRows-1) / 2.0
	colOff := float64(cfg.TestCols-1) / 2.0
	for row := 0; row < cfg.TestRows; row++ {
		for col := 0; col < cfg.TestCols; col++ {
			points = append(points, model.GridPoint{
				ID:           fmt.Sprintf("t-%d-%d", row, col),
				Lat:          cfg.TestCenterLat + (float64(row)-rowOff)*latStep,
				Lng:          cfg.TestCenterLng + (float64(col)-colOff)*lngStep,
				RadiusMeters: cfg.DefaultRadiusMeters,
				Level:        0,
			})
		}
	}
	return points
}

func generateProduction(cfg Config) []model.GridPoint {
	latStep := (cfg.Bounds.MaxLat - cfg.Bounds.MinLat) / float64(cfg.Rows-1)
	lngStep := (cfg.Bounds.MaxLng - cfg.Bounds.MinLng) / float64(cfg.Cols-1)

	points := make([]model.GridPoint, 0, cfg.Rows*cfg.Cols)
	for row := 0; row < cfg.Rows; row++ {
		for col := 0; col < cfg.Cols; col++ {
			points = append(points, model.GridPoint{
				ID:           fmt.Sprintf("p-%d-%d", row, col),
				Lat:          cfg.Bounds.MinLat + float64(row)*latStep,
				Lng:          cfg.Bounds.MinLng + float64(col)*lngStep,
				RadiusMeters: cfg.DefaultRadiusMeters,
				Level:        0,
			})
		}
	}
	return points
}

package grid

import (
	"math"

	"github.com/rcanales/brewscout/internal/model"
)

// Child quadrants in their fixed emission order.
var quadrants = [4]struct {
	suffix  string
	latSign float64
	lngSign float64
}{
	{"NE", 1, 1},
	{"NW", 1, -1},
	{"SE", -1, 1},
	{"SW", -1, -1},
}

// Subdivide derives the four finer-resolution children of a search point,
// offset diagonally by offsetKm and searched at radiusMeters. Ids accumulate
// ancestry (parent id plus a directional suffix), so repeated subdivision
// never collides. Children sit one level below the parent.
func Subdivide(parent model.GridPoint, offsetKm float64, radiusMeters int) [4]model.GridPoint {
	latDelta := offsetKm / kmPerLatDegree
	lngDelta := offsetKm / (kmPerLatDegree * math.Cos(parent.Lat*math.Pi/180.0))

	var children [4]model.GridPoint
	for i, q := range quadrants {
		children[i] = model.GridPoint{
			ID:           parent.ID + "-sub-" + q.suffix,
			Lat:          parent.Lat + q.latSign*latDelta,
			Lng:          parent.Lng + q.lngSign*lngDelta,
			RadiusMeters: radiusMeters,
			Level:        parent.Level + 1,
		}
	}
	return children
}

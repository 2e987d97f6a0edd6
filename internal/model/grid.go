package model

// GridPoint is one geographic search location: a coordinate, the radius to
// query around it, and how many subdivisions produced it.
type GridPoint struct {
	ID           string  `json:"id"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters int     `json:"radius_meters"`
	Level        int     `json:"level"`
}

// SearchTask is a grid point queued for processing. ParentID is empty for
// primary points and carries the originating point's id for subdivisions.
type SearchTask struct {
	Point    GridPoint `json:"point"`
	ParentID string    `json:"parent_id,omitempty"`
}

// Bounds is a geographic bounding box (WGS 84).
type Bounds struct {
	MinLat float64 `json:"min_lat" yaml:"min_lat"`
	MinLng float64 `json:"min_lng" yaml:"min_lng"`
	MaxLat float64 `json:"max_lat" yaml:"max_lat"`
	MaxLng float64 `json:"max_lng" yaml:"max_lng"`
}

// Contains reports whether the coordinate falls inside the box (inclusive).
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

package model

// BusinessStatus is the operational state a provider reports for a place.
type BusinessStatus string

const (
	StatusOperational       BusinessStatus = "OPERATIONAL"
	StatusClosedTemporarily BusinessStatus = "CLOSED_TEMPORARILY"
	StatusClosedPermanently BusinessStatus = "CLOSED_PERMANENTLY"
	StatusUnknown           BusinessStatus = ""
)

// Place is the normalized shape of one search result. The adapter at the
// provider boundary produces it; the engine never sees provider-specific
// response layouts.
type Place struct {
	PlaceID        string         `json:"place_id"`
	Name           string         `json:"name"`
	Address        string         `json:"address"`
	Lat            float64        `json:"lat"`
	Lng            float64        `json:"lng"`
	Types          []string       `json:"types,omitempty"`
	PrimaryType    string         `json:"primary_type,omitempty"`
	BusinessStatus BusinessStatus `json:"business_status,omitempty"`
	Rating         float64        `json:"rating,omitempty"`
	ReviewCount    int            `json:"review_count,omitempty"`

	// SourceGridID is provenance set during deduplication: the grid point
	// whose occurrence of this place won the tie-break.
	SourceGridID string `json:"source_grid_id,omitempty"`
}

// HasCoordinates reports whether the place carries a resolvable location.
// Providers signal a missing geometry with zeroed coordinates.
func (p Place) HasCoordinates() bool {
	return p.Lat != 0 || p.Lng != 0
}

// FilterStats records how many places survived each classification stage.
// Counts are non-increasing left to right; Final always equals
// AfterQualityFilter.
type FilterStats struct {
	Original           int `json:"original"`
	AfterChainFilter   int `json:"after_chain_filter"`
	AfterKeywordFilter int `json:"after_keyword_filter"`
	AfterTypeFilter    int `json:"after_type_filter"`
	AfterQualityFilter int `json:"after_quality_filter"`
	Final              int `json:"final"`
}

// Add accumulates another batch's stats into s.
func (s *FilterStats) Add(o FilterStats) {
	s.Original += o.Original
	s.AfterChainFilter += o.AfterChainFilter
	s.AfterKeywordFilter += o.AfterKeywordFilter
	s.AfterTypeFilter += o.AfterTypeFilter
	s.AfterQualityFilter += o.AfterQualityFilter
	s.Final += o.Final
}

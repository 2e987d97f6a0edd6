package model

import "time"

// SearchResult is the immutable record of one processed search task.
type SearchResult struct {
	TaskID       string  `json:"task_id"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters int     `json:"radius_meters"`
	Level        int     `json:"level"`
	ParentID     string  `json:"parent_id,omitempty"`
	Places       []Place `json:"places"`
	ResultCount  int     `json:"result_count"`
	APICallsUsed int     `json:"api_calls_used"`
	Subdivided   bool    `json:"subdivided"`
}

// Summary aggregates a full discovery run. It is built once when the run
// finishes or aborts and is valid (if incomplete) in both cases: Aborted=true
// means the budget ran out or the caller cancelled, not that the run failed.
type Summary struct {
	RunID            string         `json:"run_id"`
	AreasSearched    int            `json:"areas_searched"`
	TotalPlacesFound int            `json:"total_places_found"`
	UniquePlaces     int            `json:"unique_places"`
	APICallsUsed     int            `json:"api_calls_used"`
	Subdivisions     int            `json:"subdivisions"`
	Aborted          bool           `json:"aborted"`
	FilterStats      FilterStats    `json:"filter_stats"`
	Results          []SearchResult `json:"results"`
	Duration         time.Duration  `json:"duration"`
}

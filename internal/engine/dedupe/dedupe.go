// Package dedupe merges places observed from multiple overlapping grid
// points into one canonical record per physical place.
package dedupe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rcanales/brewscout/internal/model"
)

// coordPrecision is the decimal rounding applied when synthesizing an
// identity from name+coordinates. Four decimals is ~11m, tight enough to
// separate neighbors and loose enough to absorb provider jitter.
const coordPrecision = 4

// Observation is everything one grid point reported.
type Observation struct {
	Places       []model.Place
	RadiusMeters int
	Level        int
}

// PlaceRecord is the canonical record chosen for one distinct place.
type PlaceRecord struct {
	PlaceID          string
	Place            model.Place
	PreferredGridID  string
	AllSourceGridIDs []string
	PreferredRadius  int
	PreferredLevel   int
}

// Result holds the merged output of a dedup pass.
type Result struct {
	// Places holds one shallow copy per distinct identity, annotated with the
	// winning grid id, in first-encountered order.
	Places []model.Place
	// Mapping has exactly one entry per distinct identity.
	Mapping map[string]PlaceRecord
	// DuplicatesByGrid counts, per grid, how many of its places were also
	// seen at at least one other grid.
	DuplicatesByGrid map[string]int
}

// Identity resolves the dedup key for a place: the provider id when present,
// otherwise normalized name plus rounded coordinates.
func Identity(p model.Place) string {
	if p.PlaceID != "" {
		return p.PlaceID
	}
	name := strings.Join(strings.Fields(strings.ToLower(p.Name)), " ")
	return fmt.Sprintf("%s|%.*f|%.*f", name, coordPrecision, p.Lat, coordPrecision, p.Lng)
}

type occurrence struct {
	place  model.Place
	gridID string
	radius int
	level  int
	order  int
}

// Dedupe merges per-grid observations. It is deterministic for any input:
// grids are visited in sorted key order, places in list order, and the
// tie-break between occurrences of the same place is smallest radius, then
// highest level, then earliest encounter. Input places are never mutated.
func Dedupe(perGrid map[string]Observation) Result {
	gridIDs := make([]string, 0, len(perGrid))
	for id := range perGrid {
		gridIDs = append(gridIDs, id)
	}
	sort.Strings(gridIDs)

	best := make(map[string]occurrence)
	sources := make(map[string]map[string]bool)
	var keyOrder []string

	order := 0
	for _, gridID := range gridIDs {
		obs := perGrid[gridID]
		for _, place := range obs.Places {
			key := Identity(place)
			occ := occurrence{place: place, gridID: gridID, radius: obs.RadiusMeters, level: obs.Level, order: order}
			order++

			if sources[key] == nil {
				sources[key] = make(map[string]bool)
				keyOrder = append(keyOrder, key)
				best[key] = occ
			} else if preferred(occ, best[key]) {
				best[key] = occ
			}
			sources[key][gridID] = true
		}
	}

	result := Result{
		Places:           make([]model.Place, 0, len(keyOrder)),
		Mapping:          make(map[string]PlaceRecord, len(keyOrder)),
		DuplicatesByGrid: make(map[string]int),
	}

	for _, key := range keyOrder {
		occ := best[key]

		chosen := occ.place
		chosen.SourceGridID = occ.gridID
		result.Places = append(result.Places, chosen)

		gridSet := sources[key]
		all := make([]string, 0, len(gridSet))
		for id := range gridSet {
			all = append(all, id)
		}
		sort.Strings(all)

		result.Mapping[key] = PlaceRecord{
			PlaceID:          key,
			Place:            chosen,
			PreferredGridID:  occ.gridID,
			AllSourceGridIDs: all,
			PreferredRadius:  occ.radius,
			PreferredLevel:   occ.level,
		}

		if len(gridSet) > 1 {
			for id := range gridSet {
				result.DuplicatesByGrid[id]++
			}
		}
	}

	return result
}

// preferred reports whether a beats b under the tie-break rules.
func preferred(a, b occurrence) bool {
	if a.radius != b.radius {
		return a.radius < b.radius
	}
	if a.level != b.level {
		return a.level > b.level
	}
	return a.order < b.order
}

package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcanales/brewscout/internal/model"
)

func place(id, name string, lat, lng float64) model.Place {
	return model.Place{PlaceID: id, Name: name, Lat: lat, Lng: lng}
}

func TestDedupeTotalityAndUniqueness(t *testing.T) {
	perGrid := map[string]Observation{
		"p-0-0": {Places: []model.Place{place("a", "Alpha Coffee", 32.71, -117.16), place("b", "Beta Roasters", 32.72, -117.15)}, RadiusMeters: 1500},
		"p-0-1": {Places: []model.Place{place("b", "Beta Roasters", 32.72, -117.15), place("c", "Gamma Espresso", 32.73, -117.14)}, RadiusMeters: 1500},
	}

	result := Dedupe(perGrid)

	require.Len(t, result.Places, 3)
	require.Len(t, result.Mapping, 3)

	seen := map[string]int{}
	for _, p := range result.Places {
		seen[p.PlaceID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "place %s appears %d times", id, n)
	}

	assert.ElementsMatch(t, []string{"p-0-0", "p-0-1"}, result.Mapping["b"].AllSourceGridIDs)
}

func TestDedupeTieBreakSmallestRadiusWins(t *testing.T) {
	coarse := Observation{Places: []model.Place{place("x", "Crossroads Coffee", 32.71, -117.16)}, RadiusMeters: 1000, Level: 0}
	fine := Observation{Places: []model.Place{place("x", "Crossroads Coffee", 32.71, -117.16)}, RadiusMeters: 500, Level: 1}

	// Key order must not matter: run with the fine grid sorting both before
	// and after the coarse one.
	for _, perGrid := range []map[string]Observation{
		{"a-coarse": coarse, "b-fine": fine},
		{"a-fine": fine, "b-coarse": coarse},
	} {
		result := Dedupe(perGrid)
		require.Len(t, result.Places, 1)
		rec := result.Mapping["x"]
		assert.Equal(t, 500, rec.PreferredRadius)
		assert.Equal(t, 1, rec.PreferredLevel)
	}
}

func TestDedupeTieBreakLevelThenOrder(t *testing.T) {
	perGrid := map[string]Observation{
		"g-1": {Places: []model.Place{place("x", "Crossroads Coffee", 32.71, -117.16)}, RadiusMeters: 750, Level: 0},
		"g-2": {Places: []model.Place{place("x", "Crossroads Coffee", 32.71, -117.16)}, RadiusMeters: 750, Level: 2},
		"g-3": {Places: []model.Place{place("x", "Crossroads Coffee", 32.71, -117.16)}, RadiusMeters: 750, Level: 2},
	}

	result := Dedupe(perGrid)
	rec := result.Mapping["x"]
	// Equal radii: deeper level wins; equal levels: first in sorted key order.
	assert.Equal(t, "g-2", rec.PreferredGridID)
	assert.Equal(t, 2, rec.PreferredLevel)
}

func TestDedupeSynthesizedIdentity(t *testing.T) {
	// No provider id: normalized name + rounded coordinates must collapse the
	// same storefront seen from two grids.
	a := model.Place{Name: "  Corner   Brew ", Lat: 32.715701, Lng: -117.161102}
	b := model.Place{Name: "corner brew", Lat: 32.715695, Lng: -117.161099}

	result := Dedupe(map[string]Observation{
		"g-1": {Places: []model.Place{a}, RadiusMeters: 1000},
		"g-2": {Places: []model.Place{b}, RadiusMeters: 1000},
	})

	assert.Len(t, result.Places, 1)
}

func TestDedupeDuplicatesByGrid(t *testing.T) {
	perGrid := map[string]Observation{
		"g-1": {Places: []model.Place{place("a", "Alpha", 1, 1), place("b", "Beta", 2, 2)}},
		"g-2": {Places: []model.Place{place("a", "Alpha", 1, 1)}},
		"g-3": {Places: []model.Place{place("c", "Gamma", 3, 3)}},
	}

	result := Dedupe(perGrid)

	assert.Equal(t, 1, result.DuplicatesByGrid["g-1"])
	assert.Equal(t, 1, result.DuplicatesByGrid["g-2"])
	assert.Zero(t, result.DuplicatesByGrid["g-3"])
}

func TestDedupeDoesNotMutateInput(t *testing.T) {
	original := place("a", "Alpha Coffee", 32.71, -117.16)
	perGrid := map[string]Observation{
		"g-1": {Places: []model.Place{original}, RadiusMeters: 1000},
	}

	result := Dedupe(perGrid)

	require.Len(t, result.Places, 1)
	assert.Equal(t, "g-1", result.Places[0].SourceGridID)
	assert.Empty(t, perGrid["g-1"].Places[0].SourceGridID, "input place was mutated")
}

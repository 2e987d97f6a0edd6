package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcanales/brewscout/internal/model"
)

func fixturePipeline() *Pipeline {
	return New(Config{
		ChainDenylist:  []string{"starbucks", "dunkin"},
		CoffeeTerms:    []string{"coffee", "espresso", "roaster"},
		NonCoffeeTerms: []string{"bagel", "gas", "pharmacy"},
		AllowedTypes:   []string{"cafe", "coffee_shop"},
		DeniedTypes:    []string{"restaurant", "gas_station", "pharmacy", "bank"},
		Region: Region{
			Bounds: model.Bounds{MinLat: 32.5, MinLng: -117.3, MaxLat: 33.2, MaxLng: -116.8},
		},
	})
}

func operational(name string, types ...string) model.Place {
	return model.Place{
		Name:           name,
		Lat:            32.7,
		Lng:            -117.1,
		Types:          types,
		BusinessStatus: model.StatusOperational,
	}
}

func TestChainExclusion(t *testing.T) {
	p := fixturePipeline()

	ev := p.Evaluate(operational("Starbucks Reserve", "cafe"))
	assert.False(t, ev.PassedChain)
	assert.False(t, ev.Keep())

	// Address fragments count too.
	place := operational("Corner Coffee", "cafe")
	place.Address = "Dunkin Plaza, Suite 4"
	assert.False(t, p.Evaluate(place).PassedChain)

	assert.True(t, p.Evaluate(operational("Lofty Coffee", "cafe")).Keep())
}

func TestKeywordClassification(t *testing.T) {
	p := fixturePipeline()

	tests := []struct {
		name  string
		place model.Place
		keep  bool
	}{
		{"provider category trusted without keywords", operational("The Daily Grind", "cafe"), true},
		{"positive term alone", operational("Hillcrest Espresso"), true},
		{"deny term with positive term", operational("Bagel House Espresso Bar"), true},
		{"deny term without positive term", operational("Bagel House"), false},
		{"no signal at all", operational("Lucky Mart"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keep, p.Evaluate(tt.place).Keep())
		})
	}
}

func TestTypeExclusion(t *testing.T) {
	p := fixturePipeline()

	// Denied type drops the place...
	assert.False(t, p.Evaluate(operational("Espresso Grill", "restaurant")).Keep())
	// ...unless an allowed type rides along.
	assert.True(t, p.Evaluate(operational("Espresso Grill", "restaurant", "cafe")).Keep())
}

func TestQualityValidation(t *testing.T) {
	p := fixturePipeline()

	closed := operational("Closed Coffee", "cafe")
	closed.BusinessStatus = model.StatusClosedPermanently
	assert.False(t, p.Evaluate(closed).Keep())

	noCoords := operational("Ghost Coffee", "cafe")
	noCoords.Lat, noCoords.Lng = 0, 0
	assert.False(t, p.Evaluate(noCoords).Keep())

	outside := operational("Faraway Coffee", "cafe")
	outside.Lat, outside.Lng = 40.7, -74.0
	assert.False(t, p.Evaluate(outside).Keep())
}

func TestApplyStatsMonotone(t *testing.T) {
	p := fixturePipeline()

	closed := operational("Sleepy Roaster")
	closed.BusinessStatus = model.StatusClosedTemporarily

	batch := []model.Place{
		operational("Starbucks", "cafe"),              // chain stage
		operational("Lucky Mart"),                     // keyword stage
		operational("Espresso Grill", "restaurant"),   // type stage
		closed,                                        // quality stage
		operational("Dark Horse Coffee", "cafe"),      // survives
		operational("Heartwork Roasters", "roastery"), // survives via keyword
	}

	survivors, stats := p.Apply(batch)

	require.Equal(t, 6, stats.Original)
	assert.Equal(t, 5, stats.AfterChainFilter)
	assert.Equal(t, 4, stats.AfterKeywordFilter)
	assert.Equal(t, 3, stats.AfterTypeFilter)
	assert.Equal(t, 2, stats.AfterQualityFilter)
	assert.Equal(t, stats.AfterQualityFilter, stats.Final)
	assert.Len(t, survivors, stats.Final)

	assert.GreaterOrEqual(t, stats.Original, stats.AfterChainFilter)
	assert.GreaterOrEqual(t, stats.AfterChainFilter, stats.AfterKeywordFilter)
	assert.GreaterOrEqual(t, stats.AfterKeywordFilter, stats.AfterTypeFilter)
	assert.GreaterOrEqual(t, stats.AfterTypeFilter, stats.AfterQualityFilter)
}

func TestBatchOutcomeMatchesIsolatedOutcome(t *testing.T) {
	p := fixturePipeline()

	batch := []model.Place{
		operational("Starbucks", "cafe"),
		operational("Dark Horse Coffee", "cafe"),
		operational("Bagel House"),
		operational("Espresso Grill", "restaurant", "cafe"),
		operational("Lucky Mart"),
	}

	survivors, _ := p.Apply(batch)
	kept := make(map[string]bool, len(survivors))
	for _, s := range survivors {
		kept[s.Name] = true
	}

	for _, place := range batch {
		solo, _ := p.Apply([]model.Place{place})
		assert.Equal(t, kept[place.Name], len(solo) == 1,
			"batch and isolated outcomes differ for %q", place.Name)
	}
}

func TestRegionPolygonRefinesBounds(t *testing.T) {
	r := Region{Bounds: model.Bounds{MinLat: 0, MinLng: 0, MaxLat: 10, MaxLng: 10}}
	assert.True(t, r.Contains(5, 5))
	assert.False(t, r.Contains(11, 5))
}

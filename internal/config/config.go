// Package config carries the tunable constants of the discovery engine:
// region geometry, classification lists, and run limits. Defaults describe
// the San Diego service area; a YAML file can override any field.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rcanales/brewscout/internal/engine/discovery"
	"github.com/rcanales/brewscout/internal/engine/filter"
	"github.com/rcanales/brewscout/internal/engine/grid"
	"github.com/rcanales/brewscout/internal/model"
)

type Config struct {
	Region    RegionConfig    `yaml:"region"`
	Grid      GridConfig      `yaml:"grid"`
	Filter    FilterConfig    `yaml:"filter"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

type RegionConfig struct {
	Bounds model.Bounds `yaml:"bounds"`
	// AreaFile optionally points at a GeoJSON polygon refining the bounds.
	AreaFile string `yaml:"area_file,omitempty"`
}

type GridConfig struct {
	Rows                int     `yaml:"rows"`
	Cols                int     `yaml:"cols"`
	TestCenterLat       float64 `yaml:"test_center_lat"`
	TestCenterLng       float64 `yaml:"test_center_lng"`
	TestSpacingKm       float64 `yaml:"test_spacing_km"`
	TestRows            int     `yaml:"test_rows"`
	TestCols            int     `yaml:"test_cols"`
	DefaultRadiusMeters int     `yaml:"default_radius_meters"`
}

type FilterConfig struct {
	ChainDenylist  []string `yaml:"chain_denylist"`
	CoffeeTerms    []string `yaml:"coffee_terms"`
	NonCoffeeTerms []string `yaml:"non_coffee_terms"`
	AllowedTypes   []string `yaml:"allowed_types"`
	DeniedTypes    []string `yaml:"denied_types"`
}

type DiscoveryConfig struct {
	Keyword     string `yaml:"keyword"`
	MaxAPICalls int    `yaml:"max_api_calls"`
	RateLimitMs int    `yaml:"rate_limit_ms"`
	MaxDepth    int    `yaml:"max_depth"`
	ResultCap   int    `yaml:"result_cap"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Region: RegionConfig{
			Bounds: model.Bounds{MinLat: 32.53, MinLng: -117.29, MaxLat: 33.11, MaxLng: -116.82},
		},
		Grid: GridConfig{
			Rows:                8,
			Cols:                8,
			TestCenterLat:       32.7157,
			TestCenterLng:       -117.1611,
			TestSpacingKm:       1.2,
			TestRows:            3,
			TestCols:            3,
			DefaultRadiusMeters: 1500,
		},
		Filter: FilterConfig{
			ChainDenylist: []string{
				"starbucks", "dunkin", "peet's", "peets", "mcdonald", "7-eleven",
				"circle k", "panera", "coffee bean & tea leaf", "dutch bros",
				"tim hortons", "caribou coffee",
			},
			CoffeeTerms: []string{
				"coffee", "espresso", "roaster", "roastery", "roasting",
				"cafe", "caffe", "brew", "barista",
			},
			NonCoffeeTerms: []string{
				"bagel", "donut", "gas", "pharmacy", "bank", "hotel", "motel",
				"liquor", "smoke", "laundry", "nails",
			},
			AllowedTypes: []string{"cafe", "coffee_shop"},
			DeniedTypes: []string{
				"restaurant", "gas_station", "pharmacy", "bank", "gym",
				"lodging", "hotel", "convenience_store", "supermarket",
				"car_dealer", "hospital", "night_club",
			},
		},
		Discovery: DiscoveryConfig{
			Keyword:     "coffee",
			MaxAPICalls: 500,
			RateLimitMs: 1000,
			MaxDepth:    2,
			ResultCap:   20,
		},
	}
}

// Load overlays a YAML file onto the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// GridConfig materializes the grid package's config.
func (c Config) GridConfig() grid.Config {
	return grid.Config{
		Bounds:              c.Region.Bounds,
		Rows:                c.Grid.Rows,
		Cols:                c.Grid.Cols,
		TestCenterLat:       c.Grid.TestCenterLat,
		TestCenterLng:       c.Grid.TestCenterLng,
		TestSpacingKm:       c.Grid.TestSpacingKm,
		TestRows:            c.Grid.TestRows,
		TestCols:            c.Grid.TestCols,
		DefaultRadiusMeters: c.Grid.DefaultRadiusMeters,
	}
}

// FilterConfig materializes the filter pipeline's config, loading the
// optional service-area polygon.
func (c Config) FilterConfig() (filter.Config, error) {
	region := filter.Region{Bounds: c.Region.Bounds}
	if c.Region.AreaFile != "" {
		if err := region.LoadArea(c.Region.AreaFile); err != nil {
			return filter.Config{}, err
		}
	}
	return filter.Config{
		ChainDenylist:  c.Filter.ChainDenylist,
		CoffeeTerms:    c.Filter.CoffeeTerms,
		NonCoffeeTerms: c.Filter.NonCoffeeTerms,
		AllowedTypes:   c.Filter.AllowedTypes,
		DeniedTypes:    c.Filter.DeniedTypes,
		Region:         region,
	}, nil
}

// DiscoveryConfig materializes the scheduler's config.
func (c Config) DiscoveryConfig() discovery.Config {
	return discovery.Config{
		Keyword:     c.Discovery.Keyword,
		MaxAPICalls: c.Discovery.MaxAPICalls,
		RateLimit:   time.Duration(c.Discovery.RateLimitMs) * time.Millisecond,
		MaxDepth:    c.Discovery.MaxDepth,
		ResultCap:   c.Discovery.ResultCap,
	}
}

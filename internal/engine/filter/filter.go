package filter

import (
	"strings"

	"github.com/rcanales/brewscout/internal/model"
)

// Config holds the classification lists. All matching is case-insensitive;
// lists are injected so tests can substitute small fixtures.
type Config struct {
	// ChainDenylist excludes non-independent brands by name/address fragment.
	ChainDenylist []string
	// CoffeeTerms are name fragments that positively identify a coffee business.
	CoffeeTerms []string
	// NonCoffeeTerms are name fragments of unrelated businesses.
	NonCoffeeTerms []string
	// AllowedTypes are provider categories treated as authoritative coffee
	// classifications (e.g. "cafe", "coffee_shop").
	AllowedTypes []string
	// DeniedTypes are provider categories that exclude a place unless an
	// allowed type is also present.
	DeniedTypes []string
	// Region is the service area for the quality stage.
	Region Region
}

// Evaluation is the per-stage outcome for a single place. Later stages are
// only meaningful when every earlier stage passed.
type Evaluation struct {
	PassedChain   bool
	PassedKeyword bool
	PassedType    bool
	PassedQuality bool
}

// Keep reports whether the place survived the whole pipeline.
func (e Evaluation) Keep() bool {
	return e.PassedChain && e.PassedKeyword && e.PassedType && e.PassedQuality
}

// Pipeline classifies raw search results into legitimate independent coffee
// shops. It is deterministic and side-effect-free, and a place's outcome
// never depends on what else is in the batch: Evaluate on one place agrees
// with Apply on any batch containing it.
type Pipeline struct {
	cfg            Config
	chainDenylist  []string
	coffeeTerms    []string
	nonCoffeeTerms []string
	allowedTypes   map[string]bool
	deniedTypes    map[string]bool
}

func New(cfg Config) *Pipeline {
	p := &Pipeline{
		cfg:            cfg,
		chainDenylist:  lowerAll(cfg.ChainDenylist),
		coffeeTerms:    lowerAll(cfg.CoffeeTerms),
		nonCoffeeTerms: lowerAll(cfg.NonCoffeeTerms),
		allowedTypes:   make(map[string]bool, len(cfg.AllowedTypes)),
		deniedTypes:    make(map[string]bool, len(cfg.DeniedTypes)),
	}
	for _, t := range cfg.AllowedTypes {
		p.allowedTypes[strings.ToLower(t)] = true
	}
	for _, t := range cfg.DeniedTypes {
		p.deniedTypes[strings.ToLower(t)] = true
	}
	return p
}

// Apply runs every stage over the batch, each stage consuming the previous
// stage's survivors, and reports per-stage counts.
func (p *Pipeline) Apply(places []model.Place) ([]model.Place, model.FilterStats) {
	stats := model.FilterStats{Original: len(places)}

	var survivors []model.Place
	for _, place := range places {
		ev := p.Evaluate(place)
		if ev.PassedChain {
			stats.AfterChainFilter++
		}
		if ev.PassedChain && ev.PassedKeyword {
			stats.AfterKeywordFilter++
		}
		if ev.PassedChain && ev.PassedKeyword && ev.PassedType {
			stats.AfterTypeFilter++
		}
		if ev.Keep() {
			stats.AfterQualityFilter++
			survivors = append(survivors, place)
		}
	}

	stats.Final = stats.AfterQualityFilter
	return survivors, stats
}

// Evaluate classifies a single place, recording each stage's pass/fail.
func (p *Pipeline) Evaluate(place model.Place) Evaluation {
	ev := Evaluation{}
	ev.PassedChain = !p.isChain(place)
	if !ev.PassedChain {
		return ev
	}
	ev.PassedKeyword = p.keywordKeep(place)
	if !ev.PassedKeyword {
		return ev
	}
	ev.PassedType = p.typeKeep(place)
	if !ev.PassedType {
		return ev
	}
	ev.PassedQuality = p.qualityKeep(place)
	return ev
}

func (p *Pipeline) isChain(place model.Place) bool {
	name := strings.ToLower(place.Name)
	address := strings.ToLower(place.Address)
	for _, fragment := range p.chainDenylist {
		if strings.Contains(name, fragment) || strings.Contains(address, fragment) {
			return true
		}
	}
	return false
}

func (p *Pipeline) keywordKeep(place model.Place) bool {
	// A provider cafe/coffee classification is authoritative: keep regardless
	// of keyword signals.
	if p.hasAllowedType(place) {
		return true
	}
	name := strings.ToLower(place.Name)
	positive := containsAny(name, p.coffeeTerms)
	if containsAny(name, p.nonCoffeeTerms) {
		// An unrelated-business term is not disqualifying on its own:
		// "Bagel House Espresso Bar" is still a coffee stop.
		return positive
	}
	return positive
}

func (p *Pipeline) typeKeep(place model.Place) bool {
	for _, t := range place.Types {
		if p.deniedTypes[strings.ToLower(t)] {
			return p.hasAllowedType(place)
		}
	}
	return true
}

func (p *Pipeline) qualityKeep(place model.Place) bool {
	if place.BusinessStatus != model.StatusOperational {
		return false
	}
	if !place.HasCoordinates() {
		return false
	}
	return p.cfg.Region.Contains(place.Lat, place.Lng)
}

func (p *Pipeline) hasAllowedType(place model.Place) bool {
	if place.PrimaryType != "" && p.allowedTypes[strings.ToLower(place.PrimaryType)] {
		return true
	}
	for _, t := range place.Types {
		if p.allowedTypes[strings.ToLower(t)] {
			return true
		}
	}
	return false
}

func containsAny(s string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// Package discovery drives the adaptive search: a FIFO queue of grid points,
// rate-limited one-at-a-time search calls, truncation-triggered subdivision,
// classification, persistence, and progress reporting.
package discovery

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/rcanales/brewscout/internal/engine/dedupe"
	"github.com/rcanales/brewscout/internal/engine/filter"
	"github.com/rcanales/brewscout/internal/engine/grid"
	"github.com/rcanales/brewscout/internal/model"
	"github.com/rcanales/brewscout/internal/progress"
)

// Config bounds one discovery run.
type Config struct {
	// Keyword is passed to every search call.
	Keyword string
	// MaxAPICalls is the global call budget; exceeded means the run aborts
	// with a valid partial summary.
	MaxAPICalls int
	// RateLimit is the cooperative delay between tasks (not before the
	// first). Zero disables the wait.
	RateLimit time.Duration
	// MaxDepth caps subdivision; a truncated task already at MaxDepth is
	// logged and left as-is.
	MaxDepth int
	// ResultCap is the provider's known per-call result ceiling; reaching it
	// is a truncation signal.
	ResultCap int
	// DisableFiltering bypasses the pipeline for diagnostic runs.
	DisableFiltering bool
}

// Scheduler owns the work queue and result list for the duration of a run.
// It is single-threaded and cooperative: one task in flight at a time, abort
// checked at every suspension point.
type Scheduler struct {
	search   SearchPort
	store    UpsertPort // nil: in-memory only
	pipeline *filter.Pipeline
	bus      *progress.Bus
	logger   *log.Logger
	cfg      Config
}

func NewScheduler(search SearchPort, store UpsertPort, pipeline *filter.Pipeline, bus *progress.Bus, logger *log.Logger, cfg Config) *Scheduler {
	return &Scheduler{
		search:   search,
		store:    store,
		pipeline: pipeline,
		bus:      bus,
		logger:   logger,
		cfg:      cfg,
	}
}

// Run processes the seeded points to completion, budget exhaustion, or ctx
// cancellation. The returned summary is valid in all three cases; Aborted
// marks the partial ones. Run never returns an error: per-task failures are
// non-fatal and run-level stops are represented on the summary.
func (s *Scheduler) Run(ctx context.Context, points []model.GridPoint) *model.Summary {
	runID := uuid.NewString()
	started := time.Now()

	queue := make([]model.SearchTask, 0, len(points))
	for _, p := range points {
		queue = append(queue, model.SearchTask{Point: p})
	}

	s.emit(progress.NewStartEvent(runID, len(points)))
	s.logger.Printf("RUN_START run=%s points=%d budget=%d max_depth=%d", runID, len(points), s.cfg.MaxAPICalls, s.cfg.MaxDepth)

	var (
		results      []model.SearchResult
		perGrid      = make(map[string]dedupe.Observation)
		totals       model.FilterStats
		apiCalls     int
		placesFound  int
		subdivisions int
		aborted      bool
	)

	// The limiter starts with a full bucket, so the first task proceeds
	// without delay and every later one is spaced RateLimit apart.
	limiter := rate.NewLimiter(rate.Every(s.cfg.RateLimit), 1)

	for len(queue) > 0 {
		if reason := s.stopReason(ctx, apiCalls); reason != "" {
			aborted = true
			s.abort(runID, reason)
			break
		}

		task := queue[0]
		queue = queue[1:]

		if s.cfg.RateLimit > 0 {
			// Wait races the delay against ctx, so an abort during the pause
			// is seen before the next search call.
			if err := limiter.Wait(ctx); err != nil {
				aborted = true
				s.abort(runID, "cancelled during rate limit wait")
				break
			}
			if reason := s.stopReason(ctx, apiCalls); reason != "" {
				aborted = true
				s.abort(runID, reason)
				break
			}
		}

		point := task.Point
		s.emit(progress.NewSearchStartEvent(runID, point.ID, point.Level))

		res, err := s.search.Search(ctx, point.Lat, point.Lng, point.RadiusMeters, s.cfg.Keyword)
		if err != nil {
			// Transport failure is a zero-result task, not a run failure.
			s.logger.Printf("SEARCH_ERROR run=%s task=%s err=%v", runID, point.ID, err)
			res = SearchResult{}
		}
		apiCalls += res.APICallsUsed

		rawCount := len(res.Places)
		deduped := dedupeByIdentity(res.Places)

		var kept []model.Place
		var stats model.FilterStats
		if s.cfg.DisableFiltering || s.pipeline == nil {
			kept = deduped
			stats = model.FilterStats{
				Original:           len(deduped),
				AfterChainFilter:   len(deduped),
				AfterKeywordFilter: len(deduped),
				AfterTypeFilter:    len(deduped),
				AfterQualityFilter: len(deduped),
				Final:              len(deduped),
			}
		} else {
			kept, stats = s.pipeline.Apply(deduped)
		}
		totals.Add(stats)

		s.persist(ctx, runID, point, kept)

		perGrid[point.ID] = dedupe.Observation{
			Places:       kept,
			RadiusMeters: point.RadiusMeters,
			Level:        point.Level,
		}

		// Subdivide on any truncation signal: the provider flag, the raw
		// page hitting the cap, or the per-task deduped count hitting it.
		truncated := res.PossiblyTruncated ||
			(s.cfg.ResultCap > 0 && (rawCount >= s.cfg.ResultCap || len(deduped) >= s.cfg.ResultCap))

		subdivided := false
		if truncated {
			if point.Level < s.cfg.MaxDepth {
				children := grid.Subdivide(point, subdivisionOffsetKm(point), point.RadiusMeters/2)
				childIDs := make([]string, len(children))
				for i, child := range children {
					queue = append(queue, model.SearchTask{Point: child, ParentID: point.ID})
					childIDs[i] = child.ID
				}
				subdivisions += len(children)
				subdivided = true
				s.emit(progress.NewSubdivisionEvent(runID, point.ID, childIDs))
				s.logger.Printf("SUBDIVIDE run=%s task=%s children=%d level=%d", runID, point.ID, len(children), point.Level+1)
			} else {
				// Accepted coverage limit: deeper places at this point stay
				// undiscovered.
				s.logger.Printf("MAX_DEPTH run=%s task=%s level=%d", runID, point.ID, point.Level)
			}
		}

		results = append(results, model.SearchResult{
			TaskID:       point.ID,
			Lat:          point.Lat,
			Lng:          point.Lng,
			RadiusMeters: point.RadiusMeters,
			Level:        point.Level,
			ParentID:     task.ParentID,
			Places:       kept,
			ResultCount:  len(kept),
			APICallsUsed: res.APICallsUsed,
			Subdivided:   subdivided,
		})
		placesFound += len(kept)

		s.emit(progress.NewSearchCompleteEvent(runID, point.ID, point.Level, len(kept), res.APICallsUsed, subdivided))

		if reason := s.stopReason(ctx, apiCalls); reason != "" {
			aborted = true
			s.abort(runID, reason)
			break
		}
	}

	merged := dedupe.Dedupe(perGrid)

	summary := &model.Summary{
		RunID:            runID,
		AreasSearched:    len(results),
		TotalPlacesFound: placesFound,
		UniquePlaces:     len(merged.Places),
		APICallsUsed:     apiCalls,
		Subdivisions:     subdivisions,
		Aborted:          aborted,
		FilterStats:      totals,
		Results:          results,
		Duration:         time.Since(started),
	}

	if !aborted {
		s.emit(progress.NewCompleteEvent(runID, summary))
	}
	s.logger.Printf("RUN_DONE run=%s areas=%d found=%d unique=%d calls=%d subdivisions=%d aborted=%v",
		runID, summary.AreasSearched, summary.TotalPlacesFound, summary.UniquePlaces,
		summary.APICallsUsed, summary.Subdivisions, summary.Aborted)

	return summary
}

// stopReason reports why the run must stop, or "" to continue. Abort is
// level-triggered: a search already in flight finishes first.
func (s *Scheduler) stopReason(ctx context.Context, apiCalls int) string {
	select {
	case <-ctx.Done():
		return "cancelled by caller"
	default:
	}
	if apiCalls > s.cfg.MaxAPICalls {
		return "api call budget exhausted"
	}
	return ""
}

func (s *Scheduler) abort(runID, reason string) {
	s.emit(progress.NewAbortEvent(runID, reason))
	s.logger.Printf("ABORT run=%s reason=%q", runID, reason)
}

func (s *Scheduler) persist(ctx context.Context, runID string, point model.GridPoint, places []model.Place) {
	if s.store == nil || len(places) == 0 {
		return
	}
	items := make([]UpsertItem, len(places))
	for i, p := range places {
		items[i] = UpsertItem{
			Place:        p,
			SourceGridID: point.ID,
			GridRadius:   point.RadiusMeters,
			SearchLevel:  point.Level,
		}
	}
	res, err := s.store.UpsertBatch(ctx, items)
	if err != nil {
		s.logger.Printf("UPSERT_ERROR run=%s task=%s err=%v", runID, point.ID, err)
		return
	}
	for _, rowErr := range res.Errors {
		s.logger.Printf("UPSERT_ROW_ERROR run=%s task=%s err=%v", runID, point.ID, rowErr)
	}
}

func (s *Scheduler) emit(ev progress.Event) {
	if s.bus != nil {
		s.bus.Emit(ev)
	}
}

// dedupeByIdentity collapses repeats of the same place within one task's
// results (a paged search can return a place twice), keeping first
// occurrence order.
func dedupeByIdentity(places []model.Place) []model.Place {
	if len(places) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(places))
	out := make([]model.Place, 0, len(places))
	for _, p := range places {
		key := dedupe.Identity(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// subdivisionOffsetKm places children half a radius away from the parent.
func subdivisionOffsetKm(p model.GridPoint) float64 {
	return float64(p.RadiusMeters) / 2.0 / 1000.0
}

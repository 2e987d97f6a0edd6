package discovery

import (
	"context"

	"github.com/rcanales/brewscout/internal/model"
)

// SearchResult is what one geographic search call reports back.
type SearchResult struct {
	Places []model.Place
	// APICallsUsed is how many external calls the search consumed (a paged
	// search may use several); the scheduler charges them to the run budget.
	APICallsUsed int
	// PossiblyTruncated is true whenever the result count reached the
	// provider's page/result cap, meaning more places may exist here.
	PossiblyTruncated bool
}

// SearchPort performs one geographic search. The scheduler does not care how
// it is implemented; errors are treated as a zero-result call, never fatal.
type SearchPort interface {
	Search(ctx context.Context, lat, lng float64, radiusMeters int, keyword string) (SearchResult, error)
}

// UpsertItem tags a filtered place with the provenance of the task that
// found it.
type UpsertItem struct {
	Place        model.Place
	SourceGridID string
	GridRadius   int
	SearchLevel  int
}

// UpsertResult reports a batched persistence outcome. Row-level failures
// land in Errors rather than failing the batch.
type UpsertResult struct {
	Inserted int
	Updated  int
	Errors   []error
}

// UpsertPort persists filtered places. Failures are logged by the scheduler
// and never abort a run.
type UpsertPort interface {
	UpsertBatch(ctx context.Context, items []UpsertItem) (UpsertResult, error)
}

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcanales/brewscout/internal/engine/discovery"
	"github.com/rcanales/brewscout/internal/model"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func item(id, name string, radius, level int, gridID string) discovery.UpsertItem {
	return discovery.UpsertItem{
		Place: model.Place{
			PlaceID:        id,
			Name:           name,
			Lat:            32.7,
			Lng:            -117.1,
			Types:          []string{"cafe", "food"},
			PrimaryType:    "cafe",
			BusinessStatus: model.StatusOperational,
			Rating:         4.5,
			ReviewCount:    120,
		},
		SourceGridID: gridID,
		GridRadius:   radius,
		SearchLevel:  level,
	}
}

func TestUpsertBatchInsertThenUpdate(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	res, err := store.UpsertBatch(ctx, []discovery.UpsertItem{
		item("a", "Alpha Coffee", 1500, 0, "p-0-0"),
		item("b", "Beta Roasters", 1500, 0, "p-0-0"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Zero(t, res.Updated)
	assert.Empty(t, res.Errors)

	// Same place rediscovered from a subdivision: updated, not duplicated.
	res, err = store.UpsertBatch(ctx, []discovery.UpsertItem{
		item("a", "Alpha Coffee Roastery", 750, 1, "p-0-0-sub-NE"),
	})
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
	assert.Equal(t, 1, res.Updated)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLoadAllRoundTrip(t *testing.T) {
	store := tempStore(t)

	_, err := store.UpsertBatch(context.Background(), []discovery.UpsertItem{
		item("a", "Alpha Coffee", 1500, 0, "p-0-0"),
	})
	require.NoError(t, err)

	shops, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, shops, 1)

	got := shops[0]
	assert.Equal(t, "Alpha Coffee", got.Place.Name)
	assert.Equal(t, []string{"cafe", "food"}, got.Place.Types)
	assert.Equal(t, model.StatusOperational, got.Place.BusinessStatus)
	assert.Equal(t, "p-0-0", got.SourceGridID)
	assert.Equal(t, 0, got.SearchLevel)
}

func TestUpsertSynthesizesKeyWithoutPlaceID(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	anon := item("", "Corner Brew", 1500, 0, "p-0-0")
	res, err := store.UpsertBatch(ctx, []discovery.UpsertItem{anon})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	res, err = store.UpsertBatch(ctx, []discovery.UpsertItem{anon})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
}

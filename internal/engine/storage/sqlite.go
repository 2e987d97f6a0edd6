package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/rcanales/brewscout/internal/engine/dedupe"
	"github.com/rcanales/brewscout/internal/engine/discovery"
	"github.com/rcanales/brewscout/internal/model"
)

// Store persists discovered shops in sqlite and implements the scheduler's
// UpsertPort.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	// Optimize for write throughput
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS shops (
		place_key TEXT PRIMARY KEY,
		place_id TEXT,
		name TEXT NOT NULL,
		address TEXT,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		types TEXT,
		primary_type TEXT,
		business_status TEXT,
		rating REAL,
		review_count INTEGER,
		source_grid_id TEXT NOT NULL,
		grid_radius INTEGER NOT NULL,
		search_level INTEGER NOT NULL,
		discovered_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_shops_coords ON shops(lat, lng);
	CREATE INDEX IF NOT EXISTS idx_shops_rating ON shops(rating);
	CREATE INDEX IF NOT EXISTS idx_shops_grid ON shops(source_grid_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

var _ discovery.UpsertPort = (*Store)(nil)

// UpsertBatch writes one task's filtered places in a single transaction.
// Rows are keyed by the dedup identity, so re-discovering a shop from a
// later grid point updates it in place. Row failures are collected, never
// fatal to the batch.
func (s *Store) UpsertBatch(ctx context.Context, items []discovery.UpsertItem) (discovery.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result discovery.UpsertResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("beginning tx: %w", err)
	}

	exists, err := tx.PrepareContext(ctx, `SELECT EXISTS(SELECT 1 FROM shops WHERE place_key = ?)`)
	if err != nil {
		tx.Rollback()
		return result, fmt.Errorf("preparing exists stmt: %w", err)
	}
	defer exists.Close()

	upsert, err := tx.PrepareContext(ctx, `
		INSERT INTO shops
		(place_key, place_id, name, address, lat, lng, types, primary_type,
		 business_status, rating, review_count, source_grid_id, grid_radius, search_level)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(place_key) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			lat = excluded.lat,
			lng = excluded.lng,
			types = excluded.types,
			primary_type = excluded.primary_type,
			business_status = excluded.business_status,
			rating = excluded.rating,
			review_count = excluded.review_count,
			source_grid_id = excluded.source_grid_id,
			grid_radius = excluded.grid_radius,
			search_level = excluded.search_level,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		tx.Rollback()
		return result, fmt.Errorf("preparing upsert stmt: %w", err)
	}
	defer upsert.Close()

	for _, item := range items {
		key := dedupe.Identity(item.Place)

		var present bool
		if err := exists.QueryRowContext(ctx, key).Scan(&present); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("checking %q: %w", key, err))
			continue
		}

		p := item.Place
		_, err := upsert.ExecContext(ctx,
			key, p.PlaceID, p.Name, p.Address, p.Lat, p.Lng,
			strings.Join(p.Types, ","), p.PrimaryType, string(p.BusinessStatus),
			p.Rating, p.ReviewCount,
			item.SourceGridID, item.GridRadius, item.SearchLevel,
		)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("upserting %q: %w", key, err))
			continue
		}

		if present {
			result.Updated++
		} else {
			result.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("committing tx: %w", err)
	}
	return result, nil
}

// Count returns the number of stored shops.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM shops").Scan(&count)
	return count, err
}

// ShopRow is one persisted shop with its discovery provenance.
type ShopRow struct {
	Place        model.Place
	SourceGridID string
	GridRadius   int
	SearchLevel  int
}

// LoadAll reads every stored shop ordered by name, for export.
func (s *Store) LoadAll() ([]ShopRow, error) {
	rows, err := s.db.Query(`
		SELECT place_id, name, address, lat, lng, types, primary_type,
		       business_status, rating, review_count,
		       source_grid_id, grid_radius, search_level
		FROM shops ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shops []ShopRow
	for rows.Next() {
		var r ShopRow
		var types, status string
		err := rows.Scan(
			&r.Place.PlaceID, &r.Place.Name, &r.Place.Address,
			&r.Place.Lat, &r.Place.Lng, &types, &r.Place.PrimaryType,
			&status, &r.Place.Rating, &r.Place.ReviewCount,
			&r.SourceGridID, &r.GridRadius, &r.SearchLevel,
		)
		if err != nil {
			continue
		}
		if types != "" {
			r.Place.Types = strings.Split(types, ",")
		}
		r.Place.BusinessStatus = model.BusinessStatus(status)
		shops = append(shops, r)
	}
	return shops, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

package geocode

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/golang/geo/s2"

	"reportify/metrics"
	"reportify/models"
)

const (
	// cacheCellLevel is the s2 cell level used as the cache key. Level 23
	// cells are roughly 100m across, so nearby lookups share an entry.
	cacheCellLevel = 23
	// cacheTTL is how long cached results stay valid.
	cacheTTL = 365 * 24 * time.Hour
)

// CachedService wraps the geocoding client with a database-backed cache.
// Cache failures are logged and never fail the lookup.
type CachedService struct {
	client *Client
	db     *sql.DB
}

// NewCachedService creates a cached reverse-geocoding service.
func NewCachedService(client *Client, db *sql.DB) *CachedService {
	return &CachedService{client: client, db: db}
}

// CreateCacheTable creates the geocode cache table if it doesn't exist.
func (s *CachedService) CreateCacheTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS geocode_cache (
			cell_id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
			result JSON NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			expires_at TIMESTAMP NOT NULL,
			INDEX idx_expires (expires_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create geocode_cache table: %w", err)
	}
	return nil
}

// cacheCell maps coordinates to the s2 cell used as the cache key.
func cacheCell(lat, lon float64) s2.CellID {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon)).Parent(cacheCellLevel)
}

// ReverseGeocode looks up coordinates, serving from cache when possible.
// Identical coordinates always resolve to the same cell, so repeated
// lookups yield the same result absent provider-side changes.
func (s *CachedService) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.GeocodeResult, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	cell := cacheCell(lat, lon)

	if result, err := s.getFromCache(ctx, cell); err != nil {
		log.WithError(err).Warnf("geocode cache read failed for cell %d", uint64(cell))
	} else if result != nil {
		metrics.GeocodeLookupsTotal.WithLabelValues("cache_hit").Inc()
		return result, nil
	}

	result, err := s.client.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		metrics.GeocodeLookupsTotal.WithLabelValues("provider_error").Inc()
		return nil, err
	}
	metrics.GeocodeLookupsTotal.WithLabelValues("provider_ok").Inc()

	if err := s.saveToCache(ctx, cell, result); err != nil {
		log.WithError(err).Warnf("failed to cache geocode result for cell %d", uint64(cell))
	}

	return result, nil
}

func (s *CachedService) getFromCache(ctx context.Context, cell s2.CellID) (*models.GeocodeResult, error) {
	var resultJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT result
		FROM geocode_cache
		WHERE cell_id = ? AND expires_at > NOW()
	`, uint64(cell)).Scan(&resultJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	var result models.GeocodeResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached result: %w", err)
	}
	return &result, nil
}

func (s *CachedService) saveToCache(ctx context.Context, cell s2.CellID, result *models.GeocodeResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (cell_id, result, expires_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			result = VALUES(result),
			expires_at = VALUES(expires_at),
			created_at = NOW()
	`, uint64(cell), string(resultJSON), time.Now().Add(cacheTTL))
	if err != nil {
		return fmt.Errorf("failed to save to cache: %w", err)
	}
	return nil
}

// CleanExpiredCache removes expired cache entries.
func (s *CachedService) CleanExpiredCache(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM geocode_cache WHERE expires_at < NOW()")
	if err != nil {
		return 0, fmt.Errorf("failed to clean expired cache: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// Package projcache memoizes geodesic rays. Consecutive sweeps from one site
// reuse the same origin, gate spacing and (mostly) the same azimuths, so most
// rays after the first volume scan are cache hits.
package projcache

import (
	"fmt"

	"github.com/couchcryptid/storm-radar-etl/internal/domain"
	"github.com/couchcryptid/storm-radar-etl/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedReckoner wraps a Reckoner with an in-memory LRU cache keyed by
// origin, range vector and azimuth. Returned slices are shared between
// callers and must not be modified.
type CachedReckoner struct {
	inner   domain.Reckoner
	cache   *lru.Cache[string, ray]
	metrics *observability.Metrics
}

// NewCachedReckoner creates a cache decorator around a reckoner holding at
// most maxEntries rays.
func NewCachedReckoner(inner domain.Reckoner, maxEntries int, metrics *observability.Metrics) (*CachedReckoner, error) {
	cache, err := lru.New[string, ray](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("projection cache: %w", err)
	}
	return &CachedReckoner{
		inner:   inner,
		cache:   cache,
		metrics: metrics,
	}, nil
}

// Len reports the number of cached rays.
func (c *CachedReckoner) Len() int {
	return c.cache.Len()
}

func (c *CachedReckoner) ReckonRay(lat, lon float64, distances []float64, azimuth float64) ([]float64, []float64, error) {
	key := rayKey(lat, lon, distances, azimuth)
	if r, ok := c.cache.Get(key); ok {
		c.metrics.ProjectionCache.WithLabelValues("hit").Inc()
		return r.lats, r.lons, nil
	}
	c.metrics.ProjectionCache.WithLabelValues("miss").Inc()

	lats, lons, err := c.inner.ReckonRay(lat, lon, distances, azimuth)
	if err != nil {
		return nil, nil, err
	}
	c.cache.Add(key, ray{lats: lats, lons: lons})
	return lats, lons, nil
}

// rayKey identifies a ray. Range vectors are evenly spaced from zero, so the
// length and the final distance pin them down.
func rayKey(lat, lon float64, distances []float64, azimuth float64) string {
	var last float64
	if n := len(distances); n > 0 {
		last = distances[n-1]
	}
	return fmt.Sprintf("%.6f,%.6f|%d|%g|%.4f", lat, lon, len(distances), last, azimuth)
}

type ray struct {
	lats []float64
	lons []float64
}

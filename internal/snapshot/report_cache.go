package snapshot

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/evesaga/evesaga/internal/report"
)

// ReportCache caches generated report.Report projections behind a Cache,
// keyed by whatever the caller chooses (a character id, a region, or a
// fixed "global" key) so the report HTTP endpoint doesn't have to
// recompute a full projection on every request.
type ReportCache struct {
	cache Cache
	ttl   time.Duration
}

// NewReportCache wraps cache with a fixed per-entry ttl.
func NewReportCache(cache Cache, ttl time.Duration) *ReportCache {
	return &ReportCache{cache: cache, ttl: ttl}
}

// Get returns a previously-cached report for key, if present and not
// expired.
func (c *ReportCache) Get(key string) (report.Report, bool) {
	raw, ok := c.cache.Get(key)
	if !ok {
		return report.Report{}, false
	}
	var r report.Report
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&r); err != nil {
		return report.Report{}, false
	}
	return r, true
}

// Set encodes and caches r under key.
func (c *ReportCache) Set(key string, r report.Report) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return fmt.Errorf("encode report for cache: %w", err)
	}
	c.cache.Set(key, buf.Bytes(), c.ttl)
	return nil
}

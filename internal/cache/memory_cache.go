package cache

import (
	"slices"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/epeers/refsync/internal/models"
	"github.com/epeers/refsync/internal/util"
)

// MemoryCache holds split-adjusted price series. Entries expire at the next
// end-of-day release, when new bars or splits may have arrived.
type MemoryCache struct {
	c   *gocache.Cache
	now func() time.Time
}

// NewMemoryCache creates a new in-memory cache that sweeps expired entries every cleanup
func NewMemoryCache(cleanup time.Duration) *MemoryCache {
	return &MemoryCache{
		c:   gocache.New(gocache.NoExpiration, cleanup),
		now: time.Now,
	}
}

func adjustedKey(source, code string, startDate, endDate time.Time) string {
	return strings.Join([]string{source, code, startDate.Format("2006-01-02"), endDate.Format("2006-01-02")}, "|")
}

// GetAdjusted retrieves a cached adjusted series if available
func (m *MemoryCache) GetAdjusted(source, code string, startDate, endDate time.Time) ([]models.AdjustedEodPrice, bool) {
	v, ok := m.c.Get(adjustedKey(source, code, startDate, endDate))
	if !ok {
		return nil, false
	}
	prices, ok := v.([]models.AdjustedEodPrice)
	if !ok {
		return nil, false
	}
	return slices.Clone(prices), true
}

// SetAdjusted caches an adjusted series until the next market update
func (m *MemoryCache) SetAdjusted(source, code string, startDate, endDate time.Time, prices []models.AdjustedEodPrice) {
	now := m.now()
	ttl := util.NextMarketDate(now).Sub(now)
	if ttl <= 0 {
		ttl = time.Minute
	}
	m.c.Set(adjustedKey(source, code, startDate, endDate), slices.Clone(prices), ttl)
}

// InvalidateCode drops every cached series for code
func (m *MemoryCache) InvalidateCode(source, code string) {
	prefix := source + "|" + code + "|"
	for k := range m.c.Items() {
		if strings.HasPrefix(k, prefix) {
			m.c.Delete(k)
		}
	}
}

// Len returns the number of live entries
func (m *MemoryCache) Len() int {
	return m.c.ItemCount()
}

// Clear removes all cached data
func (m *MemoryCache) Clear() {
	m.c.Flush()
}

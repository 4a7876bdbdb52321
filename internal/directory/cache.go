package directory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tapfinder/tapstations/internal/models"
)

// Lister fetches one full set of raw station records on demand. It is the
// request/response counterpart of Stream, used by short-lived entrypoints
// that cannot hold a subscription open.
type Lister interface {
	ListStations(ctx context.Context) ([]models.RawRecord, error)
}

// Cache holds a filtered station list with a TTL.
type Cache struct {
	mu          sync.RWMutex
	stations    []models.Station
	lastUpdated time.Time
	ttl         time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		stations:    make([]models.Station, 0),
		lastUpdated: time.Time{}, // zero time forces the first fetch
		ttl:         ttl,
	}
}

func (c *Cache) Get() []models.Station {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if time.Since(c.lastUpdated) > c.ttl {
		return nil
	}
	return c.stations
}

func (c *Cache) Set(stations []models.Station) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stations = stations
	c.lastUpdated = time.Now()
}

// CachedProvider serves the filtered directory from a TTL cache, refetching
// from the Lister on expiry. It applies the same validity filter as Sync.
type CachedProvider struct {
	lister Lister
	cache  *Cache
}

func NewCachedProvider(lister Lister, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		lister: lister,
		cache:  NewCache(ttl),
	}
}

func (p *CachedProvider) Stations(ctx context.Context) ([]models.Station, error) {
	if cached := p.cache.Get(); cached != nil {
		log.Debug().Msg("Cache HIT for station list")
		return cached, nil
	}
	log.Debug().Msg("Cache MISS for station list, fetching from store")

	records, err := p.lister.ListStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stations: %w", err)
	}

	stations := make([]models.Station, 0, len(records))
	for _, raw := range records {
		station, err := models.FromRaw(raw)
		if err != nil {
			log.Debug().Err(err).Msg("Dropping invalid station record")
			continue
		}
		stations = append(stations, station)
	}

	p.cache.Set(stations)
	return stations, nil
}

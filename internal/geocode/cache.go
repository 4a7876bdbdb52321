package geocode

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tapfinder/tapstations/internal/metrics"
	"github.com/tapfinder/tapstations/internal/models"
)

// CachedGeocoder fronts a Geocoder with an LRU cache of forward lookups.
// Reverse lookups are not cached; the add-station flow issues them rarely
// and for ever-changing coordinates.
type CachedGeocoder struct {
	inner Geocoder
	cache *lru.Cache[string, []models.Coordinates]
}

func NewCachedGeocoder(inner Geocoder, size int) (*CachedGeocoder, error) {
	cache, err := lru.New[string, []models.Coordinates](size)
	if err != nil {
		return nil, fmt.Errorf("creating geocode LRU cache: %w", err)
	}
	return &CachedGeocoder{inner: inner, cache: cache}, nil
}

func (g *CachedGeocoder) Forward(ctx context.Context, query string) ([]models.Coordinates, error) {
	key := strings.ToLower(strings.TrimSpace(query))

	if coords, ok := g.cache.Get(key); ok {
		metrics.GeocodeLookup("hit")
		return coords, nil
	}
	metrics.GeocodeLookup("miss")

	coords, err := g.inner.Forward(ctx, query)
	if err != nil {
		return nil, err
	}

	g.cache.Add(key, coords)
	return coords, nil
}

func (g *CachedGeocoder) Reverse(ctx context.Context, point models.Coordinates) ([]Place, error) {
	return g.inner.Reverse(ctx, point)
}

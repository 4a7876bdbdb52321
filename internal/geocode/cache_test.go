package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapfinder/tapstations/internal/models"
)

type countingGeocoder struct {
	forwardCalls int
	reverseCalls int
	coords       []models.Coordinates
	err          error
}

func (g *countingGeocoder) Forward(_ context.Context, _ string) ([]models.Coordinates, error) {
	g.forwardCalls++
	return g.coords, g.err
}

func (g *countingGeocoder) Reverse(_ context.Context, _ models.Coordinates) ([]Place, error) {
	g.reverseCalls++
	return nil, g.err
}

func TestCachedGeocoderHit(t *testing.T) {
	inner := &countingGeocoder{coords: []models.Coordinates{{Latitude: -37.81, Longitude: 144.96}}}
	cached, err := NewCachedGeocoder(inner, 10)
	require.NoError(t, err)

	first, err := cached.Forward(context.Background(), "Melbourne")
	require.NoError(t, err)
	second, err := cached.Forward(context.Background(), "Melbourne")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.forwardCalls)
}

func TestCachedGeocoderKeyNormalization(t *testing.T) {
	inner := &countingGeocoder{coords: []models.Coordinates{{Latitude: 1, Longitude: 2}}}
	cached, err := NewCachedGeocoder(inner, 10)
	require.NoError(t, err)

	_, err = cached.Forward(context.Background(), "Melbourne")
	require.NoError(t, err)
	_, err = cached.Forward(context.Background(), "  MELBOURNE  ")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.forwardCalls)
}

func TestCachedGeocoderErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("service down")}
	cached, err := NewCachedGeocoder(inner, 10)
	require.NoError(t, err)

	_, err = cached.Forward(context.Background(), "Melbourne")
	require.Error(t, err)

	inner.err = nil
	inner.coords = []models.Coordinates{{Latitude: 1, Longitude: 2}}
	coords, err := cached.Forward(context.Background(), "Melbourne")
	require.NoError(t, err)
	assert.Len(t, coords, 1)
	assert.Equal(t, 2, inner.forwardCalls)
}

func TestCachedGeocoderReversePassesThrough(t *testing.T) {
	inner := &countingGeocoder{}
	cached, err := NewCachedGeocoder(inner, 10)
	require.NoError(t, err)

	_, err = cached.Reverse(context.Background(), models.Coordinates{})
	require.NoError(t, err)
	_, err = cached.Reverse(context.Background(), models.Coordinates{})
	require.NoError(t, err)

	assert.Equal(t, 2, inner.reverseCalls)
}

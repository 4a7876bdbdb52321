// Package search resolves free-text location queries to a ranked subset of
// the station directory.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tapfinder/tapstations/internal/geo"
	"github.com/tapfinder/tapstations/internal/geocode"
	"github.com/tapfinder/tapstations/internal/metrics"
	"github.com/tapfinder/tapstations/internal/models"
	"github.com/tapfinder/tapstations/internal/notify"
)

// DefaultLimit is how many nearest stations a search keeps.
const DefaultLimit = 2

// ErrSuperseded marks a completion that lost to a newer query. Its result
// was discarded and the displayed set belongs to the newer search.
var ErrSuperseded = errors.New("search superseded by a newer query")

// Forwarder is the slice of the geocoding collaborator search needs.
type Forwarder interface {
	Forward(ctx context.Context, query string) ([]models.Coordinates, error)
}

// Directory supplies the current full station directory.
type Directory interface {
	Stations() []models.Station
}

// SliceDirectory adapts a fixed station list to the Directory interface.
type SliceDirectory []models.Station

func (d SliceDirectory) Stations() []models.Station { return d }

// LocationProvider supplies the device's last known position, if any.
type LocationProvider interface {
	GetCurrentPosition(ctx context.Context) (*models.Coordinates, error)
}

// Result is the outcome of one search: the set to display and the viewport
// to show it in. Narrowed is false when the full directory is displayed.
type Result struct {
	Stations []models.RankedStation
	Region   geo.Region
	Narrowed bool
}

// Searcher turns queries into ranked station subsets. Each invocation gets a
// monotonic sequence number; a completion whose number is no longer the
// latest is discarded, so a slow stale geocode can never overwrite a newer
// result.
type Searcher struct {
	geocoder  Forwarder
	directory Directory
	location  LocationProvider
	notifier  notify.Notifier
	limit     int

	mu        sync.Mutex
	seq       uint64
	searching bool
	displayed []models.RankedStation
	narrowed  bool
}

func NewSearcher(geocoder Forwarder, directory Directory, location LocationProvider, notifier notify.Notifier) *Searcher {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Searcher{
		geocoder:  geocoder,
		directory: directory,
		location:  location,
		notifier:  notifier,
		limit:     DefaultLimit,
	}
}

// Searching reports whether a search is in flight, so callers can disable
// repeated submission.
func (s *Searcher) Searching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searching
}

// Displayed returns the current displayed set: the latest ranked result, or
// the full directory (with zero distances) when no search narrows the view.
func (s *Searcher) Displayed() []models.RankedStation {
	s.mu.Lock()
	narrowed := s.narrowed
	displayed := s.displayed
	s.mu.Unlock()

	if narrowed {
		out := make([]models.RankedStation, len(displayed))
		copy(out, displayed)
		return out
	}
	return fullDirectory(s.directory.Stations())
}

// Search resolves query against the directory. An empty query resets the
// view; a coordinate-looking query skips geocoding and ranks against the
// parsed point directly.
func (s *Searcher) Search(ctx context.Context, query string) (Result, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return s.reset(ctx), nil
	}

	if point, ok := geocode.ParseCoordinateText(trimmed); ok {
		result := s.applyRanked(s.currentSeq(), point)
		metrics.SearchCompleted(metrics.SearchResultRanked)
		return result, nil
	}

	seq := s.begin()
	defer s.finish(seq)

	coords, err := s.geocoder.Forward(ctx, trimmed)

	if !s.isLatest(seq) {
		log.Debug().Uint64("seq", seq).Str("query", trimmed).Msg("Discarding superseded search completion")
		return Result{}, ErrSuperseded
	}

	if err != nil {
		log.Error().Err(err).Str("query", trimmed).Msg("Search geocoding failed")
		s.notifier.Notify(notify.LevelError, "Search Error", fmt.Sprintf("Failed to perform search: %v", err))
		metrics.SearchCompleted(metrics.SearchResultError)
		return s.fallback(), nil
	}

	if len(coords) == 0 {
		s.notifier.Notify(notify.LevelWarn, "Search Error",
			"Could not find location for the entered address. Showing all stations.")
		metrics.SearchCompleted(metrics.SearchResultNotFound)
		return s.fallback(), nil
	}

	result := s.applyRanked(seq, coords[0])
	metrics.SearchCompleted(metrics.SearchResultRanked)
	return result, nil
}

// reset restores the full directory and recenters on the device position,
// falling back to the fixed region. No geocoding call is made.
func (s *Searcher) reset(ctx context.Context) Result {
	s.mu.Lock()
	s.narrowed = false
	s.displayed = nil
	s.mu.Unlock()

	region := geo.FallbackRegion
	if s.location != nil {
		if position, err := s.location.GetCurrentPosition(ctx); err == nil && position != nil {
			region = geo.RegionAround(*position)
		}
	}

	metrics.SearchCompleted(metrics.SearchResultReset)
	return Result{
		Stations: fullDirectory(s.directory.Stations()),
		Region:   region,
		Narrowed: false,
	}
}

// fallback shows the full directory after a failed or empty geocode, leaving
// no stale ranked subset behind.
func (s *Searcher) fallback() Result {
	s.mu.Lock()
	s.narrowed = false
	s.displayed = nil
	s.mu.Unlock()

	stations := fullDirectory(s.directory.Stations())
	coords := make([]models.Coordinates, len(stations))
	for i, st := range stations {
		coords[i] = st.Coordinates()
	}

	return Result{
		Stations: stations,
		Region:   geo.FitRegion(coords),
		Narrowed: false,
	}
}

func (s *Searcher) applyRanked(seq uint64, origin models.Coordinates) Result {
	ranked := geo.Rank(s.directory.Stations(), origin, s.limit)

	region := geo.RegionAround(origin)
	if len(ranked) > 0 {
		coords := make([]models.Coordinates, len(ranked))
		for i, r := range ranked {
			coords[i] = r.Coordinates()
		}
		region = geo.FitRegion(coords)
	}

	s.mu.Lock()
	if seq == s.seq {
		s.displayed = ranked
		s.narrowed = true
	}
	s.mu.Unlock()

	return Result{Stations: ranked, Region: region, Narrowed: true}
}

func (s *Searcher) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.searching = true
	return s.seq
}

// finish clears the busy flag, but only if no newer search took over.
func (s *Searcher) finish(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == s.seq {
		s.searching = false
	}
}

func (s *Searcher) isLatest(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.seq
}

func (s *Searcher) currentSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

func fullDirectory(stations []models.Station) []models.RankedStation {
	out := make([]models.RankedStation, len(stations))
	for i, station := range stations {
		out[i] = models.RankedStation{Station: station}
	}
	return out
}

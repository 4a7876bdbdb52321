package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tapfinder/tapstations/internal/geo"
	"github.com/tapfinder/tapstations/internal/metrics"
	"github.com/tapfinder/tapstations/internal/models"
	"github.com/tapfinder/tapstations/internal/notify"
)

// Sync maintains a live, validity-filtered mirror of the remote stations
// collection. The cached set is replaced wholesale on every snapshot and is
// only ever mutated here; readers get copies.
type Sync struct {
	stream   Stream
	notifier notify.Notifier

	mu       sync.RWMutex
	stations []models.Station
	index    *Index
	sub      Subscription
	closed   bool
}

func NewSync(stream Stream, notifier notify.Notifier) *Sync {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Sync{
		stream:   stream,
		notifier: notifier,
		index:    NewIndex(),
	}
}

// Start subscribes to the remote collection. Updates flow in until Close.
func (s *Sync) Start(ctx context.Context) error {
	sub, err := s.stream.Subscribe(ctx, s.applySnapshot, s.handleStreamError)
	if err != nil {
		s.notifier.Notify(notify.LevelError, "Error", fmt.Sprintf("Failed to load water stations: %v", err))
		return fmt.Errorf("subscribing to station directory: %w", err)
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	return nil
}

// applySnapshot rebuilds the cached set from a full snapshot, dropping
// records that fail the validity filter. Rejects are logged, never surfaced.
func (s *Sync) applySnapshot(snapshot Snapshot) {
	valid := make([]models.Station, 0, len(snapshot.Records))
	dropped := 0
	for _, raw := range snapshot.Records {
		station, err := models.FromRaw(raw)
		if err != nil {
			dropped++
			log.Debug().Err(err).Msg("Dropping invalid station record")
			continue
		}
		valid = append(valid, station)
	}

	index := NewIndex()
	index.Insert(valid)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stations = valid
	s.index = index

	metrics.SnapshotApplied()
	metrics.RecordsDropped(dropped)
	log.Debug().
		Int("station_count", len(valid)).
		Int("dropped", dropped).
		Msg("Applied station directory snapshot")
}

// handleStreamError surfaces the failure and keeps the previous cache.
func (s *Sync) handleStreamError(err error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return
	}

	log.Error().Err(err).Msg("Station directory subscription error")
	s.notifier.Notify(notify.LevelError, "Error", fmt.Sprintf("Failed to load water stations: %v", err))
}

// Stations returns a copy of the current directory.
func (s *Sync) Stations() []models.Station {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Station, len(s.stations))
	copy(out, s.stations)
	return out
}

// StationsInRegion returns the cached stations inside the bounding box, for
// map viewport rendering.
func (s *Sync) StationsInRegion(box geo.BoundingBox) []models.Station {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Search(box)
}

// Close tears the subscription down. No updates are applied afterwards.
func (s *Sync) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	sub := s.sub
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tapfinder/tapstations/internal/directory"
)

const defaultPollInterval = 15 * time.Second

// SnapshotSource implements the remote-directory snapshot stream on top of
// the station table: each poll delivers the complete record list, so every
// notification fully replaces the previous cached set.
type SnapshotSource struct {
	lister   directory.Lister
	interval time.Duration
}

func NewSnapshotSource(lister directory.Lister, interval time.Duration) *SnapshotSource {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &SnapshotSource{lister: lister, interval: interval}
}

type pollSubscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *pollSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Subscribe delivers an initial snapshot immediately, then one per interval,
// until the subscription is cancelled. Handlers are called from a single
// goroutine, so snapshots arrive in delivery order. The initial fetch is
// synchronous: an unreachable store fails the subscription itself.
func (s *SnapshotSource) Subscribe(ctx context.Context, onNext func(directory.Snapshot), onError func(error)) (directory.Subscription, error) {
	records, err := s.lister.ListStations(ctx)
	if err != nil {
		return nil, err
	}
	onNext(directory.Snapshot{Records: records})

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sub := &pollSubscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				records, err := s.lister.ListStations(pollCtx)
				if err != nil {
					if pollCtx.Err() != nil {
						return
					}
					log.Error().Err(err).Msg("Station snapshot poll failed")
					onError(err)
					continue
				}
				onNext(directory.Snapshot{Records: records})
			}
		}
	}()

	return sub, nil
}

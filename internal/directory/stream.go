package directory

import (
	"context"

	"github.com/tapfinder/tapstations/internal/models"
)

// Snapshot is one full delivery from the remote store: a complete ordered
// list of raw, untrusted records. Each snapshot replaces the previous one
// wholesale; there is no partial-update merging.
type Snapshot struct {
	Records []models.RawRecord
}

// Stream delivers snapshots of the remote stations collection until the
// subscription is cancelled. Implementations must stop calling the handlers
// once Unsubscribe returns.
type Stream interface {
	Subscribe(ctx context.Context, onNext func(Snapshot), onError func(error)) (Subscription, error)
}

// Subscription is a handle to an active snapshot stream.
type Subscription interface {
	Unsubscribe()
}

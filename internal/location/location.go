// Package location abstracts the device-position collaborator that supplies
// the recenter-on-empty-query coordinate.
package location

import (
	"context"
	"errors"

	"github.com/tapfinder/tapstations/internal/models"
)

// ErrUnavailable means no position is known; callers fall back to the fixed
// region.
var ErrUnavailable = errors.New("location: position unavailable")

// Provider supplies the device's last known position.
type Provider interface {
	GetCurrentPosition(ctx context.Context) (*models.Coordinates, error)
}

// Static always reports the same position. Headless entrypoints use it for
// a configured home coordinate; tests use it directly.
type Static struct {
	Position *models.Coordinates
}

func (s Static) GetCurrentPosition(context.Context) (*models.Coordinates, error) {
	if s.Position == nil {
		return nil, ErrUnavailable
	}
	return s.Position, nil
}

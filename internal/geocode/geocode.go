// Package geocode converts between free-text addresses and coordinates via
// an external geocoding service.
package geocode

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/tapfinder/tapstations/internal/models"
)

// Place is one reverse-geocode result, split into address parts.
type Place struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Geocoder resolves text to coordinates and back. Forward returns results in
// best-match-first order; callers use the first.
type Geocoder interface {
	Forward(ctx context.Context, query string) ([]models.Coordinates, error)
	Reverse(ctx context.Context, point models.Coordinates) ([]Place, error)
}

// FormatAddress joins the non-blank parts of a place with ", ".
func FormatAddress(p Place) string {
	parts := []string{p.Name, p.Street, p.City, p.Region, p.PostalCode, p.Country}
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}

// SuggestName proposes a station name from a reverse-geocode result.
func SuggestName(places []Place) string {
	const fallback = "New Water Station"
	if len(places) == 0 {
		return fallback
	}
	if places[0].Name != "" {
		return places[0].Name
	}
	if places[0].Street != "" {
		return places[0].Street
	}
	return fallback
}

// ParseCoordinateText reports whether the query looks like a raw coordinate
// pair: both comma-separated tokens parse as finite numbers. Such queries
// suppress the geocoding call and are used as-is.
func ParseCoordinateText(query string) (models.Coordinates, bool) {
	tokens := strings.Split(query, ",")
	if len(tokens) < 2 {
		return models.Coordinates{}, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(tokens[0]), 64)
	if err != nil || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return models.Coordinates{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(tokens[1]), 64)
	if err != nil || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return models.Coordinates{}, false
	}

	return models.Coordinates{Latitude: lat, Longitude: lon}, true
}

package geo

import "github.com/tapfinder/tapstations/internal/models"

// Region is a map viewport: a center point plus the visible span in degrees.
type Region struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitudeDelta"`
	LongitudeDelta float64 `json:"longitudeDelta"`
}

const defaultDelta = 0.01

// FallbackRegion centers on the Melbourne CBD. Used when no device location
// is available.
var FallbackRegion = Region{
	Latitude:       -37.814,
	Longitude:      144.963,
	LatitudeDelta:  defaultDelta,
	LongitudeDelta: defaultDelta,
}

// RegionAround returns a default-span viewport centered on c.
func RegionAround(c models.Coordinates) Region {
	return Region{
		Latitude:       c.Latitude,
		Longitude:      c.Longitude,
		LatitudeDelta:  defaultDelta,
		LongitudeDelta: defaultDelta,
	}
}

// FitRegion returns the smallest padded viewport containing every coordinate.
// An empty input yields the fallback region.
func FitRegion(coords []models.Coordinates) Region {
	if len(coords) == 0 {
		return FallbackRegion
	}

	minLat, maxLat := coords[0].Latitude, coords[0].Latitude
	minLon, maxLon := coords[0].Longitude, coords[0].Longitude
	for _, c := range coords[1:] {
		if c.Latitude < minLat {
			minLat = c.Latitude
		}
		if c.Latitude > maxLat {
			maxLat = c.Latitude
		}
		if c.Longitude < minLon {
			minLon = c.Longitude
		}
		if c.Longitude > maxLon {
			maxLon = c.Longitude
		}
	}

	// Pad 20% on each side so markers don't sit on the viewport edge.
	latDelta := (maxLat-minLat)*1.4 + defaultDelta
	lonDelta := (maxLon-minLon)*1.4 + defaultDelta

	return Region{
		Latitude:       (minLat + maxLat) / 2,
		Longitude:      (minLon + maxLon) / 2,
		LatitudeDelta:  latDelta,
		LongitudeDelta: lonDelta,
	}
}

// BoundingBox is a rectangular area defined by its bottom-left and top-right
// corners, used for viewport queries against the spatial index.
type BoundingBox struct {
	BottomLeft models.Coordinates
	TopRight   models.Coordinates
}

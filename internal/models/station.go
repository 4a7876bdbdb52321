package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Station is a validated drinking-water station record.
type Station struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address,omitempty"`
	Description   string    `json:"description,omitempty"`
	WaterType     string    `json:"waterType,omitempty"`
	Accessibility string    `json:"accessibility,omitempty"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	ImageURL      *string   `json:"imageUrl,omitempty"`
	AddedBy       *string   `json:"addedBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Coordinates returns the station's position.
func (s Station) Coordinates() Coordinates {
	return Coordinates{Latitude: s.Latitude, Longitude: s.Longitude}
}

// RankedStation is a Station augmented with the distance to a query point.
// It exists only for the duration of a search result and is never persisted.
type RankedStation struct {
	Station
	DistanceKm float64 `json:"distanceKm"`
}

// RawRecord is an untrusted station document as delivered by the remote
// store. Shape is arbitrary until it passes FromRaw.
type RawRecord map[string]any

// FromRaw validates an untrusted record and converts it into a Station.
// A record is valid only if id and name are non-blank strings and
// latitude/longitude are finite numbers; anything else is rejected.
func FromRaw(raw RawRecord) (Station, error) {
	id, ok := stringField(raw, "id")
	if !ok || id == "" {
		return Station{}, fmt.Errorf("record missing id")
	}

	name, ok := stringField(raw, "name")
	if !ok || strings.TrimSpace(name) == "" {
		return Station{}, fmt.Errorf("record %q: missing or blank name", id)
	}

	lat, ok := numberField(raw, "latitude")
	if !ok {
		return Station{}, fmt.Errorf("record %q: missing or non-numeric latitude", id)
	}
	lon, ok := numberField(raw, "longitude")
	if !ok {
		return Station{}, fmt.Errorf("record %q: missing or non-numeric longitude", id)
	}

	station := Station{
		ID:        id,
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
	}

	if v, ok := stringField(raw, "address"); ok {
		station.Address = v
	}
	if v, ok := stringField(raw, "description"); ok {
		station.Description = v
	}
	if v, ok := stringField(raw, "waterType"); ok {
		station.WaterType = v
	}
	if v, ok := stringField(raw, "accessibility"); ok {
		station.Accessibility = v
	}
	if v, ok := stringField(raw, "imageUrl"); ok && v != "" {
		station.ImageURL = &v
	}
	if v, ok := stringField(raw, "addedBy"); ok && v != "" {
		station.AddedBy = &v
	}
	if t, ok := timeField(raw, "createdAt"); ok {
		station.CreatedAt = t
	}

	return station, nil
}

func stringField(raw RawRecord, key string) (string, bool) {
	v, ok := raw[key].(string)
	return v, ok
}

func numberField(raw RawRecord, key string) (float64, bool) {
	switch v := raw[key].(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func timeField(raw RawRecord, key string) (time.Time, bool) {
	switch v := raw[key].(type) {
	case time.Time:
		return v, true
	case string:
		t, err := time.Parse(time.RFC3339, v)
		return t, err == nil
	case float64:
		return time.Unix(int64(v), 0).UTC(), true
	case int64:
		return time.Unix(v, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRaw(t *testing.T) {
	tests := []struct {
		name    string
		raw     RawRecord
		wantErr bool
	}{
		{
			name: "valid record",
			raw: RawRecord{
				"id":        "a",
				"name":      "A",
				"latitude":  -37.80,
				"longitude": 144.96,
			},
			wantErr: false,
		},
		{
			name: "missing id",
			raw: RawRecord{
				"name":      "A",
				"latitude":  -37.80,
				"longitude": 144.96,
			},
			wantErr: true,
		},
		{
			name: "empty id",
			raw: RawRecord{
				"id":        "",
				"name":      "A",
				"latitude":  -37.80,
				"longitude": 144.96,
			},
			wantErr: true,
		},
		{
			name: "blank name",
			raw: RawRecord{
				"id":        "c",
				"name":      "   ",
				"latitude":  -37.81,
				"longitude": 144.95,
			},
			wantErr: true,
		},
		{
			name: "missing latitude",
			raw: RawRecord{
				"id":        "d",
				"name":      "D",
				"longitude": 144.95,
			},
			wantErr: true,
		},
		{
			name: "latitude of wrong type",
			raw: RawRecord{
				"id":        "e",
				"name":      "E",
				"latitude":  "-37.81",
				"longitude": 144.95,
			},
			wantErr: true,
		},
		{
			name: "non-finite longitude",
			raw: RawRecord{
				"id":        "f",
				"name":      "F",
				"latitude":  -37.81,
				"longitude": math.Inf(1),
			},
			wantErr: true,
		},
		{
			name: "integer coordinates accepted",
			raw: RawRecord{
				"id":        "g",
				"name":      "G",
				"latitude":  -37,
				"longitude": 144,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			station, err := FromRaw(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, station.ID)
			assert.NotEmpty(t, station.Name)
		})
	}
}

func TestFromRawOptionalFields(t *testing.T) {
	created := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	raw := RawRecord{
		"id":            "a",
		"name":          "Carlton Gardens Fountain",
		"address":       "1 Nicholson St, Carlton",
		"description":   "Near the museum entrance",
		"waterType":     "Tap",
		"accessibility": "Wheelchair accessible",
		"latitude":      -37.8047,
		"longitude":     144.9717,
		"imageUrl":      "https://example.com/img.jpg",
		"addedBy":       "user-1",
		"createdAt":     created.Format(time.RFC3339),
	}

	station, err := FromRaw(raw)
	require.NoError(t, err)

	assert.Equal(t, "Carlton Gardens Fountain", station.Name)
	assert.Equal(t, "1 Nicholson St, Carlton", station.Address)
	assert.Equal(t, "Tap", station.WaterType)
	require.NotNil(t, station.ImageURL)
	assert.Equal(t, "https://example.com/img.jpg", *station.ImageURL)
	require.NotNil(t, station.AddedBy)
	assert.Equal(t, "user-1", *station.AddedBy)
	assert.True(t, created.Equal(station.CreatedAt))
}

func TestFromRawIgnoresUnknownFields(t *testing.T) {
	raw := RawRecord{
		"id":        "a",
		"name":      "A",
		"latitude":  1.0,
		"longitude": 2.0,
		"rogue":     map[string]any{"nested": true},
	}

	station, err := FromRaw(raw)
	require.NoError(t, err)
	assert.Equal(t, "a", station.ID)
}

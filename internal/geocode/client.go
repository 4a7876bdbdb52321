package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/tapfinder/tapstations/internal/models"
	"github.com/tapfinder/tapstations/pkg/http/client"
)

// HTTPGeocoder talks to a Nominatim-compatible geocoding API.
type HTTPGeocoder struct {
	httpClient *client.Client
	maxResults int
}

func NewHTTPGeocoder(httpClient *client.Client) *HTTPGeocoder {
	return &HTTPGeocoder{
		httpClient: httpClient,
		maxResults: 5,
	}
}

type forwardResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type reverseResult struct {
	Address struct {
		Amenity  string `json:"amenity"`
		Road     string `json:"road"`
		City     string `json:"city"`
		Town     string `json:"town"`
		State    string `json:"state"`
		Postcode string `json:"postcode"`
		Country  string `json:"country"`
	} `json:"address"`
}

func (g *HTTPGeocoder) Forward(ctx context.Context, query string) ([]models.Coordinates, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(g.maxResults))

	resp, err := g.httpClient.GetWithParams(ctx, "/search", params)
	if err != nil {
		return nil, fmt.Errorf("forward geocoding %q: %w", query, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forward geocoding %q: unexpected status %d", query, resp.StatusCode)
	}

	var results []forwardResult
	if err := json.Unmarshal(resp.Body, &results); err != nil {
		return nil, fmt.Errorf("decoding geocode response: %w", err)
	}

	coords := make([]models.Coordinates, 0, len(results))
	for _, r := range results {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			log.Debug().Str("lat", r.Lat).Str("lon", r.Lon).Msg("Skipping malformed geocode result")
			continue
		}
		coords = append(coords, models.Coordinates{Latitude: lat, Longitude: lon})
	}

	return coords, nil
}

func (g *HTTPGeocoder) Reverse(ctx context.Context, point models.Coordinates) ([]Place, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(point.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(point.Longitude, 'f', -1, 64))
	params.Set("format", "json")

	resp, err := g.httpClient.GetWithParams(ctx, "/reverse", params)
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocoding: unexpected status %d", resp.StatusCode)
	}

	var result reverseResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decoding reverse geocode response: %w", err)
	}

	city := result.Address.City
	if city == "" {
		city = result.Address.Town
	}

	place := Place{
		Name:       result.Address.Amenity,
		Street:     result.Address.Road,
		City:       city,
		Region:     result.Address.State,
		PostalCode: result.Address.Postcode,
		Country:    result.Address.Country,
	}
	if FormatAddress(place) == "" {
		return nil, nil
	}

	return []Place{place}, nil
}

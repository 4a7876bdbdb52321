package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"github.com/tapfinder/tapstations/internal/api"
	"github.com/tapfinder/tapstations/internal/geo"
	"github.com/tapfinder/tapstations/internal/models"
	"github.com/tapfinder/tapstations/internal/notify"
	"github.com/tapfinder/tapstations/internal/search"
)

// DirectoryProvider yields the filtered station directory on demand.
type DirectoryProvider interface {
	Stations(ctx context.Context) ([]models.Station, error)
}

// StationsHandler answers station lookups: by id, by coordinates, or by
// free-text search query.
type StationsHandler struct {
	provider DirectoryProvider
	geocoder search.Forwarder
	notifier notify.Notifier
}

func NewStationsHandler(provider DirectoryProvider, geocoder search.Forwarder, notifier notify.Notifier) *StationsHandler {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &StationsHandler{
		provider: provider,
		geocoder: geocoder,
		notifier: notifier,
	}
}

func (h *StationsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters

	stations, err := h.provider.Stations(ctx)
	if err != nil {
		return api.Error("Error loading stations", http.StatusInternalServerError)
	}

	if stationID, ok := params["stationId"]; ok {
		for _, station := range stations {
			if station.ID == stationID {
				region := geo.RegionAround(station.Coordinates())
				return api.Success(api.NewStationsResponse(
					[]models.RankedStation{{Station: station}}, &region))
			}
		}
		return api.Error("Station not found", http.StatusNotFound)
	}

	if query, ok := params["q"]; ok {
		searcher := search.NewSearcher(h.geocoder, search.SliceDirectory(stations), nil, h.notifier)
		result, err := searcher.Search(ctx, query)
		if err != nil {
			return api.Error("Error performing search", http.StatusInternalServerError)
		}
		return api.Success(api.NewStationsResponse(result.Stations, &result.Region))
	}

	lat, lon, hasCoords, err := api.ParseCoordinates(params)
	if err != nil {
		var invalidCoordErr api.InvalidCoordinatesError
		if errors.As(err, &invalidCoordErr) {
			return api.Error(err.Error(), http.StatusBadRequest)
		}
		return api.Error("Invalid parameters", http.StatusBadRequest)
	}

	if !hasCoords {
		region := geo.FallbackRegion
		return api.Success(api.NewStationsResponse(fullSet(stations), &region))
	}

	limit := search.DefaultLimit
	if limitStr, ok := params["limit"]; ok {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil {
			limit = parsedLimit
		}
	}

	origin := models.Coordinates{Latitude: lat, Longitude: lon}
	ranked := geo.Rank(stations, origin, limit)
	region := geo.RegionAround(origin)
	return api.Success(api.NewStationsResponse(ranked, &region))
}

func fullSet(stations []models.Station) []models.RankedStation {
	out := make([]models.RankedStation, len(stations))
	for i, station := range stations {
		out[i] = models.RankedStation{Station: station}
	}
	return out
}

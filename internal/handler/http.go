package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/tapfinder/tapstations/internal/auth"
	"github.com/tapfinder/tapstations/internal/badge"
	"github.com/tapfinder/tapstations/internal/blob"
	"github.com/tapfinder/tapstations/internal/directory"
	"github.com/tapfinder/tapstations/internal/geo"
	"github.com/tapfinder/tapstations/internal/geocode"
	"github.com/tapfinder/tapstations/internal/httpx"
	"github.com/tapfinder/tapstations/internal/models"
	"github.com/tapfinder/tapstations/internal/review"
	"github.com/tapfinder/tapstations/internal/search"
	"github.com/tapfinder/tapstations/internal/store"
)

// HTTP wires the long-lived directory sync and searcher into a chi router
// for the local server.
type HTTP struct {
	sync     *directory.Sync
	searcher *search.Searcher
	stations *store.StationStore
	reviews  *store.ReviewStore
	blobs    blob.Store
	geocoder geocode.Geocoder
	authn    auth.Authenticator
}

func NewHTTP(
	sync *directory.Sync,
	searcher *search.Searcher,
	stations *store.StationStore,
	reviews *store.ReviewStore,
	blobs blob.Store,
	geocoder geocode.Geocoder,
	authn auth.Authenticator,
) *HTTP {
	return &HTTP{
		sync:     sync,
		searcher: searcher,
		stations: stations,
		reviews:  reviews,
		blobs:    blobs,
		geocoder: geocoder,
		authn:    authn,
	}
}

// Routes mounts every API endpoint.
func (h *HTTP) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/stations", h.listStations)
	r.Get("/stations/search", h.searchStations)
	r.Post("/stations", h.addStation)
	r.Delete("/stations/{stationID}", h.deleteStation)
	r.Get("/stations/{stationID}/reviews", h.listReviews)
	r.Post("/stations/{stationID}/reviews", h.addReview)
	r.Get("/geocode/reverse", h.reverseGeocode)
	r.Get("/badges", h.listBadges)

	return r
}

// listStations returns the displayed set, or the stations inside a viewport
// when the four bounding-box parameters are present.
func (h *HTTP) listStations(w http.ResponseWriter, r *http.Request) {
	if box, ok := parseBoundingBox(r); ok {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"stations": h.sync.StationsInRegion(box),
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"stations":  h.searcher.Displayed(),
		"searching": h.searcher.Searching(),
	})
}

func (h *HTTP) searchStations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	result, err := h.searcher.Search(r.Context(), query)
	if errors.Is(err, search.ErrSuperseded) {
		httpx.Error(w, http.StatusConflict, "superseded by a newer search")
		return
	}
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "search failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"stations": result.Stations,
		"region":   result.Region,
		"narrowed": result.Narrowed,
	})
}

type addStationRequest struct {
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Description   string  `json:"description"`
	WaterType     string  `json:"waterType"`
	Accessibility string  `json:"accessibility"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	ImageBase64   string  `json:"imageBase64,omitempty"`
	ImageType     string  `json:"imageType,omitempty"`
}

func (h *HTTP) addStation(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req addStationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var imageURL *string
	if req.ImageBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid image encoding")
			return
		}
		url, err := h.blobs.Upload(r.Context(), data, req.ImageType)
		if err != nil {
			log.Error().Err(err).Msg("Station image upload failed")
			httpx.Error(w, http.StatusBadGateway, "could not upload image")
			return
		}
		imageURL = &url
	}

	station, err := h.stations.AddStation(r.Context(), identity, store.AddStationInput{
		Name:          req.Name,
		Address:       req.Address,
		Description:   req.Description,
		WaterType:     req.WaterType,
		Accessibility: req.Accessibility,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		ImageURL:      imageURL,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			httpx.Error(w, http.StatusUnauthorized, "login required")
			return
		}
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, station)
}

func (h *HTTP) deleteStation(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	stationID := chi.URLParam(r, "stationID")
	if err := h.stations.DeleteStation(r.Context(), identity, stationID); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "could not delete station")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"deleted": stationID})
}

func (h *HTTP) listReviews(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "stationID")

	reviews, err := h.reviews.ListReviews(r.Context(), stationID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "could not load reviews")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"reviews": reviews,
		"summary": review.Summarize(reviews),
	})
}

type addReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *HTTP) addReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req addReviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stationID := chi.URLParam(r, "stationID")
	created, err := h.reviews.AddReview(r.Context(), identity, stationID, req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			httpx.Error(w, http.StatusUnauthorized, "login required")
			return
		}
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, created)
}

// reverseGeocode serves the add-station flow: coordinates in, a formatted
// address and suggested station name out.
func (h *HTTP) reverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid coordinates")
		return
	}

	places, err := h.geocoder.Reverse(r.Context(), models.Coordinates{Latitude: lat, Longitude: lon})
	if err != nil {
		httpx.Error(w, http.StatusBadGateway, "reverse geocoding failed")
		return
	}
	if len(places) == 0 {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"address":       "",
			"suggestedName": geocode.SuggestName(nil),
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"address":       geocode.FormatAddress(places[0]),
		"suggestedName": geocode.SuggestName(places),
	})
}

// listBadges evaluates the badge catalog for the signed-in user.
// TODO: per-user review counts need a userId index on the reviews table;
// until then only station contributions feed the stats.
func (h *HTTP) listBadges(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	added := 0
	for _, station := range h.sync.Stations() {
		if station.AddedBy != nil && *station.AddedBy == identity.UID {
			added++
		}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"badges": badge.Evaluate(badge.Stats{StationsAdded: added}),
	})
}

func (h *HTTP) requireUser(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity, err := h.authn.CurrentUser(httpx.BearerToken(r))
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "login required")
		return nil, false
	}
	return identity, true
}

func parseBoundingBox(r *http.Request) (geo.BoundingBox, bool) {
	q := r.URL.Query()
	minLat, err1 := strconv.ParseFloat(q.Get("minLat"), 64)
	minLon, err2 := strconv.ParseFloat(q.Get("minLon"), 64)
	maxLat, err3 := strconv.ParseFloat(q.Get("maxLat"), 64)
	maxLon, err4 := strconv.ParseFloat(q.Get("maxLon"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return geo.BoundingBox{}, false
	}

	return geo.BoundingBox{
		BottomLeft: models.Coordinates{Latitude: minLat, Longitude: minLon},
		TopRight:   models.Coordinates{Latitude: maxLat, Longitude: maxLon},
	}, true
}

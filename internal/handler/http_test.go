package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapfinder/tapstations/internal/auth"
	"github.com/tapfinder/tapstations/internal/directory"
	"github.com/tapfinder/tapstations/internal/geocode"
	"github.com/tapfinder/tapstations/internal/models"
	"github.com/tapfinder/tapstations/internal/notify"
	"github.com/tapfinder/tapstations/internal/search"
	"github.com/tapfinder/tapstations/internal/store"
)

var testSecret = []byte("handler-test-secret")

type stubDynamo struct {
	items []map[string]types.AttributeValue
	puts  []*dynamodb.PutItemInput
}

func (s *stubDynamo) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return &dynamodb.ScanOutput{Items: s.items}, nil
}

func (s *stubDynamo) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return &dynamodb.QueryOutput{Items: s.items}, nil
}

func (s *stubDynamo) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	s.puts = append(s.puts, params)
	return &dynamodb.PutItemOutput{}, nil
}

func (s *stubDynamo) DeleteItem(_ context.Context, _ *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return &dynamodb.DeleteItemOutput{}, nil
}

type stubBlobs struct{ url string }

func (b *stubBlobs) Upload(_ context.Context, _ []byte, _ string) (string, error) {
	return b.url, nil
}

type stubGeocoder struct {
	coords []models.Coordinates
	places []geocode.Place
}

func (g *stubGeocoder) Forward(_ context.Context, _ string) ([]models.Coordinates, error) {
	return g.coords, nil
}

func (g *stubGeocoder) Reverse(_ context.Context, _ models.Coordinates) ([]geocode.Place, error) {
	return g.places, nil
}

type staticStream struct {
	records []models.RawRecord
}

type staticSubscription struct{}

func (staticSubscription) Unsubscribe() {}

func (s *staticStream) Subscribe(_ context.Context, onNext func(directory.Snapshot), _ func(error)) (directory.Subscription, error) {
	onNext(directory.Snapshot{Records: s.records})
	return staticSubscription{}, nil
}

func bearerToken(t *testing.T, uid, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return "Bearer " + signed
}

func newTestHTTP(t *testing.T, geocoder *stubGeocoder, dyn *stubDynamo) *HTTP {
	t.Helper()

	stream := &staticStream{records: []models.RawRecord{
		{"id": "a", "name": "Station A", "latitude": -37.8000, "longitude": 144.9500, "addedBy": "user-1"},
		{"id": "b", "name": "Station B", "latitude": -37.8150, "longitude": 144.9650},
		{"id": "c", "name": "Station C", "latitude": -37.9000, "longitude": 145.1000},
	}}
	sync := directory.NewSync(stream, &notify.Recorder{})
	require.NoError(t, sync.Start(context.Background()))
	t.Cleanup(sync.Close)

	searcher := search.NewSearcher(geocoder, sync, nil, &notify.Recorder{})

	h := NewHTTP(
		sync,
		searcher,
		store.NewStationStore(dyn, ""),
		store.NewReviewStore(dyn, ""),
		&stubBlobs{url: "https://bucket.s3.amazonaws.com/station_images/x"},
		geocoder,
		auth.NewJWTAuthenticator(testSecret),
	)
	return h
}

func TestHTTPSearchEndpoint(t *testing.T) {
	geocoder := &stubGeocoder{coords: []models.Coordinates{{Latitude: -37.8140, Longitude: 144.9630}}}
	h := newTestHTTP(t, geocoder, &stubDynamo{})

	req := httptest.NewRequest(http.MethodGet, "/stations/search?q=Melbourne", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Stations []models.RankedStation `json:"stations"`
		Narrowed bool                   `json:"narrowed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Narrowed)
	require.Len(t, body.Stations, 2)
	assert.Equal(t, "b", body.Stations[0].ID)
}

func TestHTTPSearchEmptyQueryResets(t *testing.T) {
	h := newTestHTTP(t, &stubGeocoder{}, &stubDynamo{})

	req := httptest.NewRequest(http.MethodGet, "/stations/search?q=", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Stations []models.RankedStation `json:"stations"`
		Narrowed bool                   `json:"narrowed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Narrowed)
	assert.Len(t, body.Stations, 3)
}

func TestHTTPListStationsViewport(t *testing.T) {
	h := newTestHTTP(t, &stubGeocoder{}, &stubDynamo{})

	req := httptest.NewRequest(http.MethodGet,
		"/stations?minLat=-37.85&minLon=144.90&maxLat=-37.75&maxLon=145.00", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Stations []models.Station `json:"stations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Stations, 2)
}

func TestHTTPAddStationRequiresAuth(t *testing.T) {
	h := newTestHTTP(t, &stubGeocoder{}, &stubDynamo{})

	req := httptest.NewRequest(http.MethodPost, "/stations", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHTTPAddStation(t *testing.T) {
	dyn := &stubDynamo{}
	h := newTestHTTP(t, &stubGeocoder{}, dyn)

	payload := map[string]any{
		"name":          "New Fountain",
		"address":       "Swanston Street, Melbourne",
		"waterType":     "Tap",
		"accessibility": "Public",
		"latitude":      -37.81,
		"longitude":     144.96,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/stations", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, "user-1", "sam@example.com"))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, dyn.puts, 1)

	var created models.Station
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "New Fountain", created.Name)
	require.NotNil(t, created.AddedBy)
	assert.Equal(t, "user-1", *created.AddedBy)
}

func TestHTTPAddReview(t *testing.T) {
	dyn := &stubDynamo{}
	h := newTestHTTP(t, &stubGeocoder{}, dyn)

	req := httptest.NewRequest(http.MethodPost, "/stations/a/reviews",
		bytes.NewBufferString(`{"rating": 5, "comment": "Cold and clean"}`))
	req.Header.Set("Authorization", bearerToken(t, "user-2", ""))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "a", created.StationID)
	assert.Equal(t, "Anonymous", created.UserName)
}

func TestHTTPAddReviewInvalidRating(t *testing.T) {
	h := newTestHTTP(t, &stubGeocoder{}, &stubDynamo{})

	req := httptest.NewRequest(http.MethodPost, "/stations/a/reviews",
		bytes.NewBufferString(`{"rating": 9, "comment": "nope"}`))
	req.Header.Set("Authorization", bearerToken(t, "user-2", ""))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPListReviews(t *testing.T) {
	item, err := attributevalue.MarshalMap(models.Review{
		ID: "r1", StationID: "a", Rating: 4, Comment: "Good",
		CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	h := newTestHTTP(t, &stubGeocoder{}, &stubDynamo{items: []map[string]types.AttributeValue{item}})

	req := httptest.NewRequest(http.MethodGet, "/stations/a/reviews", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Reviews []models.Review `json:"reviews"`
		Summary struct {
			AverageRating float64 `json:"averageRating"`
			TotalReviews  int     `json:"totalReviews"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Reviews, 1)
	assert.Equal(t, 1, body.Summary.TotalReviews)
	assert.InDelta(t, 4.0, body.Summary.AverageRating, 1e-9)
}

func TestHTTPReverseGeocode(t *testing.T) {
	geocoder := &stubGeocoder{places: []geocode.Place{{
		Name:   "Carlton Gardens Fountain",
		Street: "Nicholson Street",
		City:   "Carlton",
	}}}
	h := newTestHTTP(t, geocoder, &stubDynamo{})

	req := httptest.NewRequest(http.MethodGet, "/geocode/reverse?lat=-37.805&lon=144.971", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Carlton Gardens Fountain, Nicholson Street, Carlton", body["address"])
	assert.Equal(t, "Carlton Gardens Fountain", body["suggestedName"])
}

func TestHTTPBadges(t *testing.T) {
	h := newTestHTTP(t, &stubGeocoder{}, &stubDynamo{})

	req := httptest.NewRequest(http.MethodGet, "/badges", nil)
	req.Header.Set("Authorization", bearerToken(t, "user-1", ""))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Badges []struct {
			Name   string `json:"name"`
			Earned bool   `json:"earned"`
		} `json:"badges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Badges, 4)
	assert.Equal(t, "First Contributor", body.Badges[0].Name)
	assert.True(t, body.Badges[0].Earned)
}

// Package store persists stations and reviews in DynamoDB and exposes the
// remote-directory snapshot stream over it.
package store

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tapfinder/tapstations/internal/auth"
	"github.com/tapfinder/tapstations/internal/models"
)

const defaultStationsTable = "water-stations"

// AddStationInput carries the user-supplied fields of a new station. Name,
// address, water type and accessibility are required; coordinates must be
// finite.
type AddStationInput struct {
	Name          string
	Address       string
	Description   string
	WaterType     string
	Accessibility string
	Latitude      float64
	Longitude     float64
	ImageURL      *string
}

func (in AddStationInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("missing required field: name")
	}
	if strings.TrimSpace(in.Address) == "" {
		return fmt.Errorf("missing required field: address")
	}
	if strings.TrimSpace(in.WaterType) == "" {
		return fmt.Errorf("missing required field: waterType")
	}
	if strings.TrimSpace(in.Accessibility) == "" {
		return fmt.Errorf("missing required field: accessibility")
	}
	if math.IsNaN(in.Latitude) || math.IsInf(in.Latitude, 0) ||
		math.IsNaN(in.Longitude) || math.IsInf(in.Longitude, 0) {
		return fmt.Errorf("latitude and longitude must be valid numbers")
	}
	return nil
}

// StationStore reads and writes station documents.
type StationStore struct {
	client DynamoAPI
	table  string
	now    func() time.Time
}

func NewStationStore(client DynamoAPI, table string) *StationStore {
	if table == "" {
		table = defaultStationsTable
	}
	return &StationStore{client: client, table: table, now: time.Now}
}

// ListStations returns every raw station record in the collection. Records
// are untrusted until they pass the directory's validity filter.
func (s *StationStore) ListStations(ctx context.Context) ([]models.RawRecord, error) {
	var records []models.RawRecord
	var startKey map[string]types.AttributeValue

	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning stations table: %w", err)
		}

		for _, item := range out.Items {
			var raw models.RawRecord
			if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
				log.Debug().Err(err).Msg("Skipping undecodable station item")
				continue
			}
			records = append(records, raw)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return records, nil
}

// AddStation validates the input, stamps identity and creation time, and
// writes the new document. Write access requires an authenticated identity.
func (s *StationStore) AddStation(ctx context.Context, identity *auth.Identity, in AddStationInput) (models.Station, error) {
	if identity == nil {
		return models.Station{}, auth.ErrUnauthorized
	}
	if err := in.validate(); err != nil {
		return models.Station{}, err
	}

	station := models.Station{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(in.Name),
		Address:       strings.TrimSpace(in.Address),
		Description:   strings.TrimSpace(in.Description),
		WaterType:     strings.TrimSpace(in.WaterType),
		Accessibility: strings.TrimSpace(in.Accessibility),
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		ImageURL:      in.ImageURL,
		AddedBy:       &identity.UID,
		CreatedAt:     s.now().UTC(),
	}

	item, err := attributevalue.MarshalMap(station)
	if err != nil {
		return models.Station{}, fmt.Errorf("marshaling station: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return models.Station{}, fmt.Errorf("putting station: %w", err)
	}

	log.Info().Str("station_id", station.ID).Str("name", station.Name).Msg("Added water station")
	return station, nil
}

// DeleteStation removes a station document. Requires authentication.
func (s *StationStore) DeleteStation(ctx context.Context, identity *auth.Identity, stationID string) error {
	if identity == nil {
		return auth.ErrUnauthorized
	}
	if stationID == "" {
		return fmt.Errorf("missing station id")
	}

	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: stationID},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting station %s: %w", stationID, err)
	}

	log.Info().Str("station_id", stationID).Msg("Deleted water station")
	return nil
}

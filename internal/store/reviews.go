package store

import (
	"context"
	"fmt"
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

const defaultReviewsTable = "station-reviews"

// ReviewStore persists the per-station reviews subcollection. The table is
// keyed on stationId with createdAt as the sort key, so listing newest-first
// is a single descending query.
type ReviewStore struct {
	client DynamoAPI
	table  string
	now    func() time.Time
}

func NewReviewStore(client DynamoAPI, table string) *ReviewStore {
	if table == "" {
		table = defaultReviewsTable
	}
	return &ReviewStore{client: client, table: table, now: time.Now}
}

// AddReview writes a new review. Rating must be 1-5, the comment non-empty,
// and the caller authenticated. Reviews are never mutated after creation.
func (s *ReviewStore) AddReview(ctx context.Context, identity *auth.Identity, stationID string, rating int, comment string) (models.Review, error) {
	if identity == nil {
		return models.Review{}, auth.ErrUnauthorized
	}
	if stationID == "" {
		return models.Review{}, fmt.Errorf("missing station id")
	}
	if rating < 1 || rating > 5 {
		return models.Review{}, fmt.Errorf("rating must be between 1 and 5")
	}
	if strings.TrimSpace(comment) == "" {
		return models.Review{}, fmt.Errorf("missing review comment")
	}

	review := models.Review{
		ID:        uuid.NewString(),
		StationID: stationID,
		UserID:    identity.UID,
		UserName:  identity.DisplayName(),
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: s.now().UTC(),
	}

	item, err := attributevalue.MarshalMap(review)
	if err != nil {
		return models.Review{}, fmt.Errorf("marshaling review: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return models.Review{}, fmt.Errorf("putting review: %w", err)
	}

	log.Info().
		Str("station_id", stationID).
		Str("review_id", review.ID).
		Int("rating", rating).
		Msg("Added review")
	return review, nil
}

// ListReviews returns a station's reviews newest-first.
func (s *ReviewStore) ListReviews(ctx context.Context, stationID string) ([]models.Review, error) {
	if stationID == "" {
		return nil, fmt.Errorf("missing station id")
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("stationId = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: stationID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("querying reviews for station %s: %w", stationID, err)
	}

	reviews := make([]models.Review, 0, len(out.Items))
	for _, item := range out.Items {
		var review models.Review
		if err := attributevalue.UnmarshalMap(item, &review); err != nil {
			log.Debug().Err(err).Msg("Skipping undecodable review item")
			continue
		}
		reviews = append(reviews, review)
	}

	return reviews, nil
}

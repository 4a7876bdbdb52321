// Package blob stores contributed station images.
package blob

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const imageKeyPrefix = "station_images/"

// S3Client defines the interface for the S3 operations we need.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store is the blob-store collaborator: upload bytes, get back a URL.
type Store interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// S3Store uploads station images to an S3 bucket.
type S3Store struct {
	client S3Client
	bucket string
}

func NewS3Store(client S3Client, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

func (s *S3Store) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if s.bucket == "" {
		return "", fmt.Errorf("empty bucket name")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty image payload")
	}

	key := imageKeyPrefix + uuid.NewString()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading station image: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
	log.Debug().Str("key", key).Int("bytes", len(data)).Msg("Uploaded station image")
	return url, nil
}

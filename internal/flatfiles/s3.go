package flatfiles

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	// DefaultEndpoint is Polygon's S3-compatible flat file host
	DefaultEndpoint = "https://files.polygon.io"
	// DefaultBucket holds every flat file dataset
	DefaultBucket = "flatfiles"

	defaultRegion = "us-east-1"
)

// S3Store reads objects from an S3-compatible endpoint
type S3Store struct {
	client *s3.Client
}

// NewS3Store creates a path-style client for endpoint. Polygon authenticates
// flat files with the account's access key id and its API key as the secret.
func NewS3Store(endpoint, accessKeyID, secretKey string) *S3Store {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := s3.New(s3.Options{
		Region:       defaultRegion,
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider(accessKeyID, secretKey, ""),
	})
	return &S3Store{client: client}
}

// ListObjects returns one page of the bucket, continuing from token
func (s *S3Store) ListObjects(ctx context.Context, bucket, token string) (ListPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if token != "" {
		input.ContinuationToken = aws.String(token)
	}

	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return ListPage{}, fmt.Errorf("failed to list %s: %w", bucket, err)
	}

	page := ListPage{Objects: make([]ObjectInfo, 0, len(out.Contents))}
	for _, obj := range out.Contents {
		page.Objects = append(page.Objects, ObjectInfo{
			Key:          aws.ToString(obj.Key),
			ETag:         aws.ToString(obj.ETag),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
		})
	}
	if aws.ToBool(out.IsTruncated) {
		page.NextToken = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

// GetObject opens a streaming download. The caller closes the reader.
func (s *S3Store) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

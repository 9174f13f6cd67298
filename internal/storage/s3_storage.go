package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

// ObjectGetter is the part of the S3 client used for reads.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Storage reads catalog sources from a bucket.
type S3Storage struct {
	client ObjectGetter
	bucket string
}

func NewS3Storage(ctx context.Context, region, bucket, accessKeyID, secretAccessKey string) (*S3Storage, error) {
	var cfg aws.Config

	// If credentials are provided, use them. Otherwise, use default credential chain
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region: region,
			Credentials: credentials.NewStaticCredentialsProvider(
				accessKeyID,
				secretAccessKey,
				"",
			),
		}
	} else {
		var err error
		cfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
	}

	return NewS3StorageWithClient(s3.NewFromConfig(cfg), bucket), nil
}

func NewS3StorageWithClient(client ObjectGetter, bucket string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket}
}

// Open streams an object. An empty bucket uses the default bucket.
func (s *S3Storage) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if bucket == "" {
		bucket = s.bucket
	}
	if bucket == "" {
		return nil, fmt.Errorf("no bucket given for key %q", key)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

// ParseObjectURI splits "s3://bucket/key". ok is false for anything else.
func ParseObjectURI(uri string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(uri, s3Scheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// OpenSource opens a local path or, for s3:// URIs, an object. s may be nil when
// only local paths are expected.
func OpenSource(ctx context.Context, s *S3Storage, source string) (io.ReadCloser, error) {
	bucket, key, isObject := ParseObjectURI(source)
	if !isObject {
		return os.Open(source)
	}
	if s == nil {
		return nil, fmt.Errorf("s3 source %q given but object storage is not configured", source)
	}
	return s.Open(ctx, bucket, key)
}

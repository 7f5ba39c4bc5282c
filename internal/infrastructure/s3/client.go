package s3infra

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/storefront-bff/internal/config"
	"github.com/storefront-bff/internal/domain"
	"github.com/storefront-bff/internal/infrastructure/awsconf"
)

// maxObjectSize caps reference documents read into memory.
const maxObjectSize = 4 << 20

type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store reads small JSON documents from a single bucket.
type Store struct {
	client objectAPI
	bucket string
}

// NewClient creates an S3 client. An endpoint override (LocalStack) also
// switches to path-style addressing.
func NewClient(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconf.Load(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("s3: %w", err)
	}
	endpoint := awsconf.Endpoint(cfg)
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != nil {
			o.BaseEndpoint = endpoint
			o.UsePathStyle = true
		}
	}), nil
}

// NewStore creates a Store with the given S3 client and bucket name.
func NewStore(client objectAPI, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// Fetch returns the full body of the object at key. A missing key maps to
// domain.ErrNotFound.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("s3 object %s/%s: %w", s.bucket, key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("s3 get object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("read s3 object: %w", err)
	}
	if len(data) > maxObjectSize {
		return nil, fmt.Errorf("s3 object %s/%s exceeds %d bytes", s.bucket, key, maxObjectSize)
	}
	return data, nil
}

package sink

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// S3Config selects the object store. An Endpoint means an S3-compatible
// server reached with static keys; without one, Amazon S3 is used through the
// AWS default credential chain and Profile.
type S3Config struct {
	Endpoint        string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UseSSL          bool
}

type s3Sink struct {
	client *minio.Client
	region string
}

func NewS3Sink(cfg S3Config) (Sink, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is not configured")
	}

	// minio expects a bare host, strip any scheme.
	endpoint := cfg.Endpoint
	if u, err := url.Parse(cfg.Endpoint); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		endpoint = u.Host
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &s3Sink{client: client, region: cfg.Region}, nil
}

func (s *s3Sink) Put(ctx context.Context, destination string, content []byte, contentType string) (string, error) {
	logger := zerolog.Ctx(ctx)

	bucket, key, err := ParseObjectURL(destination)
	if err != nil {
		return "", err
	}

	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return "", fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return "", fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		logger.Info().Str("bucket", bucket).Msg("created bucket")
	}

	reader := bytes.NewReader(content)
	info, err := s.client.PutObject(ctx, bucket, key, reader, reader.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", destination, err)
	}

	logger.Info().Str("bucket", bucket).Str("key", key).Int64("size", info.Size).Msg("report uploaded")
	return destination, nil
}

package sink

import (
	"bytes"
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

const DefaultRegion = "us-east-1"

// awsSink uploads to Amazon S3 using the default credential chain, optionally
// scoped to a shared config profile.
type awsSink struct {
	profile string
	region  string
	// baseEndpoint overrides the S3 endpoint, path-style.
	baseEndpoint string
}

func NewAWSSink(cfg S3Config) Sink {
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}
	return &awsSink{profile: cfg.Profile, region: region}
}

func (s *awsSink) Put(ctx context.Context, destination string, content []byte, contentType string) (string, error) {
	logger := zerolog.Ctx(ctx)

	bucket, key, err := ParseObjectURL(destination)
	if err != nil {
		return "", err
	}

	client, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awssdk.String(bucket),
		Key:         awssdk.String(key),
		Body:        bytes.NewReader(content),
		ContentType: awssdk.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", destination, err)
	}

	logger.Info().Str("bucket", bucket).Str("key", key).Int("size", len(content)).Msg("report uploaded")
	return destination, nil
}

func (s *awsSink) client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithDefaultRegion(s.region)}
	if s.profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(s.profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s.baseEndpoint != "" {
			o.BaseEndpoint = awssdk.String(s.baseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

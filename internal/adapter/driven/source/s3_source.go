package source

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/logger"
)

// S3GetObjectAPI é o subconjunto do cliente S3 usado pela fonte.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads uploads from s3://bucket/key locations. The client is created lazily
// so that local-only runs never load AWS configuration.
type S3Source struct {
	profile   string
	region    string
	newClient func(ctx context.Context) (S3GetObjectAPI, error)

	once   sync.Once
	client S3GetObjectAPI
	err    error
}

// NewS3Source cria uma fonte S3 usando o perfil e a região informados.
func NewS3Source(profile, region string) *S3Source {
	s := &S3Source{profile: profile, region: region}
	s.newClient = s.loadClient
	return s
}

// NewS3SourceWithClient cria uma fonte S3 com um cliente já pronto.
func NewS3SourceWithClient(client S3GetObjectAPI) *S3Source {
	return &S3Source{newClient: func(context.Context) (S3GetObjectAPI, error) { return client, nil }}
}

func (s *S3Source) loadClient(ctx context.Context) (S3GetObjectAPI, error) {
	var opts []func(*config.LoadOptions) error
	if s.profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(s.profile))
	}
	if s.region != "" {
		opts = append(opts, config.WithRegion(s.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for profile %s: %w", s.profile, err)
	}
	return s3.NewFromConfig(cfg), nil
}

func (s *S3Source) Supports(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

func (s *S3Source) Open(ctx context.Context, location string) (*entity.Upload, error) {
	bucket, key, err := parseS3URI(location)
	if err != nil {
		return nil, err
	}

	s.once.Do(func() {
		s.client, s.err = s.newClient(ctx)
	})
	if s.err != nil {
		return nil, s.err
	}

	logger.FromContext(ctx).Debug("fetching usage export from s3", zap.String("bucket", bucket), zap.String("key", key))
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("error getting s3://%s/%s: %w", bucket, key, err)
	}

	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return &entity.Upload{
		Name:      path.Base(key),
		MediaType: aws.ToString(out.ContentType),
		Size:      size,
		Body:      out.Body,
	}, nil
}

func parseS3URI(location string) (string, string, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme != "s3" {
		return "", "", fmt.Errorf("invalid S3 location %q", location)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 location %q: expected s3://bucket/key", location)
	}
	return u.Host, key, nil
}

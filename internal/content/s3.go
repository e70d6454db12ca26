package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// maxBodySize caps a lesson body read from S3.
const maxBodySize = 1 << 20

// ObjectGetter is the part of *s3.Client the body source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3ClientOptions configures NewS3Client.
type S3ClientOptions struct {
	// Region overrides the region from the environment or shared config.
	Region string

	// Endpoint overrides the AWS endpoint, for MinIO or LocalStack. Setting
	// it also switches to path-style addressing.
	Endpoint string
}

// NewS3Client creates an S3 client from the default AWS configuration
// chain: environment, shared config and credentials files, SSO and
// container or instance roles.
func NewS3Client(ctx context.Context, opts S3ClientOptions) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// s3Bodies replaces lesson bodies with objects from a bucket.
type s3Bodies struct {
	Store
	client ObjectGetter
	bucket string
	prefix string
}

// WithS3Bodies wraps store so GetLesson reads the lesson body from
// s3://bucket/prefix/<id>.html. Lessons without an object keep the body
// from store. Listings are passed through untouched.
func WithS3Bodies(store Store, client ObjectGetter, bucket, prefix string) Store {
	return &s3Bodies{Store: store, client: client, bucket: bucket, prefix: prefix}
}

// BodyKey returns the object key for a lesson body.
func BodyKey(prefix string, id int) string {
	return path.Join(prefix, strconv.Itoa(id)+".html")
}

func (s *s3Bodies) GetLesson(ctx context.Context, id int) (Lesson, error) {
	l, err := s.Store.GetLesson(ctx, id)
	if err != nil {
		return Lesson{}, err
	}

	key := BodyKey(s.prefix, id)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return l, nil
		}
		return Lesson{}, fmt.Errorf("s3 get %s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(io.LimitReader(out.Body, maxBodySize))
	if err != nil {
		return Lesson{}, fmt.Errorf("s3 read %s/%s: %w", s.bucket, key, err)
	}
	l.Body = string(body)
	return l, nil
}

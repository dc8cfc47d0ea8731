package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrymomot/filevault/core/blob"
)

// Compile-time check that Storage implements the blob contract.
var _ blob.Storage = (*Storage)(nil)

// Client defines the S3 operations Storage uses. Satisfied by *s3.Client;
// tests substitute a mock.
type Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3aws.GetObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3aws.HeadObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.HeadObjectOutput, error)
	CopyObject(ctx context.Context, params *s3aws.CopyObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3aws.DeleteObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.DeleteObjectOutput, error)
}

// Config contains S3 storage configuration. Bucket here is the S3 bucket
// holding all blobs; file-hosting buckets become key prefixes inside it.
type Config struct {
	Bucket         string `env:"S3_BUCKET,required"`
	Region         string `env:"S3_REGION,required"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_ACCESS_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`
}

// Storage keeps blobs in S3-compatible object storage.
type Storage struct {
	client        Client
	bucket        string
	uploadTimeout time.Duration
}

// Option configures Storage.
type Option func(*options)

type options struct {
	client        Client
	httpClient    *http.Client
	uploadTimeout time.Duration
}

// WithClient sets a pre-configured S3 client. Primarily for tests.
func WithClient(client Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithUploadTimeout bounds Stage calls so a stalled upload cannot hold a
// request goroutine indefinitely.
func WithUploadTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.uploadTimeout = timeout
	}
}

// New creates an S3-backed blob storage.
func New(ctx context.Context, cfg Config, opts ...Option) (*Storage, error) {
	if cfg.Bucket == "" || (cfg.Region == "" && cfg.Endpoint == "") {
		return nil, fmt.Errorf("%w: bucket and region are required", blob.ErrInvalidConfig)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		awsOpts := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOpts = append(awsOpts,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID, cfg.SecretKey, "",
				)),
			)
		}
		if o.httpClient != nil {
			awsOpts = append(awsOpts, config.WithHTTPClient(o.httpClient))
		}

		awsCfg, err := config.LoadDefaultConfig(ctx, awsOpts...)
		if err != nil {
			return nil, fmt.Errorf("%w: load aws config: %v", blob.ErrInvalidConfig, err)
		}

		client = s3aws.NewFromConfig(awsCfg, func(so *s3aws.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return &Storage{
		client:        client,
		bucket:        cfg.Bucket,
		uploadTimeout: o.uploadTimeout,
	}, nil
}

func validateBucket(bucket string) error {
	if bucket == "" ||
		bucket == "." || bucket == ".." ||
		strings.ContainsAny(bucket, `/\`) ||
		strings.HasPrefix(bucket, ".") {
		return blob.ErrInvalidBucket
	}
	return nil
}

// Ids are numeric, so the staging prefix cannot collide with a final key.
func stagingKey(bucket string, id int64) string {
	return bucket + "/staging/" + strconv.FormatInt(id, 10)
}

func finalKey(bucket string, id int64) string {
	return bucket + "/" + strconv.FormatInt(id, 10)
}

// Stage uploads the payload under the staging key. The payload is buffered
// first: S3 needs the content length up front for request signing.
func (s *Storage) Stage(ctx context.Context, bucket string, id int64, r io.Reader) (int64, error) {
	if err := validateBucket(bucket); err != nil {
		return 0, err
	}
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("%w: read payload: %v", blob.ErrUnavailable, err)
	}

	_, err = s.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(stagingKey(bucket, id)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return 0, classifyError(err, "stage blob")
	}

	return int64(len(data)), nil
}

// Promote server-side copies the staged object to its final key and removes
// the staged one.
func (s *Storage) Promote(ctx context.Context, bucket string, id int64) error {
	if err := validateBucket(bucket); err != nil {
		return err
	}

	staged := stagingKey(bucket, id)
	_, err := s.client.CopyObject(ctx, &s3aws.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(s.bucket + "/" + staged),
		Key:        aws.String(finalKey(bucket, id)),
	})
	if err != nil {
		return classifyError(err, "promote blob")
	}

	_, err = s.client.DeleteObject(ctx, &s3aws.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(staged),
	})
	if err != nil {
		return classifyError(err, "remove staged blob")
	}
	return nil
}

// Discard drops a staged blob. S3 deletes are idempotent, matching the
// contract's absent-id no-op.
func (s *Storage) Discard(ctx context.Context, bucket string, id int64) error {
	if err := validateBucket(bucket); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3aws.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(stagingKey(bucket, id)),
	})
	if err != nil {
		return classifyError(err, "discard staged blob")
	}
	return nil
}

// Delete removes a promoted blob, verifying existence first since S3 deletes
// of absent keys succeed silently.
func (s *Storage) Delete(ctx context.Context, bucket string, id int64) error {
	if err := validateBucket(bucket); err != nil {
		return err
	}

	key := finalKey(bucket, id)
	_, err := s.client.HeadObject(ctx, &s3aws.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classifyError(err, "check blob")
	}

	_, err = s.client.DeleteObject(ctx, &s3aws.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classifyError(err, "delete blob")
	}
	return nil
}

// Open streams a promoted blob.
func (s *Storage) Open(ctx context.Context, bucket string, id int64) (io.ReadCloser, int64, error) {
	if err := validateBucket(bucket); err != nil {
		return nil, 0, err
	}

	out, err := s.client.GetObject(ctx, &s3aws.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(finalKey(bucket, id)),
	})
	if err != nil {
		return nil, 0, classifyError(err, "open blob")
	}

	var size int64
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return out.Body, size, nil
}

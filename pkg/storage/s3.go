package storage

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("fullreservas.storage")

// Uploader stores objects and hands back a URL they can be fetched from.
type Uploader interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// ObjectAPI is the subset of the S3 client used here.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Storage struct {
	client  ObjectAPI
	bucket  string
	baseURL string
}

// NewS3Storage builds a client from the default AWS credential chain.
// When baseURL is empty objects are addressed by their virtual-hosted S3 URL.
func NewS3Storage(ctx context.Context, bucket, baseURL string) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "loading aws config")
	}
	if baseURL == "" {
		baseURL = "https://" + bucket + ".s3." + cfg.Region + ".amazonaws.com"
	}
	return NewS3StorageWithClient(s3.NewFromConfig(cfg), bucket, baseURL), nil
}

func NewS3StorageWithClient(client ObjectAPI, bucket, baseURL string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Annotatef(err, "put object %s", key)
	}
	logger.Debugf("added object %q to bucket %q", key, s.bucket)
	return s.baseURL + "/" + key, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Annotatef(err, "delete object %s", key)
}

// KeyFromURL reverses Put's URL; ok is false for URLs outside this bucket.
func (s *S3Storage) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

package assets

import (
	"context"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	ierrors "github.com/isora-dev/isora/internal/errors"
)

// S3API is the slice of the S3 client the publisher needs. Tests
// substitute a fake; production passes *s3.Client.
type S3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads a built asset directory to S3 (or any S3-compatible
// store) with immutable cache headers. Hashed filenames never change
// content, so a year-long max-age is correct.
type Publisher struct {
	client       S3API
	bucket       string
	prefix       string
	cacheControl string
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPrefix sets the key prefix inside the bucket.
func WithPrefix(prefix string) PublisherOption {
	return func(p *Publisher) { p.prefix = strings.Trim(prefix, "/") }
}

// WithCacheControl overrides the Cache-Control header on uploads.
func WithCacheControl(value string) PublisherOption {
	return func(p *Publisher) { p.cacheControl = value }
}

// NewPublisher creates an asset publisher.
func NewPublisher(client S3API, bucket string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		client:       client,
		bucket:       bucket,
		cacheControl: "public, max-age=31536000, immutable",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishDir uploads every regular file under dir, keyed by its
// path relative to dir. Returns the number of uploaded files.
func (p *Publisher) PublishDir(ctx context.Context, dir string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(dir, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return err
		}
		if err := p.PublishFile(ctx, file, filepath.ToSlash(rel)); err != nil {
			return err
		}
		uploaded++
		return nil
	})
	if err != nil {
		return uploaded, ierrors.From(err, "I601")
	}
	return uploaded, nil
}

// PublishFile uploads one file under the given key.
func (p *Publisher) PublishFile(ctx context.Context, file, key string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	fullKey := key
	if p.prefix != "" {
		fullKey = p.prefix + "/" + key
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(fullKey),
		Body:         f,
		ContentType:  aws.String(contentType(key)),
		CacheControl: aws.String(p.cacheControl),
	})
	return err
}

func contentType(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

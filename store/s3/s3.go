// Package s3 implements the object storage driver on AWS S3 and
// S3-compatible stores (MinIO, Cloudflare R2).
package s3

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/vjinviraj/pwalib-backend/internal/profile"
)

// API is the subset of the S3 client the driver uses. Kept narrow so tests
// can substitute a fake.
type API interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *awss3.HeadBucketInput, optFns ...func(*awss3.Options)) (*awss3.HeadBucketOutput, error)
}

// Driver stores objects in a single S3 bucket.
type Driver struct {
	client API
	bucket string
}

// NewDriver creates an S3 driver from the instance profile. Credentials fall
// back to the default AWS chain (env, shared config, instance role) when the
// profile does not carry static keys.
func NewDriver(ctx context.Context, p *profile.Profile) (*Driver, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(p.StorageRegion),
	}
	if p.StorageAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(p.StorageAccessKey, p.StorageSecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if p.StorageEndpoint != "" {
			o.BaseEndpoint = aws.String(p.StorageEndpoint)
			// S3-compatible stores rarely support virtual-hosted addressing.
			o.UsePathStyle = true
		}
	})

	return &Driver{
		client: client,
		bucket: p.StorageBucket,
	}, nil
}

// NewDriverWithClient creates a driver over an existing client. Used by tests.
func NewDriverWithClient(client API, bucket string) *Driver {
	return &Driver{client: client, bucket: bucket}
}

func (d *Driver) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	input := &awss3.PutObjectInput{
		Bucket:        aws.String(d.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	_, err := d.client.PutObject(ctx, input)
	return errors.Wrapf(err, "s3: put object %s", key)
}

func (d *Driver) DeleteObject(ctx context.Context, key string) error {
	_, err := d.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrapf(err, "s3: delete object %s", key)
}

func (d *Driver) Ping(ctx context.Context) error {
	_, err := d.client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(d.bucket),
	})
	return errors.Wrapf(err, "s3: head bucket %s", d.bucket)
}

package store

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client the archiver uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Archiver keeps a copy of every admin CSV export.
type S3Archiver struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Archiver stores objects under bucket/prefix.
func NewS3Archiver(client S3API, bucket, prefix string) *S3Archiver {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Archiver{client: client, bucket: bucket, prefix: prefix}
}

// NewS3ArchiverFromConfig builds the SDK client from an aws.Config.
func NewS3ArchiverFromConfig(cfg aws.Config, bucket, prefix string) *S3Archiver {
	return NewS3Archiver(s3.NewFromConfig(cfg), bucket, prefix)
}

// ArchiveExport uploads csv and returns the object key.
func (a *S3Archiver) ArchiveExport(ctx context.Context, at time.Time, csv []byte) (string, error) {
	key := fmt.Sprintf("%skyozo-waitlist-%s.csv", a.prefix, at.UTC().Format(time.RFC3339))
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(csv),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("putting object to S3: %w", err)
	}
	return key, nil
}

// Ping checks that the bucket is reachable.
func (a *S3Archiver) Ping(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	return err
}

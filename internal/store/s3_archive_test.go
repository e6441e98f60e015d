package store

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	key  string
	body string
	ct   string
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.key = aws.ToString(in.Key)
	f.ct = aws.ToString(in.ContentType)
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.err
}

func TestS3Archiver_ArchiveExport(t *testing.T) {
	fake := &fakeS3{}
	a := NewS3Archiver(fake, "kyozo-exports", "exports")

	at := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	key, err := a.ArchiveExport(context.Background(), at, []byte("Timestamp,First Name\n"))
	require.NoError(t, err)

	assert.Equal(t, "exports/kyozo-waitlist-2026-05-04T10:30:00Z.csv", key)
	assert.Equal(t, key, fake.key)
	assert.Equal(t, "text/csv", fake.ct)
	assert.Equal(t, "Timestamp,First Name\n", fake.body)
	assert.NoError(t, a.Ping(context.Background()))
}

func TestS3Archiver_Error(t *testing.T) {
	a := NewS3Archiver(&fakeS3{err: errors.New("access denied")}, "b", "")
	_, err := a.ArchiveExport(context.Background(), time.Now(), nil)
	assert.ErrorContains(t, err, "access denied")
}

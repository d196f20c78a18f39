package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in memory and answers like S3 for missing keys.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func notFound(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: "not found"}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, notFound("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, notFound("NotFound")
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.objects))
	for k := range f.objects {
		out = append(out, k)
	}
	return out
}

type fakePresigner struct {
	expires time.Duration
}

func (p *fakePresigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	p.expires = opts.Expires
	return &v4.PresignedHTTPRequest{
		URL:    "https://" + aws.ToString(in.Bucket) + ".s3.amazonaws.com/" + aws.ToString(in.Key) + "?X-Amz-Signature=abc",
		Method: "GET",
	}, nil
}

func TestNewS3Storage_RequiresBucketAndRegion(t *testing.T) {
	ctx := context.Background()

	_, err := NewS3Storage(ctx, "", "us-east-1")
	assert.Error(t, err)

	_, err = NewS3Storage(ctx, "bucket", "")
	assert.Error(t, err)
}

func TestS3Storage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	s := NewS3StorageWithClient(client, &fakePresigner{}, "exports-bucket", "/testgen/")

	require.NoError(t, s.Upload(ctx, "exports/ws-1/test_cases.py", strings.NewReader("import pytest\n")))
	assert.Equal(t, []string{"testgen/exports/ws-1/test_cases.py"}, client.keys())

	exists, err := s.Exists(ctx, "exports/ws-1/test_cases.py")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Download(ctx, "exports/ws-1/test_cases.py")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "import pytest\n", string(body))

	require.NoError(t, s.Delete(ctx, "exports/ws-1/test_cases.py"))

	exists, err = s.Exists(ctx, "exports/ws-1/test_cases.py")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.Download(ctx, "exports/ws-1/test_cases.py")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestS3Storage_UploadError(t *testing.T) {
	client := newFakeS3()
	client.putErr = errors.New("access denied")
	s := NewS3StorageWithClient(client, &fakePresigner{}, "bucket", "")

	err := s.Upload(context.Background(), "a.py", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.NotErrorIs(t, err, ErrFileNotFound)
}

func TestS3Storage_GetURL(t *testing.T) {
	ctx := context.Background()
	presigner := &fakePresigner{}
	s := NewS3StorageWithClient(newFakeS3(), presigner, "bucket", "")

	_, err := s.GetURL(ctx, "missing.py")
	assert.ErrorIs(t, err, ErrFileNotFound)

	require.NoError(t, s.Upload(ctx, "exports/a.py", strings.NewReader("x")))

	url, err := s.GetURL(ctx, "exports/a.py")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/exports/a.py?X-Amz-Signature=abc", url)
	assert.Equal(t, DefaultPresignExpiry, presigner.expires)
}

func TestS3Storage_PathValidation(t *testing.T) {
	ctx := context.Background()
	s := NewS3StorageWithClient(newFakeS3(), &fakePresigner{}, "bucket", "")

	maliciousPaths := []string{
		"",
		"../../../etc/passwd",
		`..\..\..\windows\system32`,
		"subdir/../../outside.txt",
		"/absolute/path.txt",
	}

	for _, p := range maliciousPaths {
		t.Run(p, func(t *testing.T) {
			assert.ErrorIs(t, s.Upload(ctx, p, strings.NewReader("x")), ErrInvalidPath)

			_, err := s.Download(ctx, p)
			assert.ErrorIs(t, err, ErrInvalidPath)

			assert.ErrorIs(t, s.Delete(ctx, p), ErrInvalidPath)

			_, err = s.Exists(ctx, p)
			assert.ErrorIs(t, err, ErrInvalidPath)

			_, err = s.GetURL(ctx, p)
			assert.ErrorIs(t, err, ErrInvalidPath)
		})
	}
}

func TestIsS3NotFoundError(t *testing.T) {
	assert.True(t, isS3NotFoundError(notFound("NoSuchKey")))
	assert.True(t, isS3NotFoundError(notFound("NotFound")))
	assert.False(t, isS3NotFoundError(notFound("AccessDenied")))
	assert.False(t, isS3NotFoundError(errors.New("boom")))
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNSW/landedcost/internal/config"
)

func TestLocalStore_ShardedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/api/reports/")
	require.NoError(t, err)

	ctx := context.Background()
	key := "abcdef123456.json"
	require.NoError(t, store.Put(ctx, key, strings.NewReader(`{"total":1}`), "application/json"))

	_, err = os.Stat(filepath.Join(dir, "ab", "cd", key))
	require.NoError(t, err, "objects are sharded by key prefix")

	rc, contentType, err := store.Open(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, `{"total":1}`, string(body))
	assert.Equal(t, "application/json", contentType)

	url, err := store.URL(ctx, key, 0)
	require.NoError(t, err)
	assert.Equal(t, "/api/reports/"+key, url)

	require.NoError(t, store.Remove(ctx, key))
	_, _, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Remove(ctx, key), "removing a missing object is a no-op")
}

func TestLocalStore_RejectsUnsafeKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "..", "../escape.json", "nested/key.json"} {
		assert.Error(t, store.Put(ctx, key, strings.NewReader("x"), "text/plain"), key)
		_, _, err := store.Open(ctx, key)
		assert.Error(t, err, key)
	}

	url, err := store.URL(ctx, "k.json", 0)
	require.NoError(t, err)
	assert.Equal(t, "k.json", url)
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = body
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(body)),
		ContentType: aws.String(f.types[aws.ToString(in.Key)]),
	}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	var presignedFor time.Duration
	store := &S3Store{
		client: client,
		presign: func(_ context.Context, bucket, key string, expires time.Duration) (string, error) {
			presignedFor = expires
			return "https://" + bucket + ".example.com/" + key + "?sig=1", nil
		},
		bucket: "reports",
	}

	require.NoError(t, store.Put(ctx, "r1.json", strings.NewReader("{}"), "application/json"))
	rc, contentType, err := store.Open(ctx, "r1.json")
	require.NoError(t, err)
	_ = rc.Close()
	assert.Equal(t, "application/json", contentType)

	url, err := store.URL(ctx, "r1.json", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://reports.example.com/r1.json?sig=1", url)
	assert.Equal(t, time.Hour, presignedFor)

	store.publicURL = "https://cdn.example.com"
	url, err = store.URL(ctx, "r1.json", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/r1.json", url)

	require.NoError(t, store.Remove(ctx, "r1.json"))
	_, _, err = store.Open(ctx, "r1.json")
	assert.ErrorIs(t, err, ErrNotFound)

	client.putErr = errors.New("access denied")
	assert.ErrorContains(t, store.Put(ctx, "r2.json", strings.NewReader("{}"), "application/json"), "access denied")
}

func TestNewFromConfig(t *testing.T) {
	store, err := NewFromConfig(context.Background(), config.StorageConfig{Type: "local", LocalBaseDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = NewFromConfig(context.Background(), config.StorageConfig{Type: "ftp"})
	assert.ErrorContains(t, err, "unsupported storage type")
}

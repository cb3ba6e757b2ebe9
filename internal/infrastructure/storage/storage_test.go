package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/comufarm/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(ctx, nil)
		require.Error(t, err)
	})

	t.Run("missing bucket", func(t *testing.T) {
		_, err := NewS3ObjectStorage(ctx, &config.StorageConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("half of a key pair", func(t *testing.T) {
		_, err := NewS3ObjectStorage(ctx, &config.StorageConfig{Bucket: "logs", AccessKeyID: "id"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "set together")
	})
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(context.Background(), &config.StorageConfig{
		Bucket:          "supply-logs",
		Region:          "ap-northeast-2",
		Endpoint:        "localhost:9000",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "supply-logs", s.Bucket())

	link, expiresAt, err := s.GenerateDownloadURL(context.Background(), "supply-logs/farmer_a/20240615.txt", 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(defaultPresignExpiration), expiresAt, 5*time.Second)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/supply-logs/supply-logs/farmer_a/"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))

	_, _, err = s.GenerateDownloadURL(context.Background(), "", time.Minute)
	assert.Error(t, err)
}

func TestStubObjectStorage(t *testing.T) {
	ctx := context.Background()
	s := NewStubObjectStorage("")

	_, _, err := s.GenerateDownloadURL(ctx, "missing.txt", time.Minute)
	assert.Error(t, err)

	data := []byte("2024-06-15 감자 6개 공급\n")
	require.NoError(t, s.Upload(ctx, "supply-logs/farmer_a/1.txt", data, "text/plain; charset=utf-8"))
	data[0] = 'X'

	obj, ok := s.Object("supply-logs/farmer_a/1.txt")
	require.True(t, ok)
	assert.Equal(t, "2024-06-15 감자 6개 공급\n", string(obj.Data))
	assert.Equal(t, "text/plain; charset=utf-8", obj.ContentType)

	link, expiresAt, err := s.GenerateDownloadURL(ctx, "supply-logs/farmer_a/1.txt", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, defaultStubBaseURL+"/supply-logs/farmer_a/1.txt?expires="))
	assert.True(t, expiresAt.After(time.Now()))

	assert.Error(t, s.Upload(ctx, "", data, "text/plain"))
}

func TestNewObjectStorage(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	s, err := NewObjectStorage(ctx, &config.StorageConfig{Type: "stub", PublicURL: "https://files.example.com"}, logger)
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com", s.(*StubObjectStorage).BaseURL)

	s, err = NewObjectStorage(ctx, &config.StorageConfig{Type: "s3", Bucket: "logs", AccessKeyID: "k", SecretAccessKey: "s"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &S3ObjectStorage{}, s)

	_, err = NewObjectStorage(ctx, &config.StorageConfig{Type: "ftp"}, logger)
	assert.Error(t, err)
}

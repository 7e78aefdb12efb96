package feed

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"affiliate-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFileBackend(t *testing.T) {
	dir := t.TempDir()
	b := FileBackend{Path: filepath.Join(dir, "nested", "feed.json")}
	ctx := context.Background()

	_, err := b.Read(ctx)
	assert.ErrorIs(t, err, ErrNotExist)

	require.NoError(t, b.Write(ctx, []byte(`{"products":[]}`)))
	require.NoError(t, b.Write(ctx, []byte(`{"products":[{}]}`)))

	data, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"products":[{}]}`, string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestObjectBackend_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "affiliate", "feeds/feed.json", mock.Anything).
			Return(io.NopCloser(bytes.NewReader([]byte(`{"products":[]}`))), nil)

		data, err := ObjectBackend{Client: client, Bucket: "affiliate", Object: "feeds/feed.json"}.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, `{"products":[]}`, string(data))
	})

	t.Run("missing", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "affiliate", "feeds/feed.json", mock.Anything).
			Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})

		_, err := ObjectBackend{Client: client, Bucket: "affiliate", Object: "feeds/feed.json"}.Read(ctx)
		assert.ErrorIs(t, err, ErrNotExist)
	})

	t.Run("failure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "affiliate", "feeds/feed.json", mock.Anything).
			Return(nil, errors.New("connection refused"))

		_, err := ObjectBackend{Client: client, Bucket: "affiliate", Object: "feeds/feed.json"}.Read(ctx)
		assert.ErrorContains(t, err, "connection refused")
		assert.NotErrorIs(t, err, ErrNotExist)
	})
}

func TestObjectBackend_Write(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "affiliate", "feeds/feed.yaml", mock.Anything, int64(3),
		mock.MatchedBy(func(opts minio.PutObjectOptions) bool { return opts.ContentType == "application/yaml" })).
		Return(minio.UploadInfo{}, nil)

	err := ObjectBackend{Client: client, Bucket: "affiliate", Object: "feeds/feed.yaml"}.Write(context.Background(), []byte("a:1"))
	require.NoError(t, err)
	client.AssertExpectations(t)
}

package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"affiliate-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// ErrNotExist is returned by a Backend when the feed has not been created yet.
var ErrNotExist = errors.New("feed does not exist")

// Backend reads and writes the raw feed bytes.
type Backend interface {
	// Name identifies the feed location, used to pick a codec and in logs.
	Name() string
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// FileBackend stores the feed in a local file.
type FileBackend struct {
	Path string
}

func (b FileBackend) Name() string { return b.Path }

func (b FileBackend) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotExist
	}
	return data, err
}

// Write replaces the file atomically: readers see the old or the new feed, never a partial one.
func (b FileBackend) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(b.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create feed directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.Path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.Path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", b.Path, err)
	}
	return nil
}

// ObjectBackend stores the feed as a single object in S3 compatible storage.
type ObjectBackend struct {
	Client storage.Client
	Bucket string
	Object string
}

func (b ObjectBackend) Name() string { return b.Object }

func (b ObjectBackend) Read(ctx context.Context) ([]byte, error) {
	obj, err := b.Client.GetObject(ctx, b.Bucket, b.Object, minio.GetObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to get feed object %s: %w", b.Object, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to read feed object %s: %w", b.Object, err)
	}
	return data, nil
}

// Write uploads the whole feed in one PutObject, which S3 applies atomically.
func (b ObjectBackend) Write(ctx context.Context, data []byte) error {
	_, err := b.Client.PutObject(ctx, b.Bucket, b.Object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: CodecFor(b.Object).ContentType(),
	})
	if err != nil {
		return fmt.Errorf("failed to put feed object %s: %w", b.Object, err)
	}
	return nil
}

// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so affiliate feeds can be read from and committed to
// a bucket, and so reconciliation run reports can be archived next to them. It
// supports both AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	err = storage.EnsureBucket(ctx, client, "affiliate", "")
package storage

package storage

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	// Register the bucket drivers available without cloud credentials.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// BlobStore keeps one object per key in a gocloud.dev bucket. Object writes are
// atomic: a value only becomes visible once the writer is closed successfully.
type BlobStore struct {
	bucket *blob.Bucket
}

// OpenBlobStore opens the bucket at url (for example mem:// or file:///var/lib/keyvault).
func OpenBlobStore(ctx context.Context, url string) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}
	return NewBlobStore(bucket), nil
}

// NewBlobStore wraps an already opened bucket.
func NewBlobStore(bucket *blob.Bucket) *BlobStore {
	return &BlobStore{bucket: bucket}
}

func objectKey(namespace, key string) string {
	return namespace + "/" + base64.RawURLEncoding.EncodeToString([]byte(key))
}

// Get reads the object stored for key.
func (b *BlobStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	value, err := b.bucket.ReadAll(ctx, objectKey(namespace, key))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrKeyNotFound
		}
		return nil, unavailable(err, "failed to read object")
	}
	return value, nil
}

// Put writes the object stored for key.
func (b *BlobStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	opts := &blob.WriterOptions{ContentType: "application/octet-stream"}
	if err := b.bucket.WriteAll(ctx, objectKey(namespace, key), value, opts); err != nil {
		return unavailable(err, "failed to write object")
	}
	return nil
}

// Delete removes the object stored for key.
func (b *BlobStore) Delete(ctx context.Context, namespace, key string) error {
	err := b.bucket.Delete(ctx, objectKey(namespace, key))
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return unavailable(err, "failed to delete object")
	}
	return nil
}

// Ping checks that the bucket is accessible.
func (b *BlobStore) Ping(ctx context.Context) error {
	ok, err := b.bucket.IsAccessible(ctx)
	if err != nil {
		return unavailable(err, "failed to reach bucket")
	}
	if !ok {
		return unavailable(fmt.Errorf("bucket is not accessible"), "failed to reach bucket")
	}
	return nil
}

// Close closes the bucket.
func (b *BlobStore) Close() error {
	return b.bucket.Close()
}

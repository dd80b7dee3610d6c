package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	fileStoreDirPerm  = 0o700
	fileStoreFilePerm = 0o600
)

// FileStore keeps one file per key under dir/<namespace>/.
//
// Names are base64url encoded so arbitrary user identifiers map to safe file
// names. Writes go to a temporary file in the same directory which is synced
// and renamed over the target, so a crash leaves either the old or the new value.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a FileStore rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, fileStoreDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(namespace, key string) string {
	return filepath.Join(
		f.dir,
		base64.RawURLEncoding.EncodeToString([]byte(namespace)),
		base64.RawURLEncoding.EncodeToString([]byte(key))+".dat",
	)
}

// Get reads the file stored for key.
func (f *FileStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err, "failed to get value")
	}

	value, err := os.ReadFile(f.path(namespace, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, unavailable(err, "failed to read value file")
	}
	return value, nil
}

// Put atomically replaces the file stored for key.
func (f *FileStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err, "failed to put value")
	}

	target := f.path(namespace, key)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, fileStoreDirPerm); err != nil {
		return unavailable(err, "failed to create namespace directory")
	}

	if err := writeFileAtomic(dir, target, value); err != nil {
		return unavailable(err, "failed to write value file")
	}
	return nil
}

func writeFileAtomic(dir, target string, value []byte) (err error) {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(value); err != nil {
		return err
	}
	if err = tmp.Chmod(fileStoreFilePerm); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, target)
}

// Delete removes the file stored for key.
func (f *FileStore) Delete(ctx context.Context, namespace, key string) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err, "failed to delete value")
	}

	if err := os.Remove(f.path(namespace, key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return unavailable(err, "failed to remove value file")
	}
	return nil
}

// Ping checks that the root directory is still there.
func (f *FileStore) Ping(ctx context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return unavailable(err, "store directory is not accessible")
	}
	if !info.IsDir() {
		return unavailable(fmt.Errorf("%s is not a directory", f.dir), "store directory is not accessible")
	}
	return nil
}

// Close is a no-op.
func (f *FileStore) Close() error {
	return nil
}

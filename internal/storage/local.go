// Package storage keeps restaurant photos on the local filesystem and serves
// them under a public URL prefix.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrForeignURL is returned when deleting a URL outside the store's prefix.
var ErrForeignURL = errors.New("url does not belong to this store")

// LocalStore writes objects below Dir and exposes them as PublicPrefix/<key>.
type LocalStore struct {
	Dir          string
	PublicPrefix string
}

// NewLocalStore creates the base directory if needed.
func NewLocalStore(dir, publicPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create photo dir: %w", err)
	}
	return &LocalStore{Dir: dir, PublicPrefix: strings.TrimRight(publicPrefix, "/")}, nil
}

func (s *LocalStore) pathFor(key string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != key {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.Dir, filepath.FromSlash(clean)), nil
}

// Save writes data under key and returns its public URL. The file appears
// atomically.
func (s *LocalStore) Save(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst, err := s.pathFor(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }() // no-op after rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod object: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("store object: %w", err)
	}
	return s.PublicPrefix + "/" + key, nil
}

// Delete removes the object behind url. Missing objects are not an error.
func (s *LocalStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, ok := strings.CutPrefix(url, s.PublicPrefix+"/")
	if !ok {
		return fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

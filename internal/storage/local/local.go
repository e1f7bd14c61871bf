// Package local implements the local filesystem storage backend for PhotoVault.
// It is the hard-coded fallback when a cloud backend fails to initialize at
// boot, and the default backend for development and single-node deployments.
// It does not support horizontal scaling (multiple instances would need access
// to the same filesystem, e.g., via NFS).
package local

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/storage"
)

func init() {
	// Register local storage backend
	storage.Register("local", func(cfg *config.Config) (storage.Storage, error) {
		return New(&cfg.Storage.Local, cfg.Storage.Container)
	})
}

// LocalStorage implements the Storage interface for local filesystem storage.
// Photos live in a flat directory <root>/<container>/ with no subdirectories.
type LocalStorage struct {
	root      string
	container string
}

// New creates a new local filesystem storage backend
func New(cfg *config.LocalStorageConfig, container string) (*LocalStorage, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("local storage root is required")
	}
	if container == "" {
		return nil, fmt.Errorf("storage container is required")
	}

	return &LocalStorage{
		root:      cfg.Root,
		container: container,
	}, nil
}

// dir returns the container directory on disk.
func (s *LocalStorage) dir() string {
	return filepath.Join(s.root, s.container)
}

// path returns the on-disk path for an object name.
func (s *LocalStorage) path(name string) string {
	return filepath.Join(s.dir(), name)
}

// CreateContainer ensures the container directory exists. MkdirAll is
// idempotent, so an already-existing directory is success.
func (s *LocalStorage) CreateContainer(ctx context.Context) error {
	if err := os.MkdirAll(s.dir(), 0750); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", s.dir(), err)
	}
	return nil
}

// Upload stores a photo in the local filesystem, overwriting any existing
// file of the same name in place.
func (s *LocalStorage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := s.CreateContainer(ctx); err != nil {
		return "", err
	}

	fullPath := s.path(name)

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create file: %v", storage.ErrWriteFailed, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		// Clean up partial file
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("%w: failed to write file: %v", storage.ErrWriteFailed, err)
	}

	return s.GetURL(name), nil
}

// Download retrieves a photo from the local filesystem
func (s *LocalStorage) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	file, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: failed to open file: %v", storage.ErrBackendUnavailable, err)
	}

	return file, nil
}

// Delete removes a photo from the local filesystem. Deleting an absent photo
// is not an error; the bool reports whether a file was actually removed.
func (s *LocalStorage) Delete(ctx context.Context, name string) (bool, error) {
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to delete file: %v", storage.ErrWriteFailed, err)
	}

	return true, nil
}

// List enumerates all photos in the container directory, newest first.
// A missing container directory yields an empty slice, not an error.
func (s *LocalStorage) List(ctx context.Context) ([]storage.Object, error) {
	entries, err := os.ReadDir(s.dir())
	if err != nil {
		if os.IsNotExist(err) {
			return []storage.Object{}, nil
		}
		return nil, fmt.Errorf("%w: failed to read storage directory: %v", storage.ErrBackendUnavailable, err)
	}

	objects := make([]storage.Object, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Entry deleted between ReadDir and Info; skip it.
			continue
		}
		objects = append(objects, storage.Object{
			Name:        entry.Name(),
			Size:        info.Size(),
			ContentType: storage.ContentTypeFor(entry.Name()),
			CreatedAt:   info.ModTime(),
			URL:         s.GetURL(entry.Name()),
		})
	}

	// Newest first, matching gallery display order.
	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].CreatedAt.After(objects[j].CreatedAt)
	})

	return objects, nil
}

// Exists checks if a photo exists. Probe errors other than absence are logged
// and reported as absent so gallery existence checks stay non-fatal.
func (s *LocalStorage) Exists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(s.path(name))
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to check file existence", "name", name, "error", err)
		}
		return false, nil
	}

	return true, nil
}

// GetURL returns the relative URL at which the photo is served by this
// application. It is pure string construction; no existence check. The root is
// trimmed of leading slashes so absolute roots produce the same single-slash
// path the serve route is registered under.
func (s *LocalStorage) GetURL(name string) string {
	root := strings.Trim(filepath.ToSlash(s.root), "/")
	return "/" + path.Join(root, s.container, name)
}

// Package storage defines the Storage interface and common types for all photo
// storage backends in PhotoVault.
//
// New backends are added by implementing the Storage interface and registering
// with the factory via an init() function in the backend's own package:
//
//	func init() {
//	    storage.Register("mybackend", func(cfg *config.Config) (Storage, error) {
//	        return NewMyBackend(cfg)
//	    })
//	}
//
// The main package imports each backend with a blank import to trigger init().
// This means adding a new backend requires no changes to the factory or main
// package — only a blank import in cmd/server/main.go.
package storage

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"
	"time"
)

// CacheControl is the Cache-Control header value attached to every uploaded
// object by the cloud backends. An upload replaces the object wholesale, so a
// one-year max-age is safe.
const CacheControl = "max-age=31536000"

// Storage defines the interface for all photo storage backends.
// One container (bucket / blob container / directory) is used per deployment;
// object names are flat keys within that container.
type Storage interface {
	// CreateContainer creates the backing container if it does not exist.
	// Creation is idempotent: an already-existing container is success, never
	// an error.
	CreateContainer(ctx context.Context) error

	// Upload stores the full byte stream under name, overwriting any existing
	// object, and returns the URL at which the object can be fetched.
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)

	// Download retrieves an object's bytes as a reader. The caller must close it.
	Download(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes an object. It reports whether an object was actually
	// removed; deleting an absent object is not an error where the backend can
	// tell the difference (local, azure).
	Delete(ctx context.Context, name string) (bool, error)

	// List enumerates all objects in the container. A missing container yields
	// an empty slice, not an error. The local backend returns objects sorted
	// newest-first; cloud backends return their native order.
	List(ctx context.Context) ([]Object, error)

	// Exists checks whether an object is present. Absence is (false, nil);
	// the local backend additionally swallows probe errors so UI existence
	// checks stay non-fatal.
	Exists(ctx context.Context, name string) (bool, error)

	// GetURL returns the URL/path at which the object can be fetched. It is
	// pure string construction: no existence check is performed.
	GetURL(name string) string
}

// Object describes one stored photo as reported by List.
type Object struct {
	// Name is the object's key within the container.
	Name string `json:"name"`

	// Size is the object size in bytes.
	Size int64 `json:"size"`

	// ContentType is the MIME type inferred from the object name's extension.
	ContentType string `json:"content_type"`

	// CreatedAt is the object's creation timestamp as reported by the backend.
	CreatedAt time.Time `json:"created_at"`

	// URL is where the object can be fetched: a relative path for the local
	// backend, a public object URL for cloud backends.
	URL string `json:"url"`
}

// imageTypes maps the extensions PhotoVault cares about directly, so content
// type inference does not depend on the host's mime.types database.
var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ContentTypeFor infers a MIME type from the object name's extension,
// defaulting to application/octet-stream when the extension is unknown.
func ContentTypeFor(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ct, ok := imageTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

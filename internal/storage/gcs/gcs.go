// Package gcs implements the Google Cloud Storage backend for PhotoVault.
// Photo URLs are the objects' public storage.googleapis.com URLs. Supports
// Application Default Credentials, service account JSON keys, and Workload
// Identity Federation for keyless authentication in GKE environments.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	appconfig "github.com/photovault/photovault/internal/config"
	appstorage "github.com/photovault/photovault/internal/storage"
)

func init() {
	// Register GCS storage backend
	appstorage.Register("gcs", func(cfg *appconfig.Config) (appstorage.Storage, error) {
		return New(&cfg.Storage.GCS, cfg.Storage.Container)
	})
}

// GCSStorage implements the Storage interface for Google Cloud Storage
type GCSStorage struct {
	client    *storage.Client
	bucket    string
	projectID string
}

// New creates a new Google Cloud Storage backend
//
// Authentication methods:
//   - "default" or empty: Uses Application Default Credentials (ADC)
//     This automatically supports:
//   - GOOGLE_APPLICATION_CREDENTIALS environment variable
//   - GCE/GKE metadata service
//   - Cloud Run/Cloud Functions service account
//   - gcloud auth application-default login
//   - "service_account": Uses a service account key file or JSON
//   - "workload_identity": Uses Workload Identity Federation (GKE etc.)
func New(cfg *appconfig.GCSStorageConfig, bucket string) (*GCSStorage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage container is required")
	}

	ctx := context.Background()
	var opts []option.ClientOption

	// Set custom endpoint for GCS emulators or compatible services
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	// Determine authentication method
	authMethod := cfg.AuthMethod
	if authMethod == "" {
		if cfg.CredentialsFile != "" || cfg.CredentialsJSON != "" {
			authMethod = "service_account"
		} else {
			authMethod = "default"
		}
	}

	switch authMethod {
	case "service_account":
		if cfg.CredentialsJSON != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
		} else if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		} else {
			return nil, fmt.Errorf("credentials_file or credentials_json is required for service_account auth")
		}

	case "workload_identity", "default":
		// Application Default Credentials; the client resolves them itself.

	default:
		return nil, fmt.Errorf("unsupported auth_method: %s (must be 'default', 'service_account', or 'workload_identity')", authMethod)
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client:    client,
		bucket:    bucket,
		projectID: cfg.ProjectID,
	}, nil
}

// Close closes the GCS client
func (s *GCSStorage) Close() error {
	return s.client.Close()
}

// CreateContainer ensures the bucket exists, creating it when missing.
// Creating a bucket requires project_id in the GCS configuration; a
// pre-provisioned bucket needs none.
func (s *GCSStorage) CreateContainer(ctx context.Context) error {
	bucket := s.client.Bucket(s.bucket)

	_, err := bucket.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("%w: failed to check bucket %s: %v", appstorage.ErrBackendUnavailable, s.bucket, err)
	}

	if s.projectID == "" {
		return fmt.Errorf("%w: project_id is required to create bucket %s", appstorage.ErrBackendUnavailable, s.bucket)
	}
	if err := bucket.Create(ctx, s.projectID, nil); err != nil {
		return fmt.Errorf("%w: failed to create bucket %s: %v", appstorage.ErrBackendUnavailable, s.bucket, err)
	}

	return nil
}

// Upload stores a photo in GCS, overwriting any existing object of the same
// name. The object gets its inferred content type and a one-year cache header.
func (s *GCSStorage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(name)

	writer := obj.NewWriter(ctx)
	writer.ContentType = appstorage.ContentTypeFor(name)
	writer.CacheControl = appstorage.CacheControl

	if _, err := io.Copy(writer, reader); err != nil {
		return "", fmt.Errorf("%w: failed to write to GCS: %v", appstorage.ErrWriteFailed, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: failed to close GCS writer: %v", appstorage.ErrWriteFailed, err)
	}

	return s.GetURL(name), nil
}

// Download retrieves a photo from GCS
func (s *GCSStorage) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	reader, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", appstorage.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: failed to read from GCS: %v", appstorage.ErrBackendUnavailable, err)
	}

	return reader, nil
}

// Delete removes a photo from GCS. Deleting an absent object is not an error;
// the bool reports whether an object was actually removed.
func (s *GCSStorage) Delete(ctx context.Context, name string) (bool, error) {
	if err := s.client.Bucket(s.bucket).Object(name).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to delete from GCS: %v", appstorage.ErrWriteFailed, err)
	}

	return true, nil
}

// List enumerates all objects in the bucket. A missing bucket yields an empty
// slice, not an error.
func (s *GCSStorage) List(ctx context.Context) ([]appstorage.Object, error) {
	objects := []appstorage.Object{}

	it := s.client.Bucket(s.bucket).Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			if errors.Is(err, storage.ErrBucketNotExist) {
				return []appstorage.Object{}, nil
			}
			return nil, fmt.Errorf("%w: failed to list GCS objects: %v", appstorage.ErrBackendUnavailable, err)
		}

		obj := appstorage.Object{
			Name:        attrs.Name,
			Size:        attrs.Size,
			ContentType: attrs.ContentType,
			CreatedAt:   attrs.Created,
			URL:         s.GetURL(attrs.Name),
		}
		if obj.ContentType == "" {
			obj.ContentType = appstorage.ContentTypeFor(attrs.Name)
		}
		objects = append(objects, obj)
	}

	return objects, nil
}

// Exists checks if a photo exists in the bucket.
func (s *GCSStorage) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.Bucket(s.bucket).Object(name).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to check object existence: %v", appstorage.ErrBackendUnavailable, err)
	}

	return true, nil
}

// GetURL returns the object's public URL. Pure string construction, no
// existence check.
func (s *GCSStorage) GetURL(name string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, name)
}

// Package azure implements the Azure Blob Storage backend for PhotoVault.
// The client is built from a storage account connection string; photos are
// uploaded as block blobs with their content type and a long-lived cache
// header so browsers can cache gallery images aggressively. Photo URLs are the
// blobs' canonical public URLs by default, with an optional shared-key SAS
// (Shared Access Signature) mode for private containers.
package azure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"

	"github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/storage"
)

func init() {
	// Register Azure storage backend
	storage.Register("azure", func(cfg *config.Config) (storage.Storage, error) {
		return New(&cfg.Storage.Azure, cfg.Storage.Container)
	})
}

// AzureStorage implements the Storage interface for Azure Blob Storage
type AzureStorage struct {
	client    *azblob.Client
	container string

	// Shared key credential fields, only required when signedURLs is on.
	accountName  string
	accountKey   string
	signedURLs   bool
	signedURLTTL time.Duration
}

// New creates a new Azure Blob Storage backend
func New(cfg *config.AzureStorageConfig, container string) (*AzureStorage, error) {
	if cfg.ConnectionString == "" {
		return nil, fmt.Errorf("azure storage connection string is required")
	}
	if container == "" {
		return nil, fmt.Errorf("storage container is required")
	}
	if cfg.SignedURLs && (cfg.AccountName == "" || cfg.AccountKey == "") {
		return nil, fmt.Errorf("azure signed URLs require account_name and account_key")
	}

	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure Blob client: %w", err)
	}

	return &AzureStorage{
		client:       client,
		container:    container,
		accountName:  cfg.AccountName,
		accountKey:   cfg.AccountKey,
		signedURLs:   cfg.SignedURLs,
		signedURLTTL: cfg.SignedURLTTL,
	}, nil
}

// CreateContainer creates the blob container if it does not exist.
// ContainerAlreadyExists is success, not an error.
func (s *AzureStorage) CreateContainer(ctx context.Context) error {
	_, err := s.client.CreateContainer(ctx, s.container, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return nil
		}
		return fmt.Errorf("%w: failed to create container %s: %v", storage.ErrBackendUnavailable, s.container, err)
	}

	return nil
}

// Upload stores a photo in Azure Blob Storage, overwriting any existing blob
// of the same name. The blob gets its inferred content type and a one-year
// cache header.
func (s *AzureStorage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read data: %v", storage.ErrWriteFailed, err)
	}

	contentType := storage.ContentTypeFor(name)
	cacheControl := storage.CacheControl

	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlockBlobClient(name)

	_, err = blobClient.Upload(ctx, streaming.NopCloser(bytes.NewReader(data)), &blockblob.UploadOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType:  &contentType,
			BlobCacheControl: &cacheControl,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to upload to Azure Blob: %v", storage.ErrWriteFailed, err)
	}

	return s.GetURL(name), nil
}

// Download retrieves a photo from Azure Blob Storage
func (s *AzureStorage) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: failed to download from Azure Blob: %v", storage.ErrBackendUnavailable, err)
	}

	return resp.Body, nil
}

// Delete removes a photo from Azure Blob Storage. Deleting an absent blob is
// not an error; the bool reports whether a blob was actually removed.
func (s *AzureStorage) Delete(ctx context.Context, name string) (bool, error) {
	_, err := s.client.DeleteBlob(ctx, s.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to delete from Azure Blob: %v", storage.ErrWriteFailed, err)
	}

	return true, nil
}

// List enumerates all blobs in the container using the flat pager.
// A missing container yields an empty slice, not an error.
func (s *AzureStorage) List(ctx context.Context) ([]storage.Object, error) {
	objects := []storage.Object{}

	pager := s.client.NewListBlobsFlatPager(s.container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if bloberror.HasCode(err, bloberror.ContainerNotFound) {
				return []storage.Object{}, nil
			}
			return nil, fmt.Errorf("%w: failed to list Azure blobs: %v", storage.ErrBackendUnavailable, err)
		}

		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			obj := storage.Object{
				Name:        *item.Name,
				ContentType: storage.ContentTypeFor(*item.Name),
				URL:         s.GetURL(*item.Name),
			}
			if props := item.Properties; props != nil {
				if props.ContentLength != nil {
					obj.Size = *props.ContentLength
				}
				if props.ContentType != nil && *props.ContentType != "" {
					obj.ContentType = *props.ContentType
				}
				if props.CreationTime != nil {
					obj.CreatedAt = *props.CreationTime
				} else if props.LastModified != nil {
					obj.CreatedAt = *props.LastModified
				}
			}
			objects = append(objects, obj)
		}
	}

	return objects, nil
}

// Exists checks if a photo exists in the container.
func (s *AzureStorage) Exists(ctx context.Context, name string) (bool, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(name)

	_, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to check blob existence: %v", storage.ErrBackendUnavailable, err)
	}

	return true, nil
}

// GetURL returns the blob's canonical URL, or a time-limited SAS URL when
// signed URLs are enabled. It is pure string construction plus local signing;
// no existence check and no network I/O.
func (s *AzureStorage) GetURL(name string) string {
	blobURL := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(name).URL()

	if !s.signedURLs {
		return blobURL
	}

	credential, err := azblob.NewSharedKeyCredential(s.accountName, s.accountKey)
	if err != nil {
		// Credentials were validated at construction; fall back to the
		// canonical URL rather than failing the request.
		return blobURL
	}

	sasQueryParams, err := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     time.Now().UTC().Add(-5 * time.Minute), // Allow for clock skew
		ExpiryTime:    time.Now().UTC().Add(s.signedURLTTL),
		Permissions:   (&sas.BlobPermissions{Read: true}).String(),
		ContainerName: s.container,
		BlobName:      name,
	}.SignWithSharedKey(credential)
	if err != nil {
		return blobURL
	}

	return fmt.Sprintf("%s?%s", blobURL, sasQueryParams.Encode())
}

// Package s3 implements the AWS S3 storage backend for PhotoVault, registered
// under the backend name "aws". It supports AWS S3, MinIO, and other
// S3-compatible services via a configurable endpoint. The bucket is created at
// boot if missing and configured for public read access so photo URLs can be
// fetched directly by browsers. Multiple authentication methods are supported:
// the default AWS credential chain (recommended for EC2/EKS with IAM roles),
// static key/secret, OIDC web identity, and AssumeRole for cross-account access.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	appconfig "github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/storage"
)

func init() {
	// Register S3 storage backend under the "aws" config value
	storage.Register("aws", func(cfg *appconfig.Config) (storage.Storage, error) {
		return New(&cfg.Storage.S3, cfg.Storage.Container)
	})
}

// S3Storage implements the Storage interface for S3-compatible storage
type S3Storage struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
}

// New creates a new S3-compatible storage backend
//
// Authentication methods:
//   - "default" or empty: Uses AWS default credential chain (env vars, shared config, IAM role, IMDS)
//   - "static": Uses explicit access key and secret key
//   - "oidc": Uses Web Identity/OIDC token (for EKS, GitHub Actions, etc.)
//   - "assume_role": Assumes an IAM role (optionally with external ID for cross-account)
func New(cfg *appconfig.S3StorageConfig, bucket string) (*S3Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage container is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3 region is required")
	}

	// Build AWS config options
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	// Determine authentication method
	authMethod := cfg.AuthMethod
	if authMethod == "" {
		// Backwards compatibility: if access keys are provided, use static auth
		if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
			authMethod = "static"
		} else {
			authMethod = "default"
		}
	}

	switch authMethod {
	case "static":
		if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
			return nil, fmt.Errorf("access_key_id and secret_access_key are required for static auth")
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))

	case "oidc", "assume_role":
		// Configured after loading base config; both require role_arn.

	case "default":
		// AWS default credential chain: env vars, shared credentials file,
		// IAM role for EC2/ECS/Lambda, EKS pod identity.

	default:
		return nil, fmt.Errorf("unsupported auth_method: %s (must be 'default', 'static', 'oidc', or 'assume_role')", authMethod)
	}

	// Load base AWS configuration
	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Configure OIDC or AssumeRole credentials (requires base config first)
	switch authMethod {
	case "oidc":
		if cfg.RoleARN == "" {
			return nil, fmt.Errorf("role_arn is required for OIDC auth")
		}
		if cfg.WebIdentityTokenFile == "" {
			return nil, fmt.Errorf("web_identity_token_file is required for OIDC auth")
		}

		stsClient := sts.NewFromConfig(awsCfg)

		var webIdentityOpts []func(*stscreds.WebIdentityRoleOptions)
		if cfg.RoleSessionName != "" {
			webIdentityOpts = append(webIdentityOpts, func(o *stscreds.WebIdentityRoleOptions) {
				o.RoleSessionName = cfg.RoleSessionName
			})
		}

		provider := stscreds.NewWebIdentityRoleProvider(
			stsClient,
			cfg.RoleARN,
			stscreds.IdentityTokenFile(cfg.WebIdentityTokenFile),
			webIdentityOpts...,
		)
		awsCfg.Credentials = aws.NewCredentialsCache(provider)

	case "assume_role":
		if cfg.RoleARN == "" {
			return nil, fmt.Errorf("role_arn is required for assume_role auth")
		}

		stsClient := sts.NewFromConfig(awsCfg)

		var assumeRoleOpts []func(*stscreds.AssumeRoleOptions)
		if cfg.RoleSessionName != "" {
			assumeRoleOpts = append(assumeRoleOpts, func(o *stscreds.AssumeRoleOptions) {
				o.RoleSessionName = cfg.RoleSessionName
			})
		}
		if cfg.ExternalID != "" {
			assumeRoleOpts = append(assumeRoleOpts, func(o *stscreds.AssumeRoleOptions) {
				o.ExternalID = aws.String(cfg.ExternalID)
			})
		}

		provider := stscreds.NewAssumeRoleProvider(stsClient, cfg.RoleARN, assumeRoleOpts...)
		awsCfg.Credentials = aws.NewCredentialsCache(provider)
	}

	// Build S3 client options
	var s3Opts []func(*s3.Options)

	// Custom endpoint for S3-compatible services (MinIO etc.); these need
	// path-style addressing because bucket subdomains rarely resolve.
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Storage{
		client:   s3.NewFromConfig(awsCfg, s3Opts...),
		bucket:   bucket,
		region:   cfg.Region,
		endpoint: cfg.Endpoint,
	}, nil
}

// CreateContainer ensures the bucket exists and is configured for public photo
// reads. On first creation it attaches a public-read bucket policy and a
// public access block that still blocks public ACLs while allowing the bucket
// policy itself.
func (s *S3Storage) CreateContainer(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("%w: failed to check bucket %s: %v", storage.ErrBackendUnavailable, s.bucket, err)
	}

	createInput := &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	}
	// us-east-1 rejects an explicit LocationConstraint.
	if s.region != "us-east-1" {
		createInput.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, createInput); err != nil {
		return fmt.Errorf("%w: failed to create bucket %s: %v", storage.ErrBackendUnavailable, s.bucket, err)
	}

	// Allow the bucket policy below while still blocking public ACLs.
	_, err = s.client.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(s.bucket),
		PublicAccessBlockConfiguration: &types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(true),
			IgnorePublicAcls:      aws.Bool(true),
			BlockPublicPolicy:     aws.Bool(false),
			RestrictPublicBuckets: aws.Bool(false),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to configure public access block: %v", storage.ErrBackendUnavailable, err)
	}

	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [{
			"Sid": "PublicReadGetObject",
			"Effect": "Allow",
			"Principal": "*",
			"Action": "s3:GetObject",
			"Resource": "arn:aws:s3:::%s/*"
		}]
	}`, s.bucket)
	_, err = s.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(s.bucket),
		Policy: aws.String(policy),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to attach bucket policy: %v", storage.ErrBackendUnavailable, err)
	}

	return nil
}

// Upload stores a photo in S3, overwriting any existing object of the same
// key. The object gets its inferred content type and a one-year cache header.
func (s *S3Storage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read data: %v", storage.ErrWriteFailed, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(storage.ContentTypeFor(name)),
		CacheControl:  aws.String(storage.CacheControl),
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to upload to S3: %v", storage.ErrWriteFailed, err)
	}

	return s.GetURL(name), nil
}

// Download retrieves a photo from S3
func (s *S3Storage) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: failed to download from S3: %v", storage.ErrBackendUnavailable, err)
	}

	return result.Body, nil
}

// Delete removes a photo from S3. S3 DeleteObject succeeds whether or not the
// key existed, so the bool is always true on success.
func (s *S3Storage) Delete(ctx context.Context, name string) (bool, error) {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return false, fmt.Errorf("%w: failed to delete from S3: %v", storage.ErrWriteFailed, err)
	}

	return true, nil
}

// List enumerates all objects in the bucket. A missing bucket yields an empty
// slice, not an error.
func (s *S3Storage) List(ctx context.Context) ([]storage.Object, error) {
	objects := []storage.Object{}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			var noSuchBucket *types.NoSuchBucket
			if errors.As(err, &noSuchBucket) {
				return []storage.Object{}, nil
			}
			return nil, fmt.Errorf("%w: failed to list S3 objects: %v", storage.ErrBackendUnavailable, err)
		}

		for _, item := range page.Contents {
			if item.Key == nil {
				continue
			}
			obj := storage.Object{
				Name:        *item.Key,
				ContentType: storage.ContentTypeFor(*item.Key),
				URL:         s.GetURL(*item.Key),
			}
			if item.Size != nil {
				obj.Size = *item.Size
			}
			if item.LastModified != nil {
				obj.CreatedAt = *item.LastModified
			}
			objects = append(objects, obj)
		}
	}

	return objects, nil
}

// Exists checks if a photo exists in the bucket.
func (s *S3Storage) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to check object existence: %v", storage.ErrBackendUnavailable, err)
	}

	return true, nil
}

// GetURL returns the object's public URL. With a custom endpoint the
// path-style form <endpoint>/<bucket>/<key> is used; against AWS proper the
// virtual-hosted form https://<bucket>.s3.<region>.amazonaws.com/<key>.
// Pure string construction, no existence check.
func (s *S3Storage) GetURL(name string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, name)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, name)
}

package assets

import (
	"context"
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// objectGetter is the part of *minio.Client the store needs.
type objectGetter interface {
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// MinioStore serves assets from a MinIO (S3 compatible) bucket.
type MinioStore struct {
	client objectGetter
	bucket string
}

func NewMinioStore(client *minio.Client, bucket string) *MinioStore {
	return &MinioStore{client: client, bucket: bucket}
}

// NewMinioClient builds a MinIO client with static credentials.
func NewMinioClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return client, nil
}

// Open fetches the object named name. The returned content supports seeking,
// so range requests are served without buffering the object.
func (s *MinioStore) Open(ctx context.Context, name string) (*Asset, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("%q: %w", name, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate(name, err)
	}

	// GetObject is lazy; Stat performs the request.
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, s.translate(name, err)
	}

	return &Asset{
		Name:    info.Key,
		ModTime: info.LastModified,
		Content: obj,
	}, nil
}

func (s *MinioStore) translate(name string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return fmt.Errorf("failed to get object %q from bucket %q: %w", name, s.bucket, err)
}

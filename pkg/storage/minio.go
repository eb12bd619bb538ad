package storage

import (
	"context"
	"github.com/minio/minio-go/v7"
)

type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(client *minio.Client, bucket string) *MinioStore {
	return &MinioStore{
		client: client,
		bucket: bucket,
	}
}

// RemoveObject deletes one uploaded video. A key that is already gone is not an error.
func (s *MinioStore) RemoveObject(ctx context.Context, objectKey string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return nil
	}
	return err
}

// RemovePrefix deletes every object below prefix, used for per-user upload folders.
func (s *MinioStore) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	// stops the listing goroutine when we return early
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := s.client.ListObjects(listCtx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	removed := 0
	for object := range objects {
		if object.Err != nil {
			return removed, object.Err
		}
		if err := s.RemoveObject(ctx, object.Key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

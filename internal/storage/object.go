package storage

import (
	"context"
	"errors"

	"github.com/getmentor/course-feedback-api/pkg/objectstore"
)

// objectClient is the part of objectstore.StorageClient the store needs
type objectClient interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// ObjectStore keeps each key as one object in an S3-compatible bucket
type ObjectStore struct {
	client objectClient
}

// NewObjectStore creates a store backed by client
func NewObjectStore(client objectClient) *ObjectStore {
	return &ObjectStore{client: client}
}

func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Download(ctx, key)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *ObjectStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Upload(ctx, key, value)
}

func (s *ObjectStore) Close() error {
	return nil
}

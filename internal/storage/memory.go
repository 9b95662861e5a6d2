package storage

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process memory. Contents are lost on restart.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates an empty in-memory store whose entries never expire
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, found := s.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	value, ok := data.([]byte)
	if !ok {
		// only Set writes here, so this is a programming error
		s.cache.Delete(key)
		return nil, false, nil
	}
	return cloneBytes(value), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.cache.Set(key, cloneBytes(value), gocache.NoExpiration)
	return nil
}

func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}

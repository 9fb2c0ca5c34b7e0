package memory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"github.com/Dahbi-Dev/Excel-easy/internal/repository"
)

type store struct {
	c *cache.Cache
}

// NewStore returns a process-local store. Entries never expire.
func NewStore() repository.KVStore {
	return &store{c: cache.New(cache.NoExpiration, 0)}
}

func (s *store) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, repository.ErrNotFound
	}
	b := v.([]byte)
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (s *store) Set(_ context.Context, key string, value []byte) error {
	b := make([]byte, len(value))
	copy(b, value)
	s.c.Set(key, b, cache.NoExpiration)
	return nil
}

func (s *store) Delete(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

func (s *store) Close() error {
	s.c.Flush()
	return nil
}

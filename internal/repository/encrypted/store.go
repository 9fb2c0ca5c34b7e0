// Package encrypted seals values before they reach another KVStore. Keys are
// stored in clear; sealed values are base64 text so text columns accept them.
package encrypted

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/Dahbi-Dev/Excel-easy/internal/repository"
	"github.com/Dahbi-Dev/Excel-easy/pkg/security"
)

type store struct {
	next repository.KVStore
	enc  security.Encryptor
}

// NewStore wraps next. Ping is forwarded when next supports it.
func NewStore(next repository.KVStore, enc security.Encryptor) repository.KVStore {
	return &store{next: next, enc: enc}
}

func (s *store) Get(ctx context.Context, key string) ([]byte, error) {
	stored, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	sealed, err := base64.StdEncoding.DecodeString(string(stored))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	plain, err := s.enc.Decrypt(sealed)
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w", key, err)
	}
	return plain, nil
}

func (s *store) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := s.enc.Encrypt(value)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", key, err)
	}
	return s.next.Set(ctx, key, []byte(base64.StdEncoding.EncodeToString(sealed)))
}

func (s *store) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}

func (s *store) Ping(ctx context.Context) error {
	if p, ok := s.next.(repository.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *store) Close() error {
	return s.next.Close()
}

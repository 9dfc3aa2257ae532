package session

import (
	"context"
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v2"
)

// MemoryStore keeps sessions in process. Sessions are lost on restart and
// aren't shared between instances.
type MemoryStore struct {
	cache *ttlcache.Cache
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	c := ttlcache.NewCache()
	c.SkipTTLExtensionOnHit(true)

	return &MemoryStore{cache: c, now: time.Now}
}

func (s *MemoryStore) Put(_ context.Context, d *Data) error {
	ttl := d.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	cp := *d
	return s.cache.SetWithTTL(d.ID, &cp, ttl)
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Data, error) {
	v, err := s.cache.Get(id)
	if err != nil {
		if errors.Is(err, ttlcache.ErrNotFound) {
			return nil, ErrNoSession
		}

		return nil, err
	}

	d := *v.(*Data)
	if !s.now().Before(d.ExpiresAt) {
		return nil, ErrNoSession
	}

	return &d, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	err := s.cache.Remove(id)
	if err != nil && !errors.Is(err, ttlcache.ErrNotFound) {
		return err
	}

	return nil
}

func (s *MemoryStore) Close() error {
	return s.cache.Close()
}

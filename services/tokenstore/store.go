// Package tokenstore keeps track of revoked access tokens until they expire.
package tokenstore

import (
	"context"
	"sync"
	"time"
)

// Store records the ids (jti) of revoked tokens.
type Store interface {
	// Revoke marks jti as revoked until the given time, after which the token would be rejected anyway.
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type memoryStore struct {
	mutex   sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

var _ Store = (*memoryStore)(nil)

// NewMemoryStore returns a Store local to the process.
func NewMemoryStore() *memoryStore {
	return &memoryStore{revoked: make(map[string]time.Time), now: time.Now}
}

func (s *memoryStore) Revoke(_ context.Context, jti string, until time.Time) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.purge()
	if until.After(s.now()) {
		s.revoked[jti] = until
	}
	return nil
}

func (s *memoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	until, ok := s.revoked[jti]
	return ok && until.After(s.now()), nil
}

// purge drops the entries of expired tokens.
func (s *memoryStore) purge() {
	now := s.now()
	for jti, until := range s.revoked {
		if !until.After(now) {
			delete(s.revoked, jti)
		}
	}
}

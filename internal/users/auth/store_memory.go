// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryRevocationStore keeps revoked token ids in process memory. It is used
// when no Redis URL is configured; revocations are lost on restart.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevocationStore creates an empty in-memory RevocationStore.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke records tokenID until now+ttl and drops entries that already expired.
func (store *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	now := store.now()
	for id, expiresAt := range store.revoked {
		if !now.Before(expiresAt) {
			delete(store.revoked, id)
		}
	}

	store.revoked[tokenID] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether tokenID is still inside its revocation window.
func (store *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	expiresAt, found := store.revoked[tokenID]
	return found && store.now().Before(expiresAt), nil
}

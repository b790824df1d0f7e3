package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskbrief/internal/identity/domain"
)

type resetEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// MemoryStore implements domain.SessionStore in process memory. State dies
// with the process, so it only suits tests and single-process embedding.
type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	resets  map[string]resetEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		revoked: make(map[string]time.Time),
		resets:  make(map[string]resetEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Revoke(_ context.Context, sessionID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	if until.After(s.now()) {
		s.revoked[sessionID] = until
	}
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.revoked[sessionID]
	return ok && until.After(s.now()), nil
}

func (s *MemoryStore) SaveResetToken(_ context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.resets[tokenHash] = resetEntry{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) LookupResetToken(_ context.Context, tokenHash string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.resets[tokenHash]
	if !ok || !entry.expiresAt.After(s.now()) {
		return uuid.Nil, domain.ErrInvalidResetToken
	}
	return entry.userID, nil
}

func (s *MemoryStore) ConsumeResetToken(_ context.Context, tokenHash string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.resets[tokenHash]
	delete(s.resets, tokenHash)
	if !ok || !entry.expiresAt.After(s.now()) {
		return uuid.Nil, domain.ErrInvalidResetToken
	}
	return entry.userID, nil
}

// sweep drops expired entries. Callers hold mu.
func (s *MemoryStore) sweep() {
	now := s.now()
	for id, until := range s.revoked {
		if !until.After(now) {
			delete(s.revoked, id)
		}
	}
	for hash, entry := range s.resets {
		if !entry.expiresAt.After(now) {
			delete(s.resets, hash)
		}
	}
}

package session

import (
	"context"
	"sync"
	"time"

	"workspace-platform/internal/users"
)

// MemoryStore is a map-backed Store for tests and local runs. It joins
// against a users.Repository at lookup time, mirroring the SQL join.
type MemoryStore struct {
	mu      sync.Mutex
	byToken map[string]Record
	byUser  map[string]string // user_id -> token
	users   users.Repository
}

func NewMemoryStore(usersRepo users.Repository) *MemoryStore {
	return &MemoryStore{
		byToken: make(map[string]Record),
		byUser:  make(map[string]string),
		users:   usersRepo,
	}
}

func (s *MemoryStore) Put(_ context.Context, userID, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byUser[userID]; ok {
		delete(s.byToken, old)
	}
	s.byToken[token] = Record{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	s.byUser[userID] = token
	return nil
}

func (s *MemoryStore) Lookup(ctx context.Context, token string) (Record, error) {
	s.mu.Lock()
	rec, ok := s.byToken[token]
	s.mu.Unlock()
	if !ok {
		return Record{}, ErrRecordNotFound
	}

	u, err := s.users.FindByID(ctx, rec.UserID)
	if err != nil {
		return Record{}, err
	}
	u.PasswordHash = ""
	rec.User = u
	return rec, nil
}

func (s *MemoryStore) Invalidate(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.byToken[token]; ok {
		delete(s.byToken, token)
		if s.byUser[rec.UserID] == token {
			delete(s.byUser, rec.UserID)
		}
	}
	return nil
}

func (s *MemoryStore) InvalidateAllForUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.byUser[userID]
	if !ok {
		return 0, nil
	}
	delete(s.byToken, tok)
	delete(s.byUser, userID)
	return 1, nil
}

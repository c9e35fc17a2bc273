package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	usermodel "github.com/Varun5711/modesta/internal/models/user"
	"github.com/google/uuid"
)

// MemoryUserStorage is a UserStore backed by maps. It enforces the same
// unique-email rule as the users table and hands out copies only.
type MemoryUserStorage struct {
	mu      sync.RWMutex
	byID    map[string]*usermodel.User
	byEmail map[string]string
	now     func() time.Time
}

func NewMemoryUserStorage() *MemoryUserStorage {
	return &MemoryUserStorage{
		byID:    make(map[string]*usermodel.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (s *MemoryUserStorage) FindByEmail(_ context.Context, email string) (*usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[usermodel.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return s.byID[id].Clone(), nil
}

func (s *MemoryUserStorage) FindByID(_ context.Context, id string) (*usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return u.Clone(), nil
}

func (s *MemoryUserStorage) ConsumeVerificationToken(_ context.Context, token string, now time.Time) (*usermodel.User, error) {
	if token == "" {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byID {
		if u.VerificationToken == token && u.VerificationExpires != nil && u.VerificationExpires.After(now) {
			u.MarkEmailVerified()
			u.UpdatedAt = s.now().UTC()
			return u.Clone(), nil
		}
	}
	return nil, nil
}

func (s *MemoryUserStorage) ReplaceVerificationToken(_ context.Context, id, token string, expires time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok || u.IsEmailVerified {
		return false, nil
	}
	u.SetVerificationToken(token, expires)
	u.UpdatedAt = s.now().UTC()
	return true, nil
}

func (s *MemoryUserStorage) UpdatePassword(_ context.Context, id, hash string, changedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	u.Credential = usermodel.HashedPassword{Hash: hash}
	if changedAt != nil {
		t := *changedAt
		u.PasswordChangedAt = &t
	} else {
		u.PasswordChangedAt = nil
	}
	u.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemoryUserStorage) Create(_ context.Context, u *usermodel.User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[u.Email]; exists {
		return ErrDuplicateEmail
	}

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := s.now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	s.byID[u.ID] = u.Clone()
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryUserStorage) Save(_ context.Context, u *usermodel.User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[u.ID]
	if !ok {
		return fmt.Errorf("user %s not found", u.ID)
	}
	if owner, taken := s.byEmail[u.Email]; taken && owner != u.ID {
		return ErrDuplicateEmail
	}

	u.UpdatedAt = s.now().UTC()
	delete(s.byEmail, existing.Email)
	s.byID[u.ID] = u.Clone()
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryUserStorage) ClearExpiredVerificationTokens(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cleared int64
	for _, u := range s.byID {
		if u.VerificationToken != "" && u.VerificationExpires != nil && u.VerificationExpires.Before(now) {
			u.VerificationToken = ""
			u.VerificationExpires = nil
			cleared++
		}
	}
	return cleared, nil
}

func (s *MemoryUserStorage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	usermodel "github.com/Varun5711/modesta/internal/models/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(email string) *usermodel.User {
	return &usermodel.User{FullName: "Amina Test", Email: email}
}

func TestMemoryUserStorage_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStorage()

	u := newUser(" Amina@Example.com ")
	require.NoError(t, s.Create(ctx, u))
	require.NotEmpty(t, u.ID)
	assert.Equal(t, "amina@example.com", u.Email)
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := s.FindByEmail(ctx, "AMINA@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, usermodel.RoleUser, byEmail.Role)

	byID, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)

	missing, err := s.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryUserStorage_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStorage()

	require.NoError(t, s.Create(ctx, newUser("dup@example.com")))
	err := s.Create(ctx, newUser("DUP@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, 1, s.Count())
}

func TestMemoryUserStorage_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStorage()

	var wg sync.WaitGroup
	var ok, dup atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := s.Create(ctx, newUser("race@example.com")); err {
			case nil:
				ok.Add(1)
			case ErrDuplicateEmail:
				dup.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(19), dup.Load())
}

func TestMemoryUserStorage_SaveValidates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStorage()

	u := newUser("amina@example.com")
	require.NoError(t, s.Create(ctx, u))

	u.FullName = ""
	assert.ErrorIs(t, s.Save(ctx, u), usermodel.ErrFullNameRequired)

	u.FullName = "Amina"
	u.IsEmailVerified = true
	require.NoError(t, s.Save(ctx, u))

	got, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsEmailVerified)
}

func TestMemoryUserStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStorage()

	u := newUser("amina@example.com")
	require.NoError(t, s.Create(ctx, u))

	got, _ := s.FindByID(ctx, u.ID)
	got.IsEmailVerified = true

	again, _ := s.FindByID(ctx, u.ID)
	assert.False(t, again.IsEmailVerified)
}

func TestMemoryUserStorage_VerificationTokenExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStorage()
	now := time.Now()

	u := newUser("amina@example.com")
	u.SetVerificationToken("tok", now.Add(time.Hour))
	require.NoError(t, s.Create(ctx, u))

	expired, err := s.ConsumeVerificationToken(ctx, "tok", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, expired)

	cleared, err := s.ClearExpiredVerificationTokens(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	found, err := s.ConsumeVerificationToken(ctx, "tok", now)
	require.NoError(t, err)
	assert.Nil(t, found)

	stored, _ := s.FindByID(ctx, u.ID)
	assert.False(t, stored.IsEmailVerified)
}

func TestMemoryUserStorage_ConsumeVerificationTokenOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStorage()
	now := time.Now()

	u := newUser("amina@example.com")
	u.SetVerificationToken("tok", now.Add(time.Hour))
	require.NoError(t, s.Create(ctx, u))

	var wg sync.WaitGroup
	var won atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.ConsumeVerificationToken(ctx, "tok", now)
			if err == nil && got != nil {
				won.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), won.Load())

	stored, _ := s.FindByID(ctx, u.ID)
	assert.True(t, stored.IsEmailVerified)
	assert.Empty(t, stored.VerificationToken)
	assert.Nil(t, stored.VerificationExpires)
}

func TestMemoryUserStorage_ReplaceVerificationToken(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStorage()
	now := time.Now()

	u := newUser("amina@example.com")
	u.SetVerificationToken("first", now.Add(time.Hour))
	require.NoError(t, s.Create(ctx, u))

	ok, err := s.ReplaceVerificationToken(ctx, u.ID, "second", now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.ConsumeVerificationToken(ctx, "first", now)
	require.NoError(t, err)
	assert.Nil(t, got, "the replaced token no longer matches")

	got, err = s.ConsumeVerificationToken(ctx, "second", now)
	require.NoError(t, err)
	require.NotNil(t, got)

	ok, err = s.ReplaceVerificationToken(ctx, u.ID, "third", now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "verified accounts keep their state")

	stored, _ := s.FindByID(ctx, u.ID)
	assert.True(t, stored.IsEmailVerified)
	assert.Empty(t, stored.VerificationToken)

	ok, err = s.ReplaceVerificationToken(ctx, "missing", "tok", now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryUserStorage_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStorage()
	now := time.Now()

	u := newUser("amina@example.com")
	u.SetVerificationToken("tok", now.Add(time.Hour))
	require.NoError(t, s.Create(ctx, u))
	_, err := s.ConsumeVerificationToken(ctx, "tok", now)
	require.NoError(t, err)

	changed := now.Add(-time.Second)
	require.NoError(t, s.UpdatePassword(ctx, u.ID, "hash", &changed))

	stored, _ := s.FindByID(ctx, u.ID)
	hash, ok := stored.PasswordHash()
	assert.True(t, ok)
	assert.Equal(t, "hash", hash)
	require.NotNil(t, stored.PasswordChangedAt)
	assert.True(t, stored.PasswordChangedAt.Equal(changed))
	assert.True(t, stored.IsEmailVerified, "a password write leaves verification alone")

	assert.Error(t, s.UpdatePassword(ctx, "missing", "hash", nil))
}

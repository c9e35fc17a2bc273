package storage

import (
	"context"
	"errors"
	"time"

	usermodel "github.com/Varun5711/modesta/internal/models/user"
)

var ErrDuplicateEmail = errors.New("user already exists with this email")

// UserStore persists accounts. Lookups return (nil, nil) when nothing
// matches. Create and Save validate the record before writing it.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*usermodel.User, error)
	FindByID(ctx context.Context, id string) (*usermodel.User, error)
	// ConsumeVerificationToken marks the matching account verified and clears
	// the token in one step, so a token succeeds at most once. Only tokens
	// still unexpired at now match.
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*usermodel.User, error)
	// ReplaceVerificationToken stores a fresh token on an unverified account.
	// It reports false when the account is verified or gone.
	ReplaceVerificationToken(ctx context.Context, id, token string, expires time.Time) (bool, error)
	// UpdatePassword writes only the credential columns.
	UpdatePassword(ctx context.Context, id, hash string, changedAt *time.Time) error
	Create(ctx context.Context, u *usermodel.User) error
	Save(ctx context.Context, u *usermodel.User) error
	ClearExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error)
}

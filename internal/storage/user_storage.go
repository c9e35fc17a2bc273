package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Varun5711/modesta/internal/database"
	usermodel "github.com/Varun5711/modesta/internal/models/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const userColumns = `
	id, full_name, email, password_hash, is_email_verified,
	COALESCE(verification_token, ''), verification_expires, password_changed_at, role,
	country, city, brands, hijab_style, favorite_colors, style_personality,
	created_at, updated_at`

type PostgresUserStorage struct {
	db *database.DBManager
}

func NewPostgresUserStorage(db *database.DBManager) *PostgresUserStorage {
	return &PostgresUserStorage{db: db}
}

func scanUser(row pgx.Row) (*usermodel.User, error) {
	var (
		u            usermodel.User
		passwordHash *string
		role         string
	)

	err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&passwordHash,
		&u.IsEmailVerified,
		&u.VerificationToken,
		&u.VerificationExpires,
		&u.PasswordChangedAt,
		&role,
		&u.Profile.Country,
		&u.Profile.City,
		&u.Profile.Brands,
		&u.Profile.HijabStyle,
		&u.Profile.FavoriteColors,
		&u.Profile.StylePersonality,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Role = usermodel.Role(role)
	if passwordHash != nil && *passwordHash != "" {
		u.Credential = usermodel.HashedPassword{Hash: *passwordHash}
	} else {
		u.Credential = usermodel.NoPassword{}
	}
	return &u, nil
}

func (s *PostgresUserStorage) findOne(ctx context.Context, query string, args ...any) (*usermodel.User, error) {
	// Credential reads go to the primary: a login right after signup must
	// see the new row.
	u, err := scanUser(s.db.Write().QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStorage) FindByEmail(ctx context.Context, email string) (*usermodel.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, usermodel.NormalizeEmail(email))
}

func (s *PostgresUserStorage) FindByID(ctx context.Context, id string) (*usermodel.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *PostgresUserStorage) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*usermodel.User, error) {
	if token == "" {
		return nil, nil
	}
	return s.findOne(ctx, `
		UPDATE users
		SET is_email_verified = TRUE, verification_token = NULL, verification_expires = NULL, updated_at = $3
		WHERE verification_token = $1 AND verification_expires > $2
		RETURNING `+userColumns, token, now, time.Now().UTC())
}

func (s *PostgresUserStorage) ReplaceVerificationToken(ctx context.Context, id, token string, expires time.Time) (bool, error) {
	query := `
		UPDATE users
		SET verification_token = $2, verification_expires = $3, updated_at = $4
		WHERE id = $1 AND is_email_verified = FALSE
	`

	cmdTag, err := s.db.Write().Exec(ctx, query, id, token, expires, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to replace verification token: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

func (s *PostgresUserStorage) UpdatePassword(ctx context.Context, id, hash string, changedAt *time.Time) error {
	query := `
		UPDATE users
		SET password_hash = $2, password_changed_at = $3, updated_at = $4
		WHERE id = $1
	`

	cmdTag, err := s.db.Write().Exec(ctx, query, id, hash, changedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", id)
	}
	return nil
}

func (s *PostgresUserStorage) Create(ctx context.Context, u *usermodel.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	query := `
		INSERT INTO users (
			id, full_name, email, password_hash, is_email_verified,
			verification_token, verification_expires, password_changed_at, role,
			country, city, brands, hijab_style, favorite_colors, style_personality,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := s.db.Write().Exec(ctx, query, append([]any{u.ID}, userArgs(u)...)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *PostgresUserStorage) Save(ctx context.Context, u *usermodel.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET full_name = $2, email = $3, password_hash = $4, is_email_verified = $5,
			verification_token = $6, verification_expires = $7, password_changed_at = $8, role = $9,
			country = $10, city = $11, brands = $12, hijab_style = $13,
			favorite_colors = $14, style_personality = $15,
			created_at = $16, updated_at = $17
		WHERE id = $1
	`

	cmdTag, err := s.db.Write().Exec(ctx, query, append([]any{u.ID}, userArgs(u)...)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", u.ID)
	}
	return nil
}

// ClearExpiredVerificationTokens drops tokens past their expiry so they can
// no longer be matched. Accounts stay unverified and may resend.
func (s *PostgresUserStorage) ClearExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE users
		SET verification_token = NULL, verification_expires = NULL, updated_at = $1
		WHERE verification_token IS NOT NULL AND verification_expires < $1
	`

	cmdTag, err := s.db.Write().Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired verification tokens: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// userArgs returns columns 2..17 in table order.
func userArgs(u *usermodel.User) []any {
	var passwordHash *string
	if hash, ok := u.PasswordHash(); ok {
		passwordHash = &hash
	}
	var verificationToken *string
	if u.VerificationToken != "" {
		verificationToken = &u.VerificationToken
	}

	return []any{
		u.FullName,
		u.Email,
		passwordHash,
		u.IsEmailVerified,
		verificationToken,
		u.VerificationExpires,
		u.PasswordChangedAt,
		string(u.Role),
		u.Profile.Country,
		u.Profile.City,
		nonNil(u.Profile.Brands),
		u.Profile.HijabStyle,
		nonNil(u.Profile.FavoriteColors),
		nonNil(u.Profile.StylePersonality),
		u.CreatedAt,
		u.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

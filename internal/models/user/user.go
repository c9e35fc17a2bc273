package user

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxFullNameLength = 50
	MinPasswordLength = 8
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

var (
	ErrFullNameRequired = errors.New("please provide your name")
	ErrFullNameTooLong  = errors.New("name must be less than 50 characters")
	ErrEmailRequired    = errors.New("please provide your email")
	ErrInvalidEmail     = errors.New("please provide a valid email address")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrInvalidRole      = errors.New("role must be user or admin")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Credential is either NoPassword or HashedPassword. Switches over it should
// handle both cases; the interface is sealed to this package.
type Credential interface {
	isCredential()
}

// NoPassword marks an account that exists but has never set a password.
type NoPassword struct{}

// HashedPassword holds a bcrypt hash. The plaintext is never stored.
type HashedPassword struct {
	Hash string
}

func (NoPassword) isCredential()     {}
func (HashedPassword) isCredential() {}

// Profile holds styling attributes collected at signup. The auth core passes
// them through untouched.
type Profile struct {
	Country          string   `json:"country,omitempty"`
	City             string   `json:"city,omitempty"`
	Brands           []string `json:"brands,omitempty"`
	HijabStyle       string   `json:"hijabStyle,omitempty"`
	FavoriteColors   []string `json:"favoriteColors,omitempty"`
	StylePersonality []string `json:"stylePersonality,omitempty"`
}

type User struct {
	ID                  string
	FullName            string
	Email               string
	Credential          Credential
	IsEmailVerified     bool
	VerificationToken   string
	VerificationExpires *time.Time
	PasswordChangedAt   *time.Time
	Role                Role
	Profile             Profile
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NormalizeEmail lowercases and trims. Dots and +tags are kept so distinct
// mailboxes never collapse into one account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// Validate checks the persisted-field constraints and fills defaults.
// It returns the first failure.
func (u *User) Validate() error {
	u.FullName = strings.TrimSpace(u.FullName)
	if u.FullName == "" {
		return ErrFullNameRequired
	}
	if utf8.RuneCountInString(u.FullName) > MaxFullNameLength {
		return ErrFullNameTooLong
	}

	u.Email = NormalizeEmail(u.Email)
	if u.Email == "" {
		return ErrEmailRequired
	}
	if !ValidEmail(u.Email) {
		return ErrInvalidEmail
	}

	if u.Credential == nil {
		u.Credential = NoPassword{}
	}

	switch u.Role {
	case "":
		u.Role = RoleUser
	case RoleUser, RoleAdmin:
	default:
		return ErrInvalidRole
	}
	return nil
}

func (u *User) HasPassword() bool {
	_, ok := u.PasswordHash()
	return ok
}

// PasswordHash returns the stored hash, or false for a NoPassword account.
func (u *User) PasswordHash() (string, bool) {
	switch c := u.Credential.(type) {
	case HashedPassword:
		return c.Hash, c.Hash != ""
	case NoPassword, nil:
		return "", false
	default:
		return "", false
	}
}

// SetPasswordHash stores a new hash. For an existing account the change time
// is backdated one second so a token minted right after still validates.
func (u *User) SetPasswordHash(hash string, now time.Time) {
	u.Credential = HashedPassword{Hash: hash}
	if !u.CreatedAt.IsZero() {
		changed := now.Add(-time.Second)
		u.PasswordChangedAt = &changed
	}
}

// ChangedPasswordAfter reports whether a token issued at issuedAt predates
// the last password change. Comparison is at second granularity, matching
// the JWT iat claim.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

func (u *User) SetVerificationToken(token string, expires time.Time) {
	u.VerificationToken = token
	u.VerificationExpires = &expires
}

// MarkEmailVerified flips the flag and consumes the verification token.
func (u *User) MarkEmailVerified() {
	u.IsEmailVerified = true
	u.VerificationToken = ""
	u.VerificationExpires = nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicUser is the response shape. It never carries the credential.
type PublicUser struct {
	ID              string    `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	IsVerified      bool      `json:"isVerified"`
	Role            Role      `json:"role"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Profile
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		FullName:        u.FullName,
		Email:           u.Email,
		IsEmailVerified: u.IsEmailVerified,
		IsVerified:      u.IsEmailVerified,
		Role:            u.Role,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
		Profile:         u.Profile,
	}
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.VerificationExpires != nil {
		t := *u.VerificationExpires
		c.VerificationExpires = &t
	}
	if u.PasswordChangedAt != nil {
		t := *u.PasswordChangedAt
		c.PasswordChangedAt = &t
	}
	c.Profile.Brands = append([]string(nil), u.Profile.Brands...)
	c.Profile.FavoriteColors = append([]string(nil), u.Profile.FavoriteColors...)
	c.Profile.StylePersonality = append([]string(nil), u.Profile.StylePersonality...)
	return &c
}

package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Varun5711/modesta/internal/auth"
	"github.com/Varun5711/modesta/internal/events"
	"github.com/Varun5711/modesta/internal/logger"
	"github.com/Varun5711/modesta/internal/mailer"
	usermodel "github.com/Varun5711/modesta/internal/models/user"
	"github.com/Varun5711/modesta/internal/storage"
	"github.com/Varun5711/modesta/internal/validation"
)

const (
	MsgRegistered          = "Registration successful! Please check your email to verify your account."
	MsgSetPasswordRequired = "Please set a password for your account"
	MsgEmailVerified       = "Email verified successfully"
	MsgVerificationResent  = "Verification email resent successfully"
	MsgPasswordUpdated     = "Password updated successfully"
)

const emailSendTimeout = 15 * time.Second

type AuthService struct {
	store     storage.UserStore
	hasher    *auth.Hasher
	tokens    *auth.JWTManager
	mailer    mailer.Mailer
	publisher events.Publisher
	log       *logger.Logger

	now             func() time.Time
	verificationTTL time.Duration

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	store storage.UserStore,
	hasher *auth.Hasher,
	tokens *auth.JWTManager,
	m mailer.Mailer,
	publisher events.Publisher,
) *AuthService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &AuthService{
		store:           store,
		hasher:          hasher,
		tokens:          tokens,
		mailer:          m,
		publisher:       publisher,
		log:             logger.New("auth-service"),
		now:             time.Now,
		verificationTTL: auth.VerificationTokenTTL,
	}
}

// WithClock replaces the time source used for token expiry and password
// change tracking.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func (s *AuthService) WithVerificationTTL(ttl time.Duration) *AuthService {
	if ttl > 0 {
		s.verificationTTL = ttl
	}
	return s
}

func (s *AuthService) WithLogger(log *logger.Logger) *AuthService {
	s.log = log
	return s
}

type RegisterInput struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	Profile         usermodel.Profile
	Meta            events.Meta
}

type RegisterResult struct {
	Token   string
	User    usermodel.PublicUser
	Message string
}

// Register creates an unverified account and returns a session token. The
// verification email is best effort.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if errs := validation.ValidateSignup(validation.SignupInput{
		FullName:        in.FullName,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}); len(errs) > 0 {
		return nil, validationError(errs...)
	}

	email := usermodel.NormalizeEmail(in.Email)

	// The unique index decides; this lookup only saves a bcrypt round.
	existing, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, serverError("lookup user", err)
	}
	if existing != nil {
		return nil, newError(KindDuplicateEmail, MsgDuplicateEmail)
	}

	hash, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, serverError("hash password", err)
	}

	verificationToken, err := auth.GenerateOpaqueToken()
	if err != nil {
		return nil, serverError("verification token", err)
	}

	now := s.now()
	u := &usermodel.User{
		FullName:   in.FullName,
		Email:      email,
		Credential: usermodel.HashedPassword{Hash: hash},
		Role:       usermodel.RoleUser,
		Profile:    in.Profile,
	}
	u.SetVerificationToken(verificationToken, now.Add(s.verificationTTL))

	if err := s.store.Create(ctx, u); err != nil {
		return nil, storeError("create user", err)
	}

	s.log.Info("User %s registered", u.ID)
	s.publish(ctx, events.New(events.UserRegistered, u.ID, u.Email, in.Meta, now))

	s.sendVerification(ctx, u, verificationToken, in.Meta)

	token, _, err := s.tokens.IssueSessionToken(u.ID)
	if err != nil {
		return nil, serverError("issue token", err)
	}

	return &RegisterResult{
		Token:   token,
		User:    u.Public(),
		Message: MsgRegistered,
	}, nil
}

type LoginInput struct {
	Email    string
	Password string
	Meta     events.Meta
}

type LoginResult struct {
	Token string
	// User is nil when SetPasswordRequired is set.
	User                *usermodel.PublicUser
	SetPasswordRequired bool
	Email               string
	Message             string
}

// Login has three outcomes: unknown email and wrong password both fail with
// the same InvalidCredentials message; an account without a password either
// gets the set-password handoff or, when a password is supplied, adopts it.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if errs := validation.ValidateLogin(in.Email); len(errs) > 0 {
		return nil, validationError(errs...)
	}

	email := usermodel.NormalizeEmail(in.Email)
	now := s.now()

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, serverError("lookup user", err)
	}
	if u == nil {
		s.burnPasswordCheck(in.Password)
		s.publish(ctx, events.New(events.LoginFailed, "", email, in.Meta, now).WithReason("unknown_email"))
		return nil, newError(KindInvalidCredentials, MsgInvalidCredentials)
	}

	switch c := u.Credential.(type) {
	case usermodel.NoPassword:
		if in.Password == "" {
			return s.setPasswordHandoff(ctx, u, in.Meta, now)
		}
		return s.adoptFirstPassword(ctx, u, in.Password, in.Meta, now)

	case usermodel.HashedPassword:
		if err := s.hasher.CheckPassword(c.Hash, in.Password); err != nil {
			if !errors.Is(err, auth.ErrPasswordMismatch) {
				s.log.Error("Stored hash for user %s is unusable: %v", u.ID, err)
			}
			s.publish(ctx, events.New(events.LoginFailed, u.ID, u.Email, in.Meta, now).WithReason("bad_password"))
			return nil, newError(KindInvalidCredentials, MsgInvalidCredentials)
		}
		return s.completeLogin(ctx, u, in.Meta, now)

	default:
		return nil, serverError("login", errors.New("unknown credential type"))
	}
}

func (s *AuthService) setPasswordHandoff(ctx context.Context, u *usermodel.User, meta events.Meta, now time.Time) (*LoginResult, error) {
	token, _, err := s.tokens.IssueSetPasswordToken(u.ID)
	if err != nil {
		return nil, serverError("issue token", err)
	}

	s.publish(ctx, events.New(events.SetPasswordRequired, u.ID, u.Email, meta, now))

	return &LoginResult{
		Token:               token,
		SetPasswordRequired: true,
		Email:               u.Email,
		Message:             MsgSetPasswordRequired,
	}, nil
}

func (s *AuthService) adoptFirstPassword(ctx context.Context, u *usermodel.User, password string, meta events.Meta, now time.Time) (*LoginResult, error) {
	if errs := validation.PasswordStrength(password); len(errs) > 0 {
		return nil, validationError(errs...)
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, serverError("hash password", err)
	}
	u.SetPasswordHash(hash, now)

	if err := s.store.UpdatePassword(ctx, u.ID, hash, u.PasswordChangedAt); err != nil {
		return nil, storeError("update password", err)
	}

	s.log.Info("User %s set a first password at login", u.ID)
	s.publish(ctx, events.New(events.PasswordSet, u.ID, u.Email, meta, now).WithReason("first_login"))

	return s.completeLogin(ctx, u, meta, now)
}

func (s *AuthService) completeLogin(ctx context.Context, u *usermodel.User, meta events.Meta, now time.Time) (*LoginResult, error) {
	token, _, err := s.tokens.IssueSessionToken(u.ID)
	if err != nil {
		return nil, serverError("issue token", err)
	}

	s.publish(ctx, events.New(events.LoginSucceeded, u.ID, u.Email, meta, now))

	public := u.Public()
	return &LoginResult{
		Token: token,
		User:  &public,
		Email: u.Email,
	}, nil
}

// burnPasswordCheck spends a bcrypt comparison on unknown emails so the
// response time does not reveal whether the account exists.
func (s *AuthService) burnPasswordCheck(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.HashPassword("modesta-placeholder-password")
	})
	if s.dummyHash != "" {
		_ = s.hasher.CheckPassword(s.dummyHash, password)
	}
}

// VerifyEmail consumes a verification token. A token matches at most once
// and only before it expires.
func (s *AuthService) VerifyEmail(ctx context.Context, token string, meta events.Meta) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", newError(KindInvalidOrExpiredToken, MsgTokenRequired)
	}

	now := s.now()
	u, err := s.store.ConsumeVerificationToken(ctx, token, now)
	if err != nil {
		return "", serverError("consume token", err)
	}
	if u == nil {
		return "", newError(KindInvalidOrExpiredToken, MsgInvalidOrExpiredToken)
	}

	s.log.Info("Email verified for user %s", u.ID)
	s.publish(ctx, events.New(events.EmailVerified, u.ID, u.Email, meta, now))

	return MsgEmailVerified, nil
}

// ResendVerification issues a fresh token, replacing any previous one.
func (s *AuthService) ResendVerification(ctx context.Context, email string, meta events.Meta) (string, error) {
	email = usermodel.NormalizeEmail(email)
	if email == "" {
		return "", validationError(validation.MsgEmailRequired)
	}

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return "", serverError("lookup user", err)
	}
	if u == nil {
		return "", newError(KindUserNotFound, MsgUserNotFound)
	}
	if u.IsEmailVerified {
		return "", newError(KindAlreadyVerified, MsgAlreadyVerified)
	}

	token, err := auth.GenerateOpaqueToken()
	if err != nil {
		return "", serverError("verification token", err)
	}

	now := s.now()
	// A verify racing this resend wins: the write only lands on an account
	// that is still unverified.
	replaced, err := s.store.ReplaceVerificationToken(ctx, u.ID, token, now.Add(s.verificationTTL))
	if err != nil {
		return "", serverError("replace verification token", err)
	}
	if !replaced {
		return "", newError(KindAlreadyVerified, MsgAlreadyVerified)
	}

	s.publish(ctx, events.New(events.VerificationResent, u.ID, u.Email, meta, now))
	s.sendVerification(ctx, u, token, meta)

	return MsgVerificationResent, nil
}

type SetPasswordInput struct {
	CurrentPassword string
	NewPassword     string
	Meta            events.Meta
}

type SetPasswordResult struct {
	Message string
	// Token is a fresh session token; tokens issued before the change are
	// no longer accepted.
	Token string
}

func (s *AuthService) SetPassword(ctx context.Context, userID string, in SetPasswordInput) (*SetPasswordResult, error) {
	if errs := validation.ValidateNewPassword(in.NewPassword); len(errs) > 0 {
		return nil, validationError(errs...)
	}

	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, serverError("lookup user", err)
	}
	if u == nil {
		return nil, newError(KindUserNotFound, MsgUserNotFound)
	}

	reason := "first_password"
	switch c := u.Credential.(type) {
	case usermodel.HashedPassword:
		if err := s.hasher.CheckPassword(c.Hash, in.CurrentPassword); err != nil {
			return nil, newError(KindIncorrectCurrentPassword, MsgIncorrectPassword)
		}
		reason = "change"
	case usermodel.NoPassword:
	}

	hash, err := s.hasher.HashPassword(in.NewPassword)
	if err != nil {
		return nil, serverError("hash password", err)
	}

	now := s.now()
	u.SetPasswordHash(hash, now)
	if err := s.store.UpdatePassword(ctx, u.ID, hash, u.PasswordChangedAt); err != nil {
		return nil, storeError("update password", err)
	}

	s.log.Info("Password updated for user %s", u.ID)
	s.publish(ctx, events.New(events.PasswordSet, u.ID, u.Email, in.Meta, now).WithReason(reason))

	token, _, err := s.tokens.IssueSessionToken(u.ID)
	if err != nil {
		return nil, serverError("issue token", err)
	}

	return &SetPasswordResult{Message: MsgPasswordUpdated, Token: token}, nil
}

func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*usermodel.PublicUser, error) {
	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, serverError("lookup user", err)
	}
	if u == nil {
		return nil, newError(KindUserNotFound, MsgUserNotFound)
	}

	public := u.Public()
	return &public, nil
}

// Identity is what a verified token resolves to.
type Identity struct {
	User   *usermodel.User
	Claims *auth.SessionClaims
}

// Authenticate resolves a bearer token to its user. Set-password handoff
// tokens are refused unless allowSetPassword is true.
func (s *AuthService) Authenticate(ctx context.Context, token string, allowSetPassword bool) (*Identity, error) {
	if token == "" {
		return nil, newError(KindNotAuthenticated, MsgNotAuthenticated)
	}

	claims, err := s.tokens.VerifySessionToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, newError(KindTokenExpired, MsgTokenExpired)
		}
		return nil, newError(KindInvalidToken, MsgInvalidToken)
	}

	if claims.Scope == auth.ScopeSetPassword && !allowSetPassword {
		return nil, newError(KindInvalidToken, MsgSetPasswordOnly)
	}

	u, err := s.store.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, serverError("lookup user", err)
	}
	if u == nil {
		return nil, newError(KindNotAuthenticated, MsgUserGone)
	}

	if u.ChangedPasswordAfter(claims.IssuedAt) {
		return nil, newError(KindPasswordChanged, MsgPasswordChanged)
	}

	return &Identity{User: u, Claims: claims}, nil
}

// sendVerification never fails the caller. Delivery problems are logged
// and published so they can be counted downstream.
func (s *AuthService) sendVerification(ctx context.Context, u *usermodel.User, token string, meta events.Meta) {
	if s.mailer == nil {
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emailSendTimeout)
	defer cancel()

	if err := s.mailer.SendVerification(sendCtx, u.Email, token); err != nil {
		s.log.With("user", u.ID).Warn("Failed to send verification email to %s: %v", u.Email, err)
		s.publish(ctx, events.New(events.EmailDeliveryFailed, u.ID, u.Email, meta, s.now()).WithReason(truncate(err.Error(), 200)))
	}
}

func (s *AuthService) publish(ctx context.Context, e *events.AuthEvent) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		s.log.Debug("Dropped %s event: %v", e.Type, err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

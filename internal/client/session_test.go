package client

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	usermodel "github.com/Varun5711/modesta/internal/models/user"
	"github.com/Varun5711/modesta/internal/service"
	"github.com/Varun5711/modesta/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signupRequest(email string) SignupRequest {
	return SignupRequest{
		FullName:        "Amina Khan",
		Email:           email,
		Password:        "Password1",
		ConfirmPassword: "Password1",
		Country:         "PK",
	}
}

func TestSession_LoadWithoutToken(t *testing.T) {
	f := newFixture(t)
	s := NewSession(f.api, &MemoryStore{})

	assert.Equal(t, Unknown, s.State())
	assert.Equal(t, ShowLoading, s.Guard(RouteProfile))

	assert.Equal(t, Unauthenticated, s.Load(context.Background()))
	assert.Nil(t, s.User())
}

func TestSession_LoadClearsRejectedToken(t *testing.T) {
	f := newFixture(t)
	store := &MemoryStore{}
	require.NoError(t, store.Save(Tokens{Token: "stale", TempToken: "handoff", TempEmail: "a@example.com"}))
	s := NewSession(f.api, store)

	assert.Equal(t, Unauthenticated, s.Load(context.Background()))

	tokens, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tokens.Token)
	assert.Equal(t, "handoff", tokens.TempToken)
}

func TestSession_LoginAndReload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "user@example.com", "Password1", usermodel.RoleUser)
	store := &MemoryStore{}
	s := NewSession(f.api, store)
	s.Load(ctx)

	res, err := s.Login(ctx, "USER@example.com", "Password1")
	require.NoError(t, err)
	assert.Equal(t, RouteHome, res.Next)
	assert.Equal(t, Authenticated, s.State())
	require.NotNil(t, s.User())
	assert.Equal(t, "user@example.com", s.User().Email)

	again := NewSession(f.api, store)
	assert.Equal(t, Authenticated, again.Load(ctx))
	assert.Equal(t, Render, again.Guard(RouteProfile))
}

func TestSession_LoginFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "user@example.com", "Password1", usermodel.RoleUser)
	s := NewSession(f.api, &MemoryStore{})
	s.Load(ctx)

	_, err := s.Login(ctx, "", "Password1")
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, []string{validation.MsgEmailRequired}, inputErr.Messages)

	_, err = s.Login(ctx, "user@example.com", "Wrong1234")
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, service.MsgInvalidCredentials, UserMessage(err))
	assert.Equal(t, Unauthenticated, s.State())
}

func TestSession_GuardRemembersDestination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "user@example.com", "Password1", usermodel.RoleUser)
	s := NewSession(f.api, &MemoryStore{})
	s.Load(ctx)

	assert.Equal(t, RedirectToLogin, s.Guard(RouteProfile))

	res, err := s.Login(ctx, "user@example.com", "Password1")
	require.NoError(t, err)
	assert.Equal(t, RouteProfile, res.Next)

	require.NoError(t, s.Logout())
	assert.Equal(t, RedirectToLogin, s.Guard(RouteActivity))
	require.NoError(t, s.Logout())

	res, err = s.Login(ctx, "user@example.com", "Password1")
	require.NoError(t, err)
	assert.Equal(t, RouteHome, res.Next, "logout forgets the destination")
}

func TestSession_SetPasswordHandoff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "nopass@example.com", "", usermodel.RoleUser)
	store := &MemoryStore{}
	s := NewSession(f.api, store)
	s.Load(ctx)

	res, err := s.Login(ctx, "nopass@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, RouteSetPassword, res.Next)
	assert.Equal(t, service.MsgSetPasswordRequired, res.Message)
	assert.Equal(t, Unauthenticated, s.State())

	email, pending := s.PendingSetPassword()
	assert.True(t, pending)
	assert.Equal(t, "nopass@example.com", email)
	assert.Empty(t, s.Token())

	_, err = s.CompleteSetPassword(ctx, "Password1", "Password2")
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, []string{validation.MsgPasswordsMismatch}, inputErr.Messages)

	_, err = s.CompleteSetPassword(ctx, "short", "short")
	require.ErrorAs(t, err, &inputErr)

	next, err := s.CompleteSetPassword(ctx, "Password1", "Password1")
	require.NoError(t, err)
	assert.Equal(t, RouteHome, next)
	assert.Equal(t, Authenticated, s.State())

	_, pending = s.PendingSetPassword()
	assert.False(t, pending)

	_, err = s.Login(ctx, "nopass@example.com", "Password1")
	require.NoError(t, err)
}

func TestSession_HandoffReplacesUnreadableStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "nopass@example.com", "", usermodel.RoleUser)

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))
	s := NewSession(f.api, NewFileStore(path))

	res, err := s.Login(ctx, "nopass@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, RouteSetPassword, res.Next)

	email, pending := s.PendingSetPassword()
	assert.True(t, pending)
	assert.Equal(t, "nopass@example.com", email)

	next, err := s.CompleteSetPassword(ctx, "Password1", "Password1")
	require.NoError(t, err)
	assert.Equal(t, RouteHome, next)
	assert.Equal(t, Authenticated, s.State())
}

func TestSession_CompleteSetPasswordWithoutHandoff(t *testing.T) {
	f := newFixture(t)
	s := NewSession(f.api, &MemoryStore{})

	next, err := s.CompleteSetPassword(context.Background(), "Password1", "Password1")
	assert.Equal(t, RouteLogin, next)
	assert.Equal(t, MsgSetPasswordExpired, UserMessage(err))
}

func TestSession_SignupVerifyFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	store := &MemoryStore{}
	s := NewSession(f.api, store)
	s.Load(ctx)

	next, err := s.Signup(ctx, signupRequest("new@example.com"))
	require.NoError(t, err)
	assert.Equal(t, RouteCheckEmail, next)
	assert.Equal(t, Unauthenticated, s.State())
	assert.Nil(t, s.User(), "no user until the session is authenticated")
	assert.NotEmpty(t, s.Token())

	msg, err := s.ResendVerification(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, service.MsgVerificationResent, msg)

	next, err = s.VerifyEmail(ctx, f.inbox.latest("new@example.com"))
	require.NoError(t, err)
	assert.Equal(t, RouteHome, next)
	assert.Equal(t, Authenticated, s.State())
	assert.True(t, s.User().IsEmailVerified)

	_, err = s.ResendVerification(ctx, "new@example.com")
	assert.Equal(t, service.MsgAlreadyVerified, UserMessage(err))
}

func TestSession_SignupValidation(t *testing.T) {
	f := newFixture(t)
	s := NewSession(f.api, &MemoryStore{})

	req := signupRequest("new@example.com")
	req.ConfirmPassword = "Password2"
	_, err := s.Signup(context.Background(), req)

	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Contains(t, inputErr.Messages, validation.MsgPasswordsMismatch)
	assert.Equal(t, 0, f.store.Count())
}

func TestSession_VerifyWithoutStoredToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.api.Signup(ctx, signupRequest("other@example.com"))
	require.NoError(t, err)

	s := NewSession(f.api, &MemoryStore{})
	next, err := s.VerifyEmail(ctx, f.inbox.latest("other@example.com"))
	require.NoError(t, err)
	assert.Equal(t, RouteLogin, next)

	_, err = s.VerifyEmail(ctx, "deadbeef")
	assert.Equal(t, service.MsgInvalidOrExpiredToken, UserMessage(err))
}

func TestSession_ChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "user@example.com", "Password1", usermodel.RoleUser)
	s := NewSession(f.api, &MemoryStore{})
	_, err := s.Login(ctx, "user@example.com", "Password1")
	require.NoError(t, err)

	err = s.ChangePassword(ctx, "Wrong1234", "Password2", "Password2")
	assert.Equal(t, service.MsgIncorrectPassword, UserMessage(err))

	require.NoError(t, s.ChangePassword(ctx, "Password1", "Password2", "Password2"))
	assert.NotEmpty(t, s.Token())
	assert.Equal(t, Authenticated, s.Load(ctx))

	_, err = s.Login(ctx, "user@example.com", "Password2")
	require.NoError(t, err)
}

func TestSession_ChangePasswordNotLoggedIn(t *testing.T) {
	f := newFixture(t)
	s := NewSession(f.api, &MemoryStore{})

	err := s.ChangePassword(context.Background(), "Password1", "Password2", "Password2")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSession_Logout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "user@example.com", "Password1", usermodel.RoleUser)
	store := &MemoryStore{}
	s := NewSession(f.api, store)
	_, err := s.Login(ctx, "user@example.com", "Password1")
	require.NoError(t, err)

	require.NoError(t, s.Logout())
	assert.Equal(t, Unauthenticated, s.State())
	assert.Nil(t, s.User())

	tokens, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Tokens{}, tokens)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
}

package client

import (
	"context"
	"errors"
	"sync"

	usermodel "github.com/Varun5711/modesta/internal/models/user"
	"github.com/Varun5711/modesta/internal/validation"
)

type State int

const (
	Unknown State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Route names a screen of the client.
type Route string

const (
	RouteLogin          Route = "login"
	RouteSignup         Route = "signup"
	RouteCheckEmail     Route = "check-email"
	RouteSetPassword    Route = "set-password"
	RouteHome           Route = "home"
	RouteProfile        Route = "profile"
	RouteActivity       Route = "activity"
	RouteChangePassword Route = "change-password"
)

const MsgSetPasswordExpired = "Session expired. Please try logging in again."

var (
	ErrNotLoggedIn = errors.New("not logged in")
	errNoToken     = errors.New("response carried no token")
)

// Backend is the subset of the API the session drives. *API implements it.
type Backend interface {
	Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Me(ctx context.Context, token string) (*usermodel.PublicUser, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
	ResendVerification(ctx context.Context, email string) (string, error)
	SetPassword(ctx context.Context, token, currentPassword, newPassword string) (*SetPasswordResponse, error)
}

// Session is the client's view of who is logged in. Views receive it
// explicitly. Methods may be called from concurrent commands; the last
// result to arrive wins.
type Session struct {
	mu       sync.Mutex
	backend  Backend
	store    TokenStore
	state    State
	user     *usermodel.PublicUser
	intended Route
}

func NewSession(backend Backend, store TokenStore) *Session {
	return &Session{backend: backend, store: store, state: Unknown}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns a copy of the current user, or nil.
func (s *Session) User() *usermodel.PublicUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Token() string {
	t, _ := s.store.Load()
	return t.Token
}

// PendingSetPassword reports the email waiting for a first password.
func (s *Session) PendingSetPassword() (string, bool) {
	t, err := s.store.Load()
	if err != nil || t.TempToken == "" {
		return "", false
	}
	return t.TempEmail, true
}

func (s *Session) set(state State, user *usermodel.PublicUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.user = user
}

// Load resolves Unknown using the stored token. Any failure clears the
// token.
func (s *Session) Load(ctx context.Context) State {
	tokens, err := s.store.Load()
	if err != nil || tokens.Token == "" {
		s.set(Unauthenticated, nil)
		return Unauthenticated
	}

	user, err := s.backend.Me(ctx, tokens.Token)
	if err != nil {
		tokens.Token = ""
		_ = s.store.Save(tokens)
		s.set(Unauthenticated, nil)
		return Unauthenticated
	}

	s.set(Authenticated, user)
	return Authenticated
}

// LoginResult tells the caller where to go next.
type LoginResult struct {
	Next    Route
	Email   string
	Message string
}

// Login returns RouteSetPassword when the account has no password yet; the
// handoff token is stored apart from the session token and the state does
// not change.
func (s *Session) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if errs := validation.ValidateLogin(email); len(errs) > 0 {
		return nil, &InputError{Messages: errs}
	}

	resp, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if resp.SetPasswordRequired {
		// The handoff sits next to any existing session token. An unreadable
		// store is replaced rather than blocking the login.
		tokens, err := s.store.Load()
		if err != nil {
			tokens = Tokens{}
		}
		tokens.TempToken = resp.Token
		tokens.TempEmail = resp.Email
		if err := s.store.Save(tokens); err != nil {
			return nil, err
		}
		return &LoginResult{Next: RouteSetPassword, Email: resp.Email, Message: resp.Message}, nil
	}

	if resp.Token == "" {
		return nil, errNoToken
	}
	if err := s.store.Save(Tokens{Token: resp.Token}); err != nil {
		return nil, err
	}

	user := resp.User
	if user == nil {
		if user, err = s.backend.Me(ctx, resp.Token); err != nil {
			return nil, err
		}
	}
	s.set(Authenticated, user)

	return &LoginResult{Next: s.takeIntended(), Email: user.Email}, nil
}

// Signup stores the returned token but stays Unauthenticated until the
// email is verified.
func (s *Session) Signup(ctx context.Context, req SignupRequest) (Route, error) {
	if errs := validation.ValidateSignup(validation.SignupInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}); len(errs) > 0 {
		return "", &InputError{Messages: errs}
	}

	resp, err := s.backend.Signup(ctx, req)
	if err != nil {
		return "", err
	}

	if resp.Token != "" {
		if err := s.store.Save(Tokens{Token: resp.Token}); err != nil {
			return "", err
		}
	}
	// The account is unverified, so there is no user to show yet.
	s.set(Unauthenticated, nil)
	return RouteCheckEmail, nil
}

// VerifyEmail consumes a verification token. When a session token is
// stored the session is re-checked, which authenticates a freshly signed
// up user.
func (s *Session) VerifyEmail(ctx context.Context, token string) (Route, error) {
	if _, err := s.backend.VerifyEmail(ctx, token); err != nil {
		return "", err
	}
	if s.Token() != "" && s.Load(ctx) == Authenticated {
		return RouteHome, nil
	}
	return RouteLogin, nil
}

func (s *Session) ResendVerification(ctx context.Context, email string) (string, error) {
	if errs := validation.ValidateLogin(email); len(errs) > 0 {
		return "", &InputError{Messages: errs}
	}
	return s.backend.ResendVerification(ctx, email)
}

// CompleteSetPassword finishes the setPasswordRequired handoff and logs the
// user in with the token the server returns.
func (s *Session) CompleteSetPassword(ctx context.Context, password, confirm string) (Route, error) {
	if password != confirm {
		return "", &InputError{Messages: []string{validation.MsgPasswordsMismatch}}
	}
	if errs := validation.PasswordStrength(password); len(errs) > 0 {
		return "", &InputError{Messages: errs}
	}

	tokens, err := s.store.Load()
	if err != nil || tokens.TempToken == "" {
		return RouteLogin, &InputError{Messages: []string{MsgSetPasswordExpired}}
	}

	resp, err := s.backend.SetPassword(ctx, tokens.TempToken, "", password)
	if err != nil {
		return "", err
	}

	if err := s.store.Save(Tokens{Token: resp.Token}); err != nil {
		return "", err
	}
	if resp.Token == "" || s.Load(ctx) != Authenticated {
		return RouteLogin, nil
	}
	return s.takeIntended(), nil
}

// ChangePassword changes the password of the logged-in user and switches
// to the new session token, since the old one stops working.
func (s *Session) ChangePassword(ctx context.Context, current, password, confirm string) error {
	if password != confirm {
		return &InputError{Messages: []string{validation.MsgPasswordsMismatch}}
	}
	if errs := validation.PasswordStrength(password); len(errs) > 0 {
		return &InputError{Messages: errs}
	}

	token := s.Token()
	if token == "" {
		return ErrNotLoggedIn
	}

	resp, err := s.backend.SetPassword(ctx, token, current, password)
	if err != nil {
		return err
	}
	if resp.Token != "" {
		return s.store.Save(Tokens{Token: resp.Token})
	}
	return nil
}

// Logout forgets every stored token.
func (s *Session) Logout() error {
	err := s.store.Clear()
	s.mu.Lock()
	s.state = Unauthenticated
	s.user = nil
	s.intended = ""
	s.mu.Unlock()
	return err
}

// Decision is what a guarded view should do.
type Decision int

const (
	ShowLoading Decision = iota
	RedirectToLogin
	Render
)

// Guard decides how to show a protected route. Redirects remember dest so
// the next successful login returns there.
func (s *Session) Guard(dest Route) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Authenticated:
		return Render
	case Unauthenticated:
		s.intended = dest
		return RedirectToLogin
	default:
		return ShowLoading
	}
}

func (s *Session) takeIntended() Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	dest := s.intended
	s.intended = ""
	if dest == "" {
		return RouteHome
	}
	return dest
}

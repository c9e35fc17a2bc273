package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Varun5711/modesta/internal/logger"
	"github.com/Varun5711/modesta/internal/response"
	"github.com/Varun5711/modesta/internal/service"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	IdentityKey contextKey = "identity"
)

// Authenticator resolves a bearer token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string, allowSetPassword bool) (*service.Identity, error)
}

type AuthMiddleware struct {
	auth         Authenticator
	cookieName   string
	exposeDetail bool
	log          *logger.Logger
}

func NewAuthMiddleware(auth Authenticator, cookieName string, exposeDetail bool) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "jwt"
	}
	return &AuthMiddleware{
		auth:         auth,
		cookieName:   cookieName,
		exposeDetail: exposeDetail,
		log:          logger.New("auth-middleware"),
	}
}

// TokenFromRequest reads "Authorization: Bearer <token>" and falls back to
// the session cookie.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return m.require(next, false)
}

// RequireSetPasswordOrAuth also admits the handoff token issued to accounts
// that have no password yet. Only the set-password route uses it.
func (m *AuthMiddleware) RequireSetPasswordOrAuth(next http.Handler) http.Handler {
	return m.require(next, true)
}

func (m *AuthMiddleware) require(next http.Handler, allowSetPassword bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		identity, err := m.auth.Authenticate(ctx, TokenFromRequest(r, m.cookieName), allowSetPassword)
		if err != nil {
			if service.KindOf(err) == service.KindServerError {
				m.log.Error("Authentication failed: %v", err)
			} else {
				m.log.Debug("Rejected %s %s: %v", r.Method, r.URL.Path, service.KindOf(err))
			}
			response.Error(w, err, m.exposeDetail)
			return
		}

		reqCtx := context.WithValue(r.Context(), UserIDKey, identity.User.ID)
		reqCtx = context.WithValue(reqCtx, IdentityKey, identity)
		next.ServeHTTP(w, r.WithContext(reqCtx))
	})
}

// RequireAdmin must run inside RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := GetIdentity(r.Context())
		if identity == nil || !identity.User.IsAdmin() {
			response.Error(w, &service.Error{Kind: service.KindForbidden, Message: service.MsgForbidden}, false)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

func GetIdentity(ctx context.Context) *service.Identity {
	if identity, ok := ctx.Value(IdentityKey).(*service.Identity); ok {
		return identity
	}
	return nil
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	usermodel "github.com/Varun5711/modesta/internal/models/user"
	"github.com/Varun5711/modesta/internal/response"
	"github.com/Varun5711/modesta/internal/service"
)

type stubAuthenticator struct {
	identities map[string]*service.Identity
	handoff    map[string]bool
	gotToken   string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string, allowSetPassword bool) (*service.Identity, error) {
	s.gotToken = token
	if token == "" {
		return nil, &service.Error{Kind: service.KindNotAuthenticated, Message: service.MsgNotAuthenticated}
	}
	if s.handoff[token] && !allowSetPassword {
		return nil, &service.Error{Kind: service.KindInvalidToken, Message: service.MsgSetPasswordOnly}
	}
	if id, ok := s.identities[token]; ok {
		return id, nil
	}
	return nil, &service.Error{Kind: service.KindPasswordChanged, Message: service.MsgPasswordChanged}
}

func newStub() *stubAuthenticator {
	return &stubAuthenticator{
		identities: map[string]*service.Identity{
			"user-token":    {User: &usermodel.User{ID: "u1", Role: usermodel.RoleUser}},
			"admin-token":   {User: &usermodel.User{ID: "a1", Role: usermodel.RoleAdmin}},
			"handoff-token": {User: &usermodel.User{ID: "u2", Role: usermodel.RoleUser}},
		},
		handoff: map[string]bool{"handoff-token": true},
	}
}

var echoUserID = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(GetUserID(r.Context())))
})

func TestRequireAuth_BearerHeader(t *testing.T) {
	m := NewAuthMiddleware(newStub(), "", false)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := httptest.NewRecorder()

	m.RequireAuth(echoUserID).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "u1" {
		t.Errorf("user id = %q", rec.Body.String())
	}
}

func TestRequireAuth_CookieFallback(t *testing.T) {
	stub := newStub()
	m := NewAuthMiddleware(stub, "jwt", false)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "user-token"})
	rec := httptest.NewRecorder()

	m.RequireAuth(echoUserID).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || stub.gotToken != "user-token" {
		t.Fatalf("status = %d token = %q", rec.Code, stub.gotToken)
	}
}

func TestRequireAuth_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"no token", "", service.MsgNotAuthenticated},
		{"non bearer scheme", "Basic dXNlcjpwYXNz", service.MsgNotAuthenticated},
		{"password changed", "Bearer stale-token", service.MsgPasswordChanged},
		{"handoff token", "Bearer handoff-token", service.MsgSetPasswordOnly},
	}

	m := NewAuthMiddleware(newStub(), "", false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			m.RequireAuth(echoUserID).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			var body response.ErrorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Success || body.Message != tt.message {
				t.Errorf("body = %+v, want message %q", body, tt.message)
			}
		})
	}
}

func TestRequireSetPasswordOrAuth_AcceptsHandoff(t *testing.T) {
	m := NewAuthMiddleware(newStub(), "", false)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/set-password", nil)
	req.Header.Set("Authorization", "Bearer handoff-token")
	rec := httptest.NewRecorder()

	m.RequireSetPasswordOrAuth(echoUserID).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "u2" {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}
}

func TestRequireAdmin(t *testing.T) {
	m := NewAuthMiddleware(newStub(), "", false)
	h := m.RequireAuth(m.RequireAdmin(echoUserID))

	for token, want := range map[string]int{
		"admin-token": http.StatusOK,
		"user-token":  http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != want {
			t.Errorf("%s: status = %d, want %d", token, rec.Code, want)
		}
	}
}

func TestRequireAdmin_WithoutIdentity(t *testing.T) {
	m := NewAuthMiddleware(newStub(), "", false)
	rec := httptest.NewRecorder()

	m.RequireAdmin(echoUserID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

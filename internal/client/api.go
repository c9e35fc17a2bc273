package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	usermodel "github.com/Varun5711/modesta/internal/models/user"
)

const UserAgent = "modesta-tui/1.0"

// ErrUnreachable wraps transport and decoding failures.
var ErrUnreachable = errors.New("server unreachable")

const (
	MsgUnreachable = "Unable to reach the server. Please try again."
	MsgUnexpected  = "Something went wrong. Please try again."
)

// UserMessage is the text to show for err: the server's own message for
// API errors and a generic one for everything else.
func UserMessage(err error) string {
	var (
		apiErr   *APIError
		inputErr *InputError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.As(err, &inputErr):
		return inputErr.Error()
	case errors.Is(err, ErrUnreachable):
		return MsgUnreachable
	default:
		return MsgUnexpected
	}
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return strings.Join(e.Errors, ". ")
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// InputError is a form problem caught before any request is sent.
type InputError struct {
	Messages []string
}

func (e *InputError) Error() string {
	return strings.Join(e.Messages, ". ")
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type SignupRequest struct {
	FullName         string   `json:"fullName"`
	Email            string   `json:"email"`
	Password         string   `json:"password"`
	ConfirmPassword  string   `json:"confirmPassword"`
	Country          string   `json:"country,omitempty"`
	City             string   `json:"city,omitempty"`
	Brands           []string `json:"brands,omitempty"`
	HijabStyle       string   `json:"hijabStyle,omitempty"`
	FavoriteColors   []string `json:"favoriteColors,omitempty"`
	StylePersonality []string `json:"stylePersonality,omitempty"`
}

type AuthResponse struct {
	Success bool                  `json:"success"`
	Token   string                `json:"token"`
	User    *usermodel.PublicUser `json:"user"`
	Message string                `json:"message"`
}

// LoginResponse covers both the session and the set-password handoff shapes.
type LoginResponse struct {
	Success             bool                  `json:"success"`
	Token               string                `json:"token"`
	User                *usermodel.PublicUser `json:"user"`
	SetPasswordRequired bool                  `json:"setPasswordRequired"`
	Email               string                `json:"email"`
	Message             string                `json:"message"`
}

type SetPasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

type EventCount struct {
	EventType string `json:"eventType"`
	Count     uint64 `json:"count"`
}

type EmailFailures struct {
	Total uint64 `json:"total"`
}

// API is a thin JSON client for the auth endpoints.
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI takes the API root including the /api prefix, e.g.
// http://localhost:5000/api.
func NewAPI(baseURL string, timeout time.Duration) *API {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (a *API) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := a.do(ctx, http.MethodPost, "/auth/signup", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) Me(ctx context.Context, token string) (*usermodel.PublicUser, error) {
	var resp struct {
		User *usermodel.PublicUser `json:"user"`
	}
	if err := a.do(ctx, http.MethodGet, "/auth/me", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, ErrUnreachable
	}
	return resp.User, nil
}

func (a *API) VerifyEmail(ctx context.Context, token string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := a.do(ctx, http.MethodPost, "/auth/verify-email", "", map[string]string{"token": token}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (a *API) ResendVerification(ctx context.Context, email string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := a.do(ctx, http.MethodPost, "/auth/resend-verification", "", map[string]string{"email": email}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (a *API) SetPassword(ctx context.Context, token, currentPassword, newPassword string) (*SetPasswordResponse, error) {
	var resp SetPasswordResponse
	body := map[string]string{"currentPassword": currentPassword, "newPassword": newPassword}
	if err := a.do(ctx, http.MethodPost, "/auth/set-password", token, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) EventCounts(ctx context.Context, token string, days int) ([]EventCount, error) {
	var resp struct {
		Events []EventCount `json:"events"`
	}
	if err := a.do(ctx, http.MethodGet, fmt.Sprintf("/admin/analytics/events?days=%d", days), token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (a *API) EmailFailures(ctx context.Context, token string, days int) (*EmailFailures, error) {
	var resp EmailFailures
	if err := a.do(ctx, http.MethodGet, fmt.Sprintf("/admin/analytics/email-failures?days=%d", days), token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Message string   `json:"message"`
			Errors  []string `json:"errors"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			apiErr.Message = payload.Message
			apiErr.Errors = payload.Errors
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: invalid server response", ErrUnreachable)
		}
	}
	return nil
}

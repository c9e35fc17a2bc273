package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Varun5711/modesta/internal/events"
	"github.com/Varun5711/modesta/internal/logger"
	"github.com/Varun5711/modesta/internal/middleware"
	usermodel "github.com/Varun5711/modesta/internal/models/user"
	"github.com/Varun5711/modesta/internal/response"
	"github.com/Varun5711/modesta/internal/service"
)

const (
	MsgInvalidBody  = "Invalid request body"
	MsgBodyTooLarge = "Request body too large"
)

type AuthHandler struct {
	auth         *service.AuthService
	exposeDetail bool
	log          *logger.Logger
}

func NewAuthHandler(auth *service.AuthService, exposeDetail bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		exposeDetail: exposeDetail,
		log:          logger.New("auth-handler"),
	}
}

type SignupRequest struct {
	FullName         string   `json:"fullName"`
	Email            string   `json:"email"`
	Password         string   `json:"password"`
	ConfirmPassword  string   `json:"confirmPassword"`
	Country          string   `json:"country"`
	City             string   `json:"city"`
	Brands           []string `json:"brands"`
	HijabStyle       string   `json:"hijabStyle"`
	FavoriteColors   []string `json:"favoriteColors"`
	StylePersonality []string `json:"stylePersonality"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type ResendVerificationRequest struct {
	Email string `json:"email"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type AuthResponse struct {
	Success bool                  `json:"success"`
	Token   string                `json:"token"`
	User    *usermodel.PublicUser `json:"user"`
	Message string                `json:"message,omitempty"`
}

type SetPasswordRequiredResponse struct {
	Success             bool   `json:"success"`
	SetPasswordRequired bool   `json:"setPasswordRequired"`
	Email               string `json:"email"`
	Token               string `json:"token"`
	Message             string `json:"message"`
}

type SetPasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type UserResponse struct {
	Success bool                  `json:"success"`
	User    *usermodel.PublicUser `json:"user"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.auth.Register(ctx, service.RegisterInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Profile: usermodel.Profile{
			Country:          req.Country,
			City:             req.City,
			Brands:           req.Brands,
			HijabStyle:       req.HijabStyle,
			FavoriteColors:   req.FavoriteColors,
			StylePersonality: req.StylePersonality,
		},
		Meta: requestMeta(r),
	})
	if err != nil {
		h.fail(w, "signup", err)
		return
	}

	response.JSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Token:   res.Token,
		User:    &res.User,
		Message: res.Message,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.auth.Login(ctx, service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Meta:     requestMeta(r),
	})
	if err != nil {
		h.fail(w, "login", err)
		return
	}

	if res.SetPasswordRequired {
		response.JSON(w, http.StatusOK, SetPasswordRequiredResponse{
			Success:             false,
			SetPasswordRequired: true,
			Email:               res.Email,
			Token:               res.Token,
			Message:             res.Message,
		})
		return
	}

	response.JSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Token:   res.Token,
		User:    res.User,
	})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	msg, err := h.auth.VerifyEmail(r.Context(), req.Token, requestMeta(r))
	if err != nil {
		h.fail(w, "verify email", err)
		return
	}

	response.Message(w, http.StatusOK, msg)
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req ResendVerificationRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	msg, err := h.auth.ResendVerification(ctx, req.Email, requestMeta(r))
	if err != nil {
		h.fail(w, "resend verification", err)
		return
	}

	response.Message(w, http.StatusOK, msg)
}

// SetPassword runs behind RequireSetPasswordOrAuth.
func (h *AuthHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req SetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.auth.SetPassword(r.Context(), middleware.GetUserID(r.Context()), service.SetPasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		Meta:            requestMeta(r),
	})
	if err != nil {
		h.fail(w, "set password", err)
		return
	}

	response.JSON(w, http.StatusOK, SetPasswordResponse{
		Success: true,
		Message: res.Message,
		Token:   res.Token,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.GetCurrentUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, "get current user", err)
		return
	}

	response.JSON(w, http.StatusOK, UserResponse{Success: true, User: user})
}

func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Message(w, http.StatusRequestEntityTooLarge, MsgBodyTooLarge)
			return false
		}
		h.log.Debug("Failed to decode request: %v", err)
		response.Message(w, http.StatusBadRequest, MsgInvalidBody)
		return false
	}
	return true
}

func (h *AuthHandler) fail(w http.ResponseWriter, op string, err error) {
	if service.KindOf(err) == service.KindServerError {
		h.log.Error("Failed to %s: %v", op, err)
	}
	response.Error(w, err, h.exposeDetail)
}

func requestMeta(r *http.Request) events.Meta {
	return events.Meta{
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

package service

import (
	"errors"
	"fmt"

	usermodel "github.com/Varun5711/modesta/internal/models/user"
	"github.com/Varun5711/modesta/internal/storage"
)

// Kind classifies failures of the auth operations. Each kind maps to one
// HTTP status and one client-facing message.
type Kind int

const (
	KindServerError Kind = iota
	KindValidation
	KindDuplicateEmail
	KindInvalidCredentials
	KindInvalidOrExpiredToken
	KindAlreadyVerified
	KindUserNotFound
	KindIncorrectCurrentPassword
	KindNotAuthenticated
	KindTokenExpired
	KindInvalidToken
	KindPasswordChanged
	KindForbidden
	KindEmailDeliveryFailure
)

var kindNames = map[Kind]string{
	KindServerError:              "ServerError",
	KindValidation:               "ValidationError",
	KindDuplicateEmail:           "DuplicateEmail",
	KindInvalidCredentials:       "InvalidCredentials",
	KindInvalidOrExpiredToken:    "InvalidOrExpiredToken",
	KindAlreadyVerified:          "AlreadyVerified",
	KindUserNotFound:             "UserNotFound",
	KindIncorrectCurrentPassword: "IncorrectCurrentPassword",
	KindNotAuthenticated:         "NotAuthenticated",
	KindTokenExpired:             "TokenExpired",
	KindInvalidToken:             "InvalidToken",
	KindPasswordChanged:          "PasswordChanged",
	KindForbidden:                "Forbidden",
	KindEmailDeliveryFailure:     "EmailDeliveryFailure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

const (
	MsgDuplicateEmail        = "User already exists with this email"
	MsgInvalidCredentials    = "Invalid email or password"
	MsgInvalidOrExpiredToken = "Invalid or expired verification token"
	MsgTokenRequired         = "Token is required"
	MsgAlreadyVerified       = "Email is already verified"
	MsgUserNotFound          = "User not found"
	MsgIncorrectPassword     = "Current password is incorrect"
	MsgNotAuthenticated      = "You are not logged in! Please log in to get access."
	MsgUserGone              = "The user belonging to this token no longer exists."
	MsgTokenExpired          = "Your token has expired! Please log in again."
	MsgInvalidToken          = "Invalid token! Please log in again."
	MsgSetPasswordOnly       = "Please set a password for your account before continuing."
	MsgPasswordChanged       = "User recently changed password! Please log in again."
	MsgForbidden             = "Not authorized as admin"
	MsgServerError           = "Something went wrong"
)

type Error struct {
	Kind    Kind
	Message string
	// Errors lists field-level messages for KindValidation.
	Errors []string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func validationError(errs ...string) *Error {
	msg := "Validation failed"
	if len(errs) == 1 {
		msg = errs[0]
	}
	return &Error{Kind: KindValidation, Message: msg, Errors: errs}
}

func serverError(op string, err error) *Error {
	return &Error{Kind: KindServerError, Message: MsgServerError, Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf reports the kind carried by err. Errors not produced by this
// package are server errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServerError
}

var modelValidationErrors = []error{
	usermodel.ErrFullNameRequired,
	usermodel.ErrFullNameTooLong,
	usermodel.ErrEmailRequired,
	usermodel.ErrInvalidEmail,
	usermodel.ErrPasswordTooShort,
	usermodel.ErrInvalidRole,
}

// storeError maps persistence failures onto the taxonomy.
func storeError(op string, err error) *Error {
	if errors.Is(err, storage.ErrDuplicateEmail) {
		return newError(KindDuplicateEmail, MsgDuplicateEmail)
	}
	for _, verr := range modelValidationErrors {
		if errors.Is(err, verr) {
			return validationError(capitalize(verr.Error()))
		}
	}
	return serverError(op, err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}

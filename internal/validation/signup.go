package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	usermodel "github.com/Varun5711/modesta/internal/models/user"
)

const (
	MsgFullNameRequired  = "Full name is required"
	MsgInvalidEmail      = "Please enter a valid email"
	MsgPasswordLength    = "Password must be at least 8 characters long"
	MsgPasswordTooLong   = "Password must be at most 72 bytes long"
	MsgPasswordDigit     = "Password must contain a number"
	MsgPasswordUpper     = "Password must contain an uppercase letter"
	MsgPasswordsMismatch = "Passwords do not match"
	MsgEmailRequired     = "Please provide an email"
	MsgNewPasswordNeeded = "Please provide a new password"
)

var (
	digitRegex = regexp.MustCompile(`\d`)
	upperRegex = regexp.MustCompile(`[A-Z]`)
)

type SignupInput struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// ValidateSignup returns every failed rule, in field order. An empty result
// means the input is acceptable.
func ValidateSignup(in SignupInput) []string {
	var errs []string

	if strings.TrimSpace(in.FullName) == "" {
		errs = append(errs, MsgFullNameRequired)
	}
	if !usermodel.ValidEmail(usermodel.NormalizeEmail(in.Email)) {
		errs = append(errs, MsgInvalidEmail)
	}
	errs = append(errs, PasswordStrength(in.Password)...)
	if in.ConfirmPassword != in.Password {
		errs = append(errs, MsgPasswordsMismatch)
	}

	return errs
}

// PasswordStrength checks length, a digit and an uppercase letter. The upper
// bound is in bytes since that is what bcrypt hashes.
func PasswordStrength(password string) []string {
	var errs []string
	if utf8.RuneCountInString(password) < usermodel.MinPasswordLength {
		errs = append(errs, MsgPasswordLength)
	}
	if len(password) > usermodel.MaxPasswordBytes {
		errs = append(errs, MsgPasswordTooLong)
	}
	if !digitRegex.MatchString(password) {
		errs = append(errs, MsgPasswordDigit)
	}
	if !upperRegex.MatchString(password) {
		errs = append(errs, MsgPasswordUpper)
	}
	return errs
}

// ValidateLogin only requires an email. The password is optional: accounts
// without one go through the set-password handoff.
func ValidateLogin(email string) []string {
	email = usermodel.NormalizeEmail(email)
	if email == "" {
		return []string{MsgEmailRequired}
	}
	if !usermodel.ValidEmail(email) {
		return []string{MsgInvalidEmail}
	}
	return nil
}

func ValidateNewPassword(password string) []string {
	if password == "" {
		return []string{MsgNewPasswordNeeded}
	}
	return PasswordStrength(password)
}

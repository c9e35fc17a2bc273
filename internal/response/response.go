package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Varun5711/modesta/internal/service"
)

type ErrorBody struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type MessageBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var statusByKind = map[service.Kind]int{
	service.KindValidation:               http.StatusBadRequest,
	service.KindDuplicateEmail:           http.StatusBadRequest,
	service.KindInvalidCredentials:       http.StatusUnauthorized,
	service.KindInvalidOrExpiredToken:    http.StatusBadRequest,
	service.KindAlreadyVerified:          http.StatusBadRequest,
	service.KindUserNotFound:             http.StatusNotFound,
	service.KindIncorrectCurrentPassword: http.StatusBadRequest,
	service.KindNotAuthenticated:         http.StatusUnauthorized,
	service.KindTokenExpired:             http.StatusUnauthorized,
	service.KindInvalidToken:             http.StatusUnauthorized,
	service.KindPasswordChanged:          http.StatusUnauthorized,
	service.KindForbidden:                http.StatusForbidden,
	service.KindEmailDeliveryFailure:     http.StatusBadGateway,
	service.KindServerError:              http.StatusInternalServerError,
}

func StatusFor(kind service.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageBody{Success: status < 400, Message: message})
}

// Error writes err using its service kind. Internal detail is included only
// when exposeDetail is set (development).
func Error(w http.ResponseWriter, err error, exposeDetail bool) {
	var e *service.Error
	if !errors.As(err, &e) {
		e = &service.Error{Kind: service.KindServerError, Message: service.MsgServerError, Err: err}
	}

	body := ErrorBody{
		Success: false,
		Message: e.Message,
		Errors:  e.Errors,
	}
	if exposeDetail && e.Kind == service.KindServerError && e.Err != nil {
		body.Error = e.Err.Error()
	}

	JSON(w, StatusFor(e.Kind), body)
}

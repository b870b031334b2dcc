package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cantis/FlaskFactor2/internal/model"
	"github.com/cantis/FlaskFactor2/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountDisabled    = "ACCOUNT_DISABLED"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodePlayerExists       = "PLAYER_EXISTS"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err is reported with
func Status(err error) int {
	return toHTTPError(err).status
}

var validationErrors = []error{
	model.ErrNameRequired,
	model.ErrEmailRequired,
	model.ErrEmailInvalid,
	model.ErrPasswordRequired,
	model.ErrPasswordTooShort,
	model.ErrPasswordTooLong,
	model.ErrPasswordAttemptsInvalid,
	model.ErrCurrentPasswordRequired,
	model.ErrCurrentPasswordIncorrect,
}

func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, v.Error()}}
		}
	}

	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrPlayerAlreadyExists):
		return &httpError{http.StatusConflict, APIError{CodePlayerExists, "A player with that email already exists"}}

	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid email or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrAccountDisabled):
		return &httpError{http.StatusForbidden, APIError{CodeAccountDisabled, "Account is disabled"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewUnavailableError reports a failed dependency such as the database
func NewUnavailableError() error {
	return &httpError{http.StatusServiceUnavailable, APIError{CodeUnavailable, "Service unavailable"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dlsl-isg/reaction-ring/internal/model"
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
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeCatchOutOfRange     = "CATCH_OUT_OF_RANGE"
	CodeIdentityInvalid     = "IDENTITY_INVALID"
	CodeIdentityUnavailable = "IDENTITY_UNAVAILABLE"
	CodeImportMalformed     = "IMPORT_MALFORMED"
	CodeInternalError       = "INTERNAL_ERROR"
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

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrCatchOutOfRange):
		return &httpError{http.StatusBadRequest, APIError{CodeCatchOutOfRange, "Caught count is out of range"}}
	case errors.Is(err, model.ErrIdentityInvalid):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeIdentityInvalid, "Identity is not eligible to play"}}
	case errors.Is(err, model.ErrIdentityUnavailable):
		return &httpError{http.StatusBadGateway, APIError{CodeIdentityUnavailable, "Identity lookup failed"}}
	case errors.Is(err, model.ErrImportMalformed):
		return &httpError{http.StatusBadRequest, APIError{CodeImportMalformed, err.Error()}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

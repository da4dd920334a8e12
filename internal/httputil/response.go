// Package httputil holds the request parsing and error rendering shared by the
// local API handlers.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/rewardsync/internal/errors"
)

// ErrorResponse is the body of every non-2xx answer from the local API.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// errorClass maps a domain sentinel to its HTTP rendering. An empty message
// passes the error text through to the app shell.
type errorClass struct {
	sentinel error
	status   int
	code     string
	message  string
}

var errorClasses = []errorClass{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "Nothing matches the given identifier"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "The request clashes with work already recorded"},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "No user is signed in on this device"},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden", "This item belongs to another user"},
	{apperrors.ErrUnavailable, http.StatusServiceUnavailable, "unavailable", "The backend could not be reached, try again later"},
}

var internalError = errorClass{
	status:  http.StatusInternalServerError,
	code:    "internal_error",
	message: "Something went wrong on this device",
}

func classify(err error) errorClass {
	for _, class := range errorClasses {
		if apperrors.Is(err, class.sentinel) {
			return class
		}
	}
	return internalError
}

// HandleErrorGin renders err according to the domain sentinel it wraps.
// Errors wrapping no sentinel become a 500 whose details stay in the log.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	class := classify(err)
	message := class.message
	if message == "" {
		message = err.Error()
	}

	level := slog.LevelWarn
	if class.status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	writeError(c, logger, level, class.status, class.code, message, err)
}

// HandleBadRequestGin answers 400 for a body or parameter that could not be parsed.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	writeError(c, logger, slog.LevelWarn, http.StatusBadRequest, "bad_request", err.Error(), err)
}

// HandleValidationErrorGin answers 422 for a well-formed request that fails validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	writeError(c, logger, slog.LevelWarn, http.StatusUnprocessableEntity, "validation_error", err.Error(), err)
}

func writeError(c *gin.Context, logger *slog.Logger, level slog.Level, status int, code, message string, err error) {
	rid := requestid.Get(c)
	if logger != nil {
		logger.Log(c, level, "request failed",
			slog.String("request_id", rid),
			slog.Int("status_code", status),
			slog.String("error_code", code),
			slog.Any("error", err),
		)
	}
	c.JSON(status, ErrorResponse{Error: code, Message: message, RequestID: rid})
}

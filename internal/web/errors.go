package web

// errors.go provides unified error response handling for the web layer.
//
// Every rejected request gets the same JSON body: the user message and
// action from core.MapError, the support code, and the specific reason in
// detail. Errors that match no known pattern keep their text out of the
// body and point at the request ID instead. The technical error is always
// logged with the request ID.

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	errNoFile         = errors.New("no file provided")
	errInvalidNumber  = errors.New("must be a number")
	errInvalidInteger = errors.New("must be an integer")
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
	Code   string `json:"code"`
	Action string `json:"action,omitempty"`
}

// respondError logs err and writes the mapped error body with the status
// from statusFor.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	detail := err.Error()
	if !core.IsUserFacing(err) {
		detail = "internal error, request id " + middleware.GetReqID(r.Context())
	}

	writeJSON(w, status, ErrorResponse{
		Error:  msg.Message,
		Detail: detail,
		Code:   msg.Code,
		Action: msg.Action,
	})
}

// statusFor classifies err into an HTTP status. Whole-request rejections
// are 400, capacity problems 503, everything else 500.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case core.IsClientError(err),
		errors.Is(err, errNoFile),
		errors.As(err, &maxBytes):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

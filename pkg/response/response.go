// Package response writes the JSON envelope shared by every endpoint:
//
//	{"success": true, "message": "...", "sweet": {...}}
//	{"success": false, "message": "...", "errors": {"price": "..."}}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/sweetshop/pkg/apperr"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

// Payload holds the top-level keys merged into a success envelope.
type Payload map[string]any

const internalMessage = "Internal server error"

func write(w http.ResponseWriter, status int, success bool, message string, payload Payload) {
	body := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = success
	if message != "" {
		body["message"] = message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// JSON writes v as-is, outside the envelope.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// OK sends a 200 success envelope.
func OK(w http.ResponseWriter, message string, payload Payload) {
	write(w, http.StatusOK, true, message, payload)
}

// Created sends a 201 success envelope.
func Created(w http.ResponseWriter, message string, payload Payload) {
	write(w, http.StatusCreated, true, message, payload)
}

// Error sends a failure envelope with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, false, message, nil)
}

// ValidationError sends a 400 with field-level errors.
func ValidationError(w http.ResponseWriter, message string, errs map[string]string) {
	var payload Payload
	if len(errs) > 0 {
		payload = Payload{"errors": errs}
	}
	write(w, http.StatusBadRequest, false, message, payload)
}

// FromError renders err according to its apperr.Kind. Internal errors are
// logged with the request logger and replaced by a generic message.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	ae, ok := apperr.As(err)
	if !ok {
		ae = apperr.Wrap(apperr.Internal, internalMessage, err)
	}

	if ae.Kind == apperr.Internal {
		logger.WithCtx(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
		msg := ae.Message
		if msg == "" {
			msg = internalMessage
		}
		Error(w, http.StatusInternalServerError, msg)
		return
	}

	if ae.Kind == apperr.Validation {
		ValidationError(w, ae.Message, ae.Fields)
		return
	}
	Error(w, ae.Kind.Status(), ae.Message)
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

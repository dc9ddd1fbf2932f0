// Package bind decodes and validates HTTP request bodies.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/pkg/validate"
)

// BodyError is a body that could not be decoded. Message is safe to send to
// clients; Err keeps the decoder detail for logs.
type BodyError struct {
	Message string
	Err     error
}

func (e *BodyError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *BodyError) Unwrap() error { return e.Err }

const invalidBody = "Invalid request body"

// ErrEmptyBody is returned by Decode when the request has no body.
var ErrEmptyBody = &BodyError{Message: "Request body is empty"}

// Decode reads r.Body as a single JSON value into dest. The body is capped
// at MAX_BODY_BYTES. Failures are *BodyError.
func Decode(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxBodyBytes())

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return ErrEmptyBody
		case errors.As(err, &maxErr):
			return &BodyError{Message: fmt.Sprintf("Request body too large (max %d bytes)", maxErr.Limit), Err: err}
		default:
			return &BodyError{Message: invalidBody, Err: err}
		}
	}
	if dec.More() {
		return &BodyError{Message: invalidBody, Err: errors.New("trailing data after body")}
	}
	return nil
}

// PublicMessage returns the client-facing text for a Decode error.
func PublicMessage(err error) string {
	var be *BodyError
	if errors.As(err, &be) {
		return be.Message
	}
	return invalidBody
}

// JSON decodes like Decode and then validates dest.
// It returns (errs, nil) on validation failure and (nil, err) on a bad body.
func JSON(w http.ResponseWriter, r *http.Request, dest any) (map[string]string, error) {
	if err := Decode(w, r, dest); err != nil {
		return nil, err
	}
	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

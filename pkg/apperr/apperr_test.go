package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/sweetshop/pkg/apperr"
)

var errGone = apperr.New(apperr.NotFound, "Sweet not found")

func TestKindStatus(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.Validation:      http.StatusBadRequest,
		apperr.Unauthenticated: http.StatusUnauthorized,
		apperr.Forbidden:       http.StatusForbidden,
		apperr.NotFound:        http.StatusNotFound,
		apperr.Conflict:        http.StatusConflict,
		apperr.Internal:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.Status(), kind.String())
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("controller: %w", errGone)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.Internal, apperr.KindOf(errors.New("boom")))
}

func TestWithCauseKeepsIdentity(t *testing.T) {
	cause := errors.New("mongo: timeout")
	err := errGone.WithCause(cause)

	assert.ErrorIs(t, err, errGone)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "mongo: timeout")
}

func TestInvalidCarriesFields(t *testing.T) {
	err := apperr.Invalid("Validation failed", map[string]string{"price": "bad"})
	ae, ok := apperr.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperr.Validation, ae.Kind)
	assert.Equal(t, "bad", ae.Fields["price"])
}

package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sweetshop/pkg/apperr"
	"github.com/shashiranjanraj/sweetshop/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestOKMergesPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	response.OK(rec, "Purchase successful", response.Payload{"sweet": map[string]any{"name": "Ladoo"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Purchase successful", body["message"])
	assert.Equal(t, "Ladoo", body["sweet"].(map[string]any)["name"])
}

func TestOKOmitsEmptyMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	response.OK(rec, "", response.Payload{"sweets": []string{}})
	_, has := decode(t, rec)["message"]
	assert.False(t, has)
}

func TestFromErrorKinds(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	rec := httptest.NewRecorder()
	response.FromError(rec, req, apperr.New(apperr.Conflict, "User already registered"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User already registered", decode(t, rec)["message"])

	rec = httptest.NewRecorder()
	response.FromError(rec, req, apperr.Invalid("Validation failed", map[string]string{"price": "too low"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "too low", body["errors"].(map[string]any)["price"])
}

func TestFromErrorHidesInternalCause(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	rec := httptest.NewRecorder()
	response.FromError(rec, req, errors.New("dial tcp 10.0.0.1: refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec)["message"])

	rec = httptest.NewRecorder()
	response.FromError(rec, req, apperr.Wrap(apperr.Internal, "Error purchasing sweet", errors.New("secret")))
	assert.Equal(t, "Error purchasing sweet", decode(t, rec)["message"])
	assert.NotContains(t, rec.Body.String(), "secret")
}

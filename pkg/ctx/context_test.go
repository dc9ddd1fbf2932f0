package ctx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	appctx "github.com/shashiranjanraj/sweetshop/pkg/ctx"
	"github.com/shashiranjanraj/sweetshop/pkg/response"
)

func TestWrapAndOK(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.OK("done", response.Payload{"sweet": map[string]any{"name": "Jalebi"}})
	})(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) || !strings.Contains(rec.Body.String(), `"Jalebi"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestParamFromChi(t *testing.T) {
	r := chi.NewRouter()
	var got string
	r.Get("/sweet/{id}", appctx.Wrap(func(c *appctx.Context) {
		got = c.Param("id")
		c.OK("", nil)
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sweet/abc", nil))
	if got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}

func TestSetAndGet(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Set("role", "admin")
		if c.GetString("role") != "admin" {
			t.Errorf("expected admin, got %q", c.GetString("role"))
		}
		if c.GetString("missing") != "" {
			t.Error("expected empty string for missing key")
		}
	})(rec, req)
}

func TestBindJSONValidationFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Email string `json:"email" validate:"required,email"`
		}
		if c.BindJSON(&input) {
			t.Error("expected BindJSON to fail")
		}
		if c.WrittenStatus() != http.StatusBadRequest {
			t.Errorf("expected written status 400, got %d", c.WrittenStatus())
		}
	})(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"errors"`) {
		t.Errorf("expected field errors in body: %s", rec.Body.String())
	}
}

func TestDecodeJSONMalformed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	appctx.Wrap(func(c *appctx.Context) {
		var v map[string]any
		if c.DecodeJSON(&v) {
			t.Error("expected DecodeJSON to fail")
		}
	})(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"Invalid request body"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestDecodeJSONTypeMismatchHidesGoTypes(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":"many"}`))
	appctx.Wrap(func(c *appctx.Context) {
		var v struct {
			Quantity float64 `json:"quantity"`
		}
		c.DecodeJSON(&v)
	})(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if body := rec.Body.String(); strings.Contains(body, "Go struct") || !strings.Contains(body, "Invalid request body") {
		t.Errorf("decoder detail leaked: %s", body)
	}
}

func TestFailUnknownErrorIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Fail(errors.New("db down"))
	})(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "db down") {
		t.Error("internal error detail leaked to client")
	}
}

func TestString(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.String(http.StatusOK, "server is working fine")
	})(rec, req)

	if rec.Body.String() != "server is working fine" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

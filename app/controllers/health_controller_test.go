package controllers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/sweetshop/app/controllers"
	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthDown(t *testing.T) {
	hc := controllers.NewHealthController(pinger{err: errors.New("connection refused")})
	rec := httptest.NewRecorder()
	ctx.Wrap(hc.Health)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"error","database":"disconnected"}`, rec.Body.String())
}

func TestRootIsPlainText(t *testing.T) {
	hc := controllers.NewHealthController(pinger{})
	rec := httptest.NewRecorder()
	ctx.Wrap(hc.Root)(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "server is working fine", rec.Body.String())
}

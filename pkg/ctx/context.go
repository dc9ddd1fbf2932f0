// Package ctx provides a request context for handlers.
//
// Instead of (http.ResponseWriter, *http.Request) a handler receives a single
// *Context with helpers for params, binding and the JSON envelope:
//
//	func (sc *SweetController) Show(c *ctx.Context) {
//	    sweet, err := sc.sweets.Get(c.Context(), c.Param("id"))
//	    if err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.OK("", response.Payload{"sweet": sweet})
//	}
//
//	r.Get("/sweet/{id}", "sweets.show", ctx.Wrap(sc.Show))
package ctx

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/sweetshop/pkg/bind"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/middleware"
	"github.com/shashiranjanraj/sweetshop/pkg/response"
	"github.com/shashiranjanraj/sweetshop/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap adapts a HandlerFunc to http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair. It is pooled and must not be
// retained after the handler returns.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	mu     sync.RWMutex
	store  map[string]any
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{store: make(map[string]any)} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	clear(c.store)
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// Param returns a chi URL parameter.
func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

// Query returns a query-string value, or "".
func (c *Context) Query(key string) string { return c.R.URL.Query().Get(key) }

// DefaultQuery returns a query-string value, or def when empty.
func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// Cookie returns the value of a named request cookie.
func (c *Context) Cookie(name string) (string, error) {
	cookie, err := c.R.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

func (c *Context) ClientIP() string            { return middleware.ClientIP(c.R) }
func (c *Context) Context() context.Context    { return c.R.Context() }
func (c *Context) Header(key string) string    { return c.R.Header.Get(key) }
func (c *Context) SetHeader(key, value string) { c.W.Header().Set(key, value) }

// Set stores a value for the lifetime of the request.
func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	c.store[key] = val
	c.mu.Unlock()
}

// Get retrieves a value stored with Set.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.store[key]
	c.mu.RUnlock()
	return v, ok
}

// GetString returns a stored string, or "".
func (c *Context) GetString(key string) string {
	v, _ := c.Get(key)
	s, _ := v.(string)
	return s
}

// DecodeJSON decodes the body into dest without validating it. On failure
// it writes a 400 and returns false.
func (c *Context) DecodeJSON(dest any) bool {
	if err := bind.Decode(c.W, c.R, dest); err != nil {
		c.BadBody(err)
		return false
	}
	return true
}

// BadBody logs a decode failure and sends its client-safe message as a 400.
func (c *Context) BadBody(err error) {
	logger.WithCtx(c.Context()).Debug("request body rejected", "error", err)
	c.Error(http.StatusBadRequest, bind.PublicMessage(err))
}

// BindJSON decodes and validates the body into dest. On failure it writes
// a 400 and returns false.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.W, c.R, dest)
	if err != nil {
		c.BadBody(err)
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError("Validation failed", errs)
		return false
	}
	return true
}

// SetCookie adds a Set-Cookie header.
func (c *Context) SetCookie(cookie *http.Cookie) { http.SetCookie(c.W, cookie) }

// OK sends a 200 success envelope.
func (c *Context) OK(message string, payload response.Payload) {
	c.status = http.StatusOK
	response.OK(c.W, message, payload)
}

// Created sends a 201 success envelope.
func (c *Context) Created(message string, payload response.Payload) {
	c.status = http.StatusCreated
	response.Created(c.W, message, payload)
}

// Error sends a failure envelope.
func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

// ValidationError sends a 400 with field errors.
func (c *Context) ValidationError(message string, errs map[string]string) {
	c.status = http.StatusBadRequest
	response.ValidationError(c.W, message, errs)
}

// Fail renders err by its apperr kind.
func (c *Context) Fail(err error) {
	response.FromError(c.W, c.R, err)
}

// JSON writes v without the envelope.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

// String writes a plain-text response.
func (c *Context) String(code int, format string, args ...any) {
	c.W.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.W.WriteHeader(code)
	c.status = code
	fmt.Fprintf(c.W, format, args...)
}

// WrittenStatus returns the status written through the helpers, or 0.
func (c *Context) WrittenStatus() int { return c.status }

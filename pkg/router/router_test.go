package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sweetshop/pkg/router"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func tag(value string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", value)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroupPrefixAndMiddlewareOrder(t *testing.T) {
	r := router.New()
	api := r.Group("/api/v1", tag("api"))
	sweets := api.Group("sweet", tag("sweet"))
	sweets.Put("/{id}", "sweets.update", ok, tag("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/sweet/42", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"api", "sweet", "route"}, rec.Header().Values("X-Chain"))
}

func TestURLBuildsNamedRoute(t *testing.T) {
	r := router.New()
	r.Group("/api/v1/inventory").Post("/{id}/purchase", "inventory.purchase", ok)

	url, err := r.URL("inventory.purchase", map[string]string{"id": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/inventory/abc/purchase", url)

	_, err = r.URL("inventory.purchase", nil)
	assert.Error(t, err)

	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutesListing(t *testing.T) {
	r := router.New()
	g := r.Group("/api/v1/sweet")
	g.Get("/", "sweets.index", ok)
	g.Delete("/{id}", "sweets.destroy", ok)
	r.Handle("/metrics", "metrics", http.HandlerFunc(ok))

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, router.RouteInfo{Method: http.MethodGet, Path: "/api/v1/sweet", Name: "sweets.index"}, routes[0])
	assert.Equal(t, "/api/v1/sweet/{id}", routes[1].Path)
	assert.Equal(t, "/metrics", routes[2].Path)
}

func TestMethodNotAllowed(t *testing.T) {
	r := router.New()
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	r.Get("/only-get", "", ok)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/only-get", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

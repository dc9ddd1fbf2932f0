package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/api/v1/sweet/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sweet/abc", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	body := scrape(t)
	assert.Contains(t, body, `sweetshop_http_requests_total{method="GET",route="/api/v1/sweet/{id}",status="418"}`)
	assert.NotContains(t, body, `route="/api/v1/sweet/abc"`)
}

func TestDomainCountersExposed(t *testing.T) {
	metrics.InventoryOperations.WithLabelValues("purchase", "ok").Inc()
	metrics.LowStockEvents.Inc()

	body := scrape(t)
	assert.Contains(t, body, `sweetshop_inventory_operations_total{operation="purchase",result="ok"}`)
	assert.Contains(t, body, "sweetshop_inventory_low_stock_events_total")
}

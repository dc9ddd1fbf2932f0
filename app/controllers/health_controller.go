package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

// Pinger reports whether the store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	store Pinger
}

func NewHealthController(store Pinger) *HealthController {
	return &HealthController{store: store}
}

// Root is the plain-text liveness check.
func (hc *HealthController) Root(c *ctx.Context) {
	c.String(http.StatusOK, "server is working fine")
}

// Health pings the store and reports 503 when it is unreachable.
func (hc *HealthController) Health(c *ctx.Context) {
	pctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if err := hc.store.Ping(pctx); err != nil {
		logger.WithCtx(c.Context()).Warn("health: store ping failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":   "error",
			"database": "disconnected",
		})
		return
	}
	c.JSON(http.StatusOK, map[string]string{"status": "ok", "database": "connected"})
}

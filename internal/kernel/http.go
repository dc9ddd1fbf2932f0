// Package kernel assembles the application: stores, services, controllers
// and the HTTP handler with its global middleware.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shashiranjanraj/sweetshop/app/controllers"
	"github.com/shashiranjanraj/sweetshop/app/listeners"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/app/routes"
	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/pkg/auth"
	"github.com/shashiranjanraj/sweetshop/pkg/cache"
	"github.com/shashiranjanraj/sweetshop/pkg/event"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
	"github.com/shashiranjanraj/sweetshop/pkg/middleware"
	"github.com/shashiranjanraj/sweetshop/pkg/response"
	"github.com/shashiranjanraj/sweetshop/pkg/router"
	"github.com/shashiranjanraj/sweetshop/pkg/sse"
	"github.com/shashiranjanraj/sweetshop/pkg/storage"
	"github.com/shashiranjanraj/sweetshop/pkg/workerpool"
	"github.com/shashiranjanraj/sweetshop/pkg/ws"
)

// Deps are the external resources the kernel is built on.
type Deps struct {
	Store *repositories.Store
	Cache cache.Cache
	Disk  storage.Disk
}

// Kernel owns the wired application.
type Kernel struct {
	Store     *repositories.Store
	Cache     cache.Cache
	Disk      storage.Disk
	Pool      *workerpool.Pool
	Events    *event.Dispatcher
	Feed      *ws.Hub
	Stream    *sse.Broker
	Limiter   *middleware.RateLimiter
	Auth      *services.AuthService
	Sweets    *services.SweetService
	Inventory *services.InventoryService
	Router    *router.Router
}

// Boot opens the configured store, cache and disk and builds a Kernel.
func Boot(ctx context.Context) (*Kernel, error) {
	store, err := repositories.Open(ctx)
	if err != nil {
		return nil, err
	}
	c, err := cache.Open(ctx)
	if err != nil {
		store.Close(ctx) //nolint:errcheck
		return nil, err
	}
	disk, err := storage.Open(ctx)
	if err != nil {
		store.Close(ctx) //nolint:errcheck
		return nil, err
	}
	return New(Deps{Store: store, Cache: c, Disk: disk})
}

// New wires services, listeners and routes over deps.
func New(deps Deps) (*Kernel, error) {
	if deps.Cache == nil {
		deps.Cache = cache.Nop{}
	}

	k := &Kernel{
		Store:   deps.Store,
		Cache:   deps.Cache,
		Disk:    deps.Disk,
		Pool:    workerpool.New("events", config.WorkerPoolSize()),
		Feed:    ws.NewHub(config.CORSOrigins()),
		Stream:  sse.NewBroker(),
		Limiter: middleware.NewRateLimiter(config.RateLimit(), time.Minute),
	}
	k.Events = event.NewDispatcher(k.Pool)
	listeners.Register(k.Events, k.Feed, k.Stream)

	tokens := auth.NewTokens(config.JWTSecret(), config.JWTTTL())
	k.Auth = services.NewAuthService(deps.Store.Users, tokens)
	k.Sweets = services.NewSweetService(deps.Store.Sweets, deps.Cache, k.Events, config.CacheTTL())
	k.Inventory = services.NewInventoryService(deps.Store.Sweets, deps.Cache, k.Events, config.LowStockThreshold())

	gql, err := controllers.NewGraphQLHandler(k.Sweets, config.MaxBodyBytes())
	if err != nil {
		return nil, fmt.Errorf("kernel: graphql schema: %w", err)
	}

	h := routes.Handlers{
		Authenticator: k.Auth,
		Health:        controllers.NewHealthController(deps.Store),
		Auth:          controllers.NewAuthController(k.Auth),
		Sweets:        controllers.NewSweetController(k.Sweets, config.PageSize()),
		Inventory:     controllers.NewInventoryController(k.Inventory),
		GraphQL:       gql,
		Feed:          k.Feed,
		Stream:        k.Stream,
	}
	if deps.Disk != nil {
		h.Uploads = controllers.NewUploadController(deps.Disk, config.MaxUploadBytes())
	}

	k.Router = buildRouter(k, h)
	return k, nil
}

func buildRouter(k *Kernel, h routes.Handlers) *router.Router {
	r := router.New()

	// Outermost first: metrics sees total latency, recovery guards
	// everything below it, and the request id exists before anything logs.
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		middleware.RequestID,
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions(config.CORSOrigins())),
		k.Limiter.Middleware,
		chimw.StripSlashes,
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", "metrics", metrics.Handler())
	if local, ok := k.Disk.(*storage.LocalDisk); ok {
		r.Mount("/storage", "storage", http.StripPrefix("/storage", local.FileServer()))
	}

	routes.RegisterWeb(r, h)
	routes.RegisterAPI(r, h)
	return r
}

// Handler returns the root HTTP handler.
func (k *Kernel) Handler() http.Handler { return k.Router.Handler() }

// Background runs the long-lived loops until ctx is done.
func (k *Kernel) Background() []func(ctx context.Context) {
	return []func(ctx context.Context){k.Feed.Run, k.Stream.Run, k.Limiter.Janitor}
}

// Close drains pending events and releases the store and cache.
func (k *Kernel) Close(ctx context.Context) error {
	k.Pool.Shutdown()

	var errs []error
	if closer, ok := k.Cache.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	errs = append(errs, k.Store.Close(ctx))
	if err := errors.Join(errs...); err != nil {
		logger.Error("kernel: close", "error", err)
		return err
	}
	return nil
}

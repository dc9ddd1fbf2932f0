// Package routes registers the HTTP endpoints.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/sweetshop/app/controllers"
	"github.com/shashiranjanraj/sweetshop/app/middleware"
	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
	"github.com/shashiranjanraj/sweetshop/pkg/router"
)

// Handlers collects everything the route table points at.
type Handlers struct {
	Authenticator middleware.Authenticator
	Health        *controllers.HealthController
	Auth          *controllers.AuthController
	Sweets        *controllers.SweetController
	Inventory     *controllers.InventoryController
	Uploads       *controllers.UploadController
	GraphQL       http.HandlerFunc
	Feed          http.Handler
	Stream        http.Handler
}

// RegisterWeb registers the unversioned health routes.
func RegisterWeb(r *router.Router, h Handlers) {
	r.Get("/", "root", ctx.Wrap(h.Health.Root))
	r.Get("/health", "health", ctx.Wrap(h.Health.Health))
}

// RegisterAPI registers /api/v1.
func RegisterAPI(r *router.Router, h Handlers) {
	authed := middleware.Authenticate(h.Authenticator)
	admin := []router.Middleware{authed, middleware.RequireAdmin}

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/signup", "auth.signup", ctx.Wrap(h.Auth.Signup))
	auth.Post("/login", "auth.login", ctx.Wrap(h.Auth.Login))
	auth.Get("/logout", "auth.logout", ctx.Wrap(h.Auth.Logout))
	auth.Get("/me", "auth.me", ctx.Wrap(h.Auth.Me), authed)

	sweets := api.Group("/sweet")
	sweets.Get("/", "sweets.index", ctx.Wrap(h.Sweets.Index))
	sweets.Get("/search", "sweets.search", ctx.Wrap(h.Sweets.Search))
	sweets.Get("/{id}", "sweets.show", ctx.Wrap(h.Sweets.Show))
	sweets.Post("/", "sweets.store", ctx.Wrap(h.Sweets.Store), admin...)
	sweets.Put("/{id}", "sweets.update", ctx.Wrap(h.Sweets.Update), admin...)
	sweets.Delete("/{id}", "sweets.destroy", ctx.Wrap(h.Sweets.Destroy), admin...)

	inventory := api.Group("/inventory")
	inventory.Post("/{id}/purchase", "inventory.purchase", ctx.Wrap(h.Inventory.Purchase), authed)
	inventory.Post("/{id}/restock", "inventory.restock", ctx.Wrap(h.Inventory.Restock), admin...)
	if h.Feed != nil {
		inventory.Get("/feed", "inventory.feed", h.Feed.ServeHTTP)
	}
	if h.Stream != nil {
		inventory.Get("/stream", "inventory.stream", h.Stream.ServeHTTP)
	}

	if h.Uploads != nil {
		api.Post("/uploads/images", "uploads.image", ctx.Wrap(h.Uploads.Image), admin...)
	}
	if h.GraphQL != nil {
		api.Post("/graphql", "graphql", h.GraphQL)
	}
}

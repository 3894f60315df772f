package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/product-configurator/internal/auth"
	"github.com/straye-as/product-configurator/internal/config"
	"github.com/straye-as/product-configurator/internal/http/handler"
	"github.com/straye-as/product-configurator/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/straye-as/product-configurator/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	healthHandler       *handler.HealthHandler
	authHandler         *handler.AuthHandler
	configuratorHandler *handler.ConfiguratorHandler
	publicHandler       *handler.PublicHandler
	cartHandler         *handler.CartHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	configuratorHandler *handler.ConfiguratorHandler,
	publicHandler *handler.PublicHandler,
	cartHandler *handler.CartHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		healthHandler:       healthHandler,
		authHandler:         authHandler,
		configuratorHandler: configuratorHandler,
		publicHandler:       publicHandler,
		cartHandler:         cartHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))

	r.Get("/health", rt.healthHandler.Health)
	r.Get("/health/db", rt.healthHandler.Database)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Shop routes (no auth required)
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimiter.Shop)

			r.Get("/configurators/{id}", rt.publicHandler.GetConfigurator)
			r.Post("/configurators/{id}/quote", rt.publicHandler.Quote)

			r.Route("/carts", func(r chi.Router) {
				r.Post("/", rt.cartHandler.Create)
				r.Get("/{cartId}", rt.cartHandler.GetByID)
				r.Post("/{cartId}/configurations", rt.cartHandler.AddConfiguration)
			})
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(rt.rateLimiter.Admin)
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.authMiddleware.RequireRole(auth.RoleAdmin, auth.RoleViewer))

			r.Get("/me", rt.authHandler.Me)

			r.Route("/configurators", func(r chi.Router) {
				r.Get("/", rt.configuratorHandler.List)
				r.Get("/{id}", rt.configuratorHandler.GetByID)
				r.Get("/{id}/export", rt.configuratorHandler.Export)
				r.Get("/{id}/snapshots", rt.configuratorHandler.ListSnapshots)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(auth.RoleAdmin))

					r.Post("/", rt.configuratorHandler.Create)
					r.Post("/validate", rt.configuratorHandler.Validate)
					r.Post("/import", rt.configuratorHandler.Import)
					r.Put("/{id}", rt.configuratorHandler.Update)
					r.Delete("/{id}", rt.configuratorHandler.Delete)
					r.Post("/{id}/snapshots/{snapshotId}/restore", rt.configuratorHandler.RestoreSnapshot)
				})
			})
		})
	})

	return r
}

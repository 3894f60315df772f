package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
	"github.com/straye-as/product-configurator/internal/config"
	"go.uber.org/zap"
)

// AdminPathPrefix is the route prefix of the back-office API
const AdminPathPrefix = "/api/v1/admin"

// CORS returns a CORS middleware with one origin policy for the storefront routes and one for the
// admin API. Storefronts embedding the configurator use AllowedOrigins; the admin API uses
// AdminAllowedOrigins when set.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	shop := corsOptions(cfg, cfg.AllowedOrigins, environment, logger.With(zap.String("surface", "shop")))

	adminOrigins := cfg.AdminAllowedOrigins
	if len(adminOrigins) == 0 {
		adminOrigins = cfg.AllowedOrigins
	}
	admin := corsOptions(cfg, adminOrigins, environment, logger.With(zap.String("surface", "admin")))

	shopHandler := cors.Handler(shop)
	adminHandler := cors.Handler(admin)
	return func(next http.Handler) http.Handler {
		shopNext := shopHandler(next)
		adminNext := adminHandler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, AdminPathPrefix) {
				adminNext.ServeHTTP(w, r)
				return
			}
			shopNext.ServeHTTP(w, r)
		})
	}
}

func corsOptions(cfg *config.CORSConfig, origins []string, environment string, logger *zap.Logger) cors.Options {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	development := environment == "development" || environment == "local" || environment == ""

	switch {
	case containsWildcard(origins):
		if !development {
			logger.Warn("CORS wildcard origin outside development", zap.String("environment", environment))
		}
		options.AllowOriginFunc = anyOrigin
	case len(origins) > 0:
		options.AllowedOrigins = origins
		logger.Info("CORS origins configured", zap.Strings("origins", origins))
	case development:
		options.AllowOriginFunc = anyOrigin
		logger.Info("CORS allows all origins in development")
	default:
		// an empty AllowedOrigins list means "*" to go-chi/cors
		options.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
		logger.Warn("CORS has no allowed origins, cross-origin requests are denied", zap.String("environment", environment))
	}
	return options
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func anyOrigin(r *http.Request, origin string) bool {
	return origin != ""
}

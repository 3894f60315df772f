package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/straye-as/product-configurator/internal/config"
	"go.uber.org/zap"
)

// Middleware handles authentication for the admin API
type Middleware struct {
	tokens *TokenService
	apiKey string
	logger *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.AuthConfig, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens: NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTLDuration()),
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// Tokens returns the service validating bearer tokens
func (m *Middleware) Tokens() *TokenService {
	return m.tokens
}

// Authenticate accepts an X-API-Key header or a bearer token
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
			if !m.validateAPIKey(apiKey) {
				m.logger.Warn("invalid API key attempt",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			user := &UserContext{
				Subject:  "api-key",
				Name:     "System",
				Roles:    []Role{RoleAdmin},
				AuthType: AuthTypeAPIKey,
			}
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), user)))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized: missing authorization header", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "Unauthorized: invalid authorization header format", http.StatusUnauthorized)
			return
		}

		user, err := m.tokens.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("path", r.URL.Path),
			zap.String("subject", user.Subject),
			zap.Strings("roles", user.RolesAsStrings()),
		)
		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), user)))
	})
}

// RequireRole middleware ensures user has one of roles
func (m *Middleware) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "Forbidden: no user context", http.StatusForbidden)
				return
			}
			if !user.HasAnyRole(roles...) {
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}

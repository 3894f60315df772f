package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/product-configurator/internal/auth"
	"github.com/straye-as/product-configurator/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMiddleware() *auth.Middleware {
	return auth.NewMiddleware(&config.AuthConfig{
		APIKey:    "admin-key",
		JWTSecret: testSecret,
		JWTIssuer: "configurator",
		TokenTTL:  60,
	}, zap.NewNop())
}

// whoami echoes the authenticated subject
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(user.Subject))
})

func serve(handler http.Handler, setup func(r *http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/configurators", nil)
	setup(req)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_Authenticate(t *testing.T) {
	m := newMiddleware()
	handler := m.Authenticate(whoami)

	token, err := m.Tokens().Issue("user-1", "Kari", auth.RoleViewer)
	require.NoError(t, err)

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		body   string
	}{
		{"api key", func(r *http.Request) { r.Header.Set("X-API-Key", "admin-key") }, http.StatusOK, "api-key"},
		{"wrong api key", func(r *http.Request) { r.Header.Set("X-API-Key", "nope") }, http.StatusUnauthorized, ""},
		{"bearer token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK, "user-1"},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) }, http.StatusOK, "user-1"},
		{"basic scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, http.StatusUnauthorized, ""},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, http.StatusUnauthorized, ""},
		{"no credentials", func(r *http.Request) {}, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(handler, tt.setup)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestMiddleware_EmptyAPIKeyNeverMatches(t *testing.T) {
	m := auth.NewMiddleware(&config.AuthConfig{JWTSecret: testSecret}, zap.NewNop())
	rec := serve(m.Authenticate(whoami), func(r *http.Request) { r.Header.Set("X-API-Key", " ") })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_RequireRole(t *testing.T) {
	m := newMiddleware()
	handler := m.Authenticate(m.RequireRole(auth.RoleAdmin)(whoami))

	viewer, err := m.Tokens().Issue("viewer-1", "", auth.RoleViewer)
	require.NoError(t, err)
	admin, err := m.Tokens().Issue("admin-1", "", auth.RoleAdmin)
	require.NoError(t, err)

	rec := serve(handler, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+viewer) })
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(handler, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+admin) })
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(handler, func(r *http.Request) { r.Header.Set("X-API-Key", "admin-key") })
	assert.Equal(t, http.StatusOK, rec.Code, "the api key acts as admin")

	rec = serve(m.RequireRole(auth.RoleAdmin)(whoami), func(r *http.Request) {})
	assert.Equal(t, http.StatusForbidden, rec.Code, "no user context")
}

func TestUserContext_Roles(t *testing.T) {
	user := &auth.UserContext{Roles: []auth.Role{auth.RoleViewer}}
	assert.True(t, user.HasRole(auth.RoleViewer))
	assert.False(t, user.HasRole(auth.RoleAdmin))
	assert.True(t, user.HasAnyRole(auth.RoleAdmin, auth.RoleViewer))
	assert.Equal(t, []string{"viewer"}, user.RolesAsStrings())
	assert.False(t, auth.Role("root").IsValid())
}

package handler

import (
	"net/http"

	"github.com/straye-as/product-configurator/internal/auth"
	"go.uber.org/zap"
)

// MeResponse describes the authenticated admin caller
type MeResponse struct {
	Subject  string   `json:"subject"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles"`
	AuthType string   `json:"authType"`
	CanWrite bool     `json:"canWrite"`
}

type AuthHandler struct {
	logger *zap.Logger
}

func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// Me godoc
// @Summary Get current admin caller
// @Description Returns the subject and roles of the authenticated caller
// @Tags Auth
// @Produce json
// @Success 200 {object} MeResponse
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	respondJSON(w, http.StatusOK, MeResponse{
		Subject:  user.Subject,
		Name:     user.Name,
		Roles:    user.RolesAsStrings(),
		AuthType: string(user.AuthType),
		CanWrite: user.HasRole(auth.RoleAdmin),
	})
}

package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/repository"
	"github.com/straye-as/product-configurator/internal/service"
	"go.uber.org/zap"
)

type ConfiguratorHandler struct {
	configuratorService *service.ConfiguratorService
	snapshotService     *service.SnapshotService
	logger              *zap.Logger
}

func NewConfiguratorHandler(configuratorService *service.ConfiguratorService, snapshotService *service.SnapshotService, logger *zap.Logger) *ConfiguratorHandler {
	return &ConfiguratorHandler{
		configuratorService: configuratorService,
		snapshotService:     snapshotService,
		logger:              logger,
	}
}

// List godoc
// @Summary List configurators
// @Description Get paginated list of configurators
// @Tags Configurators
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param sortBy query string false "Sort field" Enums(name, createdAt, updatedAt)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ConfiguratorSummaryDTO}
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/configurators [get]
func (h *ConfiguratorHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	sort := repository.DefaultSortConfig()
	if sortBy := r.URL.Query().Get("sortBy"); sortBy != "" {
		sort.Field = sortBy
	}
	if sortOrder := r.URL.Query().Get("sortOrder"); sortOrder != "" {
		sort.Order = repository.ParseSortOrder(sortOrder)
	}

	result, err := h.configuratorService.List(r.Context(), page, pageSize, sort)
	if err != nil {
		handleError(w, h.logger, err, "list configurators")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get configurator by ID
// @Description Get the full configurator graph with steps and product choices
// @Tags Configurators
// @Produce json
// @Param id path int true "Configurator ID"
// @Success 200 {object} domain.ConfiguratorDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/configurators/{id} [get]
func (h *ConfiguratorHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid configurator ID")
		return
	}

	cfg, err := h.configuratorService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "get configurator")
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

// Create godoc
// @Summary Create configurator
// @Description Create a configurator from a graph whose steps and choices carry virtual ids
// @Tags Configurators
// @Accept json
// @Produce json
// @Param request body domain.ConfiguratorDTO true "Configurator graph"
// @Success 201 {object} domain.ConfiguratorSaveResult
// @Failure 400 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/configurators [post]
func (h *ConfiguratorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var dto domain.ConfiguratorDTO
	if err := decodeJSON(r, &dto); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.configuratorService.Create(r.Context(), &dto)
	if err != nil {
		handleError(w, h.logger, err, "create configurator")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/admin/configurators/%d", *result.Configurator.ID))
	respondJSON(w, http.StatusCreated, result)
}

// Update godoc
// @Summary Update configurator
// @Description Replace the graph of a configurator. Steps and choices missing from the body are removed.
// @Tags Configurators
// @Accept json
// @Produce json
// @Param id path int true "Configurator ID"
// @Param request body domain.ConfiguratorDTO true "Configurator graph"
// @Success 200 {object} domain.ConfiguratorSaveResult
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/configurators/{id} [put]
func (h *ConfiguratorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid configurator ID")
		return
	}

	var dto domain.ConfiguratorDTO
	if err := decodeJSON(r, &dto); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.configuratorService.Update(r.Context(), id, &dto)
	if err != nil {
		handleError(w, h.logger, err, "update configurator")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Delete godoc
// @Summary Delete configurator
// @Description Delete a configurator with its steps and product choices
// @Tags Configurators
// @Param id path int true "Configurator ID"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/configurators/{id} [delete]
func (h *ConfiguratorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid configurator ID")
		return
	}

	if err := h.configuratorService.Delete(r.Context(), id); err != nil {
		handleError(w, h.logger, err, "delete configurator")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Validate godoc
// @Summary Validate configurator
// @Description Check a configurator graph without saving it
// @Tags Configurators
// @Accept json
// @Produce json
// @Param request body domain.ConfiguratorDTO true "Configurator graph"
// @Success 200 {object} domain.ValidationReport
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/configurators/validate [post]
func (h *ConfiguratorHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var dto domain.ConfiguratorDTO
	if err := decodeJSON(r, &dto); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, h.configuratorService.Validate(&dto))
}

// Export godoc
// @Summary Export configurator
// @Description Download the configurator graph as JSON accepted by the import endpoint
// @Tags Configurators
// @Produce json
// @Param id path int true "Configurator ID"
// @Success 200 {object} domain.ConfiguratorDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/configurators/{id}/export [get]
func (h *ConfiguratorHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid configurator ID")
		return
	}

	cfg, err := h.configuratorService.Export(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "export configurator")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="configurator-%d.json"`, id))
	respondJSON(w, http.StatusOK, cfg)
}

// Import godoc
// @Summary Import configurator
// @Description Create a new configurator from an exported graph. All steps and choices are stored as new records.
// @Tags Configurators
// @Accept json
// @Produce json
// @Param request body domain.ConfiguratorDTO true "Exported configurator graph"
// @Success 201 {object} domain.ConfiguratorSaveResult
// @Failure 400 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/configurators/import [post]
func (h *ConfiguratorHandler) Import(w http.ResponseWriter, r *http.Request) {
	var dto domain.ConfiguratorDTO
	if err := decodeJSON(r, &dto); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.configuratorService.Import(r.Context(), &dto)
	if err != nil {
		handleError(w, h.logger, err, "import configurator")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/admin/configurators/%d", *result.Configurator.ID))
	respondJSON(w, http.StatusCreated, result)
}

// ListSnapshots godoc
// @Summary List configurator snapshots
// @Description List the stored snapshots of a configurator, newest first
// @Tags Configurators
// @Produce json
// @Param id path int true "Configurator ID"
// @Success 200 {array} domain.SnapshotDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/configurators/{id}/snapshots [get]
func (h *ConfiguratorHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid configurator ID")
		return
	}

	snapshots, err := h.snapshotService.List(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "list snapshots")
		return
	}

	respondJSON(w, http.StatusOK, snapshots)
}

// RestoreSnapshot godoc
// @Summary Restore configurator snapshot
// @Description Replace the configurator graph with a stored snapshot
// @Tags Configurators
// @Produce json
// @Param id path int true "Configurator ID"
// @Param snapshotId path int true "Snapshot ID"
// @Success 200 {object} domain.ConfiguratorSaveResult
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/configurators/{id}/snapshots/{snapshotId}/restore [post]
func (h *ConfiguratorHandler) RestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid configurator ID")
		return
	}
	snapshotID, err := parseInt64Param(r, "snapshotId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid snapshot ID")
		return
	}

	result, err := h.configuratorService.Restore(r.Context(), id, snapshotID)
	if err != nil {
		handleError(w, h.logger, err, "restore snapshot")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

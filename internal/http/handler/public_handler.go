package handler

import (
	"net/http"

	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/service"
	"go.uber.org/zap"
)

// PublicHandler serves configurators to the shop front
type PublicHandler struct {
	quoteService *service.QuoteService
	logger       *zap.Logger
}

func NewPublicHandler(quoteService *service.QuoteService, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{
		quoteService: quoteService,
		logger:       logger,
	}
}

// GetConfigurator godoc
// @Summary Get configurator for the shop
// @Description Get an active configurator without its inactive steps and choices, with a price per product choice
// @Tags Shop
// @Produce json
// @Param id path int true "Configurator ID"
// @Success 200 {object} domain.PublicConfiguratorDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /configurators/{id} [get]
func (h *PublicHandler) GetConfigurator(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid configurator ID")
		return
	}

	cfg, err := h.quoteService.GetPublic(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "get configurator")
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

// Quote godoc
// @Summary Price a selection
// @Description Resolve visibility and quantities of a selection and price every line without touching a cart
// @Tags Shop
// @Accept json
// @Produce json
// @Param id path int true "Configurator ID"
// @Param request body domain.QuoteRequest true "Selected choices"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Router /configurators/{id}/quote [post]
func (h *PublicHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid configurator ID")
		return
	}

	var req domain.QuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Quote(r.Context(), id, req.Items)
	if err != nil {
		handleError(w, h.logger, err, "quote selection")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

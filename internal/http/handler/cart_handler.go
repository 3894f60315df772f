package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/service"
	"go.uber.org/zap"
)

type CartHandler struct {
	cartService *service.CartService
	logger      *zap.Logger
}

func NewCartHandler(cartService *service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// Create godoc
// @Summary Create cart
// @Description Open an empty cart in the shop currency
// @Tags Carts
// @Produce json
// @Success 201 {object} domain.CartDTO
// @Failure 500 {object} domain.APIError
// @Router /carts [post]
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.Create(r.Context())
	if err != nil {
		handleError(w, h.logger, err, "create cart")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/carts/%s", cart.ID))
	respondJSON(w, http.StatusCreated, cart)
}

// GetByID godoc
// @Summary Get cart
// @Description Get a cart with its lines, attached discount rules and totals
// @Tags Carts
// @Produce json
// @Param cartId path string true "Cart ID" format(uuid)
// @Success 200 {object} domain.CartDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /carts/{cartId} [get]
func (h *CartHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	cartID, err := uuid.Parse(chi.URLParam(r, "cartId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid cart ID format")
		return
	}

	cart, err := h.cartService.Get(r.Context(), cartID)
	if err != nil {
		handleError(w, h.logger, err, "get cart")
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// AddConfiguration godoc
// @Summary Add a configuration to a cart
// @Description Resolve a configurator selection, add its products to the cart and attach the configurator discount
// @Tags Carts
// @Accept json
// @Produce json
// @Param cartId path string true "Cart ID" format(uuid)
// @Param request body domain.CartSelection true "Configurator selection"
// @Success 200 {object} domain.CartDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Router /carts/{cartId}/configurations [post]
func (h *CartHandler) AddConfiguration(w http.ResponseWriter, r *http.Request) {
	cartID, err := uuid.Parse(chi.URLParam(r, "cartId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid cart ID format")
		return
	}

	var selection domain.CartSelection
	if err := decodeJSON(r, &selection); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(selection); err != nil {
		respondValidationError(w, err)
		return
	}

	cart, err := h.cartService.AddConfiguration(r.Context(), cartID, selection)
	if err != nil {
		handleError(w, h.logger, err, "add configuration to cart")
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

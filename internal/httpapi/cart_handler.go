package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Daddtdrey/eatai/internal/cart"
	"github.com/Daddtdrey/eatai/internal/domain"
	"github.com/Daddtdrey/eatai/internal/inventory"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddLine(ctx context.Context, userID string, item domain.CartItem) error
	RemoveLine(ctx context.Context, userID, lineID string) error
	Clear(ctx context.Context, userID string) error
}

// ProductGetter resolves a product so cart lines carry a denormalized copy
// of what the buyer saw when they added it.
type ProductGetter interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type CartHandler struct {
	service  CartService
	products ProductGetter
}

func NewCartHandler(service CartService, products ProductGetter) *CartHandler {
	return &CartHandler{service: service, products: products}
}

// GET /api/v1/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if actor.UserID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	c, err := h.service.GetCart(r.Context(), actor.UserID)
	if err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

type addLineDTO struct {
	ProductID int64 `json:"product_id"`
}

// POST /api/v1/cart/lines
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if actor.UserID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req addLineDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id is required")
		return
	}

	product, err := h.products.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		handleCartError(w, err)
		return
	}

	item := domain.CartItem{
		LineID:    uuid.NewString(),
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Vendor:    product.Vendor,
		AddedAt:   time.Now().UTC(),
	}
	if err := h.service.AddLine(r.Context(), actor.UserID, item); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// DELETE /api/v1/cart/lines/{lineID}
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if actor.UserID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	lineID := chi.URLParam(r, "lineID")
	if err := h.service.RemoveLine(r.Context(), actor.UserID, lineID); err != nil {
		handleCartError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if actor.UserID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.service.Clear(r.Context(), actor.UserID); err != nil {
		handleCartError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inventory.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", "product not found")
	case errors.Is(err, cart.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "not_found", "cart not found")
	case errors.Is(err, cart.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "not_found", "cart line not found")
	default:
		logger.Error().Err(err).Msg("cart request failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

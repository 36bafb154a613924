package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Daddtdrey/eatai/internal/domain"
	"github.com/Daddtdrey/eatai/internal/orders"
	"github.com/Daddtdrey/eatai/internal/repository"
)

type OrdersService interface {
	GetOrder(ctx context.Context, actor orders.Actor, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, actor orders.Actor) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, actor orders.Actor, id uuid.UUID, next domain.OrderStatus) (*domain.Order, error)
}

type OrdersHandler struct {
	service OrdersService
}

func NewOrdersHandler(service OrdersService) *OrdersHandler {
	return &OrdersHandler{service: service}
}

// GET /api/v1/orders
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if actor.UserID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	list, err := h.service.ListOrders(r.Context(), actor)
	if err != nil {
		handleOrdersError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"orders": list})
}

// GET /api/v1/orders/{id}
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a UUID")
		return
	}

	order, err := h.service.GetOrder(r.Context(), actor, id)
	if err != nil {
		handleOrdersError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

type statusUpdateDTO struct {
	Status string `json:"status"`
}

// POST /api/v1/orders/{id}/status
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a UUID")
		return
	}

	var req statusUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), actor, id, domain.OrderStatus(req.Status))
	if err != nil {
		handleOrdersError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func handleOrdersError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	case errors.Is(err, orders.ErrNotOwner), errors.Is(err, orders.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, orders.ErrInvalidTransition):
		respondError(w, http.StatusUnprocessableEntity, "invalid_transition", err.Error())
	case errors.Is(err, repository.ErrStatusConflict):
		respondError(w, http.StatusConflict, "status_conflict", "order status changed, reload and retry")
	default:
		logger.Error().Err(err).Msg("orders request failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Daddtdrey/eatai/internal/checkout"
	"github.com/Daddtdrey/eatai/internal/delivery"
	"github.com/Daddtdrey/eatai/internal/domain"
	"github.com/Daddtdrey/eatai/internal/inventory"
)

// CheckoutService is the coordinator as the handler sees it.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, req *checkout.PlaceOrderRequest) (*domain.Order, error)
}

// CartClearer empties the stored cart after a successful checkout.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

type CheckoutHandler struct {
	service CheckoutService
	carts   CartClearer
}

func NewCheckoutHandler(service CheckoutService, carts CartClearer) *CheckoutHandler {
	return &CheckoutHandler{service: service, carts: carts}
}

type checkoutRequestDTO struct {
	Lines         []domain.CartLine   `json:"lines"`
	PaymentMethod string              `json:"payment_method"`
	InitialStatus string              `json:"initial_status"`
	City          string              `json:"city"`
	Delivery      domain.DeliveryInfo `json:"delivery"`
}

type checkoutResponseDTO struct {
	OrderID     string  `json:"order_id"`
	Status      string  `json:"status"`
	Total       float64 `json:"total"`
	DeliveryFee float64 `json:"delivery_fee"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if actor.UserID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req checkoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	initialStatus := domain.OrderStatus(req.InitialStatus)
	if req.InitialStatus == "" {
		initialStatus = domain.OrderStatusPending
	}

	// Fee is computed here at the boundary; the coordinator receives a
	// number.
	fee := delivery.Fee(req.City, req.Delivery.Area)

	order, err := h.service.PlaceOrder(r.Context(), &checkout.PlaceOrderRequest{
		UserID:        actor.UserID,
		Lines:         req.Lines,
		PaymentMethod: req.PaymentMethod,
		InitialStatus: initialStatus,
		DeliveryFee:   fee,
		Delivery:      req.Delivery,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	// Checkout succeeded; the stored cart is stale now. Losing this cleanup
	// is harmless, the client refreshes its cart anyway.
	if err := h.carts.Clear(r.Context(), actor.UserID); err != nil {
		logger.Warn().Err(err).Str("user_id", actor.UserID).Msg("failed to clear cart after checkout")
	}

	respondJSON(w, http.StatusCreated, checkoutResponseDTO{
		OrderID:     order.ID.String(),
		Status:      order.Status.String(),
		Total:       order.Total,
		DeliveryFee: order.DeliveryFee,
	})
}

// handleCheckoutError maps the coordinator's failure taxonomy onto HTTP.
// Every branch keeps the product identity the UI needs to act.
func handleCheckoutError(w http.ResponseWriter, err error) {
	var unavailable *inventory.UnavailableError
	if errors.As(err, &unavailable) {
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:   unavailable.Error(),
			Code:    "item_unavailable",
			Details: "refresh your cart and remove the unavailable item",
		})
		return
	}

	var shortfall *inventory.InsufficientStockError
	if errors.As(err, &shortfall) {
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:   shortfall.Error(),
			Code:    "insufficient_stock",
			Details: "reduce the quantity or remove the item",
		})
		return
	}

	switch {
	case errors.Is(err, checkout.ErrTransactionConflict):
		respondError(w, http.StatusConflict, "transaction_conflict", "checkout is busy, please try again")
	case errors.Is(err, checkout.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, "store_unavailable", "service temporarily unavailable")
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidLine),
		errors.Is(err, checkout.ErrInvalidInitialStatus),
		errors.Is(err, checkout.ErrInvalidDeliveryFee),
		errors.Is(err, checkout.ErrMissingUser):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		logger.Error().Err(err).Msg("checkout failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

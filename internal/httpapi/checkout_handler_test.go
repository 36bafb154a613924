package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daddtdrey/eatai/internal/checkout"
	"github.com/Daddtdrey/eatai/internal/config"
	"github.com/Daddtdrey/eatai/internal/domain"
	"github.com/Daddtdrey/eatai/internal/inventory"
	"github.com/Daddtdrey/eatai/internal/orders"
)

type stubCheckout struct {
	gotReq *checkout.PlaceOrderRequest
	order  *domain.Order
	err    error
}

func (s *stubCheckout) PlaceOrder(_ context.Context, req *checkout.PlaceOrderRequest) (*domain.Order, error) {
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

type stubClearer struct {
	cleared []string
}

func (s *stubClearer) Clear(_ context.Context, userID string) error {
	s.cleared = append(s.cleared, userID)
	return nil
}

func checkoutRequest(t *testing.T, userID, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	actor := orders.Actor{UserID: userID, Role: config.RoleCustomer}
	return req.WithContext(context.WithValue(req.Context(), actorKey, actor))
}

func TestPlaceOrderHandlerSuccess(t *testing.T) {
	order := &domain.Order{
		ID:          uuid.New(),
		Status:      domain.OrderStatusPending,
		Total:       4000,
		DeliveryFee: 1000,
	}
	svc := &stubCheckout{order: order}
	clearer := &stubClearer{}
	h := NewCheckoutHandler(svc, clearer)

	body := `{"lines":[{"product_id":1,"quantity":2}],"payment_method":"transfer","city":"Irrua","delivery":{"area":"Irrua","address":"12 College Rd"}}`
	rec := httptest.NewRecorder()
	h.PlaceOrder(rec, checkoutRequest(t, "user-1", body))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp checkoutResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, order.ID.String(), resp.OrderID)
	assert.Equal(t, "pending", resp.Status)

	// Same-town fee computed at the boundary, default status pending
	require.NotNil(t, svc.gotReq)
	assert.Equal(t, 1000.0, svc.gotReq.DeliveryFee)
	assert.Equal(t, domain.OrderStatusPending, svc.gotReq.InitialStatus)

	assert.Equal(t, []string{"user-1"}, clearer.cleared)
}

func TestPlaceOrderHandlerUnauthenticated(t *testing.T) {
	h := NewCheckoutHandler(&stubCheckout{}, &stubClearer{})

	rec := httptest.NewRecorder()
	h.PlaceOrder(rec, checkoutRequest(t, "", `{}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaceOrderHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"item unavailable", &inventory.UnavailableError{ProductID: 7}, http.StatusConflict, "item_unavailable"},
		{"insufficient stock", &inventory.InsufficientStockError{ProductID: 7, Name: "Suya", Requested: 2, Remaining: 1}, http.StatusConflict, "insufficient_stock"},
		{"transaction conflict", checkout.ErrTransactionConflict, http.StatusConflict, "transaction_conflict"},
		{"store unavailable", checkout.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
		{"empty cart", checkout.ErrEmptyCart, http.StatusBadRequest, "invalid_request"},
		{"invalid status", checkout.ErrInvalidInitialStatus, http.StatusBadRequest, "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearer := &stubClearer{}
			h := NewCheckoutHandler(&stubCheckout{err: tt.err}, clearer)

			body := `{"lines":[{"product_id":1,"quantity":1}]}`
			rec := httptest.NewRecorder()
			h.PlaceOrder(rec, checkoutRequest(t, "user-1", body))

			assert.Equal(t, tt.wantCode, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantBody, resp.Code)

			// Cart survives a failed checkout
			assert.Empty(t, clearer.cleared)
		})
	}
}

func TestPlaceOrderHandlerInsufficientStockDetail(t *testing.T) {
	h := NewCheckoutHandler(&stubCheckout{
		err: &inventory.InsufficientStockError{ProductID: 7, Name: "Suya", Requested: 3, Remaining: 1},
	}, &stubClearer{})

	rec := httptest.NewRecorder()
	h.PlaceOrder(rec, checkoutRequest(t, "user-1", `{"lines":[{"product_id":7,"quantity":3}]}`))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "Suya")
}

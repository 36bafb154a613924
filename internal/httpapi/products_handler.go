package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Daddtdrey/eatai/internal/catalog"
	"github.com/Daddtdrey/eatai/internal/config"
	"github.com/Daddtdrey/eatai/internal/domain"
	"github.com/Daddtdrey/eatai/internal/inventory"
	"github.com/Daddtdrey/eatai/internal/orders"
)

type CatalogService interface {
	CreateProduct(ctx context.Context, in catalog.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, in catalog.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListByLocation(ctx context.Context, location string) ([]*domain.Product, error)
}

type ProductsHandler struct {
	service CatalogService
}

func NewProductsHandler(service CatalogService) *ProductsHandler {
	return &ProductsHandler{service: service}
}

// GET /api/v1/products?location=Irrua
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")

	products, err := h.service.ListByLocation(r.Context(), location)
	if err != nil {
		handleProductsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// GET /api/v1/products/{id}
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be an integer")
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		handleProductsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// POST /api/v1/products
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	var in catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Vendor managers can only list products under their own banner.
	switch actor.Role {
	case config.RoleSuper:
	case config.RoleVendor:
		in.Vendor = actor.Vendor
	default:
		respondError(w, http.StatusForbidden, "forbidden", "not allowed to manage products")
		return
	}

	product, err := h.service.CreateProduct(r.Context(), in)
	if err != nil {
		handleProductsError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

// PUT /api/v1/products/{id}
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be an integer")
		return
	}

	var in catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if ok := h.authorizeManage(w, r, actor, id); !ok {
		return
	}
	if actor.Role == config.RoleVendor {
		in.Vendor = actor.Vendor
	}

	product, err := h.service.UpdateProduct(r.Context(), id, in)
	if err != nil {
		handleProductsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// DELETE /api/v1/products/{id}
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be an integer")
		return
	}

	if ok := h.authorizeManage(w, r, actor, id); !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		handleProductsError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authorizeManage writes the error response itself and reports whether the
// caller may modify the given product.
func (h *ProductsHandler) authorizeManage(w http.ResponseWriter, r *http.Request, actor orders.Actor, id int64) bool {
	switch actor.Role {
	case config.RoleSuper:
		return true
	case config.RoleVendor:
		existing, err := h.service.GetProduct(r.Context(), id)
		if err != nil {
			handleProductsError(w, err)
			return false
		}
		if existing.Vendor != actor.Vendor {
			respondError(w, http.StatusForbidden, "forbidden", "product belongs to another vendor")
			return false
		}
		return true
	default:
		respondError(w, http.StatusForbidden, "forbidden", "not allowed to manage products")
		return false
	}
}

func handleProductsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inventory.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", "product not found")
	case errors.Is(err, domain.ErrUnknownLocation):
		respondError(w, http.StatusBadRequest, "unknown_location", err.Error())
	case errors.Is(err, domain.ErrInvalidProduct):
		respondError(w, http.StatusBadRequest, "invalid_product", err.Error())
	default:
		logger.Error().Err(err).Msg("products request failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

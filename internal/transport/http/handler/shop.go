package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-referral-api/internal/application/product"
	"github.com/go-referral-api/internal/application/shop"
	"github.com/go-referral-api/internal/domain"
	"github.com/go-referral-api/internal/transport/http/middleware"
)

// ShopHandler serves the storefront and the Razorpay checkout flow.
type ShopHandler struct {
	products product.Service
	shop     shop.Service
}

func NewShopHandler(p product.Service, s shop.Service) *ShopHandler {
	return &ShopHandler{products: p, shop: s}
}

type checkoutEnvelope struct {
	Success bool `json:"success"`
	*shop.Checkout
}

// preview reports whether an admin is browsing the storefront. Admins also see
// disabled products so they can check a listing before enabling it.
func preview(r *http.Request) bool {
	u, ok := middleware.UserFromContext(r.Context())
	return ok && u.Role == domain.RoleAdmin
}

func (h *ShopHandler) Products(w http.ResponseWriter, r *http.Request) {
	list, err := h.products.List(r.Context(), !preview(r))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(list))
}

func (h *ShopHandler) Product(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"), preview(r))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(p))
}

func (h *ShopHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}
	var req shop.PurchaseRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	co, err := h.shop.InitiatePurchase(r.Context(), u, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkoutEnvelope{Success: true, Checkout: co})
}

func (h *ShopHandler) Verify(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}
	var req shop.VerifyRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	o, err := h.shop.VerifyPurchase(r.Context(), u, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(o))
}

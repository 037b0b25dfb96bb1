package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-referral-api/internal/application/order"
	"github.com/go-referral-api/internal/domain"
	"github.com/go-referral-api/internal/transport/http/middleware"
)

type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler { return &OrderHandler{svc: svc} }

func (h *OrderHandler) Mine(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}
	orders, err := h.svc.ListMine(r.Context(), u.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(orders))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(orders))
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(o))
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateOrderRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	o, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(o))
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Order deleted"})
}

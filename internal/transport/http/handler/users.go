package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-referral-api/internal/application/user"
	"github.com/go-referral-api/internal/domain"
	"github.com/go-referral-api/internal/transport/http/middleware"
)

// UserHandler handles the admin user management endpoints.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	users, next, err := h.svc.List(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Success: true, Data: users, NextCursor: next})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(u))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "id")
	var req domain.UpdateUserRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if admin, ok := middleware.UserFromContext(r.Context()); ok && admin.UserID == targetID {
		if req.Role != nil && *req.Role != admin.Role {
			writeError(w, http.StatusForbidden, "cannot change your own role")
			return
		}
		if req.Status != nil && *req.Status == domain.UserStatusDisabled {
			writeError(w, http.StatusForbidden, "cannot disable your own account")
			return
		}
	}
	u, err := h.svc.Update(r.Context(), targetID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(u))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "id")
	if admin, ok := middleware.UserFromContext(r.Context()); ok && admin.UserID == targetID {
		writeError(w, http.StatusForbidden, "cannot delete your own account")
		return
	}
	if err := h.svc.Delete(r.Context(), targetID); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "User deleted"})
}

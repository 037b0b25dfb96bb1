package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-referral-api/internal/application/setting"
)

type SettingHandler struct {
	svc setting.Service
}

func NewSettingHandler(svc setting.Service) *SettingHandler { return &SettingHandler{svc: svc} }

func (h *SettingHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(list))
}

func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(s))
}

func (h *SettingHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req setting.PutRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	s, err := h.svc.Put(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(s))
}

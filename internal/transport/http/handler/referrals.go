package handler

import (
	"net/http"

	"github.com/go-referral-api/internal/application/referral"
	"github.com/go-referral-api/internal/transport/http/middleware"
)

type ReferralHandler struct {
	svc referral.Service
}

func NewReferralHandler(svc referral.Service) *ReferralHandler { return &ReferralHandler{svc: svc} }

func (h *ReferralHandler) Mine(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}
	ref, err := h.svc.Mine(r.Context(), u)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(ref))
}

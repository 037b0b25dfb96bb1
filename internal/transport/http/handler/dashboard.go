package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-referral-api/internal/application/dashboard"
)

type DashboardHandler struct {
	svc dashboard.Service
	now func() time.Time
}

func NewDashboardHandler(svc dashboard.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc, now: time.Now}
}

func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Metrics(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(m))
}

func (h *DashboardHandler) UserGrowth(w http.ResponseWriter, r *http.Request) {
	year, ok := h.year(w, r)
	if !ok {
		return
	}
	points, err := h.svc.UserGrowth(r.Context(), year)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(points))
}

func (h *DashboardHandler) OrderAnalytics(w http.ResponseWriter, r *http.Request) {
	year, ok := h.year(w, r)
	if !ok {
		return
	}
	points, err := h.svc.OrderAnalytics(r.Context(), year)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(points))
}

// year reads ?year=, defaulting to the current UTC year.
func (h *DashboardHandler) year(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return h.now().UTC().Year(), true
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y < 2000 || y > 9999 {
		writeError(w, http.StatusBadRequest, "year must be a four digit number")
		return 0, false
	}
	return y, true
}

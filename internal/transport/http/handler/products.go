package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-referral-api/internal/application/product"
	"github.com/go-referral-api/internal/domain"
)

const maxImageBytes = 5 << 20

// ProductHandler handles the admin catalogue endpoints.
type ProductHandler struct {
	svc product.Service
}

func NewProductHandler(svc product.Service) *ProductHandler { return &ProductHandler{svc: svc} }

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), false)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(list))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := decode(r, &in); err != nil {
		httpError(w, r, err)
		return
	}
	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, success(p))
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := decode(r, &in); err != nil {
		httpError(w, r, err)
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(p))
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Product deleted"})
}

// UploadImage accepts a multipart form with the file under "image".
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+(1<<10))
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "image must be a multipart upload under 5MB")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	p, err := h.svc.UploadImage(r.Context(), chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success(p))
}

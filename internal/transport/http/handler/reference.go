package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storefront-bff/internal/application/reference"
	"github.com/storefront-bff/internal/domain"
)

type ReferenceHandler struct {
	svc reference.Service
}

func NewReferenceHandler(svc reference.Service) *ReferenceHandler {
	return &ReferenceHandler{svc: svc}
}

func (h *ReferenceHandler) Regions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Regions []domain.Region `json:"regions"`
	}{h.svc.Regions()})
}

func (h *ReferenceHandler) Region(w http.ResponseWriter, r *http.Request) {
	region, err := h.svc.Region(chi.URLParam(r, "region"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, region)
}

func (h *ReferenceHandler) Coupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Coupon(chi.URLParam(r, "code"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ReferenceHandler) Brand(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Brand())
}

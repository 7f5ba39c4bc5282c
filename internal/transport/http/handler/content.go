package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storefront-bff/internal/application/content"
	"github.com/storefront-bff/internal/transport/http/middleware"
)

// ContentHandler passes CMS payloads through verbatim.
type ContentHandler struct {
	svc content.Service
}

func NewContentHandler(svc content.Service) *ContentHandler { return &ContentHandler{svc: svc} }

func (h *ContentHandler) Sections(w http.ResponseWriter, r *http.Request) {
	raw, err := h.svc.Sections(r.Context(), r.URL.Query().Get("section_type"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

// UserMessages forwards the caller's own bearer token to the backend.
func (h *ContentHandler) UserMessages(w http.ResponseWriter, r *http.Request) {
	bearer, _ := middleware.BearerToken(r)
	raw, err := h.svc.UserMessages(r.Context(), chi.URLParam(r, "*"), r.URL.RawQuery, bearer)
	if err != nil {
		httpError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

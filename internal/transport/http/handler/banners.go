package handler

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/storefront-bff/internal/application/banner"
	"github.com/storefront-bff/internal/pkg/visitor"
	"github.com/storefront-bff/internal/transport/http/middleware"
)

var locationPattern = regexp.MustCompile(`^[a-z_]{0,32}$`)

// BannerHandler serves notification banners and records dismissals.
type BannerHandler struct {
	svc banner.Service
}

func NewBannerHandler(svc banner.Service) *BannerHandler { return &BannerHandler{svc: svc} }

func (h *BannerHandler) List(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if !locationPattern.MatchString(location) {
		writeError(w, http.StatusBadRequest, "invalid location")
		return
	}
	banners, err := h.svc.Visible(r.Context(), requestVisitor(r), location)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BannersEnvelope{Success: true, Banners: banners})
}

func (h *BannerHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid banner id")
		return
	}
	if err := h.svc.Dismiss(r.Context(), requestVisitor(r), id); err != nil {
		httpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requestVisitor falls back to resolving from headers when the Visitor
// middleware is not mounted.
func requestVisitor(r *http.Request) visitor.Identity {
	if v, ok := middleware.VisitorFromContext(r.Context()); ok {
		return v
	}
	return visitor.Resolve("", r.Header.Get(middleware.VisitorHeader))
}

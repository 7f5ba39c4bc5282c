package handler

import (
	"context"
	"net/http"

	"github.com/storefront-bff/internal/domain"
)

type siteConfigCache interface {
	Get(ctx context.Context) *domain.SiteConfiguration
	Invalidate()
}

// SiteConfigHandler serves the cached CMS site configuration.
type SiteConfigHandler struct {
	cache siteConfigCache
}

func NewSiteConfigHandler(cache siteConfigCache) *SiteConfigHandler {
	return &SiteConfigHandler{cache: cache}
}

// Get never fails: when the backend is down the built-in defaults are served.
func (h *SiteConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ConfigEnvelope{Success: true, Config: h.cache.Get(r.Context())})
}

func (h *SiteConfigHandler) Invalidate(w http.ResponseWriter, _ *http.Request) {
	h.cache.Invalidate()
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "site configuration cache invalidated"})
}

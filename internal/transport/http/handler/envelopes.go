package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/storefront-bff/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorEnvelope is the failure body shared with the middleware rejections.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ConfigEnvelope mirrors the backend's /website/config/ response.
type ConfigEnvelope struct {
	Success bool                      `json:"success"`
	Config  *domain.SiteConfiguration `json:"config"`
}

// BannersEnvelope mirrors the backend's /website/banners/ response.
type BannersEnvelope struct {
	Success bool                        `json:"success"`
	Banners []domain.NotificationBanner `json:"banners"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorEnvelope{Error: msg})
}

func writeRaw(w http.ResponseWriter, status int, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

// httpError maps domain errors onto status codes. Unknown errors are logged
// and reported as 500 without detail.
func httpError(w http.ResponseWriter, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		slog.Error("unhandled error", "err", err)
	}
	writeError(w, status, msg)
}

func classify(err error) (int, string) {
	var ue *domain.UpstreamError
	switch {
	case errors.As(err, &ue):
		if ue.StatusCode >= 400 && ue.StatusCode < 500 {
			return ue.StatusCode, ue.Message
		}
		return http.StatusBadGateway, ue.Message
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "upstream unavailable"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "storefront_backend_request_duration_seconds",
			Help: "Duration of calls to the storefront backend in seconds",
		},
		[]string{"endpoint", "outcome"},
	)

	SiteConfigLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_site_config_lookups_total",
			Help: "Site configuration lookups by result (hit, miss, fallback)",
		},
		[]string{"result"},
	)

	BannerDismissals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_banner_dismissals_total",
			Help: "Total number of banners dismissed by visitors",
		},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
		[]string{"route"},
	)
)

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/storefront-bff/internal/config"
	"github.com/storefront-bff/internal/transport/http/handler"
	appmiddleware "github.com/storefront-bff/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", appmiddleware.VisitorHeader},
		ExposedHeaders:   []string{appmiddleware.VisitorHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(nil)
	optionalAuthMw := appmiddleware.OptionalAuth(nil)
	if deps.Verifier != nil {
		authMw = appmiddleware.Auth(deps.Verifier)
		optionalAuthMw = appmiddleware.OptionalAuth(deps.Verifier)
	}

	otpRL := appmiddleware.NewRateLimiter("otp", rate.Limit(cfg.OTPRateLimit), cfg.OTPRateBurst)

	healthH := handler.NewHealthHandler(deps.HealthChecks)
	configH := handler.NewSiteConfigHandler(deps.SiteConfig)
	bannerH := handler.NewBannerHandler(deps.Banners)
	otpH := handler.NewOTPHandler(deps.OTP)
	contentH := handler.NewContentHandler(deps.Content)
	refH := handler.NewReferenceHandler(deps.Reference)

	r.Get("/health-check/{action}", healthH.Ping)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/website", func(r chi.Router) {
		r.Get("/config/", configH.Get)
		r.With(appmiddleware.RequireAdminToken(cfg.AdminToken)).Post("/config/invalidate", configH.Invalidate)
		r.Get("/sections/", contentH.Sections)

		r.Group(func(r chi.Router) {
			r.Use(optionalAuthMw)
			r.Use(appmiddleware.Visitor)

			r.Get("/banners/", bannerH.List)
			r.Post("/banners/{id}/dismiss", bannerH.Dismiss)
		})

		r.With(authMw).Get("/user/messages/*", contentH.UserMessages)
	})

	r.Route("/api/otp", func(r chi.Router) {
		r.Use(otpRL.Limit)

		r.Get("/status/", otpH.Status)
		r.Post("/generate/", otpH.Generate)
		r.Post("/resend/", otpH.Resend)
		r.Post("/verify/", otpH.Verify)
	})

	r.Route("/reference", func(r chi.Router) {
		r.Get("/regions", refH.Regions)
		r.Get("/regions/{region}", refH.Region)
		r.Get("/coupons/{code}", refH.Coupon)
		r.Get("/brand", refH.Brand)
	})

	return r
}

package http

import (
	"github.com/storefront-bff/internal/application/banner"
	"github.com/storefront-bff/internal/application/content"
	"github.com/storefront-bff/internal/application/otp"
	"github.com/storefront-bff/internal/application/reference"
	"github.com/storefront-bff/internal/application/siteconfig"
	jwtinfra "github.com/storefront-bff/internal/infrastructure/jwt"
	"github.com/storefront-bff/internal/transport/http/handler"
)

// Deps holds the application services the router exposes.
type Deps struct {
	SiteConfig *siteconfig.Cache
	Banners    banner.Service
	OTP        otp.Service
	Content    content.Service
	Reference  reference.Service
	// Verifier is optional; without it every request is anonymous and
	// authenticated routes answer 401.
	Verifier *jwtinfra.Verifier
	// HealthChecks back /health-check/ready.
	HealthChecks map[string]handler.Check
}

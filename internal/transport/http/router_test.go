package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/storefront-bff/internal/application/banner"
	"github.com/storefront-bff/internal/application/content"
	"github.com/storefront-bff/internal/application/otp"
	"github.com/storefront-bff/internal/application/otpflow"
	"github.com/storefront-bff/internal/application/reference"
	"github.com/storefront-bff/internal/application/siteconfig"
	"github.com/storefront-bff/internal/config"
	"github.com/storefront-bff/internal/domain"
	"github.com/storefront-bff/internal/infrastructure/backend"
	"github.com/storefront-bff/internal/infrastructure/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend answers the handful of storefront endpoints the BFF consumes.
type fakeBackend struct {
	configCalls atomic.Int32
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/website/config/":
		b.configCalls.Add(1)
		_, _ = io.WriteString(w, `{"success":true,"config":{"site_name_en":"Backend Shop"}}`)
	case "/website/banners/":
		_, _ = io.WriteString(w, `{"success":true,"banners":[
			{"id":1,"should_display":true,"priority":1,"location":"top"},
			{"id":2,"should_display":true,"priority":3,"location":"top"}]}`)
	case "/api/otp/generate/":
		_, _ = io.WriteString(w, `{"success":true,"otp_status":{"has_active_otp":true,"time_remaining":300}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not found."}`)
	}
}

func newTestRouter(t *testing.T) (http.Handler, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	client := backend.NewClient(srv.URL, 2*time.Second)
	data, err := reference.Embedded()
	require.NoError(t, err)

	cfg := &config.Config{
		AllowedOrigins: []string{"*"},
		AdminToken:     "admin-secret",
		OTPRateLimit:   0.001,
		OTPRateBurst:   2,
	}
	deps := &Deps{
		SiteConfig: siteconfig.New(client),
		Banners:    banner.NewService(client, kv.NewMemoryStore(), nil),
		OTP:        otp.NewService(client),
		Content:    content.NewService(client),
		Reference:  reference.NewService(data),
	}
	return NewRouter(cfg, deps), fb
}

func do(h http.Handler, method, target string, body []byte, hdr map[string]string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for k, v := range hdr {
		r.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	return rr
}

func TestRouter_Health(t *testing.T) {
	h, _ := newTestRouter(t)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health-check/ping", nil, nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health-check/ready", nil, nil).Code)
}

func TestRouter_Metrics(t *testing.T) {
	h, _ := newTestRouter(t)
	rr := do(h, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestRouter_SiteConfigCachedAndInvalidated(t *testing.T) {
	h, fb := newTestRouter(t)

	for i := 0; i < 3; i++ {
		rr := do(h, http.MethodGet, "/website/config/", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Backend Shop")
	}
	assert.Equal(t, int32(1), fb.configCalls.Load())

	assert.Equal(t, http.StatusForbidden, do(h, http.MethodPost, "/website/config/invalidate", nil, nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/website/config/invalidate", nil, map[string]string{"X-Admin-Token": "admin-secret"}).Code)

	do(h, http.MethodGet, "/website/config/", nil, nil)
	assert.Equal(t, int32(2), fb.configCalls.Load())
}

func TestRouter_BannerDismissalFollowsVisitor(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := do(h, http.MethodGet, "/website/banners/?location=top", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	visitorID := rr.Header().Get("X-Visitor-ID")
	require.NotEmpty(t, visitorID)

	var env struct {
		Banners []struct {
			ID int `json:"id"`
		} `json:"banners"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	require.Len(t, env.Banners, 2)
	assert.Equal(t, 2, env.Banners[0].ID)

	hdr := map[string]string{"X-Visitor-ID": visitorID}
	assert.Equal(t, http.StatusNoContent, do(h, http.MethodPost, "/website/banners/2/dismiss", nil, hdr).Code)

	rr = do(h, http.MethodGet, "/website/banners/?location=top", nil, hdr)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	require.Len(t, env.Banners, 1)
	assert.Equal(t, 1, env.Banners[0].ID)

	// A different visitor still sees both.
	rr = do(h, http.MethodGet, "/website/banners/?location=top", nil, nil)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Len(t, env.Banners, 2)
}

func TestRouter_OTPValidatedAndRateLimited(t *testing.T) {
	h, _ := newTestRouter(t)
	good, _ := json.Marshal(map[string]string{"email": "a@b.com", "otp_type": "login"})
	hdr := map[string]string{"X-Forwarded-For": "203.0.113.9"}

	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/otp/generate/", good, hdr).Code)

	bad, _ := json.Marshal(map[string]string{"email": "a@b.com", "otp_type": "carrier-pigeon"})
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/api/otp/generate/", bad, hdr).Code)

	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodPost, "/api/otp/generate/", good, hdr).Code)
}

func TestRouter_UserMessagesRequireAuth(t *testing.T) {
	h, _ := newTestRouter(t)
	rr := do(h, http.MethodGet, "/website/user/messages/unread/", nil, map[string]string{"Authorization": "Bearer whatever"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_Reference(t *testing.T) {
	h, _ := newTestRouter(t)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/reference/regions/Cairo", nil, nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/reference/coupons/welcome10", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/reference/regions/Nowhere", nil, nil).Code)
}

func TestRouter_SiteConfigFallsBackWhenBackendDown(t *testing.T) {
	client := backend.NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	data, _ := reference.Embedded()
	h := NewRouter(&config.Config{AllowedOrigins: []string{"*"}, OTPRateLimit: 1, OTPRateBurst: 1}, &Deps{
		SiteConfig: siteconfig.New(client),
		Banners:    banner.NewService(client, kv.NewMemoryStore(), nil),
		OTP:        otp.NewService(client),
		Content:    content.NewService(client),
		Reference:  reference.NewService(data),
	})

	rr := do(h, http.MethodGet, "/website/config/", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Storefront")
}

func TestRouter_BackendDownReachesClientAsNetworkError(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	client := backend.NewClient(downURL, time.Second)
	data, err := reference.Embedded()
	require.NoError(t, err)
	cfg := &config.Config{AllowedOrigins: []string{"*"}, OTPRateLimit: 100, OTPRateBurst: 100}
	bff := httptest.NewServer(NewRouter(cfg, &Deps{
		SiteConfig: siteconfig.New(client),
		Banners:    banner.NewService(client, kv.NewMemoryStore(), nil),
		OTP:        otp.NewService(client),
		Content:    content.NewService(client),
		Reference:  reference.NewService(data),
	}))
	t.Cleanup(bff.Close)

	flow := otpflow.New(backend.NewClient(bff.URL, 2*time.Second), otpflow.Options{
		Email:        "shopper@example.com",
		OTPType:      domain.OTPTypeLogin,
		AutoGenerate: true,
		PollInterval: time.Hour,
	})
	t.Cleanup(flow.Close)

	err = flow.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))

	s := flow.Snapshot()
	assert.Equal(t, otpflow.StateIdle, s.State)
	assert.Equal(t, otpflow.ErrNetworkMessage, s.Error)
}

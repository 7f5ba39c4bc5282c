package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/storefront-bff/internal/application/reference"
	"github.com/storefront-bff/internal/domain"
	"github.com/storefront-bff/internal/pkg/visitor"
	"github.com/storefront-bff/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context) *domain.SiteConfiguration {
	return m.Called(ctx).Get(0).(*domain.SiteConfiguration)
}

func (m *mockCache) Invalidate() { m.Called() }

type mockBannerSvc struct{ mock.Mock }

func (m *mockBannerSvc) Visible(ctx context.Context, who visitor.Identity, location string) ([]domain.NotificationBanner, error) {
	args := m.Called(ctx, who, location)
	if b, _ := args.Get(0).([]domain.NotificationBanner); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBannerSvc) Dismiss(ctx context.Context, who visitor.Identity, bannerID int) error {
	return m.Called(ctx, who, bannerID).Error(0)
}

func (m *mockBannerSvc) Dismissed(ctx context.Context, who visitor.Identity) []int {
	return m.Called(ctx, who).Get(0).([]int)
}

type mockOTPSvc struct{ mock.Mock }

func (m *mockOTPSvc) Status(ctx context.Context, email string, otpType domain.OTPType) (*domain.OTPResponse, error) {
	args := m.Called(ctx, email, otpType)
	if r, _ := args.Get(0).(*domain.OTPResponse); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOTPSvc) Generate(ctx context.Context, req domain.OTPRequest) (*domain.OTPResponse, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*domain.OTPResponse); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOTPSvc) Resend(ctx context.Context, req domain.OTPRequest) (*domain.OTPResponse, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*domain.OTPResponse); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOTPSvc) Verify(ctx context.Context, req domain.OTPVerifyRequest) (*domain.OTPResponse, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*domain.OTPResponse); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockContentSvc struct{ mock.Mock }

func (m *mockContentSvc) Sections(ctx context.Context, sectionType string) (json.RawMessage, error) {
	args := m.Called(ctx, sectionType)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *mockContentSvc) UserMessages(ctx context.Context, subpath, rawQuery, bearer string) (json.RawMessage, error) {
	args := m.Called(ctx, subpath, rawQuery, bearer)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

// --- helpers ---

// withChiParam injects a chi URL param into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

var shopper = visitor.Identity{ID: "01HZX3Q5N0F4WJ3V8Q6T7Y2K9M"}

func withVisitor(r *http.Request) *http.Request {
	return r.WithContext(middleware.WithVisitor(r.Context(), shopper))
}

func decodeOTP(t *testing.T, rr *httptest.ResponseRecorder) domain.OTPResponse {
	t.Helper()
	var resp domain.OTPResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

// --- health ---

func TestPing(t *testing.T) {
	h := NewHealthHandler(nil)
	rr := httptest.NewRecorder()
	h.Ping(rr, withChiParam(httptest.NewRequest(http.MethodGet, "/health-check/ping", nil), "action", "ping"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.Ping(rr, withChiParam(httptest.NewRequest(http.MethodGet, "/health-check/x", nil), "action", "x"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"success":false,"error":"unknown action"}`, rr.Body.String())
}

func TestReady(t *testing.T) {
	h := NewHealthHandler(map[string]Check{
		"kv": func(context.Context) error { return nil },
	})
	rr := httptest.NewRecorder()
	h.Ping(rr, withChiParam(httptest.NewRequest(http.MethodGet, "/health-check/ready", nil), "action", "ready"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"checks":{"kv":"ok"}}`, rr.Body.String())
}

func TestReady_FailingCheck(t *testing.T) {
	h := NewHealthHandler(map[string]Check{
		"kv":      func(context.Context) error { return errors.New("connection refused") },
		"backend": func(context.Context) error { return nil },
	})
	rr := httptest.NewRecorder()
	h.Ping(rr, withChiParam(httptest.NewRequest(http.MethodGet, "/health-check/ready", nil), "action", "ready"))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"success":false,"checks":{"kv":"connection refused","backend":"ok"}}`, rr.Body.String())
}

// --- site config ---

func TestSiteConfig_Get(t *testing.T) {
	cache := &mockCache{}
	cache.On("Get", mock.Anything).Return(&domain.SiteConfiguration{SiteNameEn: "Shop"})
	rr := httptest.NewRecorder()
	NewSiteConfigHandler(cache).Get(rr, httptest.NewRequest(http.MethodGet, "/website/config/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var env ConfigEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.True(t, env.Success)
	assert.Equal(t, "Shop", env.Config.SiteNameEn)
}

func TestSiteConfig_Invalidate(t *testing.T) {
	cache := &mockCache{}
	cache.On("Invalidate").Return()
	rr := httptest.NewRecorder()
	NewSiteConfigHandler(cache).Invalidate(rr, httptest.NewRequest(http.MethodPost, "/website/config/invalidate", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	cache.AssertCalled(t, "Invalidate")
}

// --- banners ---

func TestBanners_List(t *testing.T) {
	svc := &mockBannerSvc{}
	svc.On("Visible", mock.Anything, shopper, "top").Return([]domain.NotificationBanner{{ID: 1, ShouldDisplay: true}}, nil)
	rr := httptest.NewRecorder()
	NewBannerHandler(svc).List(rr, withVisitor(httptest.NewRequest(http.MethodGet, "/website/banners/?location=top", nil)))

	assert.Equal(t, http.StatusOK, rr.Code)
	var env BannersEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.True(t, env.Success)
	require.Len(t, env.Banners, 1)
}

func TestBanners_ListInvalidLocation(t *testing.T) {
	svc := &mockBannerSvc{}
	rr := httptest.NewRecorder()
	NewBannerHandler(svc).List(rr, httptest.NewRequest(http.MethodGet, "/website/banners/?location=%3Cx%3E", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Visible", mock.Anything, mock.Anything, mock.Anything)
}

func TestBanners_ListUpstreamDown(t *testing.T) {
	svc := &mockBannerSvc{}
	svc.On("Visible", mock.Anything, mock.Anything, "").Return(nil, domain.ErrUpstreamUnavailable)
	rr := httptest.NewRecorder()
	NewBannerHandler(svc).List(rr, withVisitor(httptest.NewRequest(http.MethodGet, "/website/banners/", nil)))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestBanners_Dismiss(t *testing.T) {
	svc := &mockBannerSvc{}
	svc.On("Dismiss", mock.Anything, shopper, 12).Return(nil)
	r := withVisitor(withChiParam(httptest.NewRequest(http.MethodPost, "/website/banners/12/dismiss", nil), "id", "12"))
	rr := httptest.NewRecorder()
	NewBannerHandler(svc).Dismiss(rr, r)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	svc.AssertExpectations(t)
}

func TestBanners_DismissBadID(t *testing.T) {
	svc := &mockBannerSvc{}
	for _, id := range []string{"abc", "0", "-3"} {
		rr := httptest.NewRecorder()
		NewBannerHandler(svc).Dismiss(rr, withChiParam(httptest.NewRequest(http.MethodPost, "/", nil), "id", id))
		assert.Equal(t, http.StatusBadRequest, rr.Code, id)
	}
}

// --- otp ---

func TestOTP_GenerateInvalidBody(t *testing.T) {
	svc := &mockOTPSvc{}
	rr := httptest.NewRecorder()
	NewOTPHandler(svc).Generate(rr, httptest.NewRequest(http.MethodPost, "/api/otp/generate/", bytes.NewBufferString("not-json")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, decodeOTP(t, rr).Success)
}

func TestOTP_GenerateValidationFailure(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.Join(domain.ErrBadRequest, errors.New("field 'Email' failed 'email'")))
	body, _ := json.Marshal(domain.OTPRequest{Email: "nope", OTPType: domain.OTPTypeLogin})
	rr := httptest.NewRecorder()
	NewOTPHandler(svc).Generate(rr, httptest.NewRequest(http.MethodPost, "/api/otp/generate/", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOTP_GenerateHappyPath(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("Generate", mock.Anything, domain.OTPRequest{Email: "a@b.com", OTPType: domain.OTPTypeLogin}).
		Return(&domain.OTPResponse{Success: true, OTPStatus: &domain.OTPStatus{HasActiveOTP: true, TimeRemaining: 300}}, nil)
	body, _ := json.Marshal(domain.OTPRequest{Email: "a@b.com", OTPType: domain.OTPTypeLogin})
	rr := httptest.NewRecorder()
	NewOTPHandler(svc).Generate(rr, httptest.NewRequest(http.MethodPost, "/api/otp/generate/", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeOTP(t, rr)
	assert.True(t, resp.Success)
	assert.Equal(t, 300, resp.OTPStatus.TimeRemaining)
}

func TestOTP_VerifyBusinessFailureKeepsEnvelope(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("Verify", mock.Anything, mock.Anything).Return(
		&domain.OTPResponse{Message: "Invalid code", OTPStatus: &domain.OTPStatus{HasActiveOTP: true, AttemptsRemaining: 2}},
		&domain.UpstreamError{StatusCode: http.StatusOK, Message: "Invalid code"},
	)
	body, _ := json.Marshal(domain.OTPVerifyRequest{Email: "a@b.com", Code: "123456", OTPType: domain.OTPTypeLogin})
	rr := httptest.NewRecorder()
	NewOTPHandler(svc).Verify(rr, httptest.NewRequest(http.MethodPost, "/api/otp/verify/", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeOTP(t, rr)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid code", resp.Message)
	require.NotNil(t, resp.OTPStatus)
	assert.Equal(t, 2, resp.OTPStatus.AttemptsRemaining)
}

func TestOTP_ResendUpstreamStatusPreserved(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("Resend", mock.Anything, mock.Anything).Return(nil, &domain.UpstreamError{StatusCode: http.StatusTooManyRequests, Message: "Slow down"})
	body, _ := json.Marshal(domain.OTPRequest{Email: "a@b.com", OTPType: domain.OTPTypeLogin})
	rr := httptest.NewRecorder()
	NewOTPHandler(svc).Resend(rr, httptest.NewRequest(http.MethodPost, "/api/otp/resend/", bytes.NewReader(body)))

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "Slow down", decodeOTP(t, rr).Message)
}

func TestOTP_StatusUpstreamDown(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("Status", mock.Anything, "a@b.com", domain.OTPTypeLogin).Return(nil, domain.ErrUpstreamUnavailable)
	rr := httptest.NewRecorder()
	NewOTPHandler(svc).Status(rr, httptest.NewRequest(http.MethodGet, "/api/otp/status/?email=a%40b.com&otp_type=login", nil))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.False(t, decodeOTP(t, rr).Success)
}

// --- content ---

func TestContent_Sections(t *testing.T) {
	svc := &mockContentSvc{}
	svc.On("Sections", mock.Anything, "hero").Return(json.RawMessage(`{"success":true,"sections":[]}`), nil)
	rr := httptest.NewRecorder()
	NewContentHandler(svc).Sections(rr, httptest.NewRequest(http.MethodGet, "/website/sections/?section_type=hero", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"sections":[]}`, rr.Body.String())
}

func TestContent_UserMessagesForwardsBearer(t *testing.T) {
	svc := &mockContentSvc{}
	svc.On("UserMessages", mock.Anything, "unread/", "page=2", "tok").Return(json.RawMessage(`{"messages":[]}`), nil)
	r := withChiParam(httptest.NewRequest(http.MethodGet, "/website/user/messages/unread/?page=2", nil), "*", "unread/")
	r.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	NewContentHandler(svc).UserMessages(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestContent_UserMessagesUnauthorized(t *testing.T) {
	svc := &mockContentSvc{}
	svc.On("UserMessages", mock.Anything, "", "", "").Return(nil, domain.ErrUnauthorized)
	rr := httptest.NewRecorder()
	NewContentHandler(svc).UserMessages(rr, httptest.NewRequest(http.MethodGet, "/website/user/messages/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// --- reference ---

func newReferenceHandler(t *testing.T) *ReferenceHandler {
	t.Helper()
	data, err := reference.Embedded()
	require.NoError(t, err)
	return NewReferenceHandler(reference.NewService(data))
}

func TestReference_Region(t *testing.T) {
	h := newReferenceHandler(t)
	rr := httptest.NewRecorder()
	h.Region(rr, withChiParam(httptest.NewRequest(http.MethodGet, "/", nil), "region", "Giza"))

	assert.Equal(t, http.StatusOK, rr.Code)
	var region domain.Region
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&region))
	assert.Equal(t, "Giza", region.Name)
}

func TestReference_UnknownIsNotFound(t *testing.T) {
	h := newReferenceHandler(t)
	rr := httptest.NewRecorder()
	h.Region(rr, withChiParam(httptest.NewRequest(http.MethodGet, "/", nil), "region", "Atlantis"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.Coupon(rr, withChiParam(httptest.NewRequest(http.MethodGet, "/", nil), "code", "NOPE"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReference_RegionsAndBrand(t *testing.T) {
	h := newReferenceHandler(t)
	rr := httptest.NewRecorder()
	h.Regions(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"regions"`)

	rr = httptest.NewRecorder()
	h.Brand(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rr.Body.String(), `"currency":"EGP"`)
}

// --- error mapping ---

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrBadRequest, http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrUpstreamUnavailable, http.StatusBadGateway},
		{&domain.UpstreamError{StatusCode: 404, Message: "gone"}, http.StatusNotFound},
		{&domain.UpstreamError{StatusCode: 200, Message: "no"}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, _ := classify(tc.err)
		assert.Equal(t, tc.want, got, tc.err.Error())
	}
}

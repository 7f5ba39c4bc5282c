package otp

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront-bff/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBackend struct{ mock.Mock }

func (m *mockBackend) OTPStatus(ctx context.Context, email string, otpType domain.OTPType) (*domain.OTPResponse, error) {
	args := m.Called(ctx, email, otpType)
	if r, _ := args.Get(0).(*domain.OTPResponse); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) GenerateOTP(ctx context.Context, req domain.OTPRequest) (*domain.OTPResponse, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*domain.OTPResponse); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) ResendOTP(ctx context.Context, req domain.OTPRequest) (*domain.OTPResponse, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*domain.OTPResponse); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) VerifyOTP(ctx context.Context, req domain.OTPVerifyRequest) (*domain.OTPResponse, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*domain.OTPResponse); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestGenerate_NormalizesEmail(t *testing.T) {
	b := &mockBackend{}
	want := domain.OTPRequest{Email: "shopper@example.com", OTPType: domain.OTPTypeLogin}
	b.On("GenerateOTP", mock.Anything, want).Return(&domain.OTPResponse{Success: true}, nil)

	resp, err := NewService(b).Generate(context.Background(), domain.OTPRequest{Email: "  Shopper@Example.COM ", OTPType: domain.OTPTypeLogin})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	b.AssertExpectations(t)
}

func TestGenerate_InvalidEmail(t *testing.T) {
	b := &mockBackend{}
	_, err := NewService(b).Generate(context.Background(), domain.OTPRequest{Email: "nope", OTPType: domain.OTPTypeLogin})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.ErrorContains(t, err, "Email")
	b.AssertNotCalled(t, "GenerateOTP", mock.Anything, mock.Anything)
}

func TestResend_UnknownType(t *testing.T) {
	b := &mockBackend{}
	_, err := NewService(b).Resend(context.Background(), domain.OTPRequest{Email: "a@b.com", OTPType: "sms"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestVerify_RejectsMalformedCode(t *testing.T) {
	b := &mockBackend{}
	svc := NewService(b)
	for _, code := range []string{"12345", "1234567", "12a456", ""} {
		_, err := svc.Verify(context.Background(), domain.OTPVerifyRequest{Email: "a@b.com", Code: code, OTPType: domain.OTPTypeLogin})
		assert.True(t, errors.Is(err, domain.ErrBadRequest), code)
	}
	b.AssertNotCalled(t, "VerifyOTP", mock.Anything, mock.Anything)
}

func TestVerify_PassesThroughUpstreamError(t *testing.T) {
	b := &mockBackend{}
	envelope := &domain.OTPResponse{Message: "Invalid code", OTPStatus: &domain.OTPStatus{AttemptsRemaining: 2}}
	upstream := &domain.UpstreamError{StatusCode: 400, Message: "Invalid code"}
	b.On("VerifyOTP", mock.Anything, mock.Anything).Return(envelope, upstream)

	resp, err := NewService(b).Verify(context.Background(), domain.OTPVerifyRequest{Email: "a@b.com", Code: " 123456 ", OTPType: domain.OTPTypeLogin})
	assert.Same(t, upstream, err)
	assert.Same(t, envelope, resp)
}

func TestStatus_Validates(t *testing.T) {
	b := &mockBackend{}
	b.On("OTPStatus", mock.Anything, "a@b.com", domain.OTPTypePasswordReset).Return(&domain.OTPResponse{Success: true}, nil)
	svc := NewService(b)

	_, err := svc.Status(context.Background(), "A@B.com", domain.OTPTypePasswordReset)
	require.NoError(t, err)

	_, err = svc.Status(context.Background(), "", domain.OTPTypePasswordReset)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

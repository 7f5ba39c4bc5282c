package otp

import (
	"context"
	"fmt"
	"strings"

	"github.com/storefront-bff/internal/domain"
	"github.com/storefront-bff/internal/pkg/validate"
)

// Service validates OTP requests before they reach the backend. Issuance,
// delivery and attempt accounting are owned by the backend.
type Service interface {
	Status(ctx context.Context, email string, otpType domain.OTPType) (*domain.OTPResponse, error)
	Generate(ctx context.Context, req domain.OTPRequest) (*domain.OTPResponse, error)
	Resend(ctx context.Context, req domain.OTPRequest) (*domain.OTPResponse, error)
	Verify(ctx context.Context, req domain.OTPVerifyRequest) (*domain.OTPResponse, error)
}

type otpBackend interface {
	OTPStatus(ctx context.Context, email string, otpType domain.OTPType) (*domain.OTPResponse, error)
	GenerateOTP(ctx context.Context, req domain.OTPRequest) (*domain.OTPResponse, error)
	ResendOTP(ctx context.Context, req domain.OTPRequest) (*domain.OTPResponse, error)
	VerifyOTP(ctx context.Context, req domain.OTPVerifyRequest) (*domain.OTPResponse, error)
}

type service struct {
	backend otpBackend
}

func NewService(backend otpBackend) Service {
	return &service{backend: backend}
}

func (s *service) Status(ctx context.Context, email string, otpType domain.OTPType) (*domain.OTPResponse, error) {
	req := domain.OTPRequest{Email: normalizeEmail(email), OTPType: otpType}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}
	return s.backend.OTPStatus(ctx, req.Email, req.OTPType)
}

func (s *service) Generate(ctx context.Context, req domain.OTPRequest) (*domain.OTPResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}
	return s.backend.GenerateOTP(ctx, req)
}

func (s *service) Resend(ctx context.Context, req domain.OTPRequest) (*domain.OTPResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}
	return s.backend.ResendOTP(ctx, req)
}

func (s *service) Verify(ctx context.Context, req domain.OTPVerifyRequest) (*domain.OTPResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}
	return s.backend.VerifyOTP(ctx, req)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package domain

import "time"

// OTPType names the purpose a one-time passcode was issued for.
type OTPType string

const (
	OTPTypeEmailVerification OTPType = "email_verification"
	OTPTypeLogin             OTPType = "login"
	OTPTypePasswordReset     OTPType = "password_reset"
)

// OTPCodeLength is the number of digits in every issued code.
const OTPCodeLength = 6

// OTPStatus is the backend's view of an outstanding code. It is replaced
// wholesale on every response, never patched.
type OTPStatus struct {
	HasActiveOTP      bool       `json:"has_active_otp"`
	AttemptsRemaining int        `json:"attempts_remaining"`
	MaxAttempts       int        `json:"max_attempts"`
	CanResend         bool       `json:"can_resend"`
	ResendCountdown   int        `json:"resend_countdown"` // seconds
	TimeRemaining     int        `json:"time_remaining"`   // seconds until expiry
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
}

type OTPRequest struct {
	Email   string  `json:"email" validate:"required,email"`
	OTPType OTPType `json:"otp_type" validate:"required,otptype"`
}

type OTPVerifyRequest struct {
	Email   string  `json:"email" validate:"required,email"`
	Code    string  `json:"code" validate:"required,otpcode"`
	OTPType OTPType `json:"otp_type" validate:"required,otptype"`
}

// OTPResponse is the envelope shared by every /api/otp/ endpoint.
type OTPResponse struct {
	Success      bool       `json:"success"`
	OTPStatus    *OTPStatus `json:"otp_status,omitempty"`
	OTPRequestID string     `json:"otp_request_id,omitempty"`
	Message      string     `json:"message,omitempty"`
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/storefront-bff/internal/application/otp"
	"github.com/storefront-bff/internal/domain"
)

// OTPHandler proxies the OTP endpoints. Responses keep the backend's
// {success, otp_status, message} envelope, including on failure.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler { return &OTPHandler{svc: svc} }

func (h *OTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.svc.Status(r.Context(), q.Get("email"), domain.OTPType(q.Get("otp_type")))
	writeOTP(w, resp, err)
}

func (h *OTPHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOTPFailure(w, http.StatusBadRequest, nil, "invalid request body")
		return
	}
	resp, err := h.svc.Generate(r.Context(), req)
	writeOTP(w, resp, err)
}

func (h *OTPHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOTPFailure(w, http.StatusBadRequest, nil, "invalid request body")
		return
	}
	resp, err := h.svc.Resend(r.Context(), req)
	writeOTP(w, resp, err)
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOTPFailure(w, http.StatusBadRequest, nil, "invalid request body")
		return
	}
	resp, err := h.svc.Verify(r.Context(), req)
	writeOTP(w, resp, err)
}

func writeOTP(w http.ResponseWriter, resp *domain.OTPResponse, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		// A 200 with success:false stays a 200 so clients read the envelope.
		status := ue.StatusCode
		if status < 400 {
			status = http.StatusOK
		}
		var st *domain.OTPStatus
		if resp != nil {
			st = resp.OTPStatus
		}
		writeOTPFailure(w, status, st, ue.Message)
		return
	}
	status, msg := classify(err)
	writeOTPFailure(w, status, nil, msg)
}

func writeOTPFailure(w http.ResponseWriter, status int, st *domain.OTPStatus, msg string) {
	writeJSON(w, status, domain.OTPResponse{Success: false, OTPStatus: st, Message: msg})
}

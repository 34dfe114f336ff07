package handler

import (
	"net/http"

	"github.com/nitrmart-api/internal/application/otp"
	"github.com/nitrmart-api/internal/application/user"
	"github.com/nitrmart-api/internal/pkg/validate"
)

const purposeRegistration = "registration"

type sendOTPRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Purpose string `json:"purpose"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// OTPHandler serves the send-otp and verify-otp endpoints.
type OTPHandler struct {
	otp   otp.Service
	users user.Service
}

func NewOTPHandler(otpSvc otp.Service, users user.Service) *OTPHandler {
	return &OTPHandler{otp: otpSvc, users: users}
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, r, err)
		return
	}
	var err error
	if req.Purpose == purposeRegistration {
		_, err = h.otp.SendForRegistration(r.Context(), req.Email)
	} else {
		_, err = h.otp.Send(r.Context(), req.Email)
	}
	if err != nil {
		otpError(w, r, err)
		return
	}
	writeDetail(w, http.StatusOK, "OTP sent successfully.")
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, r, err)
		return
	}
	v, err := h.users.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		otpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OTPVerifiedEnvelope{Detail: "OTP verified successfully.", Email: v.Email})
}

// otpError reports every client-side OTP failure, unknown accounts included, as 400.
func otpError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusNotFound {
		status = http.StatusBadRequest
	}
	writeErrorStatus(w, r, status, err)
}

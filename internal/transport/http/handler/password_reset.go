package handler

import (
	"net/http"

	"github.com/nitrmart-api/internal/application/user"
	"github.com/nitrmart-api/internal/pkg/validate"
)

type resetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetConfirmRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required"`
}

// PasswordResetHandler runs the OTP-backed password reset flow.
type PasswordResetHandler struct {
	svc user.Service
}

func NewPasswordResetHandler(svc user.Service) *PasswordResetHandler {
	return &PasswordResetHandler{svc: svc}
}

func (h *PasswordResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		otpError(w, r, err)
		return
	}
	writeDetail(w, http.StatusOK, "OTP sent successfully.")
}

func (h *PasswordResetHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.svc.ConfirmPasswordReset(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		otpError(w, r, err)
		return
	}
	writeDetail(w, http.StatusOK, "Password has been reset.")
}

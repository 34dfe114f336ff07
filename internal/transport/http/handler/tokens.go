package handler

import (
	"log/slog"
	"net/http"

	"github.com/nitrmart-api/internal/application/auth"
	"github.com/nitrmart-api/internal/pkg/validate"
)

type tokenRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type googleRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// TokenHandler issues, refreshes and revokes JWT pairs.
type TokenHandler struct {
	svc auth.Service
}

func NewTokenHandler(svc auth.Service) *TokenHandler { return &TokenHandler{svc: svc} }

func (h *TokenHandler) Obtain(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, r, err)
		return
	}
	pair, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *TokenHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, r, err)
		return
	}
	access, err := h.svc.Refresh(r.Context(), req.Refresh)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccessEnvelope{Access: access})
}

// Logout blacklists a refresh token. Any failure is reported as one generic 400.
func (h *TokenHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.Refresh == "" {
		writeDetail(w, http.StatusBadRequest, "Invalid or expired refresh token.")
		return
	}
	if err := h.svc.Revoke(r.Context(), req.Refresh); err != nil {
		slog.Warn("logout failed", "err", err)
		writeDetail(w, http.StatusBadRequest, "Invalid or expired refresh token.")
		return
	}
	writeDetail(w, http.StatusOK, "Successfully logged out.")
}

func (h *TokenHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req googleRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, r, err)
		return
	}
	pair, err := h.svc.LoginWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nitrmart-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		domain.ErrWeakPassword:        http.StatusBadRequest,
		domain.ErrDuplicateRollNumber: http.StatusBadRequest,
		domain.ErrAccountDisabled:     http.StatusUnauthorized,
		domain.ErrPermissionDenied:    http.StatusForbidden,
		domain.ErrUnknownUser:         http.StatusNotFound,
		errors.New("boom"):            http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.NewFieldError(nil, "x", "y")))
}

func TestHTTPError_WrappedClassGetsGenericDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	httpError(rr, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("product p1: %w", domain.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"detail": "Not found."}`, rr.Body.String())
}

func TestOTPError_NotFoundBecomes400(t *testing.T) {
	rr := httptest.NewRecorder()
	otpError(rr, httptest.NewRequest(http.MethodPost, "/", nil), domain.NewFieldError(domain.ErrOTPNotFound, "otp", "Invalid OTP."))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"otp": "Invalid OTP."}`, rr.Body.String())
}

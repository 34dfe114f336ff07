package validate

import (
	"errors"
	"testing"

	"github.com/nitrmart-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string  `json:"email" validate:"required,email"`
	OTP   *string `json:"otp" validate:"omitempty,len=6,numeric"`
	Role  string  `json:"role" validate:"omitempty,oneof=student faculty"`
}

func TestStruct_Valid(t *testing.T) {
	code := "012345"
	assert.NoError(t, Struct(&sample{Email: "a@nitrkl.ac.in", OTP: &code, Role: "faculty"}))
}

func TestStruct_FieldKeyedMessages(t *testing.T) {
	code := "12ab"
	err := Struct(&sample{OTP: &code, Role: "dean"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	var ve domain.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "This field is required.", ve["email"])
	assert.Equal(t, "Ensure this field has exactly 6 characters.", ve["otp"])
	assert.Equal(t, "Must be one of: student, faculty.", ve["role"])
}

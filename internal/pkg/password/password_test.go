package password

import (
	"errors"
	"strings"
	"testing"

	"github.com/nitrmart-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Accepts(t *testing.T) {
	assert.NoError(t, Validate("Str0ngPass!", "s@nitrkl.ac.in"))
	assert.NoError(t, Validate("correct horse battery", ""))
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]string{
		"short":       "Ab1!",
		"numeric":     "1234567812",
		"common":      "Password123",
		"letters":     "onlyletters",
		"too long":    strings.Repeat("a1", 40),
		"has mailbox": "xx-rahul-2024",
	}
	for name, pw := range cases {
		err := Validate(pw, "rahul@nitrkl.ac.in")
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, domain.ErrWeakPassword), name)
		assert.True(t, errors.Is(err, domain.ErrBadRequest), name)

		var fe *domain.FieldError
		require.True(t, errors.As(err, &fe), name)
		assert.Equal(t, "password", fe.Field, name)
	}
}

func TestHashAndCheck(t *testing.T) {
	h, err := Hash("Str0ngPass!")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ngPass!", h)
	assert.True(t, Check(h, "Str0ngPass!"))
	assert.False(t, Check(h, "str0ngpass!"))
	assert.False(t, Check("not-a-hash", "Str0ngPass!"))
}

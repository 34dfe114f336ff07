package s3infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_URL(t *testing.T) {
	s := NewStore(nil, "nitrmart-media", "")
	assert.Equal(t, "s3://nitrmart-media/products/p1/a.png", s.URL("products/p1/a.png"))

	s = NewStore(nil, "nitrmart-media", "https://cdn.example.in")
	assert.Equal(t, "https://cdn.example.in/products/p1/a.png", s.URL("products/p1/a.png"))
}

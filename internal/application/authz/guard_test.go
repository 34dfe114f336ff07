package authz

import (
	"errors"
	"testing"

	"github.com/nitrmart-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAuthorizeMutation(t *testing.T) {
	listing := &domain.Product{ProductID: "p1", SellerID: "seller"}
	profile := &domain.User{UserID: "seller"}

	cases := []struct {
		name  string
		actor domain.Actor
		res   Owned
		want  Decision
	}{
		{"owner listing", domain.Actor{UserID: "seller"}, listing, Allow},
		{"owner profile", domain.Actor{UserID: "seller"}, profile, Allow},
		{"stranger", domain.Actor{UserID: "other"}, listing, Deny},
		{"stranger profile", domain.Actor{UserID: "other", Role: domain.RoleFaculty}, profile, Deny},
		{"staff", domain.Actor{UserID: "mod", Elevated: true}, listing, Allow},
		{"anonymous", domain.Actor{}, listing, Deny},
		{"anonymous elevated flag", domain.Actor{Elevated: true}, listing, Deny},
		{"nil resource", domain.Actor{UserID: "seller"}, nil, Deny},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AuthorizeMutation(tc.actor, tc.res))
		})
	}
}

func TestRequire(t *testing.T) {
	listing := &domain.Product{SellerID: "seller"}
	assert.NoError(t, Require(domain.Actor{UserID: "seller"}, listing, ""))

	err := Require(domain.Actor{UserID: "other"}, listing, "You can only edit or delete your own products.")
	assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Equal(t, "You can only edit or delete your own products.", err.Error())

	err = Require(domain.Actor{UserID: "other"}, listing, "")
	assert.Equal(t, "You do not have permission to perform this action.", err.Error())
}

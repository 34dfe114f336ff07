package google

import (
	"context"
	"errors"
	"testing"

	"github.com/nitrmart-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func fakeVerifier(p *idtoken.Payload, err error) *Verifier {
	return &Verifier{
		clientID: "client-1",
		validate: func(_ context.Context, _, audience string) (*idtoken.Payload, error) {
			if audience != "client-1" {
				return nil, errors.New("audience mismatch")
			}
			return p, err
		},
	}
}

func TestVerify_ExtractsClaims(t *testing.T) {
	v := fakeVerifier(&idtoken.Payload{
		Subject: "g-123",
		Claims: map[string]interface{}{
			"email":          "S@NITRKL.ac.in",
			"email_verified": true,
			"hd":             "nitrkl.ac.in",
			"given_name":     "Sita",
			"family_name":    "Rao",
		},
	}, nil)

	p, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, &Payload{
		Sub:           "g-123",
		Email:         "s@nitrkl.ac.in",
		EmailVerified: true,
		HostedDomain:  "nitrkl.ac.in",
		FirstName:     "Sita",
		LastName:      "Rao",
	}, p)
}

func TestVerify_StringEmailVerified(t *testing.T) {
	v := fakeVerifier(&idtoken.Payload{
		Subject: "g-1",
		Claims:  map[string]interface{}{"email": "a@nitrkl.ac.in", "email_verified": "true"},
	}, nil)

	p, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, p.EmailVerified)
}

func TestVerify_Failures(t *testing.T) {
	cases := map[string]*Verifier{
		"invalid":    fakeVerifier(nil, errors.New("bad signature")),
		"no subject": fakeVerifier(&idtoken.Payload{Claims: map[string]interface{}{"email": "a@b.c"}}, nil),
		"no email":   fakeVerifier(&idtoken.Payload{Subject: "g-1", Claims: map[string]interface{}{}}, nil),
	}
	for name, v := range cases {
		_, err := v.Verify(context.Background(), "tok")
		assert.True(t, errors.Is(err, domain.ErrInvalidToken), name)
		assert.True(t, errors.Is(err, domain.ErrUnauthorized), name)
	}
}

package google

import (
	"context"
	"fmt"

	"github.com/nitrmart-api/internal/domain"
	"google.golang.org/api/idtoken"
)

// Payload is the subset of Google ID token claims used for sign-in.
type Payload struct {
	Sub           string
	Email         string // normalized
	EmailVerified bool
	HostedDomain  string
	FirstName     string
	LastName      string
}

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Verifier checks Google ID tokens issued for one OAuth client ID.
type Verifier struct {
	clientID string
	validate validateFunc
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID, validate: idtoken.Validate}
}

// Verify validates signature, audience and expiry. Every failure wraps
// domain.ErrInvalidToken.
func (v *Verifier) Verify(ctx context.Context, token string) (*Payload, error) {
	p, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %v: %w", err, domain.ErrInvalidToken)
	}
	if p.Subject == "" {
		return nil, fmt.Errorf("google token without subject: %w", domain.ErrInvalidToken)
	}
	out := &Payload{
		Sub:          p.Subject,
		Email:        domain.NormalizeEmail(claim(p, "email")),
		HostedDomain: claim(p, "hd"),
		FirstName:    claim(p, "given_name"),
		LastName:     claim(p, "family_name"),
	}
	// email_verified arrives as a bool, but some issuers send the string "true".
	switch ev := p.Claims["email_verified"].(type) {
	case bool:
		out.EmailVerified = ev
	case string:
		out.EmailVerified = ev == "true"
	}
	if out.Email == "" {
		return nil, fmt.Errorf("google token without email: %w", domain.ErrInvalidToken)
	}
	return out, nil
}

func claim(p *idtoken.Payload, key string) string {
	s, _ := p.Claims[key].(string)
	return s
}

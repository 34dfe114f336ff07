package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nitrmart-api/internal/domain"
	googleinfra "github.com/nitrmart-api/internal/infrastructure/google"
	jwtinfra "github.com/nitrmart-api/internal/infrastructure/jwt"
	"github.com/nitrmart-api/internal/pkg/password"
)

// TokenPair is the result of a successful sign-in.
type TokenPair struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    *domain.User `json:"user"`
}

type Service interface {
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Revoke(ctx context.Context, refreshToken string) error
	LoginWithGoogle(ctx context.Context, idToken string) (*TokenPair, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type tokenIssuer interface {
	SignAccess(u *domain.User) (string, error)
	SignRefresh(u *domain.User) (string, error)
	SignAccessFrom(c *jwtinfra.Claims) (string, error)
	Verify(token, tokenType string) (*jwtinfra.Claims, error)
}

type revocationStore interface {
	Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, idToken string) (*googleinfra.Payload, error)
}

type service struct {
	users       userStore
	tokens      tokenIssuer
	revocations revocationStore
	google      googleVerifier
	emailDomain string
	// dummyHash is compared against when the email is unknown so that both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

type ServiceDeps struct {
	UserRepo    userStore
	Tokens      tokenIssuer
	Revocations revocationStore
	// Google is optional; without it LoginWithGoogle is disabled.
	Google      googleVerifier
	EmailDomain string
}

const dummyPassword = "timing-equaliser-0"

// loginDummyHash is computed once per process and shared by every service.
var loginDummyHash = sync.OnceValues(func() (string, error) { return password.Hash(dummyPassword) })

// NewService panics if the placeholder hash cannot be computed: without it an
// unknown email would answer faster than a wrong password.
func NewService(deps ServiceDeps) Service {
	dummy, err := loginDummyHash()
	if err != nil {
		panic(fmt.Sprintf("auth: hash login placeholder: %v", err))
	}
	return &service{
		users:       deps.UserRepo,
		tokens:      deps.Tokens,
		revocations: deps.Revocations,
		google:      deps.Google,
		emailDomain: deps.EmailDomain,
		dummyHash:   dummy,
	}
}

var (
	errBadLogin     = domain.NewFieldError(domain.ErrInvalidCredentials, "", "No active account found with the given credentials")
	errDisabled     = domain.NewFieldError(domain.ErrAccountDisabled, "", "User account is disabled.")
	errInvalidToken = domain.NewFieldError(domain.ErrInvalidToken, "", "Token is invalid or expired")
)

func (s *service) Login(ctx context.Context, email, pw string) (*TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		password.Check(s.dummyHash, pw)
		return nil, errBadLogin
	}
	if err != nil {
		return nil, err
	}
	if !password.Check(u.PasswordHash, pw) {
		return nil, errBadLogin
	}
	if !u.Active {
		return nil, errDisabled
	}
	return s.issue(u)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	c, err := s.tokens.Verify(refreshToken, jwtinfra.TypeRefresh)
	if err != nil {
		return "", errInvalidToken
	}
	revoked, err := s.revocations.IsRevoked(ctx, c.ID)
	if err != nil {
		return "", fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return "", errInvalidToken
	}
	return s.tokens.SignAccessFrom(c)
}

// Revoke blacklists a refresh token until it expires. Revoking an already
// revoked token succeeds.
func (s *service) Revoke(ctx context.Context, refreshToken string) error {
	c, err := s.tokens.Verify(refreshToken, jwtinfra.TypeRefresh)
	if err != nil {
		return errInvalidToken
	}
	return s.revocations.Revoke(ctx, c.ID, c.UserID, c.ExpiresAt.Time)
}

func (s *service) LoginWithGoogle(ctx context.Context, idToken string) (*TokenPair, error) {
	if s.google == nil {
		return nil, domain.NewFieldError(domain.ErrBadRequest, "", "Google sign-in is not enabled.")
	}
	p, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, errInvalidToken
	}
	email := domain.NormalizeEmail(p.Email)
	if !p.EmailVerified {
		return nil, domain.NewFieldError(domain.ErrInvalidToken, "", "Google account email is not verified.")
	}
	if !domain.EmailInDomain(email, s.emailDomain) {
		return nil, domain.NewFieldError(domain.ErrInvalidEmail, "email",
			fmt.Sprintf("Only %s email addresses are allowed.", s.emailDomain))
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewFieldError(domain.ErrInvalidCredentials, "", "No account is registered with this email.")
	}
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, errDisabled
	}
	if !u.Verified {
		if err := s.users.Update(ctx, u.UserID, map[string]interface{}{"is_verified": true}); err != nil {
			return nil, err
		}
		u.Verified = true
	}
	return s.issue(u)
}

func (s *service) issue(u *domain.User) (*TokenPair, error) {
	access, err := s.tokens.SignAccess(u)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.SignRefresh(u)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh, User: u}, nil
}

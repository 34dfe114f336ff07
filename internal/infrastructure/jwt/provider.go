package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nitrmart-api/internal/config"
	"github.com/nitrmart-api/internal/domain"
	"github.com/nitrmart-api/internal/pkg/id"
)

// Token types carried in the token_type claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims holds the JWT payload fields. The jti lives in RegisteredClaims.ID.
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	Elevated  bool   `json:"elevated"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Actor converts verified claims into the identity used by authorization checks.
func (c *Claims) Actor() domain.Actor {
	return domain.Actor{UserID: c.UserID, Role: c.Role, Elevated: c.Elevated}
}

// Provider signs and verifies RS256 JWTs.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Provider{
		privateKey: privKey,
		publicKey:  pubKey,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}, nil
}

// SignAccess issues a short-lived access token for u.
func (p *Provider) SignAccess(u *domain.User) (string, error) {
	return p.sign(u.UserID, u.Role, u.Elevated(), TypeAccess, p.accessTTL)
}

// SignRefresh issues a refresh token for u.
func (p *Provider) SignRefresh(u *domain.User) (string, error) {
	return p.sign(u.UserID, u.Role, u.Elevated(), TypeRefresh, p.refreshTTL)
}

// SignAccessFrom issues a new access token for the identity in a verified refresh token.
func (p *Provider) SignAccessFrom(c *Claims) (string, error) {
	return p.sign(c.UserID, c.Role, c.Elevated, TypeAccess, p.accessTTL)
}

func (p *Provider) sign(userID, role string, elevated bool, tokenType string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := Claims{
		UserID:    userID,
		Role:      role,
		Elevated:  elevated,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

// Verify checks signature, expiry and token type. Every failure is ErrInvalidToken.
func (p *Provider) Verify(tokenStr, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	}, jwt.WithTimeFunc(p.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidToken)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("expected %s token: %w", tokenType, domain.ErrInvalidToken)
	}
	if claims.ID == "" || claims.UserID == "" {
		return nil, fmt.Errorf("incomplete claims: %w", domain.ErrInvalidToken)
	}
	return claims, nil
}

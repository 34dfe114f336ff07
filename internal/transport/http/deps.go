package http

import (
	"context"
	"io"
	"time"

	"github.com/nitrmart-api/internal/domain"
	googleinfra "github.com/nitrmart-api/internal/infrastructure/google"
	jwtinfra "github.com/nitrmart-api/internal/infrastructure/jwt"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByRollNumber(ctx context.Context, rollNo string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}

// OTPRepository holds the single live code per email.
type OTPRepository interface {
	Put(ctx context.Context, v *domain.OTPVerification) error
	Get(ctx context.Context, email string) (*domain.OTPVerification, error)
	MarkVerified(ctx context.Context, email, code string) error
	IncrementAttempts(ctx context.Context, email string) (int, error)
	Delete(ctx context.Context, email string) error
}

// ProductRepository is the minimal interface the router requires from a listing store.
type ProductRepository interface {
	Put(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Update(ctx context.Context, productID string, updates map[string]interface{}) error
	Delete(ctx context.Context, productID string) error
	QueryFeed(ctx context.Context, f domain.ProductFilter) ([]domain.Product, string, error)
}

// ProductImageRepository stores image rows keyed by listing.
type ProductImageRepository interface {
	Put(ctx context.Context, img *domain.ProductImage) error
	ListByProduct(ctx context.Context, productID string) ([]domain.ProductImage, error)
	ListByProducts(ctx context.Context, productIDs []string) (map[string][]domain.ProductImage, error)
	DeleteByProduct(ctx context.Context, productID string) error
}

// RevocationStore blacklists refresh tokens by jti. Backed by DynamoDB or Redis.
type RevocationStore interface {
	Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// ObjectStore is the minimal interface the router requires from an object storage backend.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Mailer delivers plain-text email. Backed by SMTP or SendGrid.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// TokenProvider signs and verifies access and refresh JWTs.
type TokenProvider interface {
	SignAccess(u *domain.User) (string, error)
	SignRefresh(u *domain.User) (string, error)
	SignAccessFrom(c *jwtinfra.Claims) (string, error)
	Verify(token, tokenType string) (*jwtinfra.Claims, error)
}

type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*googleinfra.Payload, error)
}

// Package otp issues and checks the six-digit one-time codes that gate
// registration, account verification and password reset.
package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nitrmart-api/internal/application/notification"
	"github.com/nitrmart-api/internal/domain"
	pkgtoken "github.com/nitrmart-api/internal/pkg/token"
)

const (
	codeDigits = 6
	// maxAttempts wrong guesses burn the code; the user has to request a new one.
	maxAttempts = 5
)

type Service interface {
	// Send issues a code for an existing account.
	Send(ctx context.Context, email string) (*domain.OTPVerification, error)
	// SendForRegistration issues a code for an address that has no account yet.
	SendForRegistration(ctx context.Context, email string) (*domain.OTPVerification, error)
	Verify(ctx context.Context, email, code string) (*domain.OTPVerification, error)
	ConsumeForRegistration(ctx context.Context, email, code string) (*domain.OTPVerification, error)
	Delete(ctx context.Context, email string) error
}

type otpStore interface {
	Put(ctx context.Context, v *domain.OTPVerification) error
	Get(ctx context.Context, email string) (*domain.OTPVerification, error)
	MarkVerified(ctx context.Context, email, code string) error
	IncrementAttempts(ctx context.Context, email string) (int, error)
	Delete(ctx context.Context, email string) error
}

type userLookup interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type notifier interface {
	SendOTP(ctx context.Context, msg notification.OTPMessage) error
}

type service struct {
	repo        otpStore
	users       userLookup
	notifier    notifier
	ttl         time.Duration
	emailDomain string
	now         func() time.Time
	newCode     func() (string, error)
}

type ServiceDeps struct {
	OTPRepo  otpStore
	UserRepo userLookup
	Notifier notifier
	TTL      time.Duration
	// EmailDomain is the required address suffix, including "@".
	EmailDomain string
}

func NewService(deps ServiceDeps) Service {
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &service{
		repo:        deps.OTPRepo,
		users:       deps.UserRepo,
		notifier:    deps.Notifier,
		ttl:         ttl,
		emailDomain: deps.EmailDomain,
		now:         time.Now,
		newCode:     func() (string, error) { return pkgtoken.NewNumericCode(codeDigits) },
	}
}

var (
	errUnknownUser = domain.NewFieldError(domain.ErrUnknownUser, "", "No account found with this email.")
	errNotFound    = domain.NewFieldError(domain.ErrOTPNotFound, "", "Invalid OTP.")
	errExpired     = domain.NewFieldError(domain.ErrOTPExpired, "", "OTP has expired. Please request a new one.")
	errUnverified  = domain.NewFieldError(domain.ErrOTPInvalidOrUnverified, "", "Invalid or unverified OTP.")
	errTooMany     = domain.NewFieldError(domain.ErrOTPAttemptsExceeded, "", "Too many failed attempts. Please request a new OTP.")
)

func (s *service) Send(ctx context.Context, email string) (*domain.OTPVerification, error) {
	email = domain.NormalizeEmail(email)
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errUnknownUser
	}
	if err != nil {
		return nil, err
	}
	phone := ""
	if u.Phone != nil {
		phone = *u.Phone
	}
	return s.issue(ctx, email, phone)
}

func (s *service) SendForRegistration(ctx context.Context, email string) (*domain.OTPVerification, error) {
	email = domain.NormalizeEmail(email)
	if !domain.EmailInDomain(email, s.emailDomain) {
		return nil, domain.NewFieldError(domain.ErrInvalidEmail, "email",
			fmt.Sprintf("Only %s email addresses are allowed.", s.emailDomain))
	}
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.NewFieldError(domain.ErrDuplicateEmail, "email", "A user with this email already exists.")
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	return s.issue(ctx, email, "")
}

// issue replaces any previous row for email with a fresh code. The table is
// keyed by email, so the put itself supersedes the old code.
func (s *service) issue(ctx context.Context, email, phone string) (*domain.OTPVerification, error) {
	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}
	now := s.now().UTC()
	v := &domain.OTPVerification{
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Put(ctx, v); err != nil {
		return nil, err
	}
	if err := s.notifier.SendOTP(ctx, notification.OTPMessage{
		Email:     email,
		Phone:     phone,
		Code:      code,
		ExpiresAt: v.ExpiresAt,
	}); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) Verify(ctx context.Context, email, code string) (*domain.OTPVerification, error) {
	email = domain.NormalizeEmail(email)
	v, err := s.lookup(ctx, email, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound
		}
		return nil, err
	}
	if v.Expired(s.now()) {
		s.drop(ctx, email)
		return nil, errExpired
	}
	if !v.Verified {
		if err := s.repo.MarkVerified(ctx, email, v.Code); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, errNotFound
			}
			return nil, err
		}
		v.Verified = true
	}
	return v, nil
}

func (s *service) ConsumeForRegistration(ctx context.Context, email, code string) (*domain.OTPVerification, error) {
	email = domain.NormalizeEmail(email)
	v, err := s.lookup(ctx, email, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errUnverified
		}
		return nil, err
	}
	if !v.Verified {
		return nil, errUnverified
	}
	if v.Expired(s.now()) {
		s.drop(ctx, email)
		return nil, errExpired
	}
	return v, nil
}

func (s *service) Delete(ctx context.Context, email string) error {
	return s.repo.Delete(ctx, domain.NormalizeEmail(email))
}

// lookup returns the row for email when it holds code. A missing row and a
// wrong code both come back as ErrNotFound. Every wrong code counts against
// the row, and once maxAttempts is reached the row is deleted.
func (s *service) lookup(ctx context.Context, email, code string) (*domain.OTPVerification, error) {
	v, err := s.repo.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if v.Attempts >= maxAttempts {
		s.burn(ctx, email)
		return nil, errTooMany
	}
	if subtle.ConstantTimeCompare([]byte(v.Code), []byte(code)) == 1 {
		return v, nil
	}
	n, err := s.repo.IncrementAttempts(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, err
	}
	if n >= maxAttempts {
		s.burn(ctx, email)
		return nil, errTooMany
	}
	return nil, domain.ErrOTPNotFound
}

func (s *service) burn(ctx context.Context, email string) {
	if err := s.repo.Delete(ctx, email); err != nil {
		slog.Warn("failed to delete exhausted otp", "email", email, "err", err)
	}
}

// drop deletes an expired row. A failure is only logged: the table TTL
// removes the row eventually and the caller already has its answer.
func (s *service) drop(ctx context.Context, email string) {
	if err := s.repo.Delete(ctx, email); err != nil {
		slog.Warn("failed to delete expired otp", "email", email, "err", err)
	}
}

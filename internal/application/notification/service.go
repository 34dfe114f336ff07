package notification

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

type mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// OTPMessage is one code to deliver. Phone is optional.
type OTPMessage struct {
	Email     string
	Phone     string
	Code      string
	ExpiresAt time.Time
}

type Service interface {
	SendOTP(ctx context.Context, msg OTPMessage) error
}

type service struct {
	mailer  mailer
	sms     smsSender
	appName string
	now     func() time.Time
}

type ServiceDeps struct {
	Mailer mailer
	// SMS may be nil, in which case codes go out by email only.
	SMS     smsSender
	AppName string
}

func NewService(deps ServiceDeps) Service {
	name := deps.AppName
	if name == "" {
		name = "NITR Mart"
	}
	return &service{mailer: deps.Mailer, sms: deps.SMS, appName: name, now: time.Now}
}

// SendOTP emails the code and, when a phone number and SMS sender are present,
// texts it too. Only the email is required to succeed.
func (s *service) SendOTP(ctx context.Context, msg OTPMessage) error {
	body := s.body(msg)
	subject := s.appName + " verification code"
	if err := s.mailer.SendEmail(ctx, msg.Email, subject, body); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	if s.sms != nil && msg.Phone != "" {
		if err := s.sms.SendSMS(ctx, msg.Phone, body); err != nil {
			slog.Warn("failed to send otp sms", "email", msg.Email, "err", err)
		}
	}
	return nil
}

func (s *service) body(msg OTPMessage) string {
	minutes := int(math.Ceil(msg.ExpiresAt.Sub(s.now()).Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("Your %s OTP is %s. It is valid for %d minutes.", s.appName, msg.Code, minutes)
}

// Package password holds the account password policy and bcrypt helpers.
package password

import (
	"strings"
	"unicode"

	"github.com/nitrmart-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinLength = 8
	// MaxLength is bcrypt's input limit; longer passwords are silently truncated by it.
	MaxLength = 72
)

// common is a short deny-list of the passwords most often seen in breach corpora.
var common = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "passw0rd": {},
	"12345678": {}, "123456789": {}, "1234567890": {}, "qwerty123": {},
	"qwertyuiop": {}, "iloveyou": {}, "admin123": {}, "welcome1": {},
	"letmein1": {}, "abc12345": {}, "football": {}, "baseball": {},
	"sunshine": {}, "princess": {}, "11111111": {}, "00000000": {},
	"changeme": {}, "trustno1": {}, "superman": {}, "p@ssw0rd": {},
}

// Validate applies the password policy. email, when non-empty, is used to reject
// passwords that contain the mailbox name.
func Validate(pw, email string) error {
	switch {
	case len(pw) < MinLength:
		return weak("This password is too short. It must contain at least 8 characters.")
	case len(pw) > MaxLength:
		return weak("This password is too long. It must contain at most 72 characters.")
	}
	if _, ok := common[strings.ToLower(pw)]; ok {
		return weak("This password is too common.")
	}

	var letter, other bool
	digitsOnly := true
	for _, r := range pw {
		if unicode.IsLetter(r) {
			letter = true
		} else {
			other = true
		}
		if !unicode.IsDigit(r) {
			digitsOnly = false
		}
	}
	if digitsOnly {
		return weak("This password is entirely numeric.")
	}
	if !letter || !other {
		return weak("Password must contain at least one letter and one number or symbol.")
	}

	if local, _, ok := strings.Cut(strings.ToLower(email), "@"); ok && len(local) >= 3 {
		if strings.Contains(strings.ToLower(pw), local) {
			return weak("The password is too similar to the email address.")
		}
	}
	return nil
}

func weak(msg string) error {
	return domain.NewFieldError(domain.ErrWeakPassword, "password", msg)
}

// Hash returns the bcrypt hash of pw at the default cost.
func Hash(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Check reports whether pw matches hash. bcrypt compares in constant time.
func Check(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

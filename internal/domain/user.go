package domain

import (
	"strings"
	"time"
)

const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailInDomain reports whether a normalized email has a non-empty mailbox and
// ends with suffix (for example "@nitrkl.ac.in").
func EmailInDomain(email, suffix string) bool {
	return len(email) > len(suffix) && strings.HasSuffix(email, suffix) && !strings.Contains(strings.TrimSuffix(email, suffix), "@")
}

// StudentProfile holds the fields required for role=student.
type StudentProfile struct {
	Year   string `json:"year" dynamodbav:"year"`
	Branch string `json:"branch" dynamodbav:"branch"`
	RollNo string `json:"roll_no,omitempty" dynamodbav:"roll_no,omitempty"`
}

// FacultyProfile holds the fields required for role=faculty.
type FacultyProfile struct {
	Department string `json:"department" dynamodbav:"department"`
	EmployeeID string `json:"employee_id,omitempty" dynamodbav:"employee_id,omitempty"`
}

type User struct {
	UserID       string          `json:"id" dynamodbav:"user_id"`
	Username     string          `json:"username" dynamodbav:"username"`
	Email        string          `json:"email" dynamodbav:"email"`
	PasswordHash string          `json:"-" dynamodbav:"password_hash"`
	FirstName    string          `json:"first_name" dynamodbav:"first_name"`
	LastName     string          `json:"last_name" dynamodbav:"last_name"`
	Role         string          `json:"role" dynamodbav:"role"`
	Student      *StudentProfile `json:"student,omitempty" dynamodbav:"student,omitempty"`
	Faculty      *FacultyProfile `json:"faculty,omitempty" dynamodbav:"faculty,omitempty"`
	Phone        *string         `json:"phone_number,omitempty" dynamodbav:"phone_number,omitempty"`
	Bio          *string         `json:"bio,omitempty" dynamodbav:"bio,omitempty"`
	Verified     bool            `json:"is_verified" dynamodbav:"is_verified"`
	Active       bool            `json:"is_active" dynamodbav:"is_active"`
	Staff        bool            `json:"is_staff" dynamodbav:"is_staff"`
	Superuser    bool            `json:"is_superuser" dynamodbav:"is_superuser"`
	CreatedAt    time.Time       `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" dynamodbav:"updated_at"`
}

// FullName mirrors the display name used by listings.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Elevated reports whether u bypasses ownership checks.
func (u *User) Elevated() bool {
	return u.Staff || u.Superuser || u.Role == RoleAdmin
}

// OwnerID makes a profile an owned resource: a user owns itself.
func (u *User) OwnerID() string { return u.UserID }

// Actor is the authenticated identity performing a request.
type Actor struct {
	UserID   string
	Role     string
	Elevated bool
}

type CreateUserRequest struct {
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required"`
	PasswordConfirm *string `json:"password_confirm"`
	OTP             *string `json:"otp" validate:"omitempty,len=6,numeric"`
	Username        string  `json:"username" validate:"omitempty,max=150"`
	FirstName       string  `json:"first_name" validate:"required,max=150"`
	LastName        string  `json:"last_name" validate:"required,max=150"`
	Role            string  `json:"role" validate:"omitempty,oneof=student faculty"`
	Year            string  `json:"year" validate:"max=10"`
	Branch          string  `json:"branch" validate:"max=10"`
	RollNo          string  `json:"roll_no" validate:"max=15"`
	Department      string  `json:"department" validate:"max=10"`
	EmployeeID      string  `json:"employee_id" validate:"max=15"`
	Phone           *string `json:"phone_number" validate:"omitempty,e164"`
	Bio             *string `json:"bio"`
}

type UpdateUserRequest struct {
	Email           *string `json:"email"`
	Username        *string `json:"username" validate:"omitempty,max=150"`
	FirstName       *string `json:"first_name" validate:"omitempty,max=150"`
	LastName        *string `json:"last_name" validate:"omitempty,max=150"`
	Role            *string `json:"role" validate:"omitempty,oneof=student faculty admin"`
	Year            *string `json:"year" validate:"omitempty,max=10"`
	Branch          *string `json:"branch" validate:"omitempty,max=10"`
	RollNo          *string `json:"roll_no" validate:"omitempty,max=15"`
	Department      *string `json:"department" validate:"omitempty,max=10"`
	EmployeeID      *string `json:"employee_id" validate:"omitempty,max=15"`
	Phone           *string `json:"phone_number" validate:"omitempty,e164"`
	Bio             *string `json:"bio"`
	Password        *string `json:"password"`
	CurrentPassword *string `json:"current_password"`
	Active          *bool   `json:"is_active"`
	Staff           *bool   `json:"is_staff"`
}

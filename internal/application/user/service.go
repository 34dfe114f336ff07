package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nitrmart-api/internal/application/authz"
	"github.com/nitrmart-api/internal/domain"
	"github.com/nitrmart-api/internal/pkg/id"
	"github.com/nitrmart-api/internal/pkg/password"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldUsername     = "username"
	fieldFirstName    = "first_name"
	fieldLastName     = "last_name"
	fieldRole         = "role"
	fieldStudent      = "student"
	fieldFaculty      = "faculty"
	fieldRollNo       = "roll_no"
	fieldPhone        = "phone_number"
	fieldBio          = "bio"
	fieldActive       = "is_active"
	fieldStaff        = "is_staff"
	fieldVerified     = "is_verified"
	fieldPasswordHash = "password_hash"
)

const (
	msgStudentFields = "Year and branch are required for students"
	msgFacultyFields = "Department is required for faculty"
)

type Service interface {
	CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	UpdateUser(ctx context.Context, actor domain.Actor, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	CheckPassword(u *domain.User, candidate string) bool
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	CheckEmail(ctx context.Context, email string) error
	MarkVerified(ctx context.Context, userID string) error
	// VerifyOTP checks a code and, when it belongs to an unverified account,
	// marks the account verified and consumes the code.
	VerifyOTP(ctx context.Context, email, code string) (*domain.OTPVerification, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByRollNumber(ctx context.Context, rollNo string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}

type otpService interface {
	Send(ctx context.Context, email string) (*domain.OTPVerification, error)
	Verify(ctx context.Context, email, code string) (*domain.OTPVerification, error)
	ConsumeForRegistration(ctx context.Context, email, code string) (*domain.OTPVerification, error)
	Delete(ctx context.Context, email string) error
}

type service struct {
	repo        userStore
	otp         otpService
	emailDomain string
}

type ServiceDeps struct {
	UserRepo    userStore
	OTP         otpService
	EmailDomain string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:        deps.UserRepo,
		otp:         deps.OTP,
		emailDomain: deps.EmailDomain,
	}
}

func (s *service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email := domain.NormalizeEmail(req.Email)
	if !domain.EmailInDomain(email, s.emailDomain) {
		return nil, s.invalidEmail()
	}
	if err := password.Validate(req.Password, email); err != nil {
		return nil, err
	}
	if req.PasswordConfirm != nil && *req.PasswordConfirm != req.Password {
		return nil, domain.NewFieldError(domain.ErrPasswordMismatch, "password_confirm", "Passwords do not match.")
	}

	role := req.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if role == domain.RoleAdmin {
		return nil, domain.NewFieldError(domain.ErrInvalidRole, "role", "Admin accounts cannot be self-registered.")
	}
	student, faculty, err := buildProfile(role, profileFields{
		Year:       req.Year,
		Branch:     req.Branch,
		RollNo:     req.RollNo,
		Department: req.Department,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}
	if student != nil && student.RollNo != "" {
		if err := s.ensureRollNoFree(ctx, student.RollNo, ""); err != nil {
			return nil, err
		}
	}

	verified := false
	if req.OTP != nil {
		if _, err := s.otp.ConsumeForRegistration(ctx, email, *req.OTP); err != nil {
			return nil, err
		}
		verified = true
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		Student:      student,
		Faculty:      faculty,
		Phone:        nonEmpty(req.Phone),
		Bio:          nonEmpty(req.Bio),
		Verified:     verified,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	if verified {
		if err := s.otp.Delete(ctx, email); err != nil {
			slog.Warn("failed to delete consumed otp", "email", email, "err", err)
		}
	}
	return u, nil
}

func (s *service) UpdateUser(ctx context.Context, actor domain.Actor, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(actor, u, "You can only edit your own profile."); err != nil {
		return nil, err
	}
	if req.Email != nil && domain.NormalizeEmail(*req.Email) != u.Email {
		return nil, domain.NewFieldError(domain.ErrImmutableField, "email", "Email cannot be changed.")
	}
	if (req.Role != nil || req.Active != nil || req.Staff != nil) && !actor.Elevated {
		return nil, domain.NewFieldError(domain.ErrPermissionDenied, "", "Only staff can change role or account status.")
	}

	updates := map[string]interface{}{}

	if req.Password != nil {
		if req.CurrentPassword == nil || !s.CheckPassword(u, *req.CurrentPassword) {
			return nil, domain.NewFieldError(domain.ErrBadCredential, "current_password", "Current password is incorrect.")
		}
		if err := password.Validate(*req.Password, u.Email); err != nil {
			return nil, err
		}
		hash, err := password.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		updates[fieldPasswordHash] = hash
	}

	if err := s.applyProfile(ctx, u, req, updates); err != nil {
		return nil, err
	}

	if req.Username != nil {
		updates[fieldUsername] = strings.TrimSpace(*req.Username)
	}
	if req.FirstName != nil {
		updates[fieldFirstName] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates[fieldLastName] = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		updates[fieldPhone] = optional(*req.Phone)
	}
	if req.Bio != nil {
		updates[fieldBio] = optional(*req.Bio)
	}
	if req.Active != nil {
		updates[fieldActive] = *req.Active
	}
	if req.Staff != nil {
		updates[fieldStaff] = *req.Staff
	}

	if len(updates) == 0 {
		return u, nil
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

// applyProfile validates the role profile the user ends up with and records
// the attribute changes needed to store it.
func (s *service) applyProfile(ctx context.Context, u *domain.User, req domain.UpdateUserRequest, updates map[string]interface{}) error {
	touched := req.Role != nil || req.Year != nil || req.Branch != nil || req.RollNo != nil ||
		req.Department != nil || req.EmployeeID != nil
	if !touched {
		return nil
	}

	role := u.Role
	if req.Role != nil {
		role = *req.Role
	}
	var f profileFields
	if u.Student != nil {
		f.Year, f.Branch, f.RollNo = u.Student.Year, u.Student.Branch, u.Student.RollNo
	}
	if u.Faculty != nil {
		f.Department, f.EmployeeID = u.Faculty.Department, u.Faculty.EmployeeID
	}
	override(&f.Year, req.Year)
	override(&f.Branch, req.Branch)
	override(&f.RollNo, req.RollNo)
	override(&f.Department, req.Department)
	override(&f.EmployeeID, req.EmployeeID)

	student, faculty, err := buildProfile(role, f)
	if err != nil {
		return err
	}

	oldRoll := ""
	if u.Student != nil {
		oldRoll = u.Student.RollNo
	}
	newRoll := ""
	if student != nil {
		newRoll = student.RollNo
	}
	if newRoll != oldRoll {
		if newRoll != "" {
			if err := s.ensureRollNoFree(ctx, newRoll, u.UserID); err != nil {
				return err
			}
			updates[fieldRollNo] = newRoll
		} else {
			updates[fieldRollNo] = nil
		}
	}

	if req.Role != nil {
		updates[fieldRole] = role
	}
	// Untyped nil removes the attribute; a typed nil pointer would store NULL.
	if student != nil {
		updates[fieldStudent] = student
	} else if u.Student != nil {
		updates[fieldStudent] = nil
	}
	if faculty != nil {
		updates[fieldFaculty] = faculty
	} else if u.Faculty != nil {
		updates[fieldFaculty] = nil
	}
	return nil
}

func (s *service) CheckPassword(u *domain.User, candidate string) bool {
	return password.Check(u.PasswordHash, candidate)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) CheckEmail(ctx context.Context, email string) error {
	_, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewFieldError(domain.ErrUnknownUser, "", "No account found with this email.")
	}
	return err
}

func (s *service) MarkVerified(ctx context.Context, userID string) error {
	return s.repo.Update(ctx, userID, map[string]interface{}{fieldVerified: true})
}

func (s *service) VerifyOTP(ctx context.Context, email, code string) (*domain.OTPVerification, error) {
	email = domain.NormalizeEmail(email)
	v, err := s.otp.Verify(ctx, email, code)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		// Pre-registration code; CreateUser consumes it.
		return v, nil
	}
	if err != nil {
		return nil, err
	}
	if !u.Verified {
		if err := s.MarkVerified(ctx, u.UserID); err != nil {
			return nil, err
		}
		if err := s.otp.Delete(ctx, email); err != nil {
			slog.Warn("failed to delete consumed otp", "email", email, "err", err)
		}
	}
	return v, nil
}

func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := s.otp.Send(ctx, email)
	return err
}

func (s *service) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	email = domain.NormalizeEmail(email)
	if _, err := s.otp.Verify(ctx, email, code); err != nil {
		return err
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewFieldError(domain.ErrUnknownUser, "", "No account found with this email.")
	}
	if err != nil {
		return err
	}
	if err := password.Validate(newPassword, email); err != nil {
		var fe *domain.FieldError
		if errors.As(err, &fe) {
			return domain.NewFieldError(fe.Kind, "new_password", fe.Message)
		}
		return err
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	// Receiving the code proves control of the mailbox.
	if err := s.repo.Update(ctx, u.UserID, map[string]interface{}{
		fieldPasswordHash: hash,
		fieldVerified:     true,
	}); err != nil {
		return err
	}
	if err := s.otp.Delete(ctx, email); err != nil {
		slog.Warn("failed to delete consumed otp", "email", email, "err", err)
	}
	return nil
}

func (s *service) invalidEmail() error {
	return domain.NewFieldError(domain.ErrInvalidEmail, "email",
		fmt.Sprintf("Only %s email addresses are allowed.", s.emailDomain))
}

func (s *service) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.NewFieldError(domain.ErrDuplicateEmail, "email", "A user with this email already exists.")
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

// ensureRollNoFree fails when another account (not selfID) holds rollNo.
func (s *service) ensureRollNoFree(ctx context.Context, rollNo, selfID string) error {
	other, err := s.repo.GetByRollNumber(ctx, rollNo)
	switch {
	case err == nil && other.UserID != selfID:
		return domain.NewFieldError(domain.ErrDuplicateRollNumber, "roll_no", "A user with this roll number already exists.")
	case err == nil, errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

func nonEmpty(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// optional maps an empty string to attribute removal.
func optional(v string) interface{} {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return v
}

func override(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

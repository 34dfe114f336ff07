package user

import (
	"strings"

	"github.com/nitrmart-api/internal/domain"
)

type profileFields struct {
	Year       string
	Branch     string
	RollNo     string
	Department string
	EmployeeID string
}

// buildProfile returns the profile variant role requires. Exactly one of the
// results is non-nil for student and faculty; both are nil for admin.
func buildProfile(role string, f profileFields) (*domain.StudentProfile, *domain.FacultyProfile, error) {
	switch role {
	case domain.RoleStudent:
		p := &domain.StudentProfile{
			Year:   strings.TrimSpace(f.Year),
			Branch: strings.TrimSpace(f.Branch),
			RollNo: strings.TrimSpace(f.RollNo),
		}
		if p.Year == "" || p.Branch == "" {
			return nil, nil, domain.NewFieldError(domain.ErrMissingRoleField, "", msgStudentFields)
		}
		return p, nil, nil
	case domain.RoleFaculty:
		p := &domain.FacultyProfile{
			Department: strings.TrimSpace(f.Department),
			EmployeeID: strings.TrimSpace(f.EmployeeID),
		}
		if p.Department == "" {
			return nil, nil, domain.NewFieldError(domain.ErrMissingRoleField, "", msgFacultyFields)
		}
		return nil, p, nil
	case domain.RoleAdmin:
		return nil, nil, nil
	default:
		return nil, nil, domain.NewFieldError(domain.ErrInvalidRole, "role", "Select a valid role.")
	}
}

// Package authz decides whether an actor may mutate an owned resource.
package authz

import (
	"github.com/nitrmart-api/internal/domain"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Owned is a resource with a single owning user.
type Owned interface {
	OwnerID() string
}

// AuthorizeMutation allows the owner and elevated actors (staff, superusers,
// admins). An actor without a user id is always denied.
func AuthorizeMutation(actor domain.Actor, resource Owned) Decision {
	if actor.UserID == "" || resource == nil {
		return Deny
	}
	if actor.Elevated || resource.OwnerID() == actor.UserID {
		return Allow
	}
	return Deny
}

// Require is AuthorizeMutation as an error: nil on Allow, a PermissionDenied
// field error carrying message otherwise.
func Require(actor domain.Actor, resource Owned, message string) error {
	if AuthorizeMutation(actor, resource) == Allow {
		return nil
	}
	if message == "" {
		message = "You do not have permission to perform this action."
	}
	return domain.NewFieldError(domain.ErrPermissionDenied, "", message)
}

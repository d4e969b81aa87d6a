// Package access holds the role and permission model and the rule checks
// every catalog service runs before touching the store.
package access

import (
	"fmt"
	"strings"

	"libraryapi/internal/apperr"
)

type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleLibrarian Role = "Librarian"
	RoleMember    Role = "Member"
)

// DefaultRole is assigned to every newly created user.
const DefaultRole = RoleMember

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "librarian":
		return RoleLibrarian, nil
	case "member":
		return RoleMember, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

type Permission string

const (
	CanViewAll     Permission = "can_view_all"
	CanCreate      Permission = "can_create"
	CanEdit        Permission = "can_edit"
	CanDelete      Permission = "can_delete"
	CanManageUsers Permission = "can_manage_users"
)

// PermissionsFor returns the permission set granted to a role.
// Unknown roles get nothing.
func PermissionsFor(r Role) []Permission {
	switch r {
	case RoleAdmin:
		return []Permission{CanViewAll, CanCreate, CanEdit, CanDelete, CanManageUsers}
	case RoleLibrarian:
		return []Permission{CanViewAll, CanCreate, CanEdit}
	case RoleMember:
		return []Permission{CanCreate}
	}
	return nil
}

// Actor is the authenticated caller. A nil *Actor is an anonymous caller.
type Actor struct {
	UserID string
	Role   Role
}

func (a *Actor) Has(p Permission) bool {
	if a == nil {
		return false
	}
	for _, granted := range PermissionsFor(a.Role) {
		if granted == p {
			return true
		}
	}
	return false
}

// Owns reports whether the actor created the record. Records without a
// creator are owned by nobody.
func (a *Actor) Owns(createdBy *string) bool {
	return a != nil && createdBy != nil && *createdBy == a.UserID
}

func RequireActor(a *Actor) error {
	if a == nil {
		return apperr.ErrAuthRequired
	}
	return nil
}

// Require checks authentication and then a single permission.
func Require(a *Actor, p Permission) error {
	if err := RequireActor(a); err != nil {
		return err
	}
	if !a.Has(p) {
		return apperr.New(apperr.ErrPermissionDenied, fmt.Sprintf("missing permission %s", p))
	}
	return nil
}

// AllowCreate reports whether the caller is authenticated with can_create.
func AllowCreate(a *Actor) error {
	return Require(a, CanCreate)
}

// AllowUpdate allows the owner or a holder of can_edit.
func AllowUpdate(a *Actor, createdBy *string) error {
	return ownerOr(a, createdBy, CanEdit)
}

// AllowDelete allows the owner or a holder of can_delete.
func AllowDelete(a *Actor, createdBy *string) error {
	return ownerOr(a, createdBy, CanDelete)
}

// AllowBulkDelete requires can_delete; ownership does not apply to batches.
func AllowBulkDelete(a *Actor) error {
	return Require(a, CanDelete)
}

// AllowView decides read access to a single record. With public reads enabled
// anyone may view. Otherwise the caller must be authenticated and either
// hold can_view_all or own the record.
func AllowView(a *Actor, createdBy *string, publicRead bool) error {
	if publicRead {
		return nil
	}
	if err := RequireActor(a); err != nil {
		return err
	}
	if a.Has(CanViewAll) || a.Owns(createdBy) {
		return nil
	}
	return apperr.New(apperr.ErrPermissionDenied, "not allowed to view this record")
}

// ListScope returns the creator filter to apply on list endpoints. An empty
// string means no restriction.
func ListScope(a *Actor, publicRead bool) (string, error) {
	if publicRead {
		return "", nil
	}
	if err := RequireActor(a); err != nil {
		return "", err
	}
	if a.Has(CanViewAll) {
		return "", nil
	}
	return a.UserID, nil
}

func ownerOr(a *Actor, createdBy *string, p Permission) error {
	if err := RequireActor(a); err != nil {
		return err
	}
	if a.Owns(createdBy) || a.Has(p) {
		return nil
	}
	return apperr.New(apperr.ErrPermissionDenied, "only the owner or a user with "+string(p)+" may do this")
}

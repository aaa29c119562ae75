// Package messaging holds the role matrix that decides who may message whom.
package messaging

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Role string

const (
	RoleTraveler   Role = "traveler"
	RoleOwner      Role = "owner"
	RoleProvider   Role = "provider"
	RolePartner    Role = "partner"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var ErrNotAllowed = errors.New("messaging not allowed")

var allRoles = []Role{RoleTraveler, RoleOwner, RoleProvider, RolePartner, RoleAdmin, RoleSuperAdmin}

// receivers is keyed by the sending role. Every pair is symmetric: if a may
// message b then b may reply to a.
var receivers = map[Role][]Role{
	RoleTraveler:   {RoleOwner, RoleAdmin, RoleSuperAdmin},
	RoleOwner:      {RoleTraveler, RoleProvider, RoleAdmin, RoleSuperAdmin},
	RoleProvider:   {RoleAdmin, RoleSuperAdmin, RoleOwner},
	RolePartner:    {RoleAdmin, RoleSuperAdmin},
	RoleAdmin:      allRoles,
	RoleSuperAdmin: allRoles,
}

// Roles returns every defined role.
func Roles() []Role {
	return append([]Role(nil), allRoles...)
}

func (r Role) Valid() bool {
	_, ok := receivers[r]
	return ok
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// AllowedReceivers returns the roles a sender with the given role may contact.
// Unknown roles may contact nobody.
func AllowedReceivers(role Role) []Role {
	return append([]Role(nil), receivers[role]...)
}

func CanMessage(from, to Role) error {
	for _, r := range receivers[from] {
		if r == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s cannot message %s", ErrNotAllowed, from, to)
}

type Contact struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}

// FilterContacts keeps the contacts the sender may message, dropping duplicates.
func FilterContacts(role Role, contacts []Contact) []Contact {
	seen := make(map[uuid.UUID]struct{}, len(contacts))
	out := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		if _, dup := seen[c.UserID]; dup {
			continue
		}
		if CanMessage(role, c.Role) != nil {
			continue
		}
		seen[c.UserID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// NeedsAdminFallback reports whether a traveler or owner has no admin to reach.
func NeedsAdminFallback(role Role, contacts []Contact) bool {
	if role != RoleTraveler && role != RoleOwner {
		return false
	}
	for _, c := range contacts {
		if c.Role.IsAdmin() {
			return false
		}
	}
	return true
}

// WithAdminFallback puts admin at the head of the list when the sender would
// otherwise have no way to contact administration.
func WithAdminFallback(role Role, contacts []Contact, admin *Contact) []Contact {
	if admin == nil || !admin.Role.IsAdmin() || !NeedsAdminFallback(role, contacts) {
		return contacts
	}
	return append([]Contact{*admin}, contacts...)
}

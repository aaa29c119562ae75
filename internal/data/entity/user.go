package entity

import "stay-concierge/internal/domain/messaging"

type UserRole string

const (
	RoleTraveler   UserRole = "traveler"
	RoleOwner      UserRole = "owner"
	RoleProvider   UserRole = "provider"
	RolePartner    UserRole = "partner"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super_admin"
)

func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// MessagingRole maps the stored role onto the messaging policy.
func (r UserRole) MessagingRole() messaging.Role {
	return messaging.Role(r)
}

type User struct {
	Base
	Username     string   `db:"username"`
	Email        string   `db:"email"`
	PasswordHash string   `db:"password"`
	Phone        *string  `db:"phone"`
	Role         UserRole `db:"role"`
	IsActive     bool     `db:"is_active"`
}

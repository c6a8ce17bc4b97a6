package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleProducer   Role = "PRODUCER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// HasAdminPrivilege reports whether role may act on admin workflows.
func HasAdminPrivilege(role Role) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleProducer, RoleAdmin, RoleSuperAdmin:
		return r, true
	}
	return "", false
}

// User is the profile row mirrored from the identity provider.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FirstName string    `json:"first_name,omitempty" db:"first_name"`
	LastName  string    `json:"last_name,omitempty" db:"last_name"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName is "First Last" when both parts are present, else the email.
func (u *User) DisplayName() string {
	return DisplayName(u.FirstName, u.LastName, u.Email)
}

// DisplayName builds a customer-facing name from profile parts.
func DisplayName(first, last, email string) string {
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	if first == "" || last == "" {
		return email
	}
	return first + " " + last
}

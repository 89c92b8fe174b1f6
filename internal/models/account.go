package models

import "strings"

// Role is the closed set of account kinds.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleStudent Role = "student"
	// RoleSystem is reserved for the broadcast sentinel account.
	RoleSystem Role = "system"
)

// SystemAccountEmail identifies the sentinel account that owns broadcast notices.
const SystemAccountEmail = "system@college.local"

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleStudent, RoleSystem:
		return true
	default:
		return false
	}
}

// Account is a login identity. Role-specific data lives in Student or Staff.
type Account struct {
	BaseModel

	Email     string `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null;default:''" json:"-"`
	FirstName string `gorm:"type:varchar(150)" json:"first_name"`
	LastName  string `gorm:"type:varchar(150)" json:"last_name"`
	Role      Role   `gorm:"type:varchar(16);not null;index" json:"role"`
	IsActive  bool   `gorm:"not null;default:true;index" json:"is_active"`
}

// FullName returns "First Last", falling back to the email address.
func (a Account) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
	if name == "" {
		return a.Email
	}
	return name
}

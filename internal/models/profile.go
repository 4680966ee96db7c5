package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile roles. Legacy rows may carry no role at all; admin status for those
// falls back to the company admin_email match in IsCompanyAdmin.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Profile struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	Phone        *string    `json:"phone" db:"phone"`
	CompanyID    *uuid.UUID `json:"company_id" db:"company_id"`
	Role         *string    `json:"role" db:"role"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never serialize in JSON
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// IsCompanyAdmin is the single place admin status is derived. A profile is an
// admin of a company when its role says so, or, for legacy rows that predate
// the role column, when its email matches the company's admin_email.
//
// Deprecated fallback: the email comparison branch goes away once all profile
// rows are backfilled with a role.
func IsCompanyAdmin(profile *Profile, company *Company) bool {
	if profile == nil || company == nil {
		return false
	}
	if profile.CompanyID == nil || *profile.CompanyID != company.ID {
		return false
	}
	if profile.Role != nil && *profile.Role == RoleAdmin {
		return true
	}
	return profile.Email == company.AdminEmail
}

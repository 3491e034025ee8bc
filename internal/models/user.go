package models

import (
	"strings"
	"time"
)

type Role string

const (
	RolePharmacist    Role = "pharmacist"
	RolePolicyMaker   Role = "policy_maker"
	RoleFacilityAdmin Role = "facility_admin"
	RoleSuperAdmin    Role = "super_admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePharmacist, RolePolicyMaker, RoleFacilityAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Slug is the role as it appears inside generated usernames.
func (r Role) Slug() string {
	return strings.ReplaceAll(string(r), "_", "-")
}

// PasswordState distinguishes accounts that never set a password from
// accounts whose local login was deliberately disabled (federated-only).
type PasswordState string

const (
	PasswordStateSet      PasswordState = "set"
	PasswordStateUnset    PasswordState = "unset"
	PasswordStateDisabled PasswordState = "disabled"
)

type User struct {
	ID            string
	Username      string
	Email         string
	Role          Role
	FirstName     string
	LastName      string
	PasswordHash  []byte
	PasswordState PasswordState
	FacilityID    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasUsablePassword reports whether password login is allowed at all.
func (u User) HasUsablePassword() bool {
	return u.PasswordState == PasswordStateSet && len(u.PasswordHash) > 0
}

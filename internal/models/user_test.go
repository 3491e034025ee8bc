package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoleSlug(t *testing.T) {
	assert.Equal(t, "pharmacist", RolePharmacist.Slug())
	assert.Equal(t, "policy-maker", RolePolicyMaker.Slug())
	assert.Equal(t, "facility-admin", RoleFacilityAdmin.Slug())
	assert.Equal(t, "super-admin", RoleSuperAdmin.Slug())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RolePharmacist.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}

func TestSignupTokenIsValid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := SignupToken{ExpiresAt: now.Add(30 * time.Minute)}

	assert.True(t, token.IsValid(now))
	assert.True(t, token.IsValid(token.ExpiresAt)) // expiry instant still counts

	assert.False(t, token.IsValid(token.ExpiresAt.Add(time.Second)))

	token.IsUsed = true
	assert.False(t, token.IsValid(now))
}

func TestHasUsablePassword(t *testing.T) {
	u := User{PasswordState: PasswordStateSet, PasswordHash: []byte("$argon2id$...")}
	assert.True(t, u.HasUsablePassword())

	assert.False(t, User{PasswordState: PasswordStateUnset}.HasUsablePassword())
	assert.False(t, User{PasswordState: PasswordStateDisabled, PasswordHash: []byte("x")}.HasUsablePassword())
	assert.False(t, User{PasswordState: PasswordStateSet}.HasUsablePassword())
}

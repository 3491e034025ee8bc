package models

import "time"

// SignupToken proves control of an email address for a requested role.
// Tokens are flagged used rather than deleted so the table doubles as an
// audit trail of signup attempts.
type SignupToken struct {
	ID        string
	Email     string
	Role      Role
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	IsUsed    bool
}

// IsValid reports whether the token can still complete a signup.
func (t SignupToken) IsValid(now time.Time) bool {
	return !t.IsUsed && !t.ExpiresAt.Before(now)
}

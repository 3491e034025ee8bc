package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healteex/api/internal/models"
	"healteex/api/internal/security"
)

func seedUser(t *testing.T, users *fakeUserStore, id string, username string, email string, role models.Role, password string) models.User {
	t.Helper()

	user := models.User{
		ID:            id,
		Username:      username,
		Email:         email,
		Role:          role,
		PasswordState: models.PasswordStateDisabled,
	}
	if password != "" {
		hash, err := security.HashPassword(password)
		require.NoError(t, err)
		user.PasswordHash = hash
		user.PasswordState = models.PasswordStateSet
	}
	users.users = append(users.users, user)
	return user
}

func TestLoginPasswordByUsername(t *testing.T) {
	users := &fakeUserStore{}
	seedUser(t, users, "u1", "ada-pharmacist", "ada@example.com", models.RolePharmacist, "ChangeMe123!")
	svc := newTestAuthService(users, nil)

	pair, err := svc.LoginPassword(context.Background(), LoginInput{
		Username: "ada-pharmacist",
		Password: "ChangeMe123!",
	})
	require.NoError(t, err)

	claims, err := security.ParseToken(pair.Access, svc.cfg.Security.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, string(models.RolePharmacist), claims.Role)
}

func TestLoginPasswordWrongPassword(t *testing.T) {
	users := &fakeUserStore{}
	seedUser(t, users, "u1", "ada-pharmacist", "ada@example.com", models.RolePharmacist, "ChangeMe123!")
	svc := newTestAuthService(users, nil)

	_, err := svc.LoginPassword(context.Background(), LoginInput{
		Username: "ada-pharmacist",
		Password: "WrongPassword",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginPasswordUnknownUsername(t *testing.T) {
	svc := newTestAuthService(&fakeUserStore{}, nil)

	_, err := svc.LoginPassword(context.Background(), LoginInput{
		Username: "nobody",
		Password: "ChangeMe123!",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginPasswordUnusablePassword(t *testing.T) {
	users := &fakeUserStore{}
	seedUser(t, users, "u1", "ada-pharmacist", "ada@example.com", models.RolePharmacist, "")
	svc := newTestAuthService(users, nil)

	_, err := svc.LoginPassword(context.Background(), LoginInput{
		Username: "ada-pharmacist",
		Password: "anything",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginPasswordEmailDisambiguation(t *testing.T) {
	users := &fakeUserStore{}
	seedUser(t, users, "u1", "ada-pharmacist", "ada@example.com", models.RolePharmacist, "ChangeMe123!")
	seedUser(t, users, "u2", "ada-policy-maker", "ada@example.com", models.RolePolicyMaker, "ChangeMe123!")
	svc := newTestAuthService(users, nil)

	// Email alone matches two accounts.
	_, err := svc.LoginPassword(context.Background(), LoginInput{
		Email:    "ada@example.com",
		Password: "ChangeMe123!",
	})
	assert.ErrorIs(t, err, ErrAmbiguousAccount)

	// Role narrows the match.
	pair, err := svc.LoginPassword(context.Background(), LoginInput{
		Email:    "ada@example.com",
		Role:     models.RolePolicyMaker,
		Password: "ChangeMe123!",
	})
	require.NoError(t, err)
	assert.Equal(t, "u2", pair.User.ID)
}

func TestLoginPasswordEmailSingleMatch(t *testing.T) {
	users := &fakeUserStore{}
	seedUser(t, users, "u1", "ada-pharmacist", "ada@example.com", models.RolePharmacist, "ChangeMe123!")
	svc := newTestAuthService(users, nil)

	pair, err := svc.LoginPassword(context.Background(), LoginInput{
		Email:    "Ada@Example.com",
		Password: "ChangeMe123!",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", pair.User.ID)
}

func TestLoginPasswordEmailNoMatch(t *testing.T) {
	svc := newTestAuthService(&fakeUserStore{}, nil)

	_, err := svc.LoginPassword(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: "ChangeMe123!",
	})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestIssueCredentialsPayload(t *testing.T) {
	users := &fakeUserStore{}
	user := seedUser(t, users, "u1", "ada-pharmacist", "ada@example.com", models.RolePharmacist, "")
	svc := newTestAuthService(users, nil)

	pair, err := svc.IssueCredentials(user, false)
	require.NoError(t, err)

	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, 900, pair.ExpiresIn)
	assert.False(t, pair.RememberMe)
	assert.Equal(t, "ada-pharmacist", pair.User.Username)
}

func TestRememberMeAffectsOnlyRefreshLifetime(t *testing.T) {
	users := &fakeUserStore{}
	user := seedUser(t, users, "u1", "ada-pharmacist", "ada@example.com", models.RolePharmacist, "")
	svc := newTestAuthService(users, nil)

	pair, err := svc.IssueCredentials(user, true)
	require.NoError(t, err)

	refresh, err := security.ParseRefreshToken(pair.Refresh, svc.cfg.Security.JWTSecret)
	require.NoError(t, err)
	access, err := security.ParseToken(pair.Access, svc.cfg.Security.JWTSecret)
	require.NoError(t, err)

	refreshTTL := refresh.ExpiresAt.Sub(refresh.IssuedAt.Time)
	accessTTL := access.ExpiresAt.Sub(access.IssuedAt.Time)

	assert.Equal(t, svc.cfg.Security.RememberMeRefreshTTL, refreshTTL)
	assert.Equal(t, svc.cfg.Security.AccessTTL, accessTTL)
	assert.True(t, refresh.RememberMe)
	assert.False(t, access.RememberMe)
}

func TestRefreshRotatesAndKeepsRememberMe(t *testing.T) {
	users := &fakeUserStore{}
	user := seedUser(t, users, "u1", "ada-pharmacist", "ada@example.com", models.RolePharmacist, "")
	svc := newTestAuthService(users, nil)

	pair, err := svc.IssueCredentials(user, true)
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)

	assert.True(t, rotated.RememberMe)
	assert.NotEmpty(t, rotated.Access)

	claims, err := security.ParseRefreshToken(rotated.Refresh, svc.cfg.Security.JWTSecret)
	require.NoError(t, err)
	assert.True(t, claims.RememberMe)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	users := &fakeUserStore{}
	user := seedUser(t, users, "u1", "ada-pharmacist", "ada@example.com", models.RolePharmacist, "")
	svc := newTestAuthService(users, nil)

	pair, err := svc.IssueCredentials(user, false)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.Access)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestRefreshRejectsDeletedUser(t *testing.T) {
	users := &fakeUserStore{}
	user := seedUser(t, users, "u1", "ada-pharmacist", "ada@example.com", models.RolePharmacist, "")
	svc := newTestAuthService(users, nil)

	pair, err := svc.IssueCredentials(user, false)
	require.NoError(t, err)

	users.users = nil
	_, err = svc.Refresh(context.Background(), pair.Refresh)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestObtainLegacyTokenIsStable(t *testing.T) {
	users := &fakeUserStore{}
	seedUser(t, users, "u1", "ada-pharmacist", "ada@example.com", models.RolePharmacist, "ChangeMe123!")
	cache := newFakeRedis()
	svc := newTestAuthService(users, cache)

	first, err := svc.ObtainLegacyToken(context.Background(), "ada-pharmacist", "ChangeMe123!")
	require.NoError(t, err)
	assert.Len(t, first, 40)

	second, err := svc.ObtainLegacyToken(context.Background(), "ada-pharmacist", "ChangeMe123!")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	user, err := svc.ResolveLegacyToken(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestResolveLegacyTokenUnknown(t *testing.T) {
	svc := newTestAuthService(&fakeUserStore{}, newFakeRedis())

	_, err := svc.ResolveLegacyToken(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healteex/api/internal/models"
	"healteex/api/internal/security"
)

func TestRequestSignupIssuesToken(t *testing.T) {
	tokens := &fakeTokenStore{}
	users := &fakeUserStore{}
	mail := &recordingMailer{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSignupService(tokens, users, mail, now)

	token, err := svc.RequestSignup(context.Background(), "ada@example.com", models.RolePharmacist)
	require.NoError(t, err)

	assert.Len(t, token.Token, security.SignupTokenLength)
	assert.Equal(t, "ada@example.com", token.Email)
	assert.Equal(t, models.RolePharmacist, token.Role)
	assert.Equal(t, now.Add(30*time.Minute), token.ExpiresAt)

	require.Len(t, mail.to, 1)
	assert.Equal(t, "ada@example.com", mail.to[0])
	assert.Equal(t, token.Token, mail.tokens[0])
}

func TestRequestSignupRejectsInvalidRole(t *testing.T) {
	svc := newTestSignupService(&fakeTokenStore{}, &fakeUserStore{}, &recordingMailer{}, time.Now())

	_, err := svc.RequestSignup(context.Background(), "ada@example.com", "superhero")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRequestSignupConflictsWhileTokenActive(t *testing.T) {
	tokens := &fakeTokenStore{}
	users := &fakeUserStore{}
	mail := &recordingMailer{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSignupService(tokens, users, mail, now)

	_, err := svc.RequestSignup(context.Background(), "ada@example.com", models.RolePharmacist)
	require.NoError(t, err)

	_, err = svc.RequestSignup(context.Background(), "ada@example.com", models.RolePharmacist)
	assert.ErrorIs(t, err, ErrActiveTokenExists)

	// A different role is an independent request stream.
	_, err = svc.RequestSignup(context.Background(), "ada@example.com", models.RolePolicyMaker)
	assert.NoError(t, err)

	// Once the first token expires the address can request again.
	svc.now = func() time.Time { return now.Add(31 * time.Minute) }
	_, err = svc.RequestSignup(context.Background(), "ada@example.com", models.RolePharmacist)
	assert.NoError(t, err)
}

func TestRequestSignupAllowedAfterTokenConsumed(t *testing.T) {
	tokens := &fakeTokenStore{}
	users := &fakeUserStore{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSignupService(tokens, users, &recordingMailer{}, now)

	issued, err := svc.RequestSignup(context.Background(), "ada@example.com", models.RolePharmacist)
	require.NoError(t, err)

	_, err = svc.VerifySignup(context.Background(), VerifySignupInput{Token: issued.Token})
	require.NoError(t, err)

	// The consumed token no longer blocks a fresh request.
	_, err = svc.RequestSignup(context.Background(), "ada@example.com", models.RolePharmacist)
	assert.NoError(t, err)
}

func TestRequestSignupSurvivesMailFailure(t *testing.T) {
	tokens := &fakeTokenStore{}
	mail := &recordingMailer{sendErr: errors.New("smtp down")}
	svc := newTestSignupService(tokens, &fakeUserStore{}, mail, time.Now())

	_, err := svc.RequestSignup(context.Background(), "ada@example.com", models.RolePharmacist)
	assert.NoError(t, err)
	assert.Len(t, tokens.tokens, 1)
}

func TestVerifySignupCreatesAccount(t *testing.T) {
	tokens := &fakeTokenStore{}
	users := &fakeUserStore{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSignupService(tokens, users, &recordingMailer{}, now)

	issued, err := svc.RequestSignup(context.Background(), "ada.o@example.com", models.RolePharmacist)
	require.NoError(t, err)

	pair, err := svc.VerifySignup(context.Background(), VerifySignupInput{
		Token:     issued.Token,
		Password:  "ChangeMe123!",
		FirstName: "Ada",
		LastName:  "Olawale",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, 900, pair.ExpiresIn)
	assert.Equal(t, "ada.o-pharmacist", pair.User.Username)
	assert.Equal(t, "ada.o@example.com", pair.User.Email)
	assert.Equal(t, models.RolePharmacist, pair.User.Role)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	require.Len(t, users.users, 1)
	created := users.users[0]
	assert.True(t, created.HasUsablePassword())
	assert.Equal(t, []string{issued.ID}, users.consumedTokens)
}

func TestVerifySignupPasswordWorksForLogin(t *testing.T) {
	tokens := &fakeTokenStore{}
	users := &fakeUserStore{}
	svc := newTestSignupService(tokens, users, &recordingMailer{}, time.Now())

	issued, err := svc.RequestSignup(context.Background(), "ada@example.com", models.RolePharmacist)
	require.NoError(t, err)

	pair, err := svc.VerifySignup(context.Background(), VerifySignupInput{
		Token:    issued.Token,
		Password: "ChangeMe123!",
	})
	require.NoError(t, err)

	auth := newTestAuthService(users, nil)
	loggedIn, err := auth.LoginPassword(context.Background(), LoginInput{
		Username: pair.User.Username,
		Password: "ChangeMe123!",
	})
	require.NoError(t, err)
	assert.Equal(t, pair.User.ID, loggedIn.User.ID)

	_, err = auth.LoginPassword(context.Background(), LoginInput{
		Username: pair.User.Username,
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifySignupWithoutPasswordDisablesIt(t *testing.T) {
	tokens := &fakeTokenStore{}
	users := &fakeUserStore{}
	svc := newTestSignupService(tokens, users, &recordingMailer{}, time.Now())

	issued, err := svc.RequestSignup(context.Background(), "ada@example.com", models.RolePolicyMaker)
	require.NoError(t, err)

	_, err = svc.VerifySignup(context.Background(), VerifySignupInput{Token: issued.Token})
	require.NoError(t, err)

	require.Len(t, users.users, 1)
	assert.Equal(t, models.PasswordStateDisabled, users.users[0].PasswordState)
	assert.False(t, users.users[0].HasUsablePassword())
}

func TestVerifySignupRejectsUnknownToken(t *testing.T) {
	svc := newTestSignupService(&fakeTokenStore{}, &fakeUserStore{}, &recordingMailer{}, time.Now())

	_, err := svc.VerifySignup(context.Background(), VerifySignupInput{Token: "nope"})
	assert.ErrorIs(t, err, ErrInvalidSignupToken)
}

func TestVerifySignupRejectsExpiredToken(t *testing.T) {
	tokens := &fakeTokenStore{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSignupService(tokens, &fakeUserStore{}, &recordingMailer{}, now)

	issued, err := svc.RequestSignup(context.Background(), "ada@example.com", models.RolePharmacist)
	require.NoError(t, err)

	svc.now = func() time.Time { return now.Add(31 * time.Minute) }
	_, err = svc.VerifySignup(context.Background(), VerifySignupInput{Token: issued.Token})
	assert.ErrorIs(t, err, ErrInvalidSignupToken)
}

func TestVerifySignupTokenIsSingleUse(t *testing.T) {
	tokens := &fakeTokenStore{}
	users := &fakeUserStore{}
	svc := newTestSignupService(tokens, users, &recordingMailer{}, time.Now())

	issued, err := svc.RequestSignup(context.Background(), "ada@example.com", models.RolePharmacist)
	require.NoError(t, err)

	_, err = svc.VerifySignup(context.Background(), VerifySignupInput{Token: issued.Token})
	require.NoError(t, err)

	_, err = svc.VerifySignup(context.Background(), VerifySignupInput{Token: issued.Token})
	assert.ErrorIs(t, err, ErrInvalidSignupToken)
	assert.Len(t, users.users, 1)
}

func TestVerifySignupBurnsTokenForExistingAccount(t *testing.T) {
	tokens := &fakeTokenStore{}
	users := &fakeUserStore{}
	users.users = append(users.users, models.User{
		ID:       "u1",
		Username: "ada-pharmacist",
		Email:    "ada@example.com",
		Role:     models.RolePharmacist,
	})
	svc := newTestSignupService(tokens, users, &recordingMailer{}, time.Now())

	issued, err := svc.RequestSignup(context.Background(), "ada@example.com", models.RolePharmacist)
	require.NoError(t, err)

	_, err = svc.VerifySignup(context.Background(), VerifySignupInput{Token: issued.Token})
	assert.ErrorIs(t, err, ErrAccountExists)
	assert.True(t, tokens.tokens[0].IsUsed)
	assert.Len(t, users.users, 1)
}

func TestVerifySignupMatchesExistingAccountByEmailCaseInsensitively(t *testing.T) {
	tokens := &fakeTokenStore{}
	users := &fakeUserStore{}
	users.users = append(users.users, models.User{
		ID:       "u1",
		Username: "ada-pharmacist",
		Email:    "ADA@Example.com",
		Role:     models.RolePharmacist,
	})
	svc := newTestSignupService(tokens, users, &recordingMailer{}, time.Now())

	issued, err := svc.RequestSignup(context.Background(), "ada@example.com", models.RolePharmacist)
	require.NoError(t, err)

	_, err = svc.VerifySignup(context.Background(), VerifySignupInput{Token: issued.Token})
	assert.ErrorIs(t, err, ErrAccountExists)
	assert.Len(t, users.users, 1)
}

func TestAllocateUsername(t *testing.T) {
	users := &fakeUserStore{}

	username, err := allocateUsername(context.Background(), users, "Ada.O@Example.com", models.RolePolicyMaker)
	require.NoError(t, err)
	assert.Equal(t, "ada.o-policy-maker", username)

	users.users = append(users.users, models.User{ID: "u1", Username: "ada.o-policy-maker"})
	username, err = allocateUsername(context.Background(), users, "ada.o@example.com", models.RolePolicyMaker)
	require.NoError(t, err)
	assert.Equal(t, "ada.o-policy-maker-2", username)

	users.users = append(users.users, models.User{ID: "u2", Username: "ada.o-policy-maker-2"})
	username, err = allocateUsername(context.Background(), users, "ada.o@example.com", models.RolePolicyMaker)
	require.NoError(t, err)
	assert.Equal(t, "ada.o-policy-maker-3", username)
}

func TestAllocateUsernameEmptyLocalPart(t *testing.T) {
	username, err := allocateUsername(context.Background(), &fakeUserStore{}, "@example.com", models.RolePharmacist)
	require.NoError(t, err)
	assert.Equal(t, "user-pharmacist", username)
}

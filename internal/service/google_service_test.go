package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healteex/api/internal/models"
)

type fakeVerifier struct {
	identity GoogleIdentity
	err      error
}

func (f *fakeVerifier) Verify(ctx context.Context, idToken string) (GoogleIdentity, error) {
	return f.identity, f.err
}

func newTestGoogleService(users *fakeUserStore, verifier IdentityVerifier) *GoogleService {
	return &GoogleService{
		users:    users,
		verifier: verifier,
		auth:     newTestAuthService(users, nil),
		log:      zerolog.Nop(),
	}
}

func TestGoogleSignInDisabledWithoutVerifier(t *testing.T) {
	svc := newTestGoogleService(&fakeUserStore{}, nil)

	_, err := svc.SignIn(context.Background(), GoogleSignInInput{IDToken: "anything"})
	assert.ErrorIs(t, err, ErrFederationDisabled)
}

func TestGoogleSignInRejectsInvalidToken(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("bad audience")}
	svc := newTestGoogleService(&fakeUserStore{}, verifier)

	_, err := svc.SignIn(context.Background(), GoogleSignInInput{IDToken: "garbage"})
	assert.ErrorIs(t, err, ErrInvalidGoogleToken)
}

func TestGoogleSignInRejectsUnverifiedEmail(t *testing.T) {
	verifier := &fakeVerifier{identity: GoogleIdentity{
		Email:         "ada@example.com",
		EmailVerified: false,
	}}
	svc := newTestGoogleService(&fakeUserStore{}, verifier)

	_, err := svc.SignIn(context.Background(), GoogleSignInInput{IDToken: "token"})
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestGoogleSignInCreatesPharmacistByDefault(t *testing.T) {
	users := &fakeUserStore{}
	verifier := &fakeVerifier{identity: GoogleIdentity{
		Email:         "ada.o@example.com",
		EmailVerified: true,
		GivenName:     "Ada",
		FamilyName:    "Olawale",
	}}
	svc := newTestGoogleService(users, verifier)

	pair, err := svc.SignIn(context.Background(), GoogleSignInInput{IDToken: "token"})
	require.NoError(t, err)

	assert.Equal(t, models.RolePharmacist, pair.User.Role)
	assert.Equal(t, "ada.o-pharmacist", pair.User.Username)
	assert.Equal(t, "Ada", pair.User.FirstName)

	require.Len(t, users.users, 1)
	assert.Equal(t, models.PasswordStateDisabled, users.users[0].PasswordState)
	assert.False(t, users.users[0].HasUsablePassword())
}

func TestGoogleSignInHonorsRequestedRole(t *testing.T) {
	users := &fakeUserStore{}
	verifier := &fakeVerifier{identity: GoogleIdentity{
		Email:         "ada@example.com",
		EmailVerified: true,
	}}
	svc := newTestGoogleService(users, verifier)

	pair, err := svc.SignIn(context.Background(), GoogleSignInInput{
		IDToken: "token",
		Role:    models.RolePolicyMaker,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RolePolicyMaker, pair.User.Role)
}

func TestGoogleSignInRejectsUnknownRole(t *testing.T) {
	verifier := &fakeVerifier{identity: GoogleIdentity{
		Email:         "ada@example.com",
		EmailVerified: true,
	}}
	svc := newTestGoogleService(&fakeUserStore{}, verifier)

	_, err := svc.SignIn(context.Background(), GoogleSignInInput{
		IDToken: "token",
		Role:    "superhero",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestGoogleSignInReusesExistingAccount(t *testing.T) {
	users := &fakeUserStore{}
	users.users = append(users.users, models.User{
		ID:        "u1",
		Username:  "ada-pharmacist",
		Email:     "ada@example.com",
		Role:      models.RolePharmacist,
		FirstName: "A.",
	})
	verifier := &fakeVerifier{identity: GoogleIdentity{
		Email:         "ada@example.com",
		EmailVerified: true,
		GivenName:     "Ada",
		FamilyName:    "Olawale",
	}}
	svc := newTestGoogleService(users, verifier)

	pair, err := svc.SignIn(context.Background(), GoogleSignInInput{IDToken: "token"})
	require.NoError(t, err)

	assert.Equal(t, "u1", pair.User.ID)
	assert.Len(t, users.users, 1)

	// Profile names sync opportunistically from the provider.
	assert.Equal(t, "Ada", users.users[0].FirstName)
	assert.Equal(t, "Olawale", users.users[0].LastName)
}

func TestGoogleSignInAmbiguousWithoutRole(t *testing.T) {
	users := &fakeUserStore{}
	users.users = append(users.users,
		models.User{ID: "u1", Username: "ada-pharmacist", Email: "ada@example.com", Role: models.RolePharmacist},
		models.User{ID: "u2", Username: "ada-policy-maker", Email: "ada@example.com", Role: models.RolePolicyMaker},
	)
	verifier := &fakeVerifier{identity: GoogleIdentity{
		Email:         "ada@example.com",
		EmailVerified: true,
	}}
	svc := newTestGoogleService(users, verifier)

	_, err := svc.SignIn(context.Background(), GoogleSignInInput{IDToken: "token"})
	assert.ErrorIs(t, err, ErrAmbiguousAccount)
}

package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"healteex/api/internal/ids"
	"healteex/api/internal/models"
	"healteex/api/internal/repository"
)

var (
	ErrFederationDisabled = errors.New("google sign-in is not configured")
	// ErrInvalidGoogleToken collapses verification, network and claim errors
	// into one class.
	ErrInvalidGoogleToken = errors.New("invalid google token")
	ErrEmailNotVerified   = errors.New("google account email is not verified")
	ErrRoleConflict       = errors.New("account exists with a different role, use password login")
)

// GoogleIdentity is the subset of a verified ID-token payload the adapter
// consumes.
type GoogleIdentity struct {
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
}

// IdentityVerifier checks an ID-token assertion against the provider's keys
// and expected audience.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (GoogleIdentity, error)
}

type GoogleService struct {
	users    userStore
	verifier IdentityVerifier
	auth     *AuthService
	log      zerolog.Logger
}

// NewGoogleService takes a nil verifier when federation is unconfigured; sign
// in then fails with ErrFederationDisabled.
func NewGoogleService(users *repository.UserRepository, verifier IdentityVerifier, auth *AuthService, log zerolog.Logger) *GoogleService {
	return &GoogleService{
		users:    users,
		verifier: verifier,
		auth:     auth,
		log:      log,
	}
}

type GoogleSignInInput struct {
	IDToken    string
	RememberMe bool
	Role       models.Role
}

// SignIn verifies the assertion, reconciles it against local accounts
// (creating one when needed) and issues credentials. Federation never
// changes an existing account's role.
func (s *GoogleService) SignIn(ctx context.Context, input GoogleSignInInput) (CredentialPair, error) {
	if s.verifier == nil {
		return CredentialPair{}, ErrFederationDisabled
	}

	identity, err := s.verifier.Verify(ctx, input.IDToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("google token verification failed")
		return CredentialPair{}, ErrInvalidGoogleToken
	}
	if !identity.EmailVerified {
		return CredentialPair{}, ErrEmailNotVerified
	}
	if identity.Email == "" {
		return CredentialPair{}, ErrInvalidGoogleToken
	}

	user, found, err := s.resolveUser(ctx, identity.Email, input.Role)
	if err != nil {
		return CredentialPair{}, err
	}

	if !found {
		user, err = s.createFederatedUser(ctx, identity, input.Role)
		if err != nil {
			return CredentialPair{}, err
		}
	} else {
		if input.Role != "" && user.Role != input.Role {
			return CredentialPair{}, ErrRoleConflict
		}
		user = s.syncNames(ctx, user, identity)
	}

	return s.auth.IssueCredentials(user, input.RememberMe)
}

func (s *GoogleService) resolveUser(ctx context.Context, email string, role models.Role) (models.User, bool, error) {
	if role != "" {
		user, err := s.users.FindByEmailAndRole(ctx, email, role)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return models.User{}, false, nil
			}
			return models.User{}, false, err
		}
		return user, true, nil
	}

	matches, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return models.User{}, false, err
	}
	switch len(matches) {
	case 0:
		return models.User{}, false, nil
	case 1:
		return matches[0], true, nil
	default:
		return models.User{}, false, ErrAmbiguousAccount
	}
}

func (s *GoogleService) createFederatedUser(ctx context.Context, identity GoogleIdentity, requested models.Role) (models.User, error) {
	role := requested
	if role == "" {
		role = models.RolePharmacist // lowest privilege
	}
	if !role.Valid() {
		return models.User{}, ErrInvalidRole
	}

	username, err := allocateUsername(ctx, s.users, identity.Email, role)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:            ids.New(),
		Username:      username,
		Email:         identity.Email,
		Role:          role,
		FirstName:     identity.GivenName,
		LastName:      identity.FamilyName,
		PasswordState: models.PasswordStateDisabled,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			// Lost a race with a concurrent signup; the insert is the
			// authority for (email, role) uniqueness.
			return models.User{}, ErrAccountExists
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *GoogleService) syncNames(ctx context.Context, user models.User, identity GoogleIdentity) models.User {
	updated := false
	if identity.GivenName != "" && user.FirstName != identity.GivenName {
		user.FirstName = identity.GivenName
		updated = true
	}
	if identity.FamilyName != "" && user.LastName != identity.FamilyName {
		user.LastName = identity.FamilyName
		updated = true
	}
	if !updated {
		return user
	}

	if err := s.users.UpdateNames(ctx, user.ID, user.FirstName, user.LastName); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("federated name sync failed")
	}
	return user
}

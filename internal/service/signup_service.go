package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"healteex/api/internal/config"
	"healteex/api/internal/ids"
	"healteex/api/internal/mailer"
	"healteex/api/internal/models"
	"healteex/api/internal/repository"
	"healteex/api/internal/security"
)

var (
	// ErrActiveTokenExists throttles repeat requests while a token is live.
	ErrActiveTokenExists = errors.New("a verification email has already been sent")
	// ErrInvalidSignupToken covers missing, expired and used tokens alike so
	// the API never leaks whether a token string exists.
	ErrInvalidSignupToken = errors.New("invalid or expired token")
	ErrAccountExists      = errors.New("an account already exists for this email and role")
	ErrInvalidRole        = errors.New("unsupported role")
)

type signupTokenStore interface {
	Create(ctx context.Context, token models.SignupToken) error
	GetByToken(ctx context.Context, tokenStr string) (models.SignupToken, error)
	HasActive(ctx context.Context, email string, role models.Role, now time.Time) (bool, error)
	MarkUsed(ctx context.Context, id string) error
}

type SignupService struct {
	tokens signupTokenStore
	users  userStore
	auth   *AuthService
	mail   mailer.Mailer
	cfg    *config.AppConfig
	log    zerolog.Logger
	now    func() time.Time
}

func NewSignupService(
	tokens *repository.SignupTokenRepository,
	users *repository.UserRepository,
	auth *AuthService,
	mail mailer.Mailer,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *SignupService {
	return &SignupService{
		tokens: tokens,
		users:  users,
		auth:   auth,
		mail:   mail,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// RequestSignup issues a fresh token for (email, role) and hands it to the
// mailer. Delivery is best-effort: a failed send is logged and the request
// still succeeds, so the endpoint never reveals whether an address is
// deliverable.
func (s *SignupService) RequestSignup(ctx context.Context, email string, role models.Role) (models.SignupToken, error) {
	email = strings.TrimSpace(email)
	if !role.Valid() {
		return models.SignupToken{}, ErrInvalidRole
	}

	active, err := s.tokens.HasActive(ctx, email, role, s.now())
	if err != nil {
		return models.SignupToken{}, err
	}
	if active {
		return models.SignupToken{}, ErrActiveTokenExists
	}

	tokenStr, err := security.NewSignupToken()
	if err != nil {
		return models.SignupToken{}, err
	}

	token := models.SignupToken{
		ID:        ids.New(),
		Email:     email,
		Role:      role,
		Token:     tokenStr,
		ExpiresAt: s.now().Add(s.cfg.Signup.TokenLifetime),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return models.SignupToken{}, err
	}

	lifetimeMinutes := int(s.cfg.Signup.TokenLifetime.Minutes())
	if err := s.mail.SendSignupToken(ctx, email, tokenStr, string(role), lifetimeMinutes); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("signup mail delivery failed")
	}

	return token, nil
}

type VerifySignupInput struct {
	Token      string
	Password   string
	FirstName  string
	LastName   string
	RememberMe bool
}

// VerifySignup exchanges a valid token for a new account plus credentials.
// User insertion and token consumption happen in one transaction; a token
// matching an existing account is burned before the rejection to block
// replays.
func (s *SignupService) VerifySignup(ctx context.Context, input VerifySignupInput) (CredentialPair, error) {
	token, err := s.tokens.GetByToken(ctx, input.Token)
	if err != nil {
		if errors.Is(err, repository.ErrSignupTokenNotFound) {
			return CredentialPair{}, ErrInvalidSignupToken
		}
		return CredentialPair{}, err
	}
	if !token.IsValid(s.now()) {
		return CredentialPair{}, ErrInvalidSignupToken
	}

	exists, err := s.users.ExistsByEmailAndRole(ctx, token.Email, token.Role)
	if err != nil {
		return CredentialPair{}, err
	}
	if exists {
		if err := s.tokens.MarkUsed(ctx, token.ID); err != nil {
			s.log.Error().Err(err).Str("token_id", token.ID).Msg("mark token used failed")
		}
		return CredentialPair{}, ErrAccountExists
	}

	user := models.User{
		ID:            ids.New(),
		Email:         token.Email,
		Role:          token.Role,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		PasswordState: models.PasswordStateDisabled,
	}
	if input.Password != "" {
		hash, err := security.HashPassword(input.Password)
		if err != nil {
			return CredentialPair{}, err
		}
		user.PasswordHash = hash
		user.PasswordState = models.PasswordStateSet
	}

	// The allocator is advisory; the unique index decides. Retry with the
	// next suffix when a concurrent signup wins the same candidate.
	for attempt := 0; ; attempt++ {
		username, err := allocateUsername(ctx, s.users, token.Email, token.Role)
		if err != nil {
			return CredentialPair{}, err
		}
		user.Username = username

		err = s.users.CreateFromSignupToken(ctx, user, token.ID)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateUser) {
			if markErr := s.tokens.MarkUsed(ctx, token.ID); markErr != nil {
				s.log.Error().Err(markErr).Str("token_id", token.ID).Msg("mark token used failed")
			}
			return CredentialPair{}, ErrAccountExists
		}
		if errors.Is(err, repository.ErrUsernameTaken) && attempt < 3 {
			continue
		}
		return CredentialPair{}, err
	}

	return s.auth.IssueCredentials(user, input.RememberMe)
}

// allocateUsername derives "<local-part>-<role-slug>" and appends -2, -3, …
// until an unused candidate turns up. The result is a best-effort suggestion,
// not a reservation.
func allocateUsername(ctx context.Context, users userStore, email string, role models.Role) (string, error) {
	local := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	if local == "" {
		local = "user"
	}
	base := local + "-" + role.Slug()

	candidate := base
	for counter := 2; ; counter++ {
		taken, err := users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

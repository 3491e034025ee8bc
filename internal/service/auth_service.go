package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"healteex/api/internal/config"
	"healteex/api/internal/models"
	"healteex/api/internal/repository"
	"healteex/api/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("no user found with this email")
	ErrAmbiguousAccount   = errors.New("multiple accounts match this email, specify the role")
	ErrRefreshInvalid     = errors.New("refresh token invalid or expired")
)

type userStore interface {
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) ([]models.User, error)
	FindByEmailAndRole(ctx context.Context, email string, role models.Role) (models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	ExistsByEmailAndRole(ctx context.Context, email string, role models.Role) (bool, error)
	Create(ctx context.Context, user models.User) error
	CreateFromSignupToken(ctx context.Context, user models.User, tokenID string) error
	UpdateNames(ctx context.Context, id string, firstName string, lastName string) error
}

type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type AuthService struct {
	users userStore
	cache redisCommander
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewAuthService(users *repository.UserRepository, cache *redis.Client, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users: users,
		cache: cache,
		cfg:   cfg,
		log:   log,
	}
}

// UserSummary is the denormalized snapshot carried in credential payloads.
// It is recomputed from the user row at every issuance, never cached.
type UserSummary struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
}

type CredentialPair struct {
	Refresh    string      `json:"refresh"`
	Access     string      `json:"access"`
	TokenType  string      `json:"token_type"`
	ExpiresIn  int         `json:"expires_in"`
	RememberMe bool        `json:"remember_me"`
	User       UserSummary `json:"user"`
}

// IssueCredentials mints a refresh/access pair. Remember-me extends only the
// refresh lifetime; access TTL is fixed.
func (s *AuthService) IssueCredentials(user models.User, rememberMe bool) (CredentialPair, error) {
	refreshTTL := s.cfg.Security.RefreshTTL
	if rememberMe {
		refreshTTL = s.cfg.Security.RememberMeRefreshTTL
	}

	refresh, err := security.GenerateRefreshToken(s.cfg.Security.JWTSecret, user.ID, string(user.Role), rememberMe, refreshTTL)
	if err != nil {
		return CredentialPair{}, err
	}

	access, err := security.GenerateAccessToken(s.cfg.Security.JWTSecret, user.ID, string(user.Role), s.cfg.Security.AccessTTL)
	if err != nil {
		return CredentialPair{}, err
	}

	return CredentialPair{
		Refresh:    refresh,
		Access:     access,
		TokenType:  "Bearer",
		ExpiresIn:  int(s.cfg.Security.AccessTTL.Seconds()),
		RememberMe: rememberMe,
		User: UserSummary{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			Role:      user.Role,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
	}, nil
}

type LoginInput struct {
	Username   string
	Email      string
	Password   string
	Role       models.Role
	RememberMe bool
}

// LoginPassword resolves the account by username, or by email with optional
// role disambiguation, then verifies the password.
func (s *AuthService) LoginPassword(ctx context.Context, input LoginInput) (CredentialPair, error) {
	user, err := s.resolveLoginUser(ctx, input)
	if err != nil {
		return CredentialPair{}, err
	}

	if err := s.checkPassword(user, input.Password); err != nil {
		return CredentialPair{}, err
	}

	return s.IssueCredentials(user, input.RememberMe)
}

func (s *AuthService) resolveLoginUser(ctx context.Context, input LoginInput) (models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		user, err := s.users.FindByUsername(ctx, strings.TrimSpace(input.Username))
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return models.User{}, ErrInvalidCredentials
			}
			return models.User{}, err
		}
		return user, nil
	}

	if input.Role != "" {
		user, err := s.users.FindByEmailAndRole(ctx, email, input.Role)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return models.User{}, ErrAccountNotFound
			}
			return models.User{}, err
		}
		return user, nil
	}

	matches, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	switch len(matches) {
	case 0:
		return models.User{}, ErrAccountNotFound
	case 1:
		return matches[0], nil
	default:
		return models.User{}, ErrAmbiguousAccount
	}
}

func (s *AuthService) checkPassword(user models.User, password string) error {
	// Accounts without a usable password authenticate via federation only.
	if password == "" || !user.HasUsablePassword() {
		return ErrInvalidCredentials
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("password verify failed")
		return ErrInvalidCredentials
	}
	if !ok {
		return ErrInvalidCredentials
	}
	return nil
}

// Refresh rotates a valid refresh token into a fresh credential pair. The
// user snapshot is reloaded so role or name changes show up immediately.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (CredentialPair, error) {
	claims, err := security.ParseRefreshToken(refreshToken, s.cfg.Security.JWTSecret)
	if err != nil {
		return CredentialPair{}, ErrRefreshInvalid
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return CredentialPair{}, ErrRefreshInvalid
		}
		return CredentialPair{}, err
	}

	return s.IssueCredentials(user, claims.RememberMe)
}

// VerifyToken reports whether a token of either type is currently valid.
func (s *AuthService) VerifyToken(tokenStr string) error {
	if _, err := security.ParseToken(tokenStr, s.cfg.Security.JWTSecret); err != nil {
		return ErrRefreshInvalid
	}
	return nil
}

// AllocateUsername exposes the signup allocator for administrative account
// creation.
func (s *AuthService) AllocateUsername(ctx context.Context, email string, role models.Role) (string, error) {
	return allocateUsername(ctx, s.users, email, role)
}

const (
	legacyTokenKeyPrefix = "authtoken:token:"
	legacyUserKeyPrefix  = "authtoken:user:"
)

// ObtainLegacyToken implements the old opaque-token login: one stable key per
// user, reused across calls, no expiry.
func (s *AuthService) ObtainLegacyToken(ctx context.Context, username string, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := s.checkPassword(user, password); err != nil {
		return "", err
	}

	existing, err := s.cache.Get(ctx, legacyUserKeyPrefix+user.ID).Result()
	if err == nil && existing != "" {
		return existing, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}

	token, err := security.NewOpaqueToken()
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, legacyTokenKeyPrefix+token, user.ID, 0).Err(); err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, legacyUserKeyPrefix+user.ID, token, 0).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ResolveLegacyToken maps an opaque token back to its user for the auth
// middleware.
func (s *AuthService) ResolveLegacyToken(ctx context.Context, token string) (models.User, error) {
	userID, err := s.cache.Get(ctx, legacyTokenKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	return user, nil
}

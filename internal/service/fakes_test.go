package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"healteex/api/internal/config"
	"healteex/api/internal/models"
	"healteex/api/internal/repository"
)

type fakeUserStore struct {
	users          []models.User
	consumedTokens []string
	tokens         *fakeTokenStore
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) ([]models.User, error) {
	var matches []models.User
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			matches = append(matches, u)
		}
	}
	return matches, nil
}

func (f *fakeUserStore) FindByEmailAndRole(ctx context.Context, email string, role models.Role) (models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) && u.Role == role {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) ExistsByEmailAndRole(ctx context.Context, email string, role models.Role) (bool, error) {
	_, err := f.FindByEmailAndRole(ctx, email, role)
	if err == nil {
		return true, nil
	}
	return false, nil
}

// insert mimics the unique constraints the real table enforces.
func (f *fakeUserStore) insert(user models.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return repository.ErrUsernameTaken
		}
		if strings.EqualFold(u.Email, user.Email) && u.Role == user.Role {
			return repository.ErrDuplicateUser
		}
	}
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserStore) Create(ctx context.Context, user models.User) error {
	return f.insert(user)
}

func (f *fakeUserStore) CreateFromSignupToken(ctx context.Context, user models.User, tokenID string) error {
	if err := f.insert(user); err != nil {
		return err
	}
	f.consumedTokens = append(f.consumedTokens, tokenID)
	if f.tokens != nil {
		if err := f.tokens.MarkUsed(ctx, tokenID); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeUserStore) UpdateNames(ctx context.Context, id string, firstName string, lastName string) error {
	for i, u := range f.users {
		if u.ID == id {
			f.users[i].FirstName = firstName
			f.users[i].LastName = lastName
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type fakeTokenStore struct {
	tokens []models.SignupToken
}

func (f *fakeTokenStore) Create(ctx context.Context, token models.SignupToken) error {
	f.tokens = append(f.tokens, token)
	return nil
}

func (f *fakeTokenStore) GetByToken(ctx context.Context, tokenStr string) (models.SignupToken, error) {
	for _, t := range f.tokens {
		if t.Token == tokenStr {
			return t, nil
		}
	}
	return models.SignupToken{}, repository.ErrSignupTokenNotFound
}

func (f *fakeTokenStore) HasActive(ctx context.Context, email string, role models.Role, now time.Time) (bool, error) {
	for _, t := range f.tokens {
		if strings.EqualFold(t.Email, email) && t.Role == role && t.IsValid(now) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTokenStore) MarkUsed(ctx context.Context, id string) error {
	for i, t := range f.tokens {
		if t.ID == id {
			f.tokens[i].IsUsed = true
			return nil
		}
	}
	return repository.ErrSignupTokenNotFound
}

type fakeRedis struct {
	values map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := f.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.values[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

type recordingMailer struct {
	to      []string
	tokens  []string
	sendErr error
}

func (m *recordingMailer) SendSignupToken(ctx context.Context, to string, token string, role string, expiresInMinutes int) error {
	m.to = append(m.to, to)
	m.tokens = append(m.tokens, token)
	return m.sendErr
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			JWTSecret:            "unit-test-secret",
			AccessTTL:            15 * time.Minute,
			RefreshTTL:           24 * time.Hour,
			RememberMeRefreshTTL: 720 * time.Hour,
		},
		Signup: config.SignupConfig{
			TokenLifetime: 30 * time.Minute,
		},
		Inventory: config.InventoryConfig{
			LowStockDays: 7,
		},
	}
}

func newTestAuthService(users *fakeUserStore, cache *fakeRedis) *AuthService {
	if cache == nil {
		cache = newFakeRedis()
	}
	return &AuthService{
		users: users,
		cache: cache,
		cfg:   testConfig(),
		log:   zerolog.Nop(),
	}
}

func newTestSignupService(tokens *fakeTokenStore, users *fakeUserStore, mail *recordingMailer, now time.Time) *SignupService {
	users.tokens = tokens
	return &SignupService{
		tokens: tokens,
		users:  users,
		auth:   newTestAuthService(users, nil),
		mail:   mail,
		cfg:    testConfig(),
		log:    zerolog.Nop(),
		now:    func() time.Time { return now },
	}
}

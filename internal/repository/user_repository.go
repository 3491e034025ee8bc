package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"healteex/api/internal/database"
	"healteex/api/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken maps the users_username_key violation; the allocator's
	// pre-check is advisory, this insert is the authority.
	ErrUsernameTaken = errors.New("username taken")
	// ErrDuplicateUser maps the users_email_role_key violation.
	ErrDuplicateUser = errors.New("account already exists for email and role")
)

const userColumns = `
	id, username, email, role, first_name, last_name,
	password_hash, password_state, facility_id, created_at, updated_at
`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func mapUserConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return ErrUsernameTaken
		case "users_email_role_key":
			return ErrDuplicateUser
		}
	}
	return err
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.PasswordState,
		&user.FacilityID,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, username, email, role, first_name, last_name,
			password_hash, password_state, facility_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.Role,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.PasswordState,
		user.FacilityID,
	)
	return mapUserConstraint(err)
}

// CreateFromSignupToken inserts the user and consumes the token in one
// transaction, so a crash can never leave a usable token pointing at an
// already-created account.
func (r *UserRepository) CreateFromSignupToken(ctx context.Context, user models.User, tokenID string) error {
	return database.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const insertUser = `
			INSERT INTO users (
				id, username, email, role, first_name, last_name,
				password_hash, password_state, facility_id, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
			)
		`
		if _, err := tx.Exec(ctx, insertUser,
			user.ID,
			user.Username,
			user.Email,
			user.Role,
			user.FirstName,
			user.LastName,
			user.PasswordHash,
			user.PasswordState,
			user.FacilityID,
		); err != nil {
			return mapUserConstraint(err)
		}

		const consumeToken = `UPDATE signup_tokens SET is_used = TRUE WHERE id = $1`
		_, err := tx.Exec(ctx, consumeToken, tokenID)
		return err
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *UserRepository) FindByEmailAndRole(ctx context.Context, email string, role models.Role) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) AND role = $2`
	return scanUser(r.pool.QueryRow(ctx, query, email, role))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) ([]models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users WHERE LOWER(email) = LOWER($1)
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) ExistsByEmailAndRole(ctx context.Context, email string, role models.Role) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND role = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, email, role).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) List(ctx context.Context, limit int, offset int) ([]models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, user models.User) error {
	const query = `
		UPDATE users
		SET username = $2, email = $3, role = $4, first_name = $5, last_name = $6,
		    facility_id = $7, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.Role,
		user.FirstName,
		user.LastName,
		user.FacilityID,
	)
	if err != nil {
		return mapUserConstraint(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateNames(ctx context.Context, id string, firstName string, lastName string) error {
	const query = `
		UPDATE users SET first_name = $2, last_name = $3, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, firstName, lastName)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetPassword(ctx context.Context, id string, hash []byte, state models.PasswordState) error {
	const query = `
		UPDATE users SET password_hash = $2, password_state = $3, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, hash, state)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

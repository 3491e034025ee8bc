package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"healteex/api/internal/models"
)

var ErrIntegrationNotFound = errors.New("integration config not found")

const integrationColumns = `
	id, system_name, base_url, auth_type, credentials, is_active, last_sync_at,
	created_at, updated_at
`

type IntegrationRepository struct {
	pool *pgxpool.Pool
}

func NewIntegrationRepository(pool *pgxpool.Pool) *IntegrationRepository {
	return &IntegrationRepository{pool: pool}
}

func scanIntegration(row pgx.Row) (models.IntegrationConfig, error) {
	var i models.IntegrationConfig
	if err := row.Scan(
		&i.ID,
		&i.SystemName,
		&i.BaseURL,
		&i.AuthType,
		&i.Credentials,
		&i.IsActive,
		&i.LastSyncAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.IntegrationConfig{}, ErrIntegrationNotFound
		}
		return models.IntegrationConfig{}, err
	}
	return i, nil
}

func (r *IntegrationRepository) Create(ctx context.Context, i models.IntegrationConfig) error {
	const query = `
		INSERT INTO integration_configs (
			id, system_name, base_url, auth_type, credentials, is_active, last_sync_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		i.ID, i.SystemName, i.BaseURL, i.AuthType, i.Credentials, i.IsActive, i.LastSyncAt,
	)
	return err
}

// UpsertBySystemName converges on the unique system name; used by the seeder.
func (r *IntegrationRepository) UpsertBySystemName(ctx context.Context, i models.IntegrationConfig) error {
	const query = `
		INSERT INTO integration_configs (
			id, system_name, base_url, auth_type, credentials, is_active, last_sync_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
		ON CONFLICT (system_name) DO UPDATE SET
			base_url = EXCLUDED.base_url,
			auth_type = EXCLUDED.auth_type,
			credentials = EXCLUDED.credentials,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		i.ID, i.SystemName, i.BaseURL, i.AuthType, i.Credentials, i.IsActive, i.LastSyncAt,
	)
	return err
}

func (r *IntegrationRepository) GetByID(ctx context.Context, id string) (models.IntegrationConfig, error) {
	const query = `SELECT ` + integrationColumns + ` FROM integration_configs WHERE id = $1`
	return scanIntegration(r.pool.QueryRow(ctx, query, id))
}

func (r *IntegrationRepository) List(ctx context.Context, limit int, offset int) ([]models.IntegrationConfig, error) {
	const query = `
		SELECT ` + integrationColumns + `
		FROM integration_configs
		ORDER BY system_name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []models.IntegrationConfig
	for rows.Next() {
		i, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, i)
	}
	return configs, rows.Err()
}

// ListActive feeds the hourly sync tick.
func (r *IntegrationRepository) ListActive(ctx context.Context) ([]models.IntegrationConfig, error) {
	const query = `
		SELECT ` + integrationColumns + `
		FROM integration_configs
		WHERE is_active
		ORDER BY system_name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []models.IntegrationConfig
	for rows.Next() {
		i, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, i)
	}
	return configs, rows.Err()
}

func (r *IntegrationRepository) Update(ctx context.Context, i models.IntegrationConfig) error {
	const query = `
		UPDATE integration_configs
		SET system_name = $2, base_url = $3, auth_type = $4, credentials = $5,
		    is_active = $6, last_sync_at = $7, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		i.ID, i.SystemName, i.BaseURL, i.AuthType, i.Credentials, i.IsActive, i.LastSyncAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrIntegrationNotFound
	}
	return nil
}

func (r *IntegrationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM integration_configs WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrIntegrationNotFound
	}
	return nil
}

package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"healteex/api/internal/models"
)

var (
	ErrFacilityNotFound = errors.New("facility not found")
	ErrFacilityCodeTaken = errors.New("facility code taken")
)

const facilityColumns = `
	id, name, code, facility_type, ownership, address, city, state, lga,
	latitude, longitude, contact_email, contact_phone, is_active, created_at, updated_at
`

type FacilityRepository struct {
	pool *pgxpool.Pool
}

func NewFacilityRepository(pool *pgxpool.Pool) *FacilityRepository {
	return &FacilityRepository{pool: pool}
}

func scanFacility(row pgx.Row) (models.Facility, error) {
	var f models.Facility
	if err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Code,
		&f.FacilityType,
		&f.Ownership,
		&f.Address,
		&f.City,
		&f.State,
		&f.LGA,
		&f.Latitude,
		&f.Longitude,
		&f.ContactEmail,
		&f.ContactPhone,
		&f.IsActive,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Facility{}, ErrFacilityNotFound
		}
		return models.Facility{}, err
	}
	return f, nil
}

func mapFacilityConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrFacilityCodeTaken
	}
	return err
}

func (r *FacilityRepository) Create(ctx context.Context, f models.Facility) error {
	const query = `
		INSERT INTO facilities (
			id, name, code, facility_type, ownership, address, city, state, lga,
			latitude, longitude, contact_email, contact_phone, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		f.ID, f.Name, f.Code, f.FacilityType, f.Ownership, f.Address, f.City,
		f.State, f.LGA, f.Latitude, f.Longitude, f.ContactEmail, f.ContactPhone, f.IsActive,
	)
	return mapFacilityConstraint(err)
}

// UpsertByCode converges on the facility code; used by the demo seeder.
func (r *FacilityRepository) UpsertByCode(ctx context.Context, f models.Facility) (models.Facility, error) {
	const query = `
		INSERT INTO facilities (
			id, name, code, facility_type, ownership, address, city, state, lga,
			latitude, longitude, contact_email, contact_phone, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW()
		)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			facility_type = EXCLUDED.facility_type,
			ownership = EXCLUDED.ownership,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			lga = EXCLUDED.lga,
			contact_email = EXCLUDED.contact_email,
			contact_phone = EXCLUDED.contact_phone,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING ` + facilityColumns + `
	`

	return scanFacility(r.pool.QueryRow(ctx, query,
		f.ID, f.Name, f.Code, f.FacilityType, f.Ownership, f.Address, f.City,
		f.State, f.LGA, f.Latitude, f.Longitude, f.ContactEmail, f.ContactPhone, f.IsActive,
	))
}

func (r *FacilityRepository) GetByID(ctx context.Context, id string) (models.Facility, error) {
	const query = `SELECT ` + facilityColumns + ` FROM facilities WHERE id = $1`
	return scanFacility(r.pool.QueryRow(ctx, query, id))
}

func (r *FacilityRepository) List(ctx context.Context, limit int, offset int) ([]models.Facility, error) {
	const query = `
		SELECT ` + facilityColumns + `
		FROM facilities
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facilities []models.Facility
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		facilities = append(facilities, f)
	}
	return facilities, rows.Err()
}

func (r *FacilityRepository) Update(ctx context.Context, f models.Facility) error {
	const query = `
		UPDATE facilities
		SET name = $2, code = $3, facility_type = $4, ownership = $5, address = $6,
		    city = $7, state = $8, lga = $9, latitude = $10, longitude = $11,
		    contact_email = $12, contact_phone = $13, is_active = $14, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		f.ID, f.Name, f.Code, f.FacilityType, f.Ownership, f.Address, f.City,
		f.State, f.LGA, f.Latitude, f.Longitude, f.ContactEmail, f.ContactPhone, f.IsActive,
	)
	if err != nil {
		return mapFacilityConstraint(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrFacilityNotFound
	}
	return nil
}

// Delete removes the facility; users referencing it are detached by the
// ON DELETE SET NULL constraint, never cascaded.
func (r *FacilityRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM facilities WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrFacilityNotFound
	}
	return nil
}

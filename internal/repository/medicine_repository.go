package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"healteex/api/internal/models"
)

var ErrMedicineNotFound = errors.New("medicine not found")

const medicineColumns = `
	id, name, generic_name, category, atc_code, pack_size, unit,
	description, is_active, created_at, updated_at
`

type MedicineRepository struct {
	pool *pgxpool.Pool
}

func NewMedicineRepository(pool *pgxpool.Pool) *MedicineRepository {
	return &MedicineRepository{pool: pool}
}

func scanMedicine(row pgx.Row) (models.Medicine, error) {
	var m models.Medicine
	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.GenericName,
		&m.Category,
		&m.ATCCode,
		&m.PackSize,
		&m.Unit,
		&m.Description,
		&m.IsActive,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Medicine{}, ErrMedicineNotFound
		}
		return models.Medicine{}, err
	}
	return m, nil
}

func (r *MedicineRepository) Create(ctx context.Context, m models.Medicine) error {
	const query = `
		INSERT INTO medicines (
			id, name, generic_name, category, atc_code, pack_size, unit,
			description, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.Name, m.GenericName, m.Category, m.ATCCode,
		m.PackSize, m.Unit, m.Description, m.IsActive,
	)
	return err
}

// UpsertByName converges on (name, pack_size, unit); used by the demo seeder.
func (r *MedicineRepository) UpsertByName(ctx context.Context, m models.Medicine) (models.Medicine, error) {
	const query = `
		INSERT INTO medicines (
			id, name, generic_name, category, atc_code, pack_size, unit,
			description, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
		ON CONFLICT (name, pack_size, unit) DO UPDATE SET
			generic_name = EXCLUDED.generic_name,
			category = EXCLUDED.category,
			atc_code = EXCLUDED.atc_code,
			description = EXCLUDED.description,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING ` + medicineColumns + `
	`

	return scanMedicine(r.pool.QueryRow(ctx, query,
		m.ID, m.Name, m.GenericName, m.Category, m.ATCCode,
		m.PackSize, m.Unit, m.Description, m.IsActive,
	))
}

func (r *MedicineRepository) GetByID(ctx context.Context, id string) (models.Medicine, error) {
	const query = `SELECT ` + medicineColumns + ` FROM medicines WHERE id = $1`
	return scanMedicine(r.pool.QueryRow(ctx, query, id))
}

func (r *MedicineRepository) List(ctx context.Context, limit int, offset int) ([]models.Medicine, error) {
	const query = `
		SELECT ` + medicineColumns + `
		FROM medicines
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var medicines []models.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		medicines = append(medicines, m)
	}
	return medicines, rows.Err()
}

func (r *MedicineRepository) Update(ctx context.Context, m models.Medicine) error {
	const query = `
		UPDATE medicines
		SET name = $2, generic_name = $3, category = $4, atc_code = $5,
		    pack_size = $6, unit = $7, description = $8, is_active = $9, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		m.ID, m.Name, m.GenericName, m.Category, m.ATCCode,
		m.PackSize, m.Unit, m.Description, m.IsActive,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMedicineNotFound
	}
	return nil
}

func (r *MedicineRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM medicines WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMedicineNotFound
	}
	return nil
}

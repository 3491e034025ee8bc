package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"healteex/api/internal/models"
)

var ErrAlertNotFound = errors.New("alert not found")

const alertColumns = `
	id, facility_id, medicine_id, alert_type, status, message, triggered_at,
	resolved_at, resolved_by, created_at, updated_at
`

type AlertRepository struct {
	pool *pgxpool.Pool
}

func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

func scanAlert(row pgx.Row) (models.Alert, error) {
	var a models.Alert
	if err := row.Scan(
		&a.ID,
		&a.FacilityID,
		&a.MedicineID,
		&a.AlertType,
		&a.Status,
		&a.Message,
		&a.TriggeredAt,
		&a.ResolvedAt,
		&a.ResolvedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Alert{}, ErrAlertNotFound
		}
		return models.Alert{}, err
	}
	return a, nil
}

func (r *AlertRepository) Create(ctx context.Context, a models.Alert) error {
	const query = `
		INSERT INTO alerts (
			id, facility_id, medicine_id, alert_type, status, message, triggered_at,
			resolved_at, resolved_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.FacilityID, a.MedicineID, a.AlertType, a.Status, a.Message,
		a.TriggeredAt, a.ResolvedAt, a.ResolvedBy,
	)
	return err
}

// Upsert converges on (facility, medicine, type, triggered_at); used by the
// seeder.
func (r *AlertRepository) Upsert(ctx context.Context, a models.Alert) error {
	const query = `
		INSERT INTO alerts (
			id, facility_id, medicine_id, alert_type, status, message, triggered_at,
			resolved_at, resolved_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
		ON CONFLICT (facility_id, medicine_id, alert_type, triggered_at) DO UPDATE SET
			status = EXCLUDED.status,
			message = EXCLUDED.message,
			resolved_at = EXCLUDED.resolved_at,
			resolved_by = EXCLUDED.resolved_by,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.FacilityID, a.MedicineID, a.AlertType, a.Status, a.Message,
		a.TriggeredAt, a.ResolvedAt, a.ResolvedBy,
	)
	return err
}

// HasOpen guards the stock scan against stacking duplicate alerts for the
// same pair and type.
func (r *AlertRepository) HasOpen(ctx context.Context, facilityID string, medicineID string, alertType models.AlertType) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE facility_id = $1 AND medicine_id = $2 AND alert_type = $3 AND status = 'open'
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, facilityID, medicineID, alertType).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *AlertRepository) GetByID(ctx context.Context, id string) (models.Alert, error) {
	const query = `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	return scanAlert(r.pool.QueryRow(ctx, query, id))
}

func (r *AlertRepository) List(ctx context.Context, limit int, offset int) ([]models.Alert, error) {
	const query = `
		SELECT ` + alertColumns + `
		FROM alerts
		ORDER BY triggered_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *AlertRepository) Update(ctx context.Context, a models.Alert) error {
	const query = `
		UPDATE alerts
		SET facility_id = $2, medicine_id = $3, alert_type = $4, status = $5,
		    message = $6, triggered_at = $7, resolved_at = $8, resolved_by = $9,
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		a.ID, a.FacilityID, a.MedicineID, a.AlertType, a.Status, a.Message,
		a.TriggeredAt, a.ResolvedAt, a.ResolvedBy,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func (r *AlertRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM alerts WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

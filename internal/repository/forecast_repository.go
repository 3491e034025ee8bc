package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"healteex/api/internal/models"
)

var ErrForecastNotFound = errors.New("forecast not found")

const forecastColumns = `
	id, facility_id, medicine_id, forecast_date, period_start, period_end,
	predicted_demand, confidence_interval_lower, confidence_interval_upper,
	model_version, created_at, updated_at
`

type ForecastRepository struct {
	pool *pgxpool.Pool
}

func NewForecastRepository(pool *pgxpool.Pool) *ForecastRepository {
	return &ForecastRepository{pool: pool}
}

func scanForecast(row pgx.Row) (models.Forecast, error) {
	var f models.Forecast
	if err := row.Scan(
		&f.ID,
		&f.FacilityID,
		&f.MedicineID,
		&f.ForecastDate,
		&f.PeriodStart,
		&f.PeriodEnd,
		&f.PredictedDemand,
		&f.ConfidenceIntervalLower,
		&f.ConfidenceIntervalUpper,
		&f.ModelVersion,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Forecast{}, ErrForecastNotFound
		}
		return models.Forecast{}, err
	}
	return f, nil
}

func (r *ForecastRepository) Create(ctx context.Context, f models.Forecast) error {
	const query = `
		INSERT INTO forecasts (
			id, facility_id, medicine_id, forecast_date, period_start, period_end,
			predicted_demand, confidence_interval_lower, confidence_interval_upper,
			model_version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		f.ID, f.FacilityID, f.MedicineID, f.ForecastDate, f.PeriodStart, f.PeriodEnd,
		f.PredictedDemand, f.ConfidenceIntervalLower, f.ConfidenceIntervalUpper, f.ModelVersion,
	)
	return err
}

// Upsert converges on the forecast natural key; used by the seeder.
func (r *ForecastRepository) Upsert(ctx context.Context, f models.Forecast) error {
	const query = `
		INSERT INTO forecasts (
			id, facility_id, medicine_id, forecast_date, period_start, period_end,
			predicted_demand, confidence_interval_lower, confidence_interval_upper,
			model_version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW()
		)
		ON CONFLICT (facility_id, medicine_id, forecast_date, period_start, period_end, model_version)
		DO UPDATE SET
			predicted_demand = EXCLUDED.predicted_demand,
			confidence_interval_lower = EXCLUDED.confidence_interval_lower,
			confidence_interval_upper = EXCLUDED.confidence_interval_upper,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		f.ID, f.FacilityID, f.MedicineID, f.ForecastDate, f.PeriodStart, f.PeriodEnd,
		f.PredictedDemand, f.ConfidenceIntervalLower, f.ConfidenceIntervalUpper, f.ModelVersion,
	)
	return err
}

func (r *ForecastRepository) GetByID(ctx context.Context, id string) (models.Forecast, error) {
	const query = `SELECT ` + forecastColumns + ` FROM forecasts WHERE id = $1`
	return scanForecast(r.pool.QueryRow(ctx, query, id))
}

func (r *ForecastRepository) List(ctx context.Context, limit int, offset int) ([]models.Forecast, error) {
	const query = `
		SELECT ` + forecastColumns + `
		FROM forecasts
		ORDER BY forecast_date DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forecasts []models.Forecast
	for rows.Next() {
		f, err := scanForecast(rows)
		if err != nil {
			return nil, err
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, rows.Err()
}

func (r *ForecastRepository) Update(ctx context.Context, f models.Forecast) error {
	const query = `
		UPDATE forecasts
		SET facility_id = $2, medicine_id = $3, forecast_date = $4, period_start = $5,
		    period_end = $6, predicted_demand = $7, confidence_interval_lower = $8,
		    confidence_interval_upper = $9, model_version = $10, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		f.ID, f.FacilityID, f.MedicineID, f.ForecastDate, f.PeriodStart, f.PeriodEnd,
		f.PredictedDemand, f.ConfidenceIntervalLower, f.ConfidenceIntervalUpper, f.ModelVersion,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrForecastNotFound
	}
	return nil
}

func (r *ForecastRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM forecasts WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrForecastNotFound
	}
	return nil
}

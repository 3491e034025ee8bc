package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"healteex/api/internal/models"
)

var ErrSnapshotNotFound = errors.New("stock snapshot not found")

const snapshotColumns = `
	id, facility_id, medicine_id, stock_on_hand, days_of_stock, data_source,
	recorded_at, created_at, updated_at
`

type SnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

func scanSnapshot(row pgx.Row) (models.StockSnapshot, error) {
	var s models.StockSnapshot
	if err := row.Scan(
		&s.ID,
		&s.FacilityID,
		&s.MedicineID,
		&s.StockOnHand,
		&s.DaysOfStock,
		&s.DataSource,
		&s.RecordedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.StockSnapshot{}, ErrSnapshotNotFound
		}
		return models.StockSnapshot{}, err
	}
	return s, nil
}

func (r *SnapshotRepository) Create(ctx context.Context, s models.StockSnapshot) error {
	const query = `
		INSERT INTO stock_snapshots (
			id, facility_id, medicine_id, stock_on_hand, days_of_stock, data_source,
			recorded_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.FacilityID, s.MedicineID, s.StockOnHand, s.DaysOfStock,
		s.DataSource, s.RecordedAt,
	)
	return err
}

// Upsert converges on (facility, medicine, recorded_at); used by the seeder.
func (r *SnapshotRepository) Upsert(ctx context.Context, s models.StockSnapshot) error {
	const query = `
		INSERT INTO stock_snapshots (
			id, facility_id, medicine_id, stock_on_hand, days_of_stock, data_source,
			recorded_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
		ON CONFLICT (facility_id, medicine_id, recorded_at) DO UPDATE SET
			stock_on_hand = EXCLUDED.stock_on_hand,
			days_of_stock = EXCLUDED.days_of_stock,
			data_source = EXCLUDED.data_source,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.FacilityID, s.MedicineID, s.StockOnHand, s.DaysOfStock,
		s.DataSource, s.RecordedAt,
	)
	return err
}

func (r *SnapshotRepository) GetByID(ctx context.Context, id string) (models.StockSnapshot, error) {
	const query = `SELECT ` + snapshotColumns + ` FROM stock_snapshots WHERE id = $1`
	return scanSnapshot(r.pool.QueryRow(ctx, query, id))
}

func (r *SnapshotRepository) List(ctx context.Context, limit int, offset int) ([]models.StockSnapshot, error) {
	const query = `
		SELECT ` + snapshotColumns + `
		FROM stock_snapshots
		ORDER BY recorded_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.queryMany(ctx, query, limit, offset)
}

// Latest returns the most recent snapshot per (facility, medicine) pair,
// feeding the daily stock scan.
func (r *SnapshotRepository) Latest(ctx context.Context) ([]models.StockSnapshot, error) {
	const query = `
		SELECT DISTINCT ON (facility_id, medicine_id) ` + snapshotColumns + `
		FROM stock_snapshots
		ORDER BY facility_id, medicine_id, recorded_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

func (r *SnapshotRepository) queryMany(ctx context.Context, query string, args ...any) ([]models.StockSnapshot, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

func collectSnapshots(rows pgx.Rows) ([]models.StockSnapshot, error) {
	var snapshots []models.StockSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

func (r *SnapshotRepository) Update(ctx context.Context, s models.StockSnapshot) error {
	const query = `
		UPDATE stock_snapshots
		SET facility_id = $2, medicine_id = $3, stock_on_hand = $4, days_of_stock = $5,
		    data_source = $6, recorded_at = $7, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		s.ID, s.FacilityID, s.MedicineID, s.StockOnHand, s.DaysOfStock,
		s.DataSource, s.RecordedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM stock_snapshots WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

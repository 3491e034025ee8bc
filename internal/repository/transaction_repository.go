package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"healteex/api/internal/models"
)

var ErrTransactionNotFound = errors.New("transaction not found")

const transactionColumns = `
	id, facility_id, medicine_id, transaction_type, quantity, batch_number,
	expiry_date, source_destination, reference, notes, occurred_at, recorded_at,
	created_by, created_at, updated_at
`

type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func scanTransaction(row pgx.Row) (models.InventoryTransaction, error) {
	var t models.InventoryTransaction
	if err := row.Scan(
		&t.ID,
		&t.FacilityID,
		&t.MedicineID,
		&t.TransactionType,
		&t.Quantity,
		&t.BatchNumber,
		&t.ExpiryDate,
		&t.SourceDestination,
		&t.Reference,
		&t.Notes,
		&t.OccurredAt,
		&t.RecordedAt,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.InventoryTransaction{}, ErrTransactionNotFound
		}
		return models.InventoryTransaction{}, err
	}
	return t, nil
}

func (r *TransactionRepository) Create(ctx context.Context, t models.InventoryTransaction) error {
	const query = `
		INSERT INTO inventory_transactions (
			id, facility_id, medicine_id, transaction_type, quantity, batch_number,
			expiry_date, source_destination, reference, notes, occurred_at, recorded_at,
			created_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), $12, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.FacilityID, t.MedicineID, t.TransactionType, t.Quantity,
		t.BatchNumber, t.ExpiryDate, t.SourceDestination, t.Reference, t.Notes,
		t.OccurredAt, t.CreatedBy,
	)
	return err
}

// Upsert converges on (facility, medicine, type, occurred_at); used by the
// seeder.
func (r *TransactionRepository) Upsert(ctx context.Context, t models.InventoryTransaction) error {
	const query = `
		INSERT INTO inventory_transactions (
			id, facility_id, medicine_id, transaction_type, quantity, batch_number,
			expiry_date, source_destination, reference, notes, occurred_at, recorded_at,
			created_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), $12, NOW(), NOW()
		)
		ON CONFLICT (facility_id, medicine_id, transaction_type, occurred_at) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			batch_number = EXCLUDED.batch_number,
			expiry_date = EXCLUDED.expiry_date,
			source_destination = EXCLUDED.source_destination,
			reference = EXCLUDED.reference,
			notes = EXCLUDED.notes,
			created_by = EXCLUDED.created_by,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.FacilityID, t.MedicineID, t.TransactionType, t.Quantity,
		t.BatchNumber, t.ExpiryDate, t.SourceDestination, t.Reference, t.Notes,
		t.OccurredAt, t.CreatedBy,
	)
	return err
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (models.InventoryTransaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM inventory_transactions WHERE id = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

func (r *TransactionRepository) List(ctx context.Context, limit int, offset int) ([]models.InventoryTransaction, error) {
	const query = `
		SELECT ` + transactionColumns + `
		FROM inventory_transactions
		ORDER BY occurred_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.InventoryTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *TransactionRepository) Update(ctx context.Context, t models.InventoryTransaction) error {
	const query = `
		UPDATE inventory_transactions
		SET facility_id = $2, medicine_id = $3, transaction_type = $4, quantity = $5,
		    batch_number = $6, expiry_date = $7, source_destination = $8, reference = $9,
		    notes = $10, occurred_at = $11, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		t.ID, t.FacilityID, t.MedicineID, t.TransactionType, t.Quantity,
		t.BatchNumber, t.ExpiryDate, t.SourceDestination, t.Reference, t.Notes,
		t.OccurredAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM inventory_transactions WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"repair-service/src/internal/entity"
	"repair-service/src/pkg/databases/mysql"
)

type ChargeRepository struct {
	DB mysql.DBInterface
}

func NewChargeRepository(db mysql.DBInterface) *ChargeRepository {
	return &ChargeRepository{
		DB: db,
	}
}

const chargeColumns = `
	id, order_id, mechanic_id, items, total_price, scheduled_at, status, charge_ref,
	created_at, updated_at
`

func (r *ChargeRepository) CreateCharge(ctx context.Context, charge *entity.CustomCharge) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO custom_charges (
			id, order_id, mechanic_id, items, total_price, scheduled_at, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.ExecContext(ctx, query,
		charge.ID, charge.OrderID, charge.MechanicID, charge.Items,
		charge.TotalPrice, charge.ScheduledAt, charge.Status,
		charge.CreatedAt, charge.UpdatedAt,
	)
	return err
}

func (r *ChargeRepository) FindChargeByID(ctx context.Context, id string) (*entity.CustomCharge, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var charge entity.CustomCharge
	query := `SELECT ` + chargeColumns + ` FROM custom_charges WHERE id = ?`
	err = db.GetContext(ctx, &charge, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &charge, nil
}

func (r *ChargeRepository) FindChargesByOrder(ctx context.Context, orderID string) ([]entity.CustomCharge, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var charges []entity.CustomCharge
	query := `SELECT ` + chargeColumns + ` FROM custom_charges WHERE order_id = ? ORDER BY created_at ASC`
	err = db.SelectContext(ctx, &charges, query, orderID)
	if err != nil {
		return nil, err
	}
	return charges, nil
}

func (r *ChargeRepository) UpdateChargeStatus(ctx context.Context, chargeID, from, to string, chargeRef *string) (bool, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return false, err
	}

	query := `
		UPDATE custom_charges
		SET status = ?, charge_ref = COALESCE(?, charge_ref), updated_at = NOW()
		WHERE id = ? AND status = ?
	`
	result, err := db.ExecContext(ctx, query, to, chargeRef, chargeID, from)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

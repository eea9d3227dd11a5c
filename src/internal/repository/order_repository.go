package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"repair-service/src/internal/entity"
	"repair-service/src/pkg/databases/mysql"
)

type OrderRepository struct {
	DB mysql.DBInterface
}

func NewOrderRepository(db mysql.DBInterface) *OrderRepository {
	return &OrderRepository{
		DB: db,
	}
}

const orderColumns = `
	id, customer_id, provider_id, status, claim_expires_at,
	items, total_price, latitude, longitude, address, categories, media_refs,
	customer_rating, customer_review, customer_reviewed_at,
	provider_rating, provider_review, provider_reviewed_at,
	created_at, updated_at
`

func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.RepairOrder) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO repair_orders (
			id, customer_id, status, items, total_price,
			latitude, longitude, address, categories, media_refs,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.ExecContext(ctx, query,
		order.ID, order.CustomerID, order.Status, order.Items, order.TotalPrice,
		order.Latitude, order.Longitude, order.Address, order.Categories, order.MediaRefs,
		order.CreatedAt, order.UpdatedAt,
	)
	return err
}

func (r *OrderRepository) FindOneOrder(ctx context.Context, filter entity.OrderFilter) (*entity.RepairOrder, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + orderColumns + ` FROM repair_orders WHERE 1=1`
	args := []interface{}{}
	if filter.OrderID != nil {
		query += ` AND id = ?`
		args = append(args, *filter.OrderID)
	}
	if filter.CustomerID != nil {
		query += ` AND customer_id = ?`
		args = append(args, *filter.CustomerID)
	}
	if filter.ProviderID != nil {
		query += ` AND provider_id = ?`
		args = append(args, *filter.ProviderID)
	}

	var order entity.RepairOrder
	err = db.GetContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) FindOpenOrders(ctx context.Context) ([]entity.RepairOrder, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var orders []entity.RepairOrder
	query := `SELECT ` + orderColumns + ` FROM repair_orders WHERE status = ? ORDER BY created_at ASC`
	err = db.SelectContext(ctx, &orders, query, entity.OrderStatusPending)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) FindOrdersByCustomer(ctx context.Context, customerID string) ([]entity.RepairOrder, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var orders []entity.RepairOrder
	query := `SELECT ` + orderColumns + ` FROM repair_orders WHERE customer_id = ? ORDER BY created_at DESC`
	err = db.SelectContext(ctx, &orders, query, customerID)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) FindOrdersByProvider(ctx context.Context, providerID string) ([]entity.RepairOrder, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var orders []entity.RepairOrder
	query := `SELECT ` + orderColumns + ` FROM repair_orders WHERE provider_id = ? ORDER BY created_at DESC`
	err = db.SelectContext(ctx, &orders, query, providerID)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ClaimOrder grants a time-boxed exclusive claim. The PENDING precondition is
// part of the UPDATE itself, so two racing claimants can never both win.
func (r *OrderRepository) ClaimOrder(ctx context.Context, orderID, providerID string, expiresAt time.Time) (bool, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return false, err
	}

	query := `
		UPDATE repair_orders
		SET status = ?, provider_id = ?, claim_expires_at = ?, updated_at = NOW()
		WHERE id = ? AND status = ? AND provider_id IS NULL
	`
	result, err := db.ExecContext(ctx, query,
		entity.OrderStatusClaimed, providerID, expiresAt.UTC(),
		orderID, entity.OrderStatusPending,
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// AcceptClaim transitions CLAIMED -> ACCEPTED for the claim holder. The
// deadline guard is in the WHERE clause: acceptance after expiry fails
// whether or not a sweep has run yet.
func (r *OrderRepository) AcceptClaim(ctx context.Context, orderID, providerID string, now time.Time) (bool, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return false, err
	}

	query := `
		UPDATE repair_orders
		SET status = ?, claim_expires_at = NULL, updated_at = NOW()
		WHERE id = ? AND status = ? AND provider_id = ? AND claim_expires_at > ?
	`
	result, err := db.ExecContext(ctx, query,
		entity.OrderStatusAccepted,
		orderID, entity.OrderStatusClaimed, providerID, now.UTC(),
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *OrderRepository) ReleaseClaim(ctx context.Context, orderID, providerID string) (bool, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return false, err
	}

	query := `
		UPDATE repair_orders
		SET status = ?, provider_id = NULL, claim_expires_at = NULL, updated_at = NOW()
		WHERE id = ? AND status = ? AND provider_id = ?
	`
	result, err := db.ExecContext(ctx, query,
		entity.OrderStatusPending,
		orderID, entity.OrderStatusClaimed, providerID,
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ReleaseExpiredClaim is the sweep-side release. The extra deadline guard
// means a sweep racing a legitimate accept fails harmlessly.
func (r *OrderRepository) ReleaseExpiredClaim(ctx context.Context, orderID, providerID string, now time.Time) (bool, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return false, err
	}

	query := `
		UPDATE repair_orders
		SET status = ?, provider_id = NULL, claim_expires_at = NULL, updated_at = NOW()
		WHERE id = ? AND status = ? AND provider_id = ? AND claim_expires_at <= ?
	`
	result, err := db.ExecContext(ctx, query,
		entity.OrderStatusPending,
		orderID, entity.OrderStatusClaimed, providerID, now.UTC(),
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *OrderRepository) FindExpiredClaims(ctx context.Context, now time.Time, limit int) ([]entity.RepairOrder, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	var orders []entity.RepairOrder
	query := `
		SELECT ` + orderColumns + `
		FROM repair_orders
		WHERE status = ? AND claim_expires_at <= ?
		ORDER BY claim_expires_at ASC
		LIMIT ?
	`
	err = db.SelectContext(ctx, &orders, query, entity.OrderStatusClaimed, now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatusForProvider(ctx context.Context, orderID, providerID, from, to string) (bool, error) {
	if !ValidTransition(from, to) {
		return false, ErrInvalidTransition
	}

	db, err := r.DB.GetDB()
	if err != nil {
		return false, err
	}

	query := `
		UPDATE repair_orders
		SET status = ?, updated_at = NOW()
		WHERE id = ? AND status = ? AND provider_id = ?
	`
	result, err := db.ExecContext(ctx, query, to, orderID, from, providerID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// CancelOrder is the terminal transition to CANCELLED or
// DECLINED_BY_CUSTOMER. Claim fields are cleared so provider_id stays
// consistent with the status invariant.
func (r *OrderRepository) CancelOrder(ctx context.Context, orderID, from, to string) (bool, error) {
	if !ValidTransition(from, to) {
		return false, ErrInvalidTransition
	}

	db, err := r.DB.GetDB()
	if err != nil {
		return false, err
	}

	query := `
		UPDATE repair_orders
		SET status = ?, provider_id = NULL, claim_expires_at = NULL, updated_at = NOW()
		WHERE id = ? AND status = ?
	`
	result, err := db.ExecContext(ctx, query, to, orderID, from)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *OrderRepository) UpdateItems(ctx context.Context, orderID string, items []byte, totalPrice float64) (bool, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return false, err
	}

	query := `
		UPDATE repair_orders
		SET items = ?, total_price = ?, updated_at = NOW()
		WHERE id = ? AND status IN (?, ?)
	`
	result, err := db.ExecContext(ctx, query, items, totalPrice,
		orderID, entity.OrderStatusPending, entity.OrderStatusClaimed)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// SetRating writes one role's rating exactly once. Eligibility (completed
// order, matching party, rating still unset) is re-checked inside the UPDATE.
func (r *OrderRepository) SetRating(ctx context.Context, orderID, role, partyID string, rating int, review string, now time.Time) (bool, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return false, err
	}

	var query string
	switch role {
	case entity.RoleCustomer:
		query = `
			UPDATE repair_orders
			SET customer_rating = ?, customer_review = ?, customer_reviewed_at = ?, updated_at = NOW()
			WHERE id = ? AND status = ? AND customer_id = ? AND customer_rating IS NULL
		`
	case entity.RoleProvider:
		query = `
			UPDATE repair_orders
			SET provider_rating = ?, provider_review = ?, provider_reviewed_at = ?, updated_at = NOW()
			WHERE id = ? AND status = ? AND provider_id = ? AND provider_rating IS NULL
		`
	default:
		return false, ErrNotEligible
	}

	result, err := db.ExecContext(ctx, query, rating, review, now.UTC(),
		orderID, entity.OrderStatusCompleted, partyID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"repair-service/src/internal/entity"
	"repair-service/src/pkg/databases/mysql"
)

type QuoteRepository struct {
	DB mysql.DBInterface
}

func NewQuoteRepository(db mysql.DBInterface) *QuoteRepository {
	return &QuoteRepository{
		DB: db,
	}
}

const quoteColumns = `
	id, order_id, provider_id, customer_id, amount, message, status, charge_id,
	created_at, updated_at
`

func (r *QuoteRepository) CreateQuote(ctx context.Context, quote *entity.Quote) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO quotes (
			id, order_id, provider_id, customer_id, amount, message, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.ExecContext(ctx, query,
		quote.ID, quote.OrderID, quote.ProviderID, quote.CustomerID,
		quote.Amount, quote.Message, quote.Status,
		quote.CreatedAt, quote.UpdatedAt,
	)
	return err
}

func (r *QuoteRepository) FindQuoteByID(ctx context.Context, id string) (*entity.Quote, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var quote entity.Quote
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = ?`
	err = db.GetContext(ctx, &quote, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) FindQuotesByOrder(ctx context.Context, orderID string) ([]entity.Quote, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var quotes []entity.Quote
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE order_id = ? ORDER BY created_at ASC`
	err = db.SelectContext(ctx, &quotes, query, orderID)
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

// HasAcceptedQuote reports whether the provider already holds an ACCEPTED
// quote on the order, excluding the quote currently being decided.
func (r *QuoteRepository) HasAcceptedQuote(ctx context.Context, orderID, providerID, excludeQuoteID string) (bool, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return false, err
	}

	var count int
	query := `
		SELECT COUNT(1) FROM quotes
		WHERE order_id = ? AND provider_id = ? AND status = ? AND id <> ?
	`
	err = db.GetContext(ctx, &count, query, orderID, providerID, entity.QuoteStatusAccepted, excludeQuoteID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateQuoteStatus is conditioned on the expected prior status so a
// customer decision can never overwrite a concurrent one. A transition to
// ACCEPTED additionally requires that no sibling quote from the same
// provider on the same order is already ACCEPTED; the self-join keeps that
// check inside the single guarded write.
func (r *QuoteRepository) UpdateQuoteStatus(ctx context.Context, quoteID, from, to string, chargeID *string) (bool, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return false, err
	}

	query := `
		UPDATE quotes
		SET status = ?, charge_id = COALESCE(?, charge_id), updated_at = NOW()
		WHERE id = ? AND status = ?
	`
	args := []interface{}{to, chargeID, quoteID, from}
	if to == entity.QuoteStatusAccepted {
		query = `
			UPDATE quotes q
			LEFT JOIN quotes sibling
				ON sibling.order_id = q.order_id
				AND sibling.provider_id = q.provider_id
				AND sibling.status = ?
				AND sibling.id <> q.id
			SET q.status = ?, q.charge_id = COALESCE(?, q.charge_id), q.updated_at = NOW()
			WHERE q.id = ? AND q.status = ? AND sibling.id IS NULL
		`
		args = []interface{}{entity.QuoteStatusAccepted, to, chargeID, quoteID, from}
	}
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

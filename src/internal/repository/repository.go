package repository

import (
	"context"
	"time"

	"repair-service/src/internal/entity"
)

// OrderStore is the conditional-write surface over repair_orders. Every
// mutating call is a single guarded UPDATE: the bool result is true when the
// stored row still matched the expected prior state, false when another
// writer got there first.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *entity.RepairOrder) error
	FindOneOrder(ctx context.Context, filter entity.OrderFilter) (*entity.RepairOrder, error)
	FindOpenOrders(ctx context.Context) ([]entity.RepairOrder, error)
	FindOrdersByCustomer(ctx context.Context, customerID string) ([]entity.RepairOrder, error)
	FindOrdersByProvider(ctx context.Context, providerID string) ([]entity.RepairOrder, error)

	ClaimOrder(ctx context.Context, orderID, providerID string, expiresAt time.Time) (bool, error)
	AcceptClaim(ctx context.Context, orderID, providerID string, now time.Time) (bool, error)
	ReleaseClaim(ctx context.Context, orderID, providerID string) (bool, error)
	ReleaseExpiredClaim(ctx context.Context, orderID, providerID string, now time.Time) (bool, error)
	FindExpiredClaims(ctx context.Context, now time.Time, limit int) ([]entity.RepairOrder, error)

	UpdateStatusForProvider(ctx context.Context, orderID, providerID, from, to string) (bool, error)
	CancelOrder(ctx context.Context, orderID, from, to string) (bool, error)
	UpdateItems(ctx context.Context, orderID string, items []byte, totalPrice float64) (bool, error)
	SetRating(ctx context.Context, orderID, role, partyID string, rating int, review string, now time.Time) (bool, error)
}

type QuoteStore interface {
	CreateQuote(ctx context.Context, quote *entity.Quote) error
	FindQuoteByID(ctx context.Context, id string) (*entity.Quote, error)
	FindQuotesByOrder(ctx context.Context, orderID string) ([]entity.Quote, error)
	HasAcceptedQuote(ctx context.Context, orderID, providerID, excludeQuoteID string) (bool, error)
	UpdateQuoteStatus(ctx context.Context, quoteID, from, to string, chargeID *string) (bool, error)
}

type ChargeStore interface {
	CreateCharge(ctx context.Context, charge *entity.CustomCharge) error
	FindChargeByID(ctx context.Context, id string) (*entity.CustomCharge, error)
	FindChargesByOrder(ctx context.Context, orderID string) ([]entity.CustomCharge, error)
	UpdateChargeStatus(ctx context.Context, chargeID, from, to string, chargeRef *string) (bool, error)
}
